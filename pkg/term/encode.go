package term

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// EncodeMetadata 把元数据映射渲染为 metadata.config 文本
//
// 每个顶层键值对渲染成一条以 "." 加换行结尾的字面量语句，顺序严格
// 跟随映射的插入顺序 (字节级确定性)。渲染前先做递归规范化：
//   - 原子降级为字符串文本
//   - 映射放平为 pair 列表 (永不输出 map 字面量语法，照顾老版本读取端)
func EncodeMetadata(meta *Map) (string, error) {
	var sb strings.Builder
	for _, key := range meta.Keys() {
		v, _ := meta.Get(key)
		norm, err := normalizeForEncode(v)
		if err != nil {
			return "", fmt.Errorf("key %q: %w", key, err)
		}
		sb.WriteString("{")
		writeTerm(&sb, Str(key))
		sb.WriteString(", ")
		writeTerm(&sb, norm)
		sb.WriteString("}.\n")
	}
	return sb.String(), nil
}

// LiteralText 渲染单个值的字面量文本 (不含结尾的 ".")
// 给需要把非字符串值降级成 key 的调用方用
func LiteralText(v Value) string {
	var sb strings.Builder
	writeTerm(&sb, v)
	return sb.String()
}

// normalizeForEncode 递归规范化一个值
// 标量原样通过；原子变字符串；列表/元组逐元素递归；映射变 pair 列表
func normalizeForEncode(v Value) (Value, error) {
	switch v.Kind() {
	case KindNil, KindBool, KindInt, KindString:
		return v, nil
	case KindFloat:
		// Inf/NaN 没有对应的字面量语法，编出来解码端必然读不回
		if math.IsInf(v.Float(), 0) || math.IsNaN(v.Float()) {
			return Value{}, fmt.Errorf("non-finite float %v cannot be encoded", v.Float())
		}
		return v, nil
	case KindAtom:
		return Str(v.Text()), nil
	case KindList, KindTuple:
		elems := make([]Value, len(v.Elems()))
		for i, e := range v.Elems() {
			ne, err := normalizeForEncode(e)
			if err != nil {
				return Value{}, err
			}
			elems[i] = ne
		}
		return Value{kind: v.kind, elems: elems}, nil
	case KindMap:
		m := v.Map()
		pairs := make([]Value, 0, m.Len())
		for _, k := range m.Keys() {
			mv, _ := m.Get(k)
			nv, err := normalizeForEncode(mv)
			if err != nil {
				return Value{}, err
			}
			pairs = append(pairs, Pair(Str(k), nv))
		}
		return List(pairs...), nil
	default:
		return Value{}, fmt.Errorf("cannot encode value of kind %s", v.Kind())
	}
}

// writeTerm 渲染单个 (已规范化的) 值
func writeTerm(sb *strings.Builder, v Value) {
	switch v.Kind() {
	case KindNil:
		sb.WriteString("nil")
	case KindBool:
		if v.Bool() {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.Int(), 10))
	case KindFloat:
		sb.WriteString(formatFloat(v.Float()))
	case KindString:
		writeQuoted(sb, v.Text(), '"')
	case KindAtom:
		// 规范化之后原子不会出现在这里，但保持渲染器完备
		if isBareAtom(v.Text()) {
			sb.WriteString(v.Text())
		} else {
			writeQuoted(sb, v.Text(), '\'')
		}
	case KindList:
		sb.WriteString("[")
		for i, e := range v.Elems() {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeTerm(sb, e)
		}
		sb.WriteString("]")
	case KindTuple:
		sb.WriteString("{")
		for i, e := range v.Elems() {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeTerm(sb, e)
		}
		sb.WriteString("}")
	}
}

// formatFloat 输出十进制浮点字面量
// 必须带小数点或指数，否则解码端会把它认成整数
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !strings.Contains(s, "Inf") && s != "NaN" {
		s += ".0"
	}
	return s
}

// writeQuoted 输出带引号的文本，转义特殊字符
// 转义集必须和解码端的 readEscape 严格对齐，否则无法 round-trip
//
// 按字节走而不是按 rune 走：字符串值可能携带非 UTF-8 的原始字节
// (比如从磁盘读进来的二进制内容)，逐 rune 解码会把坏字节悄悄换成
// U+FFFD。合法的 UTF-8 序列原样透传，非法字节逐个转成 \xNN。
func writeQuoted(sb *strings.Builder, s string, quote byte) {
	sb.WriteByte(quote)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			fmt.Fprintf(sb, `\x%02x`, s[i])
			i++
			continue
		}
		switch r {
		case rune(quote):
			sb.WriteByte('\\')
			sb.WriteByte(quote)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\v':
			sb.WriteString(`\v`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(sb, `\x%02x`, r)
			} else {
				sb.WriteString(s[i : i+size])
			}
		}
		i += size
	}
	sb.WriteByte(quote)
}

// isBareAtom 判断原子能否不加引号输出
// 规则：小写字母开头，后续只有字母/数字/下划线/@
func isBareAtom(s string) bool {
	if len(s) == 0 {
		return false
	}
	if s[0] < 'a' || s[0] > 'z' {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		ok := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
			c >= '0' && c <= '9' || c == '_' || c == '@'
		if !ok {
			return false
		}
	}
	return true
}
