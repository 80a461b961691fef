// Package term 实现元数据的受限字面量编解码 (Structured-Value Codec)
//
// 这是一个安全敏感组件：解码端的文法只接受纯字面量
// (字符串/数字/布尔/nil/原子/列表/二元组)，结构上不可能产出
// 函数调用、变量、远程引用这类可执行形式。
// 解包不可信包时，宁可报错也绝不求值。
package term

// Kind 标记 Value 联合体中实际存放的类型
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString // 文本/二进制内容
	KindAtom   // 标识符，底层同样是文本
	KindList   // [...]
	KindTuple  // {a, b} 固定二元组 (pair)
	KindMap    // 有序映射，编码时放平成 pair 列表
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindAtom:
		return "atom"
	case KindList:
		return "list"
	case KindTuple:
		return "tuple"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value 是受限字面量的 tagged union
// 不导出字段 + 构造函数，保证不会出现非法组合 (比如 KindInt 却带着列表)
type Value struct {
	kind  Kind
	boolV bool
	intV  int64
	fltV  float64
	strV  string  // KindString / KindAtom 共用
	elems []Value // KindList / KindTuple 共用
	mapV  *Map
}

// Nil 是“缺失值”字面量
var Nil = Value{kind: KindNil}

func Bool(b bool) Value      { return Value{kind: KindBool, boolV: b} }
func Int(i int64) Value      { return Value{kind: KindInt, intV: i} }
func Float(f float64) Value  { return Value{kind: KindFloat, fltV: f} }
func Str(s string) Value     { return Value{kind: KindString, strV: s} }
func Atom(name string) Value { return Value{kind: KindAtom, strV: name} }

// List 构造列表值
func List(elems ...Value) Value {
	return Value{kind: KindList, elems: elems}
}

// Pair 构造二元组 {key, value}
// 注意：文法只允许二元组，所以不提供任意长度的 Tuple 构造器
func Pair(first, second Value) Value {
	return Value{kind: KindTuple, elems: []Value{first, second}}
}

// FromMap 把有序映射包装成 Value
func FromMap(m *Map) Value {
	return Value{kind: KindMap, mapV: m}
}

func (v Value) Kind() Kind { return v.kind }

// Text 返回字符串/原子的底层文本 (其他类型返回空串)
func (v Value) Text() string {
	if v.kind == KindString || v.kind == KindAtom {
		return v.strV
	}
	return ""
}

func (v Value) Bool() bool     { return v.boolV }
func (v Value) Int() int64     { return v.intV }
func (v Value) Float() float64 { return v.fltV }

// Elems 返回列表/元组的元素切片 (调用方不应修改)
func (v Value) Elems() []Value { return v.elems }

// Map 返回映射值；非 KindMap 时返回 nil
func (v Value) Map() *Map {
	if v.kind == KindMap {
		return v.mapV
	}
	return nil
}

// IsPair 判断是否为二元组
func (v Value) IsPair() bool {
	return v.kind == KindTuple && len(v.elems) == 2
}

// IsPairList 判断是否为“pair 列表”形状：列表且每个元素都是二元组
// 空列表也算 (对应空映射)。Normalizer 靠这个判断 legacy 形状。
func (v Value) IsPairList() bool {
	if v.kind != KindList {
		return false
	}
	for _, e := range v.elems {
		if !e.IsPair() {
			return false
		}
	}
	return true
}
