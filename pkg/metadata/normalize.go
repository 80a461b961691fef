// Package metadata 对解码后的元数据做规范化 (Metadata Normalizer)
//
// 解码端会遇到各个年代的发布端写出的元数据：proplist 形状的
// requirements/links、缺失的 build_tools 等等。这里把已知字段
// 整形成规范形态，未知字段原样保留 (不是错误)。
package metadata

import (
	"strings"

	"hexpack/pkg/term"
)

// buildToolFiles 是构建工具推断表
// 只认归档根目录下的文件，顺序即检查顺序 (结果顺序跟着它走)
var buildToolFiles = []struct {
	file string
	tool string
}{
	{"mix.exs", "mix"},
	{"rebar.config", "rebar"},
	{"rebar", "rebar"},
	{"Makefile", "make"},
	{"Makefile.win", "make"},
}

// Normalize 按固定顺序整形已知字段，原地修改 meta
//
//  1. build_tools 缺失时从 files 列表推断
//  2. requirements 的两种 legacy 形状转成映射
//  3. links / extra 的 proplist 形状转成映射
func Normalize(meta *term.Map) {
	inferBuildTools(meta)
	normalizeRequirements(meta)
	normalizeProplist(meta, "links")
	normalizeProplist(meta, "extra")
}

// inferBuildTools 根据根目录文件名推断构建工具
func inferBuildTools(meta *term.Map) {
	if meta.Has("build_tools") {
		return
	}
	filesV, ok := meta.Get("files")
	if !ok || filesV.Kind() != term.KindList {
		return
	}

	// 收集根目录文件名 (带路径分隔符的不算根目录)
	roots := make(map[string]bool)
	for _, f := range filesV.Elems() {
		name := f.Text()
		if name == "" || strings.ContainsAny(name, "/\\") {
			continue
		}
		roots[name] = true
	}

	// 按表顺序匹配，同名工具去重，保留首次出现
	var tools []term.Value
	seen := make(map[string]bool)
	for _, bt := range buildToolFiles {
		if roots[bt.file] && !seen[bt.tool] {
			seen[bt.tool] = true
			tools = append(tools, term.Str(bt.tool))
		}
	}
	if len(tools) > 0 {
		meta.Set("build_tools", term.List(tools...))
	}
}

// normalizeRequirements 处理 requirements 的两种 legacy 形状
//
// 形状 A：列表的列表，每个内层列表是含 "name" 键的 pair 集合
//
//	[[{"name", "ecto"}, {"optional", false}]]  =>  {"ecto": {"optional": false}}
//
// 形状 B：其他 pair-list 形状，转成 key->value 映射
// (value 自己是 pair-list 形状的话也转一层)
func normalizeRequirements(meta *term.Map) {
	v, ok := meta.Get("requirements")
	if !ok {
		return
	}

	if isShapeA(v) {
		result := term.NewMap()
		for _, inner := range v.Elems() {
			reqMap := pairsToMap(inner)
			nameV, _ := reqMap.Get("name")
			reqMap.Delete("name")
			result.Set(nameV.Text(), term.FromMap(reqMap))
		}
		meta.Set("requirements", term.FromMap(result))
		return
	}

	if v.IsPairList() {
		result := pairsToMap(v)
		for _, k := range result.Keys() {
			rv, _ := result.Get(k)
			if rv.IsPairList() {
				result.Set(k, term.FromMap(pairsToMap(rv)))
			}
		}
		meta.Set("requirements", term.FromMap(result))
	}
	// 其他形状原样放过
}

// isShapeA 判断形状 A：列表，且每个元素都是含 "name" 键的 pair-list
func isShapeA(v term.Value) bool {
	if v.Kind() != term.KindList || len(v.Elems()) == 0 {
		return false
	}
	for _, inner := range v.Elems() {
		if !inner.IsPairList() || inner.Kind() != term.KindList || len(inner.Elems()) == 0 {
			return false
		}
		if !pairsToMap(inner).Has("name") {
			return false
		}
	}
	return true
}

// normalizeProplist 把 pair-list 形状的字段转成映射，其他形状不动
func normalizeProplist(meta *term.Map, key string) {
	v, ok := meta.Get(key)
	if !ok || !v.IsPairList() {
		return
	}
	meta.Set(key, term.FromMap(pairsToMap(v)))
}

// pairsToMap 把 pair-list 转成有序映射，key 强转字符串
// 前提：调用方已确认 v.IsPairList()
func pairsToMap(v term.Value) *term.Map {
	m := term.NewMap()
	for _, pair := range v.Elems() {
		elems := pair.Elems()
		m.Set(keyOf(elems[0]), elems[1])
	}
	return m
}

func keyOf(v term.Value) string {
	switch v.Kind() {
	case term.KindString, term.KindAtom:
		return v.Text()
	default:
		// 数字等非常规 key：退化成字面量文本
		return term.LiteralText(v)
	}
}
