package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// 1. 合法输入
// -----------------------------------------------------------------------------

func TestDecode_Basic(t *testing.T) {
	text := `{"name", "ecto"}.
{"version", "3.11.2"}.
{"retired", false}.
{"deps_count", 4}.
`
	meta, err := DecodeMetadata(text)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "version", "retired", "deps_count"}, meta.Keys())

	v, ok := meta.Get("retired")
	require.True(t, ok)
	assert.Equal(t, KindBool, v.Kind())
	assert.False(t, v.Bool())

	v, _ = meta.Get("deps_count")
	assert.Equal(t, int64(4), v.Int())
}

func TestDecode_AtomKeysAndValues(t *testing.T) {
	// 老版本发布端会用原子做 key
	text := "{app, ecto}.\n{'weird key', value_1}.\n"
	meta, err := DecodeMetadata(text)
	require.NoError(t, err)

	v, ok := meta.Get("app")
	require.True(t, ok)
	assert.Equal(t, KindAtom, v.Kind())
	assert.Equal(t, "ecto", v.Text())

	_, ok = meta.Get("weird key")
	assert.True(t, ok)
}

func TestDecode_NegativeAndFloat(t *testing.T) {
	text := "{\"a\", -42}.\n{\"b\", 3.14}.\n{\"c\", 1.0e3}.\n"
	meta, err := DecodeMetadata(text)
	require.NoError(t, err)

	a, _ := meta.Get("a")
	assert.Equal(t, int64(-42), a.Int())
	b, _ := meta.Get("b")
	assert.Equal(t, 3.14, b.Float())
	c, _ := meta.Get("c")
	assert.Equal(t, 1000.0, c.Float())
}

func TestDecode_CommentsAndWhitespace(t *testing.T) {
	text := "% generated file, do not edit\n  {\"a\",\n   [1, 2, 3]}.  % trailing\n"
	meta, err := DecodeMetadata(text)
	require.NoError(t, err)
	v, _ := meta.Get("a")
	assert.Len(t, v.Elems(), 3)
}

func TestDecode_EmptyInput(t *testing.T) {
	meta, err := DecodeMetadata("")
	require.NoError(t, err)
	assert.Equal(t, 0, meta.Len())
}

// -----------------------------------------------------------------------------
// 2. 不安全形式必须拒绝 (这是这个包存在的理由)
// -----------------------------------------------------------------------------

func TestDecode_RejectsExecutableForms(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		detail string
	}{
		{"函数调用", `{"cmd", os:cmd("rm -rf /")}.`, "remote references"},
		{"本地调用", `{"cmd", halt()}.`, "function calls"},
		{"变量", `{"v", Var}.`, "variables are not allowed"},
		{"下划线变量", `{"v", _ignored}.`, "variables are not allowed"},
		{"二进制构造", `{"b", <<1, 2, 3>>}.`, "binary construction"},
		{"map 字面量", `{"m", #{a => 1}}.`, "map and record literals"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeMetadata(tc.input)
			require.Error(t, err)

			var de *DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, ErrParser, de.Kind)
			assert.Contains(t, de.Detail, tc.detail)
		})
	}
}

// -----------------------------------------------------------------------------
// 3. 形状错误的分类
// -----------------------------------------------------------------------------

func TestDecode_NotKeyValue(t *testing.T) {
	// 顶层语句不是二元组 -> NotKeyValue (区别于文法错误)
	cases := []string{
		`"just a string".`,
		`[1, 2].`,
		`{1, 2, 3}.`,
		`{}.`,
	}
	for _, input := range cases {
		_, err := DecodeMetadata(input)
		require.Error(t, err, "input: %s", input)
		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, ErrNotKeyValue, de.Kind, "input: %s", input)
	}
}

func TestDecode_InvalidTerms(t *testing.T) {
	// 顶层是二元组，但嵌套里有长度不对的元组 -> InvalidTerms
	_, err := DecodeMetadata(`{"a", [{1, 2, 3}]}.`)
	require.Error(t, err)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrInvalidTerms, de.Kind)
}

func TestDecode_SyntaxErrors(t *testing.T) {
	cases := []string{
		`{"a", 1}`,        // 缺 '.'
		`{"a", }.`,        // 悬空逗号
		`{"a", "open}.`,   // 未闭合字符串
		`{"a", [1, 2}.`,   // 括号不匹配
		`{"a", 1} {"b"}.`, // 语句之间缺 '.'
	}
	for _, input := range cases {
		_, err := DecodeMetadata(input)
		require.Error(t, err, "input: %s", input)
		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, ErrParser, de.Kind, "input: %s", input)
		assert.NotEmpty(t, de.Detail)
	}
}

func TestDecode_ErrorMessagesAreDeterministic(t *testing.T) {
	_, err := DecodeMetadata(`[1].`)
	require.EqualError(t, err, "metadata terms are not in key-value shape")

	_, err = DecodeMetadata(`{"a", [{1, 2, 3}]}.`)
	require.EqualError(t, err, "invalid metadata terms")
}
