package term

import (
	"fmt"
	"strconv"
	"strings"
)

// DecodeErrorKind 区分解码失败的三种层次
type DecodeErrorKind uint8

const (
	// ErrParser 词法或文法失败 (含所有“不安全形式”的拒绝)，带诊断信息
	ErrParser DecodeErrorKind = iota
	// ErrNotKeyValue 解析成功，但顶层语句不是 {key, value} 二元组
	ErrNotKeyValue
	// ErrInvalidTerms 解析成功，但某个元素无法归类 (比如元组长度不是 2)
	ErrInvalidTerms
)

// DecodeError 是元数据解码的结构化错误
type DecodeError struct {
	Kind   DecodeErrorKind
	Line   int    // 仅 ErrParser 有意义
	Detail string // 仅 ErrParser 有意义
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case ErrNotKeyValue:
		return "metadata terms are not in key-value shape"
	case ErrInvalidTerms:
		return "invalid metadata terms"
	default:
		return fmt.Sprintf("metadata parse failed (line %d): %s", e.Line, e.Detail)
	}
}

// DecodeMetadata 解析 metadata.config 文本
//
// 文法只认字面量。任何可执行形式 (函数调用、远程引用、变量、
// 二进制构造) 都在词法层直接拒绝——沉默忽略等于给任意代码执行开门。
func DecodeMetadata(text string) (*Map, error) {
	stmts, err := parseStatements(text)
	if err != nil {
		return nil, err
	}

	// 1. 顶层形状检查：每条语句必须是 {key, value}
	for _, stmt := range stmts {
		if !stmt.IsPair() {
			return nil, &DecodeError{Kind: ErrNotKeyValue}
		}
	}

	// 2. 归类检查：嵌套的元组也必须是二元组
	for _, stmt := range stmts {
		for _, e := range stmt.Elems() {
			if !classifiable(e) {
				return nil, &DecodeError{Kind: ErrInvalidTerms}
			}
		}
	}

	// 3. 组装映射，key 强制转成字符串
	meta := NewMap()
	for _, stmt := range stmts {
		elems := stmt.Elems()
		meta.Set(keyText(elems[0]), elems[1])
	}
	return meta, nil
}

// classifiable 递归检查一个值能否归入受限数据模型
func classifiable(v Value) bool {
	switch v.Kind() {
	case KindTuple:
		if len(v.Elems()) != 2 {
			return false
		}
		fallthrough
	case KindList:
		for _, e := range v.Elems() {
			if !classifiable(e) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// keyText 把 pair 的第一个元素强转为字符串 key
func keyText(v Value) string {
	switch v.Kind() {
	case KindString, KindAtom:
		return v.Text()
	default:
		return LiteralText(v)
	}
}

// -----------------------------------------------------------------------------
// 词法分析
// -----------------------------------------------------------------------------

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokComma
	tokDot
	tokString
	tokAtom
	tokQuotedAtom
	tokInt
	tokFloat
)

type token struct {
	kind tokenKind
	text string // 字面内容 (字符串/原子已去引号、已解转义)
	line int
}

type lexer struct {
	src  string
	pos  int
	line int
}

func (lx *lexer) errorf(format string, args ...any) *DecodeError {
	return &DecodeError{Kind: ErrParser, Line: lx.line, Detail: fmt.Sprintf(format, args...)}
}

// next 产出下一个 token
// 所有“不安全形式”都在这里拦截，给出明确诊断
func (lx *lexer) next() (token, *DecodeError) {
	lx.skipSpace()
	if lx.pos >= len(lx.src) {
		return token{kind: tokEOF, line: lx.line}, nil
	}

	c := lx.src[lx.pos]
	switch {
	case c == '{':
		lx.pos++
		return token{kind: tokLBrace, line: lx.line}, nil
	case c == '}':
		lx.pos++
		return token{kind: tokRBrace, line: lx.line}, nil
	case c == '[':
		lx.pos++
		return token{kind: tokLBracket, line: lx.line}, nil
	case c == ']':
		lx.pos++
		return token{kind: tokRBracket, line: lx.line}, nil
	case c == ',':
		lx.pos++
		return token{kind: tokComma, line: lx.line}, nil
	case c == '.':
		lx.pos++
		return token{kind: tokDot, line: lx.line}, nil
	case c == '"':
		return lx.readQuoted('"', tokString)
	case c == '\'':
		return lx.readQuoted('\'', tokQuotedAtom)
	case c == '-' || c >= '0' && c <= '9':
		return lx.readNumber()
	case c >= 'a' && c <= 'z':
		return lx.readAtom()

	// --- 以下全是针对可执行形式的硬拒绝 ---
	case c == '<':
		return token{}, lx.errorf("binary construction is not allowed")
	case c == '(':
		return token{}, lx.errorf("function calls are not allowed")
	case c == ':':
		return token{}, lx.errorf("remote references are not allowed")
	case c == '#':
		return token{}, lx.errorf("map and record literals are not allowed")
	case c >= 'A' && c <= 'Z' || c == '_':
		return token{}, lx.errorf("variables are not allowed")
	default:
		return token{}, lx.errorf("unexpected character %q", rune(c))
	}
}

// skipSpace 跳过空白和 % 行注释
func (lx *lexer) skipSpace() {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == '\n':
			lx.line++
			lx.pos++
		case c == ' ' || c == '\t' || c == '\r':
			lx.pos++
		case c == '%':
			for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
				lx.pos++
			}
		default:
			return
		}
	}
}

// readQuoted 读取带引号的字符串或原子，处理转义
func (lx *lexer) readQuoted(quote byte, kind tokenKind) (token, *DecodeError) {
	startLine := lx.line
	lx.pos++ // 吃掉开引号
	var sb strings.Builder
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch c {
		case quote:
			lx.pos++
			return token{kind: kind, text: sb.String(), line: startLine}, nil
		case '\\':
			lx.pos++
			if err := lx.readEscape(&sb); err != nil {
				return token{}, err
			}
		case '\n':
			lx.line++
			sb.WriteByte(c)
			lx.pos++
		default:
			sb.WriteByte(c)
			lx.pos++
		}
	}
	return token{}, &DecodeError{Kind: ErrParser, Line: startLine, Detail: "unterminated quoted literal"}
}

// readEscape 解析反斜杠后面的转义序列，结果直接写进 sb
// 转义集和编码端 writeQuoted 对齐。\xNN 还原成单个原始字节
// (不能 WriteRune：NN >= 0x80 会被展开成多字节 UTF-8，破坏 round-trip)
func (lx *lexer) readEscape(sb *strings.Builder) *DecodeError {
	if lx.pos >= len(lx.src) {
		return lx.errorf("dangling escape at end of input")
	}
	c := lx.src[lx.pos]
	lx.pos++
	switch c {
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'v':
		sb.WriteByte('\v')
	case '\\', '"', '\'':
		sb.WriteByte(c)
	case 'x':
		if lx.pos+2 > len(lx.src) {
			return lx.errorf("truncated \\x escape")
		}
		n, err := strconv.ParseUint(lx.src[lx.pos:lx.pos+2], 16, 8)
		if err != nil {
			return lx.errorf("invalid \\x escape %q", lx.src[lx.pos:lx.pos+2])
		}
		lx.pos += 2
		sb.WriteByte(byte(n))
	default:
		return lx.errorf("unknown escape \\%c", c)
	}
	return nil
}

// readNumber 读取整数或浮点字面量
func (lx *lexer) readNumber() (token, *DecodeError) {
	start := lx.pos
	if lx.src[lx.pos] == '-' {
		lx.pos++
	}
	digits := 0
	for lx.pos < len(lx.src) && lx.src[lx.pos] >= '0' && lx.src[lx.pos] <= '9' {
		lx.pos++
		digits++
	}
	if digits == 0 {
		return token{}, lx.errorf("expected digits after '-'")
	}

	isFloat := false
	// 小数部分：'.' 后必须跟数字，否则 '.' 是语句结束符
	if lx.pos+1 < len(lx.src) && lx.src[lx.pos] == '.' &&
		lx.src[lx.pos+1] >= '0' && lx.src[lx.pos+1] <= '9' {
		isFloat = true
		lx.pos++
		for lx.pos < len(lx.src) && lx.src[lx.pos] >= '0' && lx.src[lx.pos] <= '9' {
			lx.pos++
		}
	}
	// 指数部分
	if lx.pos < len(lx.src) && (lx.src[lx.pos] == 'e' || lx.src[lx.pos] == 'E') {
		p := lx.pos + 1
		if p < len(lx.src) && (lx.src[p] == '+' || lx.src[p] == '-') {
			p++
		}
		if p < len(lx.src) && lx.src[p] >= '0' && lx.src[p] <= '9' {
			isFloat = true
			lx.pos = p
			for lx.pos < len(lx.src) && lx.src[lx.pos] >= '0' && lx.src[lx.pos] <= '9' {
				lx.pos++
			}
		}
	}

	kind := tokInt
	if isFloat {
		kind = tokFloat
	}
	return token{kind: kind, text: lx.src[start:lx.pos], line: lx.line}, nil
}

// readAtom 读取裸原子 (小写开头)
func (lx *lexer) readAtom() (token, *DecodeError) {
	start := lx.pos
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		ok := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
			c >= '0' && c <= '9' || c == '_' || c == '@'
		if !ok {
			break
		}
		lx.pos++
	}
	return token{kind: tokAtom, text: lx.src[start:lx.pos], line: lx.line}, nil
}

// -----------------------------------------------------------------------------
// 文法分析 (递归下降)
// -----------------------------------------------------------------------------

type parser struct {
	lx   *lexer
	tok  token // 当前 token (lookahead = 1)
	perr *DecodeError
}

func (p *parser) advance() {
	if p.perr != nil {
		return
	}
	t, err := p.lx.next()
	if err != nil {
		p.perr = err
		return
	}
	p.tok = t
}

// parseStatements 解析整个输入：term "." 重复到 EOF
func parseStatements(text string) ([]Value, *DecodeError) {
	p := &parser{lx: &lexer{src: text, line: 1}}
	p.advance()

	var stmts []Value
	for p.perr == nil && p.tok.kind != tokEOF {
		v, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokDot {
			return nil, p.unexpected("expected '.' after term")
		}
		p.advance()
		if p.perr != nil {
			return nil, p.perr
		}
		stmts = append(stmts, v)
	}
	if p.perr != nil {
		return nil, p.perr
	}
	return stmts, nil
}

func (p *parser) unexpected(msg string) *DecodeError {
	if p.perr != nil {
		return p.perr
	}
	return &DecodeError{Kind: ErrParser, Line: p.tok.line, Detail: msg}
}

// parseTerm 解析单个字面量
func (p *parser) parseTerm() (Value, *DecodeError) {
	if p.perr != nil {
		return Value{}, p.perr
	}
	switch p.tok.kind {
	case tokString:
		v := Str(p.tok.text)
		p.advance()
		return v, p.perr
	case tokQuotedAtom:
		v := Atom(p.tok.text)
		p.advance()
		return v, p.perr
	case tokAtom:
		v := atomValue(p.tok.text)
		p.advance()
		return v, p.perr
	case tokInt:
		n, err := strconv.ParseInt(p.tok.text, 10, 64)
		if err != nil {
			return Value{}, p.unexpected(fmt.Sprintf("integer out of range: %s", p.tok.text))
		}
		p.advance()
		return Int(n), p.perr
	case tokFloat:
		f, err := strconv.ParseFloat(p.tok.text, 64)
		if err != nil {
			return Value{}, p.unexpected(fmt.Sprintf("malformed float: %s", p.tok.text))
		}
		p.advance()
		return Float(f), p.perr
	case tokLBracket:
		return p.parseSeq(tokRBracket, KindList)
	case tokLBrace:
		return p.parseSeq(tokRBrace, KindTuple)
	case tokEOF:
		return Value{}, p.unexpected("unexpected end of input")
	default:
		return Value{}, p.unexpected("unexpected token")
	}
}

// parseSeq 解析 [...] 或 {...} 的元素序列
// 元组的长度约束不在文法层管，留给归类检查 (错误种类不同)
func (p *parser) parseSeq(closer tokenKind, kind Kind) (Value, *DecodeError) {
	p.advance() // 吃掉开括号
	if p.perr != nil {
		return Value{}, p.perr
	}

	var elems []Value
	if p.tok.kind != closer {
		for {
			e, err := p.parseTerm()
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, e)
			if p.tok.kind == tokComma {
				p.advance()
				if p.perr != nil {
					return Value{}, p.perr
				}
				continue
			}
			break
		}
	}
	if p.tok.kind != closer {
		return Value{}, p.unexpected("unterminated sequence")
	}
	p.advance()
	return Value{kind: kind, elems: elems}, p.perr
}

// atomValue 把裸原子映射为值：true/false/nil 是专用字面量
func atomValue(name string) Value {
	switch name {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	case "nil":
		return Nil
	default:
		return Atom(name)
	}
}
