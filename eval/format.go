package eval

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rubiojr/scriptgo/ast"
	"github.com/rubiojr/scriptgo/object"
	"github.com/rubiojr/scriptgo/parser"
	"github.com/rubiojr/scriptgo/scanner"
)

// fpart is one segment of an f-string: literal text, or an expression
// with an optional conversion (r or s) and format spec.
type fpart struct {
	text string
	expr ast.Expr
	conv byte
	spec string
}

func (m *machine) fstring(lit *ast.StringLit, sc *scope) (object.Value, error) {
	parts, err := splitFString(m.file, lit.Value)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	for _, p := range parts {
		if p.expr == nil {
			sb.WriteString(p.text)
			continue
		}
		v, err := m.expr(p.expr, sc)
		if err != nil {
			return nil, err
		}
		if p.conv == 'r' {
			v = object.Str(v.String())
		}
		s, err := Format(v, p.spec)
		if err != nil {
			return nil, err
		}
		sb.WriteString(s)
	}
	return object.Str(sb.String()), nil
}

func splitFString(file, s string) ([]fpart, error) {
	var parts []fpart
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			parts = append(parts, fpart{text: text.String()})
			text.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '{' && i+1 < len(s) && s[i+1] == '{':
			text.WriteByte('{')
			i++
		case ch == '}' && i+1 < len(s) && s[i+1] == '}':
			text.WriteByte('}')
			i++
		case ch == '}':
			return nil, object.Errorf(object.ValueErrorKind, "f-string: single '}' is not allowed")
		case ch == '{':
			end := scanner.FindClosing(s, i)
			if end < 0 {
				return nil, object.Errorf(object.ValueErrorKind, "f-string: expecting '}'")
			}
			p, err := parseReplacement(file, s[i+1:end])
			if err != nil {
				return nil, err
			}
			flush()
			parts = append(parts, p)
			i = end
		default:
			text.WriteByte(ch)
		}
	}
	flush()
	return parts, nil
}

func parseReplacement(file, field string) (fpart, error) {
	var p fpart
	specAt := scanner.FindTopLevel(field, func(ch byte, _ int, _ string) bool { return ch == ':' })
	if specAt >= 0 {
		p.spec = field[specAt+1:]
		field = field[:specAt]
	}
	convAt := scanner.FindTopLevel(field, func(ch byte, pos int, src string) bool {
		return ch == '!' && (pos+1 >= len(src) || src[pos+1] != '=')
	})
	if convAt >= 0 {
		conv := field[convAt+1:]
		if conv != "r" && conv != "s" {
			return p, object.Errorf(object.ValueErrorKind, "f-string: invalid conversion character %q", conv)
		}
		p.conv = conv[0]
		field = field[:convAt]
	}
	if strings.TrimSpace(field) == "" {
		return p, object.Errorf(object.ValueErrorKind, "f-string: empty expression not allowed")
	}
	e, err := parser.ParseExpr(file, field)
	if err != nil {
		return p, err
	}
	p.expr = e
	return p, nil
}

// Format renders v according to a format spec of the form
// [[fill]align][sign][0][width][,][.precision][type].
func Format(v object.Value, spec string) (string, error) {
	if spec == "" {
		return object.ToStr(v), nil
	}
	fs, err := parseSpec(spec)
	if err != nil {
		return "", err
	}
	body, numeric, err := fs.render(v)
	if err != nil {
		return "", err
	}
	return fs.pad(body, numeric), nil
}

type formatSpec struct {
	fill      rune
	align     byte
	sign      byte
	width     int
	grouping  bool
	precision int // -1 when absent
	verb      byte
}

func parseSpec(spec string) (formatSpec, error) {
	fs := formatSpec{fill: ' ', precision: -1}
	bad := object.Errorf(object.ValueErrorKind, "Invalid format specifier '%s'", spec)
	s := spec
	if r, size := utf8.DecodeRuneInString(s); size > 0 && size < len(s) && strings.IndexByte("<>^=", s[size]) >= 0 {
		fs.fill, fs.align = r, s[size]
		s = s[size+1:]
	} else if s != "" && strings.IndexByte("<>^=", s[0]) >= 0 {
		fs.align = s[0]
		s = s[1:]
	}
	if s != "" && strings.IndexByte("+- ", s[0]) >= 0 {
		fs.sign = s[0]
		s = s[1:]
	}
	if s != "" && s[0] == '0' {
		if fs.align == 0 {
			fs.fill, fs.align = '0', '='
		}
		s = s[1:]
	}
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	if n > 0 {
		fs.width, _ = strconv.Atoi(s[:n])
		s = s[n:]
	}
	if s != "" && s[0] == ',' {
		fs.grouping = true
		s = s[1:]
	}
	if s != "" && s[0] == '.' {
		n = 1
		for n < len(s) && s[n] >= '0' && s[n] <= '9' {
			n++
		}
		if n == 1 {
			return fs, bad
		}
		fs.precision, _ = strconv.Atoi(s[1:n])
		s = s[n:]
	}
	switch len(s) {
	case 0:
	case 1:
		if strings.IndexByte("sdxXobfFeEgG%", s[0]) < 0 {
			return fs, bad
		}
		fs.verb = s[0]
	default:
		return fs, bad
	}
	return fs, nil
}

func (fs formatSpec) render(v object.Value) (body string, numeric bool, err error) {
	i, isInt := asInt(v)
	f, isNum := asFloat(v)
	if _, isBool := v.(object.Bool); isBool && fs.verb == 0 {
		isInt, isNum = false, false
	}
	switch fs.verb {
	case 0:
		if isInt {
			return fs.signed(strconv.FormatInt(i, 10), i < 0), true, nil
		}
		if isNum {
			if fs.precision >= 0 {
				return fs.signed(strconv.FormatFloat(f, 'g', fs.precision, 64), f < 0), true, nil
			}
			return fs.signed(object.Float(f).String(), f < 0), true, nil
		}
		return fs.truncate(object.ToStr(v)), false, nil
	case 's':
		if _, ok := v.(object.Str); !ok {
			return "", false, object.Errorf(object.ValueErrorKind, "Unknown format code 's' for object of type '%s'", v.Type())
		}
		return fs.truncate(object.ToStr(v)), false, nil
	case 'd', 'x', 'X', 'o', 'b':
		if !isInt {
			return "", false, object.Errorf(object.ValueErrorKind, "Unknown format code '%c' for object of type '%s'", fs.verb, v.Type())
		}
		base := map[byte]int{'d': 10, 'x': 16, 'X': 16, 'o': 8, 'b': 2}[fs.verb]
		digits := strconv.FormatInt(abs64(i), base)
		if fs.verb == 'X' {
			digits = strings.ToUpper(digits)
		}
		return fs.signed(digits, i < 0), true, nil
	}
	if !isNum {
		return "", false, object.Errorf(object.ValueErrorKind, "Unknown format code '%c' for object of type '%s'", fs.verb, v.Type())
	}
	prec := fs.precision
	if prec < 0 {
		prec = 6
	}
	neg := f < 0
	if neg {
		f = -f
	}
	var digits string
	switch fs.verb {
	case 'f', 'F':
		digits = strconv.FormatFloat(f, 'f', prec, 64)
	case 'e', 'E':
		digits = strconv.FormatFloat(f, fs.verb, prec, 64)
	case 'g', 'G':
		digits = strconv.FormatFloat(f, fs.verb, max(prec, 1), 64)
	case '%':
		digits = strconv.FormatFloat(f*100, 'f', prec, 64) + "%"
	}
	return fs.signed(digits, neg), true, nil
}

func abs64(i int64) int64 {
	if i < 0 {
		return -i
	}
	return i
}

func (fs formatSpec) truncate(s string) string {
	if fs.precision >= 0 && utf8.RuneCountInString(s) > fs.precision {
		return string([]rune(s)[:fs.precision])
	}
	return s
}

// signed applies grouping and the sign to unsigned digits.
func (fs formatSpec) signed(digits string, neg bool) string {
	digits = strings.TrimPrefix(digits, "-")
	if fs.grouping {
		intPart, frac, _ := strings.Cut(digits, ".")
		var sb strings.Builder
		for i, r := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				sb.WriteByte(',')
			}
			sb.WriteRune(r)
		}
		digits = sb.String()
		if frac != "" {
			digits += "." + frac
		}
	}
	switch {
	case neg:
		return "-" + digits
	case fs.sign == '+':
		return "+" + digits
	case fs.sign == ' ':
		return " " + digits
	}
	return digits
}

func (fs formatSpec) pad(body string, numeric bool) string {
	n := fs.width - utf8.RuneCountInString(body)
	if n <= 0 {
		return body
	}
	align := fs.align
	if align == 0 {
		align = '<'
		if numeric {
			align = '>'
		}
	}
	fill := strings.Repeat(string(fs.fill), n)
	switch align {
	case '>':
		return fill + body
	case '^':
		left := strings.Repeat(string(fs.fill), n/2)
		return left + body + strings.Repeat(string(fs.fill), n-n/2)
	case '=':
		if body != "" && strings.IndexByte("+- ", body[0]) >= 0 {
			return body[:1] + fill + body[1:]
		}
		return fill + body
	}
	return body + fill
}
