package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// literal is a decoded STRING token.
type literal struct {
	value  string
	format bool
	bytes  bool
}

// decodeString decodes the raw text of a STRING token: an optional prefix
// (r, f, b, u in any supported combination), the quotes and the body.
func decodeString(text string) (literal, error) {
	i := 0
	var lit literal
	raw := false
	for i < len(text) && text[i] != '\'' && text[i] != '"' {
		switch text[i] {
		case 'r', 'R':
			raw = true
		case 'f', 'F':
			lit.format = true
		case 'b', 'B':
			lit.bytes = true
		case 'u', 'U':
		default:
			return lit, fmt.Errorf("invalid string prefix %q", text[:i+1])
		}
		i++
	}
	body := text[i:]
	q := 1
	if len(body) >= 6 && (strings.HasPrefix(body, `'''`) || strings.HasPrefix(body, `"""`)) {
		q = 3
	}
	if len(body) < 2*q {
		return lit, fmt.Errorf("malformed string literal")
	}
	body = body[q : len(body)-q]
	if raw {
		lit.value = body
		return lit, nil
	}
	v, err := unescape(body)
	if err != nil {
		return lit, err
	}
	lit.value = v
	return lit, nil
}

func unescape(s string) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '\\' || i+1 == len(s) {
			sb.WriteByte(ch)
			continue
		}
		i++
		switch c := s[i]; c {
		case '\n':
		case '\\', '\'', '"':
			sb.WriteByte(c)
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '0':
			sb.WriteByte(0)
		case 'a':
			sb.WriteByte('\a')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case 'x', 'u', 'U':
			width := map[byte]int{'x': 2, 'u': 4, 'U': 8}[c]
			if i+1+width > len(s) {
				return "", fmt.Errorf("truncated \\%c escape", c)
			}
			n, err := strconv.ParseUint(s[i+1:i+1+width], 16, 32)
			if err != nil || !utf8.ValidRune(rune(n)) {
				return "", fmt.Errorf("invalid \\%c escape", c)
			}
			sb.WriteRune(rune(n))
			i += width
		default:
			// unknown escapes are kept verbatim
			sb.WriteByte('\\')
			sb.WriteByte(c)
		}
	}
	return sb.String(), nil
}
