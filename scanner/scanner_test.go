package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeScanner_BasicIteration(t *testing.T) {
	sc := New("ab")
	ch, ok := sc.Next()
	require.True(t, ok)
	assert.Equal(t, byte('a'), ch)
	assert.Equal(t, 0, sc.Pos())

	ch, ok = sc.Next()
	require.True(t, ok)
	assert.Equal(t, byte('b'), ch)

	_, ok = sc.Next()
	assert.False(t, ok)
}

func TestCodeScanner_LineTracking(t *testing.T) {
	sc := New("a\nb")
	sc.Next()
	assert.Equal(t, 1, sc.Line())
	sc.Next()
	assert.Equal(t, 2, sc.Line())
	sc.Next()
	assert.Equal(t, 2, sc.Line())
}

func TestCodeScanner_Strings(t *testing.T) {
	sc := New(`x = "a'b" + 'c\'d' + y`)
	var code, str []byte
	for ch, ok := sc.Next(); ok; ch, ok = sc.Next() {
		if sc.InString() {
			str = append(str, ch)
		} else {
			code = append(code, ch)
		}
	}
	assert.Equal(t, `x =  +  + y`, string(code))
	assert.Equal(t, `"a'b"'c\'d'`, string(str))
}

func TestCodeScanner_Comments(t *testing.T) {
	sc := New("a # (x\nb")
	var code []byte
	for ch, ok := sc.Next(); ok; ch, ok = sc.Next() {
		if sc.InCode() {
			code = append(code, ch)
		}
	}
	assert.Equal(t, "a \nb", string(code))
}

func TestCodeScanner_Peek(t *testing.T) {
	sc := New("ab")
	sc.Next()
	ch, ok := sc.Peek()
	require.True(t, ok)
	assert.Equal(t, byte('b'), ch)
	sc.Next()
	_, ok = sc.Peek()
	assert.False(t, ok)
}

func TestFindClosing(t *testing.T) {
	s := "f(a, (b), ')') + 1"
	assert.Equal(t, 13, FindClosing(s, 1))
	assert.Equal(t, 7, FindClosing(s, 5))
	assert.Equal(t, -1, FindClosing("f(a", 1))
}

func TestFindTopLevel(t *testing.T) {
	s := "f(a, b), c"
	pos := FindTopLevel(s, func(ch byte, pos int, src string) bool { return ch == ',' })
	assert.Equal(t, 7, pos)
	assert.Equal(t, -1, FindTopLevel("'a,b'", func(ch byte, pos int, src string) bool { return ch == ',' }))
}

func TestBalanceFix(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"balanced", "f(1)\n", "f(1)\n"},
		{"missing paren", "print(len([1, 2]", "print(len([1, 2]))"},
		{"keeps trailing newline", "f(1\n", "f(1)\n"},
		{"ignores strings", "f('(')", "f('(')"},
		{"stray closer", "a)", "a)"},
		{"comment on last line", "f(1 # note\n", "f(1 # note\n)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BalanceFix(tt.in))
		})
	}
}
