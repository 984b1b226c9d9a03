package object

import (
	"strings"
	"unicode"
)

var strMethods map[string]MethodFunc

var listMethods = map[string]MethodFunc{
	"append": func(self Value, args []Value, kw Kwargs) (Value, error) {
		if err := arity("append", args, kw, 1, 1); err != nil {
			return nil, err
		}
		l := self.(ListLike).AsList()
		l.Elems = append(l.Elems, args[0])
		return None, nil
	},
	"extend": func(self Value, args []Value, kw Kwargs) (Value, error) {
		if err := arity("extend", args, kw, 1, 1); err != nil {
			return nil, err
		}
		more, err := Elements(args[0])
		if err != nil {
			return nil, err
		}
		l := self.(ListLike).AsList()
		l.Elems = append(l.Elems, more...)
		return None, nil
	},
	"count": func(self Value, args []Value, kw Kwargs) (Value, error) {
		if err := arity("count", args, kw, 1, 1); err != nil {
			return nil, err
		}
		elems, _ := Elements(self)
		n := 0
		for _, e := range elems {
			if Equal(e, args[0]) {
				n++
			}
		}
		return Int(n), nil
	},
	"index": func(self Value, args []Value, kw Kwargs) (Value, error) {
		if err := arity("index", args, kw, 1, 1); err != nil {
			return nil, err
		}
		elems, _ := Elements(self)
		for i, e := range elems {
			if Equal(e, args[0]) {
				return Int(i), nil
			}
		}
		return nil, Errorf(ValueErrorKind, "%s is not in %s", args[0].String(), self.Type())
	},
	"pop": func(self Value, args []Value, kw Kwargs) (Value, error) {
		if err := arity("pop", args, kw, 0, 1); err != nil {
			return nil, err
		}
		l := self.(ListLike).AsList()
		if len(l.Elems) == 0 {
			return nil, Errorf(IndexErrorKind, "pop from empty list")
		}
		var at Value = Int(-1)
		if len(args) == 1 {
			at = args[0]
		}
		i, err := normIndex(at, len(l.Elems), "pop")
		if err != nil {
			return nil, err
		}
		v := l.Elems[i]
		l.Elems = append(l.Elems[:i], l.Elems[i+1:]...)
		return v, nil
	},
	"insert": func(self Value, args []Value, kw Kwargs) (Value, error) {
		if err := arity("insert", args, kw, 2, 2); err != nil {
			return nil, err
		}
		i, ok := args[0].(Int)
		if !ok {
			return nil, Errorf(TypeErrorKind, "'%s' object cannot be interpreted as an integer", args[0].Type())
		}
		l := self.(ListLike).AsList()
		n := int(i)
		if n < 0 {
			n += len(l.Elems)
		}
		n = max(0, min(n, len(l.Elems)))
		l.Elems = append(l.Elems[:n], append([]Value{args[1]}, l.Elems[n:]...)...)
		return None, nil
	},
	"reverse": func(self Value, args []Value, kw Kwargs) (Value, error) {
		if err := arity("reverse", args, kw, 0, 0); err != nil {
			return nil, err
		}
		l := self.(ListLike).AsList()
		for i, j := 0, len(l.Elems)-1; i < j; i, j = i+1, j-1 {
			l.Elems[i], l.Elems[j] = l.Elems[j], l.Elems[i]
		}
		return None, nil
	},
}

var dictMethods = map[string]MethodFunc{
	"get": func(self Value, args []Value, kw Kwargs) (Value, error) {
		if err := arity("get", args, kw, 1, 2); err != nil {
			return nil, err
		}
		v, ok, err := self.(*Dict).Get(args[0])
		if err != nil {
			return nil, err
		}
		if ok {
			return v, nil
		}
		if len(args) == 2 {
			return args[1], nil
		}
		return None, nil
	},
	"keys": func(self Value, args []Value, kw Kwargs) (Value, error) {
		if err := arity("keys", args, kw, 0, 0); err != nil {
			return nil, err
		}
		d := self.(*Dict)
		return NewList(append([]Value(nil), d.keys...)...), nil
	},
	"values": func(self Value, args []Value, kw Kwargs) (Value, error) {
		if err := arity("values", args, kw, 0, 0); err != nil {
			return nil, err
		}
		d := self.(*Dict)
		return NewList(append([]Value(nil), d.values...)...), nil
	},
	"items": func(self Value, args []Value, kw Kwargs) (Value, error) {
		if err := arity("items", args, kw, 0, 0); err != nil {
			return nil, err
		}
		var out []Value
		for k, v := range self.(*Dict).Items() {
			out = append(out, Tuple{k, v})
		}
		return NewList(out...), nil
	},
	"update": func(self Value, args []Value, kw Kwargs) (Value, error) {
		if err := arity("update", args, nil, 0, 1); err != nil {
			return nil, err
		}
		d := self.(*Dict)
		if len(args) == 1 {
			other, ok := args[0].(*Dict)
			if !ok {
				return nil, Errorf(TypeErrorKind, "'%s' object is not a mapping", args[0].Type())
			}
			for k, v := range other.Items() {
				if err := d.Set(k, v); err != nil {
					return nil, err
				}
			}
		}
		for _, k := range kw {
			if err := d.Set(Str(k.Name), k.Value); err != nil {
				return nil, err
			}
		}
		return None, nil
	},
}

func init() {
	strMethods = map[string]MethodFunc{
		"upper":      strFunc(strings.ToUpper),
		"lower":      strFunc(strings.ToLower),
		"title":      strFunc(title),
		"capitalize": strFunc(capitalize),
		"strip":      trimFunc(strings.TrimSpace, strings.Trim),
		"lstrip":     trimFunc(func(s string) string { return strings.TrimLeftFunc(s, unicode.IsSpace) }, strings.TrimLeft),
		"rstrip":     trimFunc(func(s string) string { return strings.TrimRightFunc(s, unicode.IsSpace) }, strings.TrimRight),
		"isdigit":    strPred(unicode.IsDigit),
		"isalpha":    strPred(unicode.IsLetter),
		"isspace":    strPred(unicode.IsSpace),
		"replace":    strReplace,
		"split":      strSplit,
		"splitlines": strSplitlines,
		"join":       strJoin,
		"startswith": affixFunc("startswith", strings.HasPrefix),
		"endswith":   affixFunc("endswith", strings.HasSuffix),
		"zfill":      strZfill,
		"find":       strFind,
		"count":      strCount,
	}
}

func arity(name string, args []Value, kw Kwargs, lo, hi int) error {
	if len(kw) > 0 {
		return Errorf(TypeErrorKind, "%s() takes no keyword arguments", name)
	}
	if len(args) < lo || len(args) > hi {
		if lo == hi {
			return Errorf(TypeErrorKind, "%s() takes exactly %d argument(s) (%d given)", name, lo, len(args))
		}
		return Errorf(TypeErrorKind, "%s() takes %d to %d arguments (%d given)", name, lo, hi, len(args))
	}
	return nil
}

func strArg(name string, v Value) (string, error) {
	s, ok := v.(Str)
	if !ok {
		return "", Errorf(TypeErrorKind, "%s() argument must be str, not %s", name, v.Type())
	}
	return string(s), nil
}

func strFunc(fn func(string) string) MethodFunc {
	return func(self Value, args []Value, kw Kwargs) (Value, error) {
		if err := arity("str method", args, kw, 0, 0); err != nil {
			return nil, err
		}
		return Str(fn(string(self.(Str)))), nil
	}
}

func trimFunc(space func(string) string, cut func(string, string) string) MethodFunc {
	return func(self Value, args []Value, kw Kwargs) (Value, error) {
		if err := arity("strip", args, kw, 0, 1); err != nil {
			return nil, err
		}
		s := string(self.(Str))
		if len(args) == 0 || args[0] == None {
			return Str(space(s)), nil
		}
		chars, err := strArg("strip", args[0])
		if err != nil {
			return nil, err
		}
		return Str(cut(s, chars)), nil
	}
}

func strPred(pred func(rune) bool) MethodFunc {
	return func(self Value, args []Value, kw Kwargs) (Value, error) {
		if err := arity("str method", args, kw, 0, 0); err != nil {
			return nil, err
		}
		s := string(self.(Str))
		if s == "" {
			return Bool(false), nil
		}
		for _, r := range s {
			if !pred(r) {
				return Bool(false), nil
			}
		}
		return Bool(true), nil
	}
}

func affixFunc(name string, test func(string, string) bool) MethodFunc {
	return func(self Value, args []Value, kw Kwargs) (Value, error) {
		if err := arity(name, args, kw, 1, 1); err != nil {
			return nil, err
		}
		s := string(self.(Str))
		if tup, ok := args[0].(Tuple); ok {
			for _, a := range tup {
				p, err := strArg(name, a)
				if err != nil {
					return nil, err
				}
				if test(s, p) {
					return Bool(true), nil
				}
			}
			return Bool(false), nil
		}
		p, err := strArg(name, args[0])
		if err != nil {
			return nil, err
		}
		return Bool(test(s, p)), nil
	}
}

func title(s string) string {
	var sb strings.Builder
	prev := false
	for _, r := range s {
		if prev {
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(unicode.ToUpper(r))
		}
		prev = unicode.IsLetter(r)
	}
	return sb.String()
}

func capitalize(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + strings.ToLower(s[i+len(string(r)):])
	}
	return s
}

func strReplace(self Value, args []Value, kw Kwargs) (Value, error) {
	if err := arity("replace", args, kw, 2, 3); err != nil {
		return nil, err
	}
	old, err := strArg("replace", args[0])
	if err != nil {
		return nil, err
	}
	repl, err := strArg("replace", args[1])
	if err != nil {
		return nil, err
	}
	n := -1
	if len(args) == 3 {
		c, ok := args[2].(Int)
		if !ok {
			return nil, Errorf(TypeErrorKind, "replace() count must be int, not %s", args[2].Type())
		}
		n = int(c)
	}
	return Str(strings.Replace(string(self.(Str)), old, repl, n)), nil
}

func strSplit(self Value, args []Value, kw Kwargs) (Value, error) {
	if err := arity("split", args, kw, 0, 2); err != nil {
		return nil, err
	}
	s := string(self.(Str))
	n := -1
	if len(args) == 2 {
		c, ok := args[1].(Int)
		if !ok {
			return nil, Errorf(TypeErrorKind, "split() maxsplit must be int, not %s", args[1].Type())
		}
		if c >= 0 {
			n = int(c) + 1
		}
	}
	var parts []string
	if len(args) == 0 || args[0] == None {
		parts = strings.Fields(s)
		if n > 0 && len(parts) > n {
			// rejoin the tail as the host does for maxsplit
			head := parts[:n-1]
			rest := strings.TrimLeftFunc(s, unicode.IsSpace)
			for range head {
				i := strings.IndexFunc(rest, unicode.IsSpace)
				rest = strings.TrimLeftFunc(rest[i:], unicode.IsSpace)
			}
			parts = append(head, rest)
		}
	} else {
		sep, err := strArg("split", args[0])
		if err != nil {
			return nil, err
		}
		if sep == "" {
			return nil, Errorf(ValueErrorKind, "empty separator")
		}
		parts = strings.SplitN(s, sep, n)
	}
	out := make([]Value, len(parts))
	for i, p := range parts {
		out[i] = Str(p)
	}
	return NewList(out...), nil
}

func strSplitlines(self Value, args []Value, kw Kwargs) (Value, error) {
	if err := arity("splitlines", args, kw, 0, 0); err != nil {
		return nil, err
	}
	s := strings.ReplaceAll(string(self.(Str)), "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return NewList(), nil
	}
	lines := strings.Split(s, "\n")
	out := make([]Value, len(lines))
	for i, l := range lines {
		out[i] = Str(l)
	}
	return NewList(out...), nil
}

func strJoin(self Value, args []Value, kw Kwargs) (Value, error) {
	if err := arity("join", args, kw, 1, 1); err != nil {
		return nil, err
	}
	elems, err := Elements(args[0])
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(elems))
	for i, e := range elems {
		s, ok := e.(Str)
		if !ok {
			return nil, Errorf(TypeErrorKind, "sequence item %d: expected str instance, %s found", i, e.Type())
		}
		parts[i] = string(s)
	}
	return Str(strings.Join(parts, string(self.(Str)))), nil
}

func strZfill(self Value, args []Value, kw Kwargs) (Value, error) {
	if err := arity("zfill", args, kw, 1, 1); err != nil {
		return nil, err
	}
	w, ok := args[0].(Int)
	if !ok {
		return nil, Errorf(TypeErrorKind, "'%s' object cannot be interpreted as an integer", args[0].Type())
	}
	s := string(self.(Str))
	pad := int(w) - len([]rune(s))
	if pad <= 0 {
		return Str(s), nil
	}
	sign := ""
	if s != "" && (s[0] == '-' || s[0] == '+') {
		sign, s = s[:1], s[1:]
	}
	return Str(sign + strings.Repeat("0", pad) + s), nil
}

func strFind(self Value, args []Value, kw Kwargs) (Value, error) {
	if err := arity("find", args, kw, 1, 1); err != nil {
		return nil, err
	}
	sub, err := strArg("find", args[0])
	if err != nil {
		return nil, err
	}
	s := string(self.(Str))
	i := strings.Index(s, sub)
	if i < 0 {
		return Int(-1), nil
	}
	return Int(len([]rune(s[:i]))), nil
}

func strCount(self Value, args []Value, kw Kwargs) (Value, error) {
	if err := arity("count", args, kw, 1, 1); err != nil {
		return nil, err
	}
	sub, err := strArg("count", args[0])
	if err != nil {
		return nil, err
	}
	s := string(self.(Str))
	if sub == "" {
		return Int(len([]rune(s)) + 1), nil
	}
	return Int(strings.Count(s, sub)), nil
}
