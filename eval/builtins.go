package eval

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/rubiojr/scriptgo/object"
)

type builtinFunc = func(args []object.Value, kw object.Kwargs) (object.Value, error)

func argc(name string, args []object.Value, lo, hi int) error {
	if len(args) >= lo && (hi < 0 || len(args) <= hi) {
		return nil
	}
	switch {
	case lo == hi:
		return object.Errorf(object.TypeErrorKind, "%s() takes exactly %d argument(s) (%d given)", name, lo, len(args))
	case hi < 0:
		return object.Errorf(object.TypeErrorKind, "%s() takes at least %d argument(s) (%d given)", name, lo, len(args))
	}
	return object.Errorf(object.TypeErrorKind, "%s() takes %d to %d arguments (%d given)", name, lo, hi, len(args))
}

func noKwargs(name string, kw object.Kwargs) error { return kw.Only(name) }

func (in *Interpreter) newBuiltins() object.Env {
	env := object.Env{}
	fn := func(name string, f builtinFunc) {
		env[name] = object.NewBuiltin(name, f)
	}
	class := func(name string, f builtinFunc) {
		env[name] = &object.Class{Name: name, New: f, Methods: object.MethodsOf(name)}
	}

	fn("print", in.print)
	fn("len", builtinLen)
	fn("repr", func(args []object.Value, kw object.Kwargs) (object.Value, error) {
		if err := firstErr(noKwargs("repr", kw), argc("repr", args, 1, 1)); err != nil {
			return nil, err
		}
		return object.Str(args[0].String()), nil
	})
	fn("abs", builtinAbs)
	fn("range", builtinRange)
	fn("sum", builtinSum)
	fn("min", minMax("min", -1))
	fn("max", minMax("max", 1))
	fn("sorted", builtinSorted)
	fn("reversed", builtinReversed)
	fn("enumerate", builtinEnumerate)
	fn("zip", builtinZip)
	fn("map", builtinMap)
	fn("filter", builtinFilter)
	fn("any", anyAll("any", true))
	fn("all", anyAll("all", false))
	fn("round", builtinRound)
	fn("format", func(args []object.Value, kw object.Kwargs) (object.Value, error) {
		if err := firstErr(noKwargs("format", kw), argc("format", args, 1, 2)); err != nil {
			return nil, err
		}
		spec := ""
		if len(args) == 2 {
			s, ok := args[1].(object.Str)
			if !ok {
				return nil, object.Errorf(object.TypeErrorKind, "format() argument 2 must be str, not %s", args[1].Type())
			}
			spec = string(s)
		}
		s, err := Format(args[0], spec)
		return object.Str(s), err
	})
	fn("callable", func(args []object.Value, kw object.Kwargs) (object.Value, error) {
		if err := firstErr(noKwargs("callable", kw), argc("callable", args, 1, 1)); err != nil {
			return nil, err
		}
		_, ok := args[0].(object.Callable)
		return object.Bool(ok), nil
	})
	fn("namespace", func(args []object.Value, kw object.Kwargs) (object.Value, error) {
		if err := argc("namespace", args, 0, 0); err != nil {
			return nil, err
		}
		attrs := map[string]object.Value{}
		for _, k := range kw {
			attrs[k.Name] = k.Value
		}
		return object.NewNamespace(attrs), nil
	})
	fn("type", func(args []object.Value, kw object.Kwargs) (object.Value, error) {
		if err := firstErr(noKwargs("type", kw), argc("type", args, 1, 1)); err != nil {
			return nil, err
		}
		if c, ok := env[args[0].Type()].(*object.Class); ok {
			return c, nil
		}
		return &object.Class{Name: args[0].Type()}, nil
	})

	class("str", func(args []object.Value, kw object.Kwargs) (object.Value, error) {
		if err := firstErr(noKwargs("str", kw), argc("str", args, 0, 1)); err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return object.Str(""), nil
		}
		return object.Str(object.ToStr(args[0])), nil
	})
	class("int", builtinInt)
	class("float", builtinFloat)
	class("bool", func(args []object.Value, kw object.Kwargs) (object.Value, error) {
		if err := firstErr(noKwargs("bool", kw), argc("bool", args, 0, 1)); err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return object.Bool(false), nil
		}
		return object.Bool(object.Truth(args[0])), nil
	})
	class("list", func(args []object.Value, kw object.Kwargs) (object.Value, error) {
		if err := firstErr(noKwargs("list", kw), argc("list", args, 0, 1)); err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return object.NewList(), nil
		}
		elems, err := object.Elements(args[0])
		return object.NewList(elems...), err
	})
	class("tuple", func(args []object.Value, kw object.Kwargs) (object.Value, error) {
		if err := firstErr(noKwargs("tuple", kw), argc("tuple", args, 0, 1)); err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return object.Tuple{}, nil
		}
		elems, err := object.Elements(args[0])
		return object.Tuple(elems), err
	})
	class("dict", builtinDict)
	return env
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) print(args []object.Value, kw object.Kwargs) (object.Value, error) {
	if err := kw.Only("print", "sep", "end"); err != nil {
		return nil, err
	}
	sep, end := " ", "\n"
	if v, ok := kw.Get("sep"); ok && v != object.None {
		sep = object.ToStr(v)
	}
	if v, ok := kw.Get("end"); ok && v != object.None {
		end = object.ToStr(v)
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = object.ToStr(a)
	}
	if _, err := fmt.Fprint(in.stdout, strings.Join(parts, sep)+end); err != nil {
		return nil, err
	}
	return object.None, nil
}

func builtinLen(args []object.Value, kw object.Kwargs) (object.Value, error) {
	if err := firstErr(noKwargs("len", kw), argc("len", args, 1, 1)); err != nil {
		return nil, err
	}
	s, ok := args[0].(object.Sized)
	if !ok {
		return nil, object.Errorf(object.TypeErrorKind, "object of type '%s' has no len()", args[0].Type())
	}
	return object.Int(s.Len()), nil
}

func builtinAbs(args []object.Value, kw object.Kwargs) (object.Value, error) {
	if err := firstErr(noKwargs("abs", kw), argc("abs", args, 1, 1)); err != nil {
		return nil, err
	}
	if i, ok := asInt(args[0]); ok {
		return object.Int(abs64(i)), nil
	}
	if f, ok := args[0].(object.Float); ok {
		return object.Float(math.Abs(float64(f))), nil
	}
	return nil, object.Errorf(object.TypeErrorKind, "bad operand type for abs(): '%s'", args[0].Type())
}

func builtinRange(args []object.Value, kw object.Kwargs) (object.Value, error) {
	if err := firstErr(noKwargs("range", kw), argc("range", args, 1, 3)); err != nil {
		return nil, err
	}
	nums := make([]int64, len(args))
	for i, a := range args {
		n, ok := asInt(a)
		if !ok {
			return nil, object.Errorf(object.TypeErrorKind, "'%s' object cannot be interpreted as an integer", a.Type())
		}
		nums[i] = n
	}
	r := &object.Range{Step: 1}
	switch len(nums) {
	case 1:
		r.Stop = nums[0]
	case 2:
		r.Start, r.Stop = nums[0], nums[1]
	case 3:
		r.Start, r.Stop, r.Step = nums[0], nums[1], nums[2]
	}
	if r.Step == 0 {
		return nil, object.Errorf(object.ValueErrorKind, "range() arg 3 must not be zero")
	}
	return r, nil
}

func builtinSum(args []object.Value, kw object.Kwargs) (object.Value, error) {
	if err := firstErr(kw.Only("sum", "start"), argc("sum", args, 1, 2)); err != nil {
		return nil, err
	}
	var acc object.Value = object.Int(0)
	if len(args) == 2 {
		acc = args[1]
	}
	if v, ok := kw.Get("start"); ok {
		acc = v
	}
	if _, ok := acc.(object.Str); ok {
		return nil, object.Errorf(object.TypeErrorKind, "sum() can't sum strings [use ''.join(seq) instead]")
	}
	elems, err := object.Elements(args[0])
	if err != nil {
		return nil, err
	}
	for _, e := range elems {
		if acc, err = binaryOp("+", acc, e); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// keyed pairs each element with its sort key.
type keyed struct {
	key, val object.Value
}

func withKeys(elems []object.Value, key object.Value) ([]keyed, error) {
	out := make([]keyed, len(elems))
	for i, e := range elems {
		out[i] = keyed{key: e, val: e}
		if key != nil && key != object.None {
			k, err := Call(key, []object.Value{e}, nil)
			if err != nil {
				return nil, err
			}
			out[i].key = k
		}
	}
	return out, nil
}

func minMax(name string, want int) builtinFunc {
	return func(args []object.Value, kw object.Kwargs) (object.Value, error) {
		if err := firstErr(kw.Only(name, "key", "default"), argc(name, args, 1, -1)); err != nil {
			return nil, err
		}
		elems := args
		if len(args) == 1 {
			var err error
			if elems, err = object.Elements(args[0]); err != nil {
				return nil, err
			}
		}
		if len(elems) == 0 {
			if d, ok := kw.Get("default"); ok {
				return d, nil
			}
			return nil, object.Errorf(object.ValueErrorKind, "%s() arg is an empty sequence", name)
		}
		key, _ := kw.Get("key")
		items, err := withKeys(elems, key)
		if err != nil {
			return nil, err
		}
		best := items[0]
		for _, it := range items[1:] {
			c, err := object.Compare(it.key, best.key)
			if err != nil {
				return nil, err
			}
			if c == want {
				best = it
			}
		}
		return best.val, nil
	}
}

func builtinSorted(args []object.Value, kw object.Kwargs) (object.Value, error) {
	if err := firstErr(kw.Only("sorted", "key", "reverse"), argc("sorted", args, 1, 1)); err != nil {
		return nil, err
	}
	elems, err := object.Elements(args[0])
	if err != nil {
		return nil, err
	}
	key, _ := kw.Get("key")
	items, err := withKeys(elems, key)
	if err != nil {
		return nil, err
	}
	reverse := false
	if r, ok := kw.Get("reverse"); ok {
		reverse = object.Truth(r)
	}
	var cmpErr error
	slices.SortStableFunc(items, func(a, b keyed) int {
		c, err := object.Compare(a.key, b.key)
		if err != nil && cmpErr == nil {
			cmpErr = err
		}
		if reverse {
			return -c
		}
		return c
	})
	if cmpErr != nil {
		return nil, cmpErr
	}
	out := make([]object.Value, len(items))
	for i, it := range items {
		out[i] = it.val
	}
	return object.NewList(out...), nil
}

func builtinReversed(args []object.Value, kw object.Kwargs) (object.Value, error) {
	if err := firstErr(noKwargs("reversed", kw), argc("reversed", args, 1, 1)); err != nil {
		return nil, err
	}
	elems, err := object.Elements(args[0])
	if err != nil {
		return nil, err
	}
	slices.Reverse(elems)
	return object.NewList(elems...), nil
}

func builtinEnumerate(args []object.Value, kw object.Kwargs) (object.Value, error) {
	if err := firstErr(kw.Only("enumerate", "start"), argc("enumerate", args, 1, 2)); err != nil {
		return nil, err
	}
	start := int64(0)
	startArg, ok := kw.Get("start")
	if len(args) == 2 {
		startArg, ok = args[1], true
	}
	if ok {
		n, isInt := asInt(startArg)
		if !isInt {
			return nil, object.Errorf(object.TypeErrorKind, "'%s' object cannot be interpreted as an integer", startArg.Type())
		}
		start = n
	}
	elems, err := object.Elements(args[0])
	if err != nil {
		return nil, err
	}
	out := make([]object.Value, len(elems))
	for i, e := range elems {
		out[i] = object.Tuple{object.Int(start + int64(i)), e}
	}
	return object.NewList(out...), nil
}

func builtinZip(args []object.Value, kw object.Kwargs) (object.Value, error) {
	if err := noKwargs("zip", kw); err != nil {
		return nil, err
	}
	cols := make([][]object.Value, len(args))
	n := -1
	for i, a := range args {
		elems, err := object.Elements(a)
		if err != nil {
			return nil, err
		}
		cols[i] = elems
		if n < 0 || len(elems) < n {
			n = len(elems)
		}
	}
	out := make([]object.Value, 0, max(n, 0))
	for i := 0; i < n; i++ {
		row := make(object.Tuple, len(cols))
		for j := range cols {
			row[j] = cols[j][i]
		}
		out = append(out, row)
	}
	return object.NewList(out...), nil
}

func builtinMap(args []object.Value, kw object.Kwargs) (object.Value, error) {
	if err := firstErr(noKwargs("map", kw), argc("map", args, 2, -1)); err != nil {
		return nil, err
	}
	zipped, err := builtinZip(args[1:], nil)
	if err != nil {
		return nil, err
	}
	rows := zipped.(*object.List).Elems
	out := make([]object.Value, len(rows))
	for i, row := range rows {
		v, err := Call(args[0], row.(object.Tuple), nil)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return object.NewList(out...), nil
}

func builtinFilter(args []object.Value, kw object.Kwargs) (object.Value, error) {
	if err := firstErr(noKwargs("filter", kw), argc("filter", args, 2, 2)); err != nil {
		return nil, err
	}
	elems, err := object.Elements(args[1])
	if err != nil {
		return nil, err
	}
	var out []object.Value
	for _, e := range elems {
		keep := e
		if args[0] != object.None {
			if keep, err = Call(args[0], []object.Value{e}, nil); err != nil {
				return nil, err
			}
		}
		if object.Truth(keep) {
			out = append(out, e)
		}
	}
	return object.NewList(out...), nil
}

func anyAll(name string, isAny bool) builtinFunc {
	return func(args []object.Value, kw object.Kwargs) (object.Value, error) {
		if err := firstErr(noKwargs(name, kw), argc(name, args, 1, 1)); err != nil {
			return nil, err
		}
		elems, err := object.Elements(args[0])
		if err != nil {
			return nil, err
		}
		for _, e := range elems {
			if object.Truth(e) == isAny {
				return object.Bool(isAny), nil
			}
		}
		return object.Bool(!isAny), nil
	}
}

func builtinRound(args []object.Value, kw object.Kwargs) (object.Value, error) {
	if err := firstErr(noKwargs("round", kw), argc("round", args, 1, 2)); err != nil {
		return nil, err
	}
	f, ok := asFloat(args[0])
	if !ok {
		return nil, object.Errorf(object.TypeErrorKind, "type %s doesn't define __round__ method", args[0].Type())
	}
	if len(args) == 1 || args[1] == object.None {
		return object.Int(int64(math.RoundToEven(f))), nil
	}
	nd, ok := asInt(args[1])
	if !ok {
		return nil, object.Errorf(object.TypeErrorKind, "'%s' object cannot be interpreted as an integer", args[1].Type())
	}
	if i, isInt := args[0].(object.Int); isInt && nd >= 0 {
		return i, nil
	}
	p := math.Pow(10, float64(nd))
	return object.Float(math.RoundToEven(f*p) / p), nil
}

func builtinInt(args []object.Value, kw object.Kwargs) (object.Value, error) {
	if err := firstErr(kw.Only("int", "base"), argc("int", args, 0, 2)); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return object.Int(0), nil
	}
	base := int64(10)
	baseArg, hasBase := kw.Get("base")
	if len(args) == 2 {
		baseArg, hasBase = args[1], true
	}
	if hasBase {
		b, ok := asInt(baseArg)
		if !ok {
			return nil, object.Errorf(object.TypeErrorKind, "'%s' object cannot be interpreted as an integer", baseArg.Type())
		}
		base = b
	}
	switch v := args[0].(type) {
	case object.Int:
		return v, nil
	case object.Bool:
		n, _ := asInt(v)
		return object.Int(n), nil
	case object.Float:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, object.Errorf(object.ValueErrorKind, "cannot convert float %s to integer", v.String())
		}
		return object.Int(int64(v)), nil
	case object.Str:
		s := strings.ReplaceAll(strings.TrimSpace(string(v)), "_", "")
		n, err := strconv.ParseInt(s, int(base), 64)
		if err != nil {
			return nil, object.Errorf(object.ValueErrorKind, "invalid literal for int() with base %d: %s", base, v.String())
		}
		return object.Int(n), nil
	}
	return nil, object.Errorf(object.TypeErrorKind, "int() argument must be a string or a number, not '%s'", args[0].Type())
}

func builtinFloat(args []object.Value, kw object.Kwargs) (object.Value, error) {
	if err := firstErr(noKwargs("float", kw), argc("float", args, 0, 1)); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return object.Float(0), nil
	}
	if f, ok := asFloat(args[0]); ok {
		return object.Float(f), nil
	}
	if s, ok := args[0].(object.Str); ok {
		text := strings.ToLower(strings.TrimSpace(string(s)))
		switch text {
		case "inf", "+inf", "infinity":
			return object.Float(math.Inf(1)), nil
		case "-inf", "-infinity":
			return object.Float(math.Inf(-1)), nil
		case "nan":
			return object.Float(math.NaN()), nil
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
		if err != nil {
			return nil, object.Errorf(object.ValueErrorKind, "could not convert string to float: %s", s.String())
		}
		return object.Float(f), nil
	}
	return nil, object.Errorf(object.TypeErrorKind, "float() argument must be a string or a number, not '%s'", args[0].Type())
}

func builtinDict(args []object.Value, kw object.Kwargs) (object.Value, error) {
	if err := argc("dict", args, 0, 1); err != nil {
		return nil, err
	}
	d := object.NewDict()
	if len(args) == 1 {
		if src, ok := args[0].(*object.Dict); ok {
			for k, v := range src.Items() {
				_ = d.Set(k, v)
			}
		} else {
			pairs, err := object.Elements(args[0])
			if err != nil {
				return nil, err
			}
			for i, p := range pairs {
				kv, err := object.Elements(p)
				if err != nil || len(kv) != 2 {
					return nil, object.Errorf(object.ValueErrorKind, "dictionary update sequence element #%d has wrong length", i)
				}
				if err := d.Set(kv[0], kv[1]); err != nil {
					return nil, err
				}
			}
		}
	}
	for _, k := range kw {
		_ = d.Set(object.Str(k.Name), k.Value)
	}
	return d, nil
}
