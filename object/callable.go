package object

import (
	"maps"
	"slices"
	"strings"
)

// Kwarg is a single name=value call argument.
type Kwarg struct {
	Name  string
	Value Value
}

// Kwargs keeps keyword arguments in call order.
type Kwargs []Kwarg

// Get returns the value bound to name.
func (kw Kwargs) Get(name string) (Value, bool) {
	for _, k := range kw {
		if k.Name == name {
			return k.Value, true
		}
	}
	return nil, false
}

// Only returns a TypeError naming the first keyword not in allowed.
func (kw Kwargs) Only(fn string, allowed ...string) error {
	for _, k := range kw {
		if !slices.Contains(allowed, k.Name) {
			return Errorf(TypeErrorKind, "%s() got an unexpected keyword argument '%s'", fn, k.Name)
		}
	}
	return nil
}

// BuiltinFunc is the Go signature of host-callable functions.
type BuiltinFunc func(args []Value, kwargs Kwargs) (Value, error)

// Builtin is a named Go function exposed to host code.
type Builtin struct {
	Name string
	Fn   BuiltinFunc
}

// NewBuiltin wraps fn under name.
func NewBuiltin(name string, fn BuiltinFunc) *Builtin { return &Builtin{Name: name, Fn: fn} }

func (b *Builtin) Type() string   { return "builtin_function_or_method" }
func (b *Builtin) String() string { return "<built-in function " + b.Name + ">" }

func (b *Builtin) Call(args []Value, kwargs Kwargs) (Value, error) { return b.Fn(args, kwargs) }

// MethodFunc implements a method with an explicit receiver.
type MethodFunc func(self Value, args []Value, kwargs Kwargs) (Value, error)

// BoundMethod is a method attribute bound to its receiver.
type BoundMethod struct {
	Self Value
	Name string
	Fn   MethodFunc
}

func (m *BoundMethod) Type() string { return "builtin_function_or_method" }
func (m *BoundMethod) String() string {
	return "<built-in method " + m.Name + " of " + m.Self.Type() + " object>"
}

func (m *BoundMethod) Call(args []Value, kwargs Kwargs) (Value, error) {
	return m.Fn(m.Self, args, kwargs)
}

// Class is a builtin type object such as str or list. Calling it
// constructs a value; its attributes are the type's unbound methods, so
// str.upper(s) works like s.upper().
type Class struct {
	Name    string
	New     BuiltinFunc
	Methods map[string]MethodFunc
}

func (c *Class) Type() string   { return "type" }
func (c *Class) String() string { return "<class '" + c.Name + "'>" }

func (c *Class) Call(args []Value, kwargs Kwargs) (Value, error) { return c.New(args, kwargs) }

func (c *Class) Attr(name string) (Value, bool) {
	fn, ok := c.Methods[name]
	if !ok {
		return nil, false
	}
	qual := c.Name + "." + name
	return NewBuiltin(qual, func(args []Value, kwargs Kwargs) (Value, error) {
		if len(args) == 0 {
			return nil, Errorf(TypeErrorKind, "unbound method %s() needs an argument", qual)
		}
		if args[0].Type() != c.Name {
			return nil, Errorf(TypeErrorKind, "descriptor '%s' requires a '%s' object but received a '%s'", name, c.Name, args[0].Type())
		}
		return fn(args[0], args[1:], kwargs)
	}), true
}

// MethodsOf returns the method table for a builtin type name.
func MethodsOf(typeName string) map[string]MethodFunc {
	switch typeName {
	case "str":
		return strMethods
	case "list":
		return listMethods
	case "dict":
		return dictMethods
	}
	return nil
}

// Namespace is a plain attribute bag, built by namespace(**kw).
type Namespace struct {
	attrs map[string]Value
}

// NewNamespace returns a namespace holding attrs.
func NewNamespace(attrs map[string]Value) *Namespace {
	if attrs == nil {
		attrs = map[string]Value{}
	}
	return &Namespace{attrs: attrs}
}

func (n *Namespace) Type() string { return "namespace" }

func (n *Namespace) String() string {
	names := slices.Sorted(maps.Keys(n.attrs))
	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = k + "=" + n.attrs[k].String()
	}
	return "namespace(" + strings.Join(parts, ", ") + ")"
}

func (n *Namespace) Attr(name string) (Value, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

func (n *Namespace) SetAttr(name string, x Value) error {
	n.attrs[name] = x
	return nil
}

// Env maps names to values for one evaluation scope.
type Env map[string]Value

// Merge returns a new Env with the entries of each env layered left to
// right; later entries shadow earlier ones.
func Merge(envs ...Env) Env {
	out := Env{}
	for _, e := range envs {
		maps.Copy(out, e)
	}
	return out
}
