package script

import (
	"fmt"
	"reflect"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/artie-owlet/chifir"
)

// Step is one chain operation. In YAML it is either a bare name
// ("exist", "context") or a single-key map from name to argument.
type Step struct {
	Op     string
	Arg    any
	HasArg bool
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		s.Op = node.Value
		return nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: step must have exactly one key", node.Line)
		}
		var arg any
		if err := node.Content[1].Decode(&arg); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		s.Op = node.Content[0].Value
		s.Arg = arg
		s.HasArg = true
		return nil
	default:
		return fmt.Errorf("line %d: step must be a name or a single-key map", node.Line)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (s Step) MarshalYAML() (any, error) {
	if !s.HasArg {
		return s.Op, nil
	}
	return map[string]any{s.Op: s.Arg}, nil
}

// String renders the step the way it is written in a script.
func (s Step) String() string {
	if !s.HasArg {
		return s.Op
	}
	return fmt.Sprintf("%s: %v", s.Op, s.Arg)
}

// chain is the surface shared by chifir.Chain and *chifir.AsyncChain that
// scripts can drive.
type chain[C any] interface {
	Exist() C
	Eq(expected any) C
	Ne(cmpValue any) C
	Lt(n any) C
	Gt(n any) C
	Le(n any) C
	Ge(n any) C
	Match(re *regexp.Regexp) C
	Prop(key any) C
	Context() C
	TypeOf(kind reflect.Kind) C
}

type (
	syncChain  = chifir.Chain
	asyncChain = *chifir.AsyncChain
)

// kinds maps script type names to reflect kinds; nil is reflect.Invalid.
var kinds = func() map[string]reflect.Kind {
	m := map[string]reflect.Kind{"nil": reflect.Invalid}
	for k := reflect.Bool; k <= reflect.UnsafePointer; k++ {
		m[k.String()] = k
	}
	return m
}()

// compile turns steps into chain operations, validating names and arguments.
func compile[C chain[C]](steps []Step) ([]func(C) C, error) {
	ops := make([]func(C) C, 0, len(steps))
	for i, st := range steps {
		op, err := bind[C](st)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, st.Op, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func bind[C chain[C]](st Step) (func(C) C, error) {
	needArg := func() error {
		if !st.HasArg {
			return fmt.Errorf("missing argument")
		}
		return nil
	}
	noArg := func() error {
		if st.HasArg {
			return fmt.Errorf("takes no argument")
		}
		return nil
	}

	switch st.Op {
	case "exist":
		return func(c C) C { return c.Exist() }, noArg()
	case "context":
		return func(c C) C { return c.Context() }, noArg()
	case "eq":
		return func(c C) C { return c.Eq(st.Arg) }, needArg()
	case "ne":
		return func(c C) C { return c.Ne(st.Arg) }, needArg()
	case "lt":
		return func(c C) C { return c.Lt(st.Arg) }, needArg()
	case "gt":
		return func(c C) C { return c.Gt(st.Arg) }, needArg()
	case "le":
		return func(c C) C { return c.Le(st.Arg) }, needArg()
	case "ge":
		return func(c C) C { return c.Ge(st.Arg) }, needArg()
	case "prop":
		if err := needArg(); err != nil {
			return nil, err
		}
		switch st.Arg.(type) {
		case string, int:
		default:
			return nil, fmt.Errorf("property key must be a string or an int, got %T", st.Arg)
		}
		return func(c C) C { return c.Prop(st.Arg) }, nil
	case "match":
		pattern, ok := st.Arg.(string)
		if !ok {
			return nil, fmt.Errorf("pattern must be a string")
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		return func(c C) C { return c.Match(re) }, nil
	case "typeOf":
		name, ok := st.Arg.(string)
		if !ok {
			return nil, fmt.Errorf("type name must be a string")
		}
		kind, known := kinds[name]
		if !known {
			return nil, fmt.Errorf("unknown type %q", name)
		}
		return func(c C) C { return c.TypeOf(kind) }, nil
	default:
		return nil, fmt.Errorf("unknown step")
	}
}
