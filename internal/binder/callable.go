package binder

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"github.com/vk/taskflowgo/internal/ctxlog"
)

var (
	anySliceType = reflect.TypeOf([]any(nil))
	kwargsType   = reflect.TypeOf(map[string]any(nil))
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
)

// Callable pairs a declared signature with the Go function it describes.
// The function's parameters align one-to-one with the signature, in order:
// named parameters take any type assignable from their bound values, a
// varargs parameter is []any and a varkwargs parameter is map[string]any.
// The function returns a result and an error.
type Callable struct {
	name string
	sig  Signature
	fn   reflect.Value
}

// New builds a Callable after validating the signature descriptor and its
// shape agreement with the reflected function type.
func New(name string, sig Signature, fn any) (*Callable, error) {
	if err := sig.validate(); err != nil {
		return nil, fmt.Errorf("callable %q: %w", name, err)
	}

	fnValue := reflect.ValueOf(fn)
	if !fnValue.IsValid() || fnValue.Kind() != reflect.Func {
		return nil, fmt.Errorf("callable %q: fn must be a function, got %T", name, fn)
	}
	fnType := fnValue.Type()
	if fnType.IsVariadic() {
		return nil, fmt.Errorf("callable %q: fn must not be variadic; declare a varargs parameter instead", name)
	}
	if fnType.NumIn() != len(sig) {
		return nil, fmt.Errorf("callable %q: fn takes %d parameters, signature declares %d", name, fnType.NumIn(), len(sig))
	}
	for i, p := range sig {
		switch p.Kind {
		case VarArgs:
			if fnType.In(i) != anySliceType {
				return nil, fmt.Errorf("callable %q: varargs parameter %q must be []any, got %s", name, p.Name, fnType.In(i))
			}
		case VarKwargs:
			if fnType.In(i) != kwargsType {
				return nil, fmt.Errorf("callable %q: varkwargs parameter %q must be map[string]any, got %s", name, p.Name, fnType.In(i))
			}
		}
	}
	if fnType.NumOut() != 2 || !fnType.Out(1).Implements(errorType) {
		return nil, fmt.Errorf("callable %q: fn must return (result, error)", name)
	}

	return &Callable{name: name, sig: sig, fn: fnValue}, nil
}

// MustNew is New that panics on error, for package-level registrations.
func MustNew(name string, sig Signature, fn any) *Callable {
	c, err := New(name, sig, fn)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the callable's registered name.
func (c *Callable) Name() string { return c.name }

// DetermineKwargs resolves the keyword subset of pool for this callable.
// See Signature.DetermineKwargs.
func (c *Callable) DetermineKwargs(args []any, pool map[string]any) (map[string]any, error) {
	return c.sig.DetermineKwargs(args, pool)
}

// Invoke distributes args and kwargs across the declared parameters and
// calls the underlying function: positional parameters are filled
// left-to-right from args, overflow goes to the varargs parameter, named
// parameters not covered positionally are filled from kwargs or their
// defaults (an explicit kwarg overrides a default), and leftover kwargs go
// to the varkwargs parameter. Arguments that cannot be placed fail the call.
func (c *Callable) Invoke(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
	logger := ctxlog.With(ctx, "callable", c.name)

	remaining := make(map[string]any, len(kwargs))
	for key, value := range kwargs {
		remaining[key] = value
	}

	fnType := c.fn.Type()
	in := make([]reflect.Value, 0, len(c.sig))
	argIdx := 0
	captured := false

	for i, p := range c.sig {
		paramType := fnType.In(i)
		switch p.Kind {
		case Positional, KeywordOnly:
			var value any
			switch {
			case p.Kind == Positional && argIdx < len(args):
				value = args[argIdx]
				argIdx++
			default:
				if v, ok := remaining[p.Name]; ok {
					value = v
					delete(remaining, p.Name)
				} else if p.HasDefault {
					value = p.Default
				} else {
					return nil, fmt.Errorf("callable %q: missing required argument %q", c.name, p.Name)
				}
			}
			rv, err := conform(value, paramType)
			if err != nil {
				return nil, fmt.Errorf("callable %q: argument %q: %w", c.name, p.Name, err)
			}
			in = append(in, rv)

		case VarArgs:
			extra := make([]any, len(args)-argIdx)
			copy(extra, args[argIdx:])
			argIdx = len(args)
			in = append(in, reflect.ValueOf(extra))

		case VarKwargs:
			in = append(in, reflect.ValueOf(remaining))
			captured = true
		}
	}

	if argIdx < len(args) {
		return nil, fmt.Errorf("callable %q: takes %d positional arguments but %d were given", c.name, argIdx, len(args))
	}
	if !captured && len(remaining) > 0 {
		names := make([]string, 0, len(remaining))
		for name := range remaining {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("callable %q: unexpected keyword argument %q", c.name, names[0])
	}

	logger.Debug("Invoking callable.", "positional", len(args), "keywords", len(kwargs))
	results := c.fn.Call(in)
	if errResult := results[1].Interface(); errResult != nil {
		return nil, errResult.(error)
	}
	return results[0].Interface(), nil
}

// KwargsFunc is a callable pre-bound to keyword resolution: it selects the
// acceptable subset of the keyword pool before every invocation.
type KwargsFunc func(ctx context.Context, args []any, pool map[string]any) (any, error)

// MakeKwargsCallable wraps a callable so that each invocation first resolves
// the keyword pool through DetermineKwargs, then invokes the function with
// the supplied positional arguments plus the computed keywords. A pool key
// colliding with a positionally-bound parameter fails with *ConflictError.
func MakeKwargsCallable(c *Callable) KwargsFunc {
	return func(ctx context.Context, args []any, pool map[string]any) (any, error) {
		kwargs, err := c.sig.DetermineKwargs(args, pool)
		if err != nil {
			return nil, err
		}
		return c.Invoke(ctx, args, kwargs)
	}
}

// conform converts a bound value into a reflect.Value assignable to the
// function's parameter type. Nil values become the parameter's zero value.
func conform(value any, paramType reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(paramType), nil
	}
	rv := reflect.ValueOf(value)
	if !rv.Type().AssignableTo(paramType) {
		return reflect.Value{}, fmt.Errorf("value of type %T is not assignable to %s", value, paramType)
	}
	return rv, nil
}
