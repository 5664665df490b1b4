// Package binder selects and distributes keyword arguments for callables
// whose parameters are described by an explicit declared signature. It is
// the glue that lets a task hand an arbitrary user callable exactly the
// subset of its execution context the callable asked for.
package binder

import "fmt"

// Kind classifies a declared parameter.
type Kind uint8

const (
	// Positional parameters accept a value by position or by name.
	Positional Kind = iota
	// KeywordOnly parameters accept a value by name only.
	KeywordOnly
	// VarArgs captures all positional arguments beyond the declared ones.
	VarArgs
	// VarKwargs captures all keyword arguments not matching a declared name.
	VarKwargs
)

// String returns the descriptor keyword for a parameter kind.
func (k Kind) String() string {
	switch k {
	case Positional:
		return "positional"
	case KeywordOnly:
		return "keyword-only"
	case VarArgs:
		return "varargs"
	case VarKwargs:
		return "varkwargs"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Param describes one declared parameter of a callable.
type Param struct {
	Name       string
	Kind       Kind
	Default    any
	HasDefault bool
}

// Signature is the ordered list of a callable's declared parameters. It is
// treated as immutable once a Callable has been built from it.
type Signature []Param

// validate checks descriptor ordering and name uniqueness. The accepted
// shape is: positional parameters, at most one varargs, keyword-only
// parameters, at most one varkwargs, in that order.
func (s Signature) validate() error {
	seen := make(map[string]struct{}, len(s))
	var sawVarArgs, sawKeywordOnly, sawVarKwargs bool
	for i, p := range s {
		if p.Name == "" {
			return fmt.Errorf("parameter at position %d has no name", i)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("duplicate parameter name %q", p.Name)
		}
		seen[p.Name] = struct{}{}

		switch p.Kind {
		case Positional:
			if sawVarArgs || sawKeywordOnly || sawVarKwargs {
				return fmt.Errorf("positional parameter %q declared after a non-positional parameter", p.Name)
			}
		case VarArgs:
			if sawVarArgs || sawKeywordOnly || sawVarKwargs {
				return fmt.Errorf("varargs parameter %q must directly follow the positional parameters", p.Name)
			}
			sawVarArgs = true
		case KeywordOnly:
			if sawVarKwargs {
				return fmt.Errorf("keyword-only parameter %q declared after a varkwargs parameter", p.Name)
			}
			sawKeywordOnly = true
		case VarKwargs:
			if sawVarKwargs {
				return fmt.Errorf("more than one varkwargs parameter (%q)", p.Name)
			}
			sawVarKwargs = true
		default:
			return fmt.Errorf("parameter %q has unknown kind %s", p.Name, p.Kind)
		}

		if p.HasDefault && (p.Kind == VarArgs || p.Kind == VarKwargs) {
			return fmt.Errorf("%s parameter %q cannot carry a default value", p.Kind, p.Name)
		}
	}
	return nil
}

// hasVarKwargs reports whether the signature declares a keyword catch-all.
func (s Signature) hasVarKwargs() bool {
	for _, p := range s {
		if p.Kind == VarKwargs {
			return true
		}
	}
	return false
}

// positionalNames returns the names of positional parameters, in order.
func (s Signature) positionalNames() []string {
	var names []string
	for _, p := range s {
		if p.Kind == Positional {
			names = append(names, p.Name)
		}
	}
	return names
}

// DetermineKwargs returns the subset of pool that the remaining parameters
// of the signature would accept, given that the first len(args) positional
// parameters are already satisfied positionally.
//
// A pool key naming a positionally-satisfied parameter is a *ConflictError.
// A signature with a varkwargs parameter accepts the entire pool; otherwise
// only entries matching a declared named parameter survive, and everything
// else is silently dropped.
func (s Signature) DetermineKwargs(args []any, pool map[string]any) (map[string]any, error) {
	positional := s.positionalNames()
	consumed := len(args)
	if consumed > len(positional) {
		consumed = len(positional)
	}
	for _, name := range positional[:consumed] {
		if _, clash := pool[name]; clash {
			return nil, &ConflictError{Param: name}
		}
	}

	kwargs := make(map[string]any)
	if s.hasVarKwargs() {
		for key, value := range pool {
			kwargs[key] = value
		}
		return kwargs, nil
	}
	for _, p := range s {
		if p.Kind == VarArgs || p.Kind == VarKwargs {
			continue
		}
		if value, ok := pool[p.Name]; ok {
			kwargs[p.Name] = value
		}
	}
	return kwargs, nil
}
