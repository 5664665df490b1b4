package settings

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/taskflowgo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// fileRoot decodes the top-level blocks of a settings file.
type fileRoot struct {
	ContextVars *contextVarsBlock `hcl:"context_vars,block"`
	Remain      hcl.Body          `hcl:",remain"`
}

// contextVarsBlock captures the attributes of a `context_vars` block. The
// attribute set is open-ended, so the body is decoded manually.
type contextVarsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// Load parses an HCL settings file. Attribute values inside the
// `context_vars` block are converted to native Go values; non-string values
// (lists, numbers) flow through untouched so that the flattener's type
// validation rejects them with its own error.
func Load(ctx context.Context, path string) (*Settings, error) {
	logger := ctxlog.FromContext(ctx)

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode settings file %s: %w", path, diags)
	}

	vars := make(map[any]any)
	if root.ContextVars != nil {
		attrs, diags := root.ContextVars.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("invalid context_vars block in %s: %w", path, diags)
		}
		for name, attr := range attrs {
			val, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("failed to evaluate context var %q: %w", name, diags)
			}
			native, err := ctyToNative(val)
			if err != nil {
				return nil, fmt.Errorf("context var %q: %w", name, err)
			}
			vars[name] = native
		}
	}

	logger.Debug("Settings loaded.", "path", path, "context_vars", len(vars))
	return &Settings{contextVars: vars}, nil
}

// ctyToNative converts a cty.Value into its native Go representation.
func ctyToNative(val cty.Value) (any, error) {
	if !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	if val.Type().IsPrimitiveType() {
		switch val.Type() {
		case cty.String:
			return val.AsString(), nil
		case cty.Number:
			f, _ := val.AsBigFloat().Float64()
			return f, nil
		case cty.Bool:
			return val.True(), nil
		default:
			return nil, fmt.Errorf("unsupported primitive type: %s", val.Type().FriendlyName())
		}
	}
	if val.Type().IsObjectType() || val.Type().IsMapType() {
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			native, err := ctyToNative(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = native
		}
		return out, nil
	}
	if val.Type().IsTupleType() || val.Type().IsListType() || val.Type().IsSetType() {
		var out []any
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			native, err := ctyToNative(v)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported cty.Type for conversion: %s", val.Type().FriendlyName())
}
