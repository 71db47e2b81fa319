package convert

import (
	"context"
	"fmt"
	"strings"

	"github.com/compozy/plistyaml/engine/codec"
)

// DeriveYAMLPlistOutput strips the trailing .yaml from in.
func DeriveYAMLPlistOutput(in string) (string, error) {
	return stripSuffix(in, ".yaml")
}

// DerivePlistYAMLOutput appends .yaml to in.
func DerivePlistYAMLOutput(in string) string {
	return in + ".yaml"
}

// DeriveJSONPlistOutput strips the trailing .json from in.
func DeriveJSONPlistOutput(in string) (string, error) {
	return stripSuffix(in, ".json")
}

func stripSuffix(in, suffix string) (string, error) {
	out, ok := strings.CutSuffix(in, suffix)
	if !ok || out == "" {
		return "", fmt.Errorf("%w: %s does not end in %s and no output path was given", ErrUsage, in, suffix)
	}
	return out, nil
}

// YAMLToPlist converts a YAML document to a property list. Without an
// output path the .yaml suffix is stripped from in.
func (c *Converter) YAMLToPlist(ctx context.Context, in, out string) (*Report, error) {
	if out == "" {
		derived, err := DeriveYAMLPlistOutput(in)
		if err != nil {
			return failed(OpYAMLToPlist, in, "", err), nil
		}
		out = derived
	}
	return c.Convert(ctx, Request{
		Operation: OpYAMLToPlist,
		Input:     in,
		Output:    out,
		From:      codec.FormatYAML,
		To:        codec.FormatPlist,
	})
}

// PlistToYAML converts a property list to YAML. Recipes are canonicalized
// and formatted. Without an output path .yaml is appended to in.
func (c *Converter) PlistToYAML(ctx context.Context, in, out string) (*Report, error) {
	if out == "" {
		out = DerivePlistYAMLOutput(in)
	}
	return c.Convert(ctx, Request{
		Operation: OpPlistToYAML,
		Input:     in,
		Output:    out,
		From:      codec.FormatPlist,
		To:        codec.FormatYAML,
		Recipe:    c.IsRecipePlist(in),
	})
}

// JSONToPlist converts a JSON document to a property list, dropping nulls.
// Without an output path the .json suffix is stripped from in.
func (c *Converter) JSONToPlist(ctx context.Context, in, out string) (*Report, error) {
	if out == "" {
		derived, err := DeriveJSONPlistOutput(in)
		if err != nil {
			return failed(OpJSONToPlist, in, "", err), nil
		}
		out = derived
	}
	return c.Convert(ctx, Request{
		Operation: OpJSONToPlist,
		Input:     in,
		Output:    out,
		From:      codec.FormatJSON,
		To:        codec.FormatPlist,
	})
}

// PlistToJSON converts a property list to JSON.
func (c *Converter) PlistToJSON(ctx context.Context, in, out string) (*Report, error) {
	if out == "" {
		out = in + ".json"
	}
	return c.Convert(ctx, Request{
		Operation: OpPlistToJSON,
		Input:     in,
		Output:    out,
		From:      codec.FormatPlist,
		To:        codec.FormatJSON,
	})
}

// JSONToYAML converts a JSON document to YAML.
func (c *Converter) JSONToYAML(ctx context.Context, in, out string) (*Report, error) {
	if out == "" {
		derived, err := stripSuffix(in, ".json")
		if err != nil {
			return failed(OpJSONToYAML, in, "", err), nil
		}
		out = derived + ".yaml"
	}
	return c.Convert(ctx, Request{
		Operation: OpJSONToYAML,
		Input:     in,
		Output:    out,
		From:      codec.FormatJSON,
		To:        codec.FormatYAML,
	})
}

// YAMLToJSON converts a YAML document to JSON.
func (c *Converter) YAMLToJSON(ctx context.Context, in, out string) (*Report, error) {
	if out == "" {
		derived, err := stripSuffix(in, ".yaml")
		if err != nil {
			return failed(OpYAMLToJSON, in, "", err), nil
		}
		out = derived + ".json"
	}
	return c.Convert(ctx, Request{
		Operation: OpYAMLToJSON,
		Input:     in,
		Output:    out,
		From:      codec.FormatYAML,
		To:        codec.FormatJSON,
	})
}

// TidyYAML rewrites a YAML file in place, or to out when given. Files that
// do not end in .yaml are skipped. Recipes are canonicalized and formatted;
// other files get a plain order-preserving round trip.
func (c *Converter) TidyYAML(ctx context.Context, in, out string) (*Report, error) {
	if !strings.HasSuffix(in, ".yaml") {
		return skipped(OpTidyYAML, in), nil
	}
	if out == "" {
		out = in
	}
	return c.Convert(ctx, Request{
		Operation: OpTidyYAML,
		Input:     in,
		Output:    out,
		From:      codec.FormatYAML,
		To:        codec.FormatYAML,
		Recipe:    c.IsRecipeYAML(in),
	})
}
