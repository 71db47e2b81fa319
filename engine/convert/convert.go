// Package convert implements the per-file conversion operations between
// YAML, JSON and property list documents.
package convert

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/compozy/plistyaml/engine/codec"
	"github.com/compozy/plistyaml/engine/codec/jsoncodec"
	"github.com/compozy/plistyaml/engine/codec/plistcodec"
	"github.com/compozy/plistyaml/engine/codec/yamlcodec"
	"github.com/compozy/plistyaml/engine/normalize"
	"github.com/compozy/plistyaml/engine/recipe"
	"github.com/compozy/plistyaml/engine/textfmt"
	"github.com/compozy/plistyaml/pkg/config"
	"github.com/compozy/plistyaml/pkg/logger"
	"github.com/spf13/afero"
)

// Options controls how recipe documents are recognized.
type Options struct {
	// RecipePlistSuffixes mark property list inputs that are recipes.
	RecipePlistSuffixes []string
	// RecipeYAMLSuffix marks YAML inputs that are recipes.
	RecipeYAMLSuffix string
}

func DefaultOptions() Options {
	return Options{
		RecipePlistSuffixes: []string{".recipe", ".recipe.plist"},
		RecipeYAMLSuffix:    ".recipe.yaml",
	}
}

// Converter runs conversions against a filesystem. It holds no per-call
// state and is safe for concurrent use when its codecs are.
type Converter struct {
	fs     afero.Fs
	codecs *codec.Set
	opts   Options
}

// New creates a converter. A nil fs uses the OS filesystem and a nil set
// uses the default codecs.
func New(fs afero.Fs, codecs *codec.Set, opts Options) *Converter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if codecs == nil {
		codecs = DefaultCodecs()
	}
	if len(opts.RecipePlistSuffixes) == 0 {
		opts.RecipePlistSuffixes = DefaultOptions().RecipePlistSuffixes
	}
	if opts.RecipeYAMLSuffix == "" {
		opts.RecipeYAMLSuffix = DefaultOptions().RecipeYAMLSuffix
	}
	return &Converter{fs: fs, codecs: codecs, opts: opts}
}

// Fs returns the filesystem conversions read from and write to.
func (c *Converter) Fs() afero.Fs { return c.fs }

// NewFromConfig wires codecs and recipe suffixes from configuration.
func NewFromConfig(cfg *config.Config, fs afero.Fs) *Converter {
	codecs := codec.NewSet(
		yamlcodec.New(yamlcodec.Options{Indent: cfg.YAML.Indent}),
		jsoncodec.New(jsoncodec.Options{Indent: cfg.JSON.Indent, Width: cfg.JSON.Width}),
		plistcodec.New(plistcodec.Options{
			Format:   plistcodec.OutputFormat(cfg.Plist.Format),
			SortKeys: cfg.Plist.SortKeys,
		}),
	)
	return New(fs, codecs, Options{
		RecipePlistSuffixes: cfg.Recipe.PlistSuffixes,
		RecipeYAMLSuffix:    cfg.Recipe.YAMLSuffix,
	})
}

// DefaultCodecs returns one codec per format with default writer settings.
func DefaultCodecs() *codec.Set {
	return codec.NewSet(
		yamlcodec.Default(),
		jsoncodec.New(jsoncodec.DefaultOptions()),
		plistcodec.New(plistcodec.DefaultOptions()),
	)
}

// Request describes one conversion.
type Request struct {
	Operation Operation
	Input     string
	Output    string
	From      codec.Format
	To        codec.Format
	// Recipe canonicalizes key order and, for YAML output, applies the
	// readability formatter.
	Recipe bool
}

// Convert reads, transforms and writes one document. Caught conditions are
// returned as a failed report; only malformed source text is an error.
func (c *Converter) Convert(ctx context.Context, req Request) (*Report, error) {
	log := logger.FromContext(ctx).With("input", req.Input, "output", req.Output)
	if req.Operation == "" {
		req.Operation = OpConvert
	}
	if req.Input == "" || req.Output == "" {
		return failed(req.Operation, req.Input, req.Output,
			fmt.Errorf("%w: input and output paths are required", ErrUsage)), nil
	}
	from, err := c.codecs.Get(req.From)
	if err != nil {
		return failed(req.Operation, req.Input, req.Output, fmt.Errorf("%w: %v", ErrUsage, err)), nil
	}
	to, err := c.codecs.Get(req.To)
	if err != nil {
		return failed(req.Operation, req.Input, req.Output, fmt.Errorf("%w: %v", ErrUsage, err)), nil
	}

	data, err := afero.ReadFile(c.fs, req.Input)
	if err != nil {
		log.Debug("failed to read input", "error", err)
		return failed(req.Operation, req.Input, req.Output, fmt.Errorf("%w: %v", ErrInputNotFound, err)), nil
	}
	doc, err := from.Decode(data)
	if err != nil {
		if errors.Is(err, codec.ErrDuplicateKey) {
			log.Debug("duplicate key in input", "error", err)
			return failed(req.Operation, req.Input, req.Output, err), nil
		}
		if errors.Is(err, codec.ErrUnsupportedValue) {
			log.Debug("unsupported value in input", "error", err)
			return failed(req.Operation, req.Input, req.Output, err), nil
		}
		return nil, fmt.Errorf("failed to parse %s: %w", req.Input, err)
	}

	doc = normalize.Normalize(doc, target(req.To))
	if req.To == codec.FormatPlist {
		doc = normalize.PruneNulls(doc)
	}
	if req.Recipe {
		doc = recipe.Canonicalize(doc)
	}
	out, err := to.Encode(doc)
	if err != nil {
		if errors.Is(err, codec.ErrUnsupportedValue) {
			log.Debug("unsupported value in document", "error", err)
			return failed(req.Operation, req.Input, req.Output, err), nil
		}
		return nil, fmt.Errorf("failed to encode %s: %w", req.Output, err)
	}
	if req.Recipe && req.To == codec.FormatYAML {
		out = []byte(textfmt.Format(string(out)))
	}

	if err := writeAtomic(c.fs, req.Output, out); err != nil {
		log.Debug("failed to write output", "error", err)
		return failed(req.Operation, req.Input, req.Output, fmt.Errorf("%w: %v", ErrOutputUnwritable, err)), nil
	}
	log.Debug("document written", "from", req.From, "to", req.To, "recipe", req.Recipe, "bytes", len(out))
	return written(req.Operation, req.Input, req.Output, req.Recipe), nil
}

// IsRecipePlist reports whether path names a property list recipe.
func (c *Converter) IsRecipePlist(path string) bool {
	for _, suffix := range c.opts.RecipePlistSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// IsRecipeYAML reports whether path names a YAML recipe.
func (c *Converter) IsRecipeYAML(path string) bool {
	return strings.HasSuffix(path, c.opts.RecipeYAMLSuffix)
}

func target(f codec.Format) normalize.Target {
	switch f {
	case codec.FormatJSON:
		return normalize.TargetJSON
	case codec.FormatPlist:
		return normalize.TargetPlist
	default:
		return normalize.TargetYAML
	}
}
