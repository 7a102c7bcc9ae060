// Package scenefile loads declarative HCL scene descriptions and applies
// them against a user context. Block bodies become cty object values passed
// verbatim as construction properties, so the loader needs no knowledge of
// any component's schema.
package scenefile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/lumengo/internal/vals"
	"github.com/zclconf/go-cty/cty"
)

// Kind discriminates scene directives.
type Kind int

// Directive kinds, in the order their blocks are applied.
const (
	KindAsset Kind = iota
	KindPrimitive
	KindBuild
	KindRender
)

// Directive is one scene-building step decoded from a block.
type Directive struct {
	Kind Kind
	Name string    // asset identifier (asset blocks only)
	Key  string    // implementation type key (asset, build, render)
	Prop cty.Value // block body as a property object
}

// fileSchema describes the top-level blocks of a scene file.
var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "asset", LabelNames: []string{"name", "key"}},
		{Type: "primitive"},
		{Type: "build", LabelNames: []string{"key"}},
		{Type: "render", LabelNames: []string{"key"}},
	},
}

// LoadPath loads a single .hcl file, or every .hcl file in a directory in
// lexical order, and returns the directives in file order.
func LoadPath(path string) ([]Directive, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("scene path: %w", err)
	}
	files := []string{path}
	if info.IsDir() {
		files = nil
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("scene dir: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".hcl") {
				files = append(files, filepath.Join(path, e.Name()))
			}
		}
		sort.Strings(files)
		if len(files) == 0 {
			return nil, fmt.Errorf("%w: no .hcl files under %s", vals.ErrInvalidArgument, path)
		}
	}

	parser := hclparse.NewParser()
	var out []Directive
	for _, f := range files {
		ds, err := parseFile(parser, f)
		if err != nil {
			return nil, err
		}
		out = append(out, ds...)
	}
	return out, nil
}

// Parse decodes scene directives from in-memory HCL source, used by tests
// and embedded callers.
func Parse(filename string, src []byte) ([]Directive, error) {
	return parseBytes(hclparse.NewParser(), filename, src)
}

func parseFile(parser *hclparse.Parser, filename string) ([]Directive, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("scene file: %w", err)
	}
	return parseBytes(parser, filename, src)
}

func parseBytes(parser *hclparse.Parser, filename string, src []byte) ([]Directive, error) {
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s", vals.ErrInvalidArgument, diags.Error())
	}
	content, diags := file.Body.Content(fileSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s", vals.ErrInvalidArgument, diags.Error())
	}

	var out []Directive
	for _, block := range content.Blocks {
		prop, err := blockProp(block)
		if err != nil {
			return nil, err
		}
		d := Directive{Prop: prop}
		switch block.Type {
		case "asset":
			d.Kind = KindAsset
			d.Name = block.Labels[0]
			d.Key = block.Labels[1]
		case "primitive":
			d.Kind = KindPrimitive
		case "build":
			d.Kind = KindBuild
			d.Key = block.Labels[0]
		case "render":
			d.Kind = KindRender
			d.Key = block.Labels[0]
		}
		out = append(out, d)
	}
	return out, nil
}

// blockProp evaluates a block body of literal attributes into a property
// object.
func blockProp(block *hcl.Block) (cty.Value, error) {
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("%w: %s", vals.ErrInvalidArgument, diags.Error())
	}
	m := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return cty.NilVal, fmt.Errorf("%w: attribute %q: %s", vals.ErrInvalidArgument, name, diags.Error())
		}
		m[name] = v
	}
	return vals.Object(m), nil
}
