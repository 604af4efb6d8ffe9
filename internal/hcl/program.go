package hcl

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/specialistvlad/blockgridgo/internal/config"
	"github.com/specialistvlad/blockgridgo/internal/program"
)

// translateProgram walks the program body in source order. gohcl would group
// nested blocks by type, which loses the order that makes a program, so the
// command blocks are read straight from the syntax tree.
func (l *Loader) translateProgram(ctx context.Context, p *programBlock) (*config.Program, hcl.Diagnostics) {
	out := &config.Program{Name: p.Name}
	if p.Mode != nil {
		out.Mode = *p.Mode
	}

	body, ok := p.Body.(*hclsyntax.Body)
	if !ok {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unsupported program syntax",
			Detail:   "Program \"" + p.Name + "\" must be written in native HCL syntax.",
		}}
	}

	diags := rejectAttributes(body, "mode")
	blocks, more := l.translateBlocks(ctx, body.Blocks)
	diags = append(diags, more...)
	out.Blocks = blocks
	return out, diags
}

func (l *Loader) translateBlocks(ctx context.Context, blocks hclsyntax.Blocks) ([]config.Block, hcl.Diagnostics) {
	var out []config.Block
	var diags hcl.Diagnostics
	for _, b := range blocks {
		block, more := l.translateBlock(ctx, b)
		diags = append(diags, more...)
		if !more.HasErrors() {
			out = append(out, block)
		}
	}
	return out, diags
}

func (l *Loader) translateBlock(ctx context.Context, b *hclsyntax.Block) (config.Block, hcl.Diagnostics) {
	kind, err := program.ParseKind(b.Type)
	if err != nil {
		return config.Block{}, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unknown command block",
			Detail:   err.Error() + "; use forward, turn_left, turn_right, repeat or until.",
			Subject:  b.DefRange().Ptr(),
		}}
	}

	block := config.Block{Kind: kind}
	var diags hcl.Diagnostics

	switch kind {
	case program.Repeat:
		diags = append(diags, wantLabels(b, 0)...)
		diags = append(diags, rejectAttributes(b.Body, "count")...)
		if attr, ok := b.Body.Attributes["count"]; ok {
			if _, err := l.converter.DecodeExpr(ctx, attr.Expr, &block.Count); err != nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid repeat count",
					Detail:   err.Error(),
					Subject:  attr.Expr.Range().Ptr(),
				})
			}
		}
		children, more := l.translateBlocks(ctx, b.Body.Blocks)
		block.Children = children
		diags = append(diags, more...)

	case program.Conditional:
		diags = append(diags, wantLabels(b, 1)...)
		diags = append(diags, rejectAttributes(b.Body)...)
		if len(b.Labels) == 1 {
			pred, err := program.ParsePredicate(b.Labels[0])
			if err != nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Unknown condition",
					Detail:   err.Error() + "; use obstacle_ahead, boundary_ahead or at_goal.",
					Subject:  b.LabelRanges[0].Ptr(),
				})
			}
			block.Predicate = pred
		}
		children, more := l.translateBlocks(ctx, b.Body.Blocks)
		block.Children = children
		diags = append(diags, more...)

	default:
		diags = append(diags, wantLabels(b, 0)...)
		diags = append(diags, rejectAttributes(b.Body)...)
		if len(b.Body.Blocks) > 0 {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unexpected nested block",
				Detail:   "A " + b.Type + " command cannot contain other commands.",
				Subject:  b.Body.Blocks[0].DefRange().Ptr(),
			})
		}
	}
	return block, diags
}

func wantLabels(b *hclsyntax.Block, n int) hcl.Diagnostics {
	if len(b.Labels) == n {
		return nil
	}
	detail := "A " + b.Type + " block takes no labels."
	if n == 1 {
		detail = "An " + b.Type + " block takes exactly one label, the condition."
	}
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  "Wrong number of labels",
		Detail:   detail,
		Subject:  b.DefRange().Ptr(),
	}}
}

func rejectAttributes(body *hclsyntax.Body, allowed ...string) hcl.Diagnostics {
	var diags hcl.Diagnostics
	for name, attr := range body.Attributes {
		ok := false
		for _, a := range allowed {
			ok = ok || a == name
		}
		if !ok {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unsupported argument",
				Detail:   "An argument named \"" + name + "\" is not expected here.",
				Subject:  attr.NameRange.Ptr(),
			})
		}
	}
	return diags
}
