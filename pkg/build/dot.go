package build

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/goccy/go-graphviz"

	"github.com/weldbuild/weld/pkg/label"
)

// ToDOT returns a Graphviz DOT representation of the prerequisite graph
// reachable from the targets. With no targets, the whole ruleset is
// rendered.
//
// Node shapes follow the label kind: checkouts are ellipses, packages
// boxes, deployments rounded boxes. Edges point from a prerequisite to
// the label that requires it, so arrows follow the build direction.
func ToDOT(rs *Ruleset, targets []label.Label) (string, error) {
	if len(targets) == 0 {
		targets = rs.Targets()
	}
	closure, err := Closure(rs, targets)
	if err != nil {
		return "", err
	}

	order := make([]label.Label, 0, len(closure))
	for _, r := range closure {
		order = append(order, r.Target)
	}
	sort.Slice(order, func(i, j int) bool { return label.Compare(order[i], order[j]) < 0 })

	var buf bytes.Buffer
	buf.WriteString("digraph weld {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=12, style=filled, fillcolor=white];\n\n")

	ids := make(map[string]string, len(order))
	for i, l := range order {
		id := fmt.Sprintf("n%d", i)
		ids[l.String()] = id
		fmt.Fprintf(&buf, "  %s [label=%q, shape=%s];\n", id, l.String(), dotShape(l.Kind))
	}
	buf.WriteString("\n")
	for _, l := range order {
		r := closure[l.String()]
		for _, pre := range r.Prereqs() {
			fmt.Fprintf(&buf, "  %s -> %s;\n", ids[pre.String()], ids[l.String()])
		}
	}
	buf.WriteString("}\n")
	return buf.String(), nil
}

func dotShape(k label.Kind) string {
	switch k {
	case label.KindCheckout:
		return "ellipse"
	case label.KindDeployment:
		return "Mrecord"
	default:
		return "box"
	}
}

// RenderSVG renders the prerequisite graph as an SVG image via
// Graphviz. Errors are returned if Graphviz cannot initialize, the DOT
// is malformed, or rendering fails.
func RenderSVG(ctx context.Context, rs *Ruleset, targets []label.Label) ([]byte, error) {
	dot, err := ToDOT(rs, targets)
	if err != nil {
		return nil, err
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
