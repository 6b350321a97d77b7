package build

import (
	"strings"
	"testing"

	"github.com/weldbuild/weld/pkg/label"
)

func TestToDOT(t *testing.T) {
	b := &recordingBuilder{}
	rs := NewRuleset()
	chain(t, rs, b, "hello")

	dot, err := ToDOT(rs, nil)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(dot, "digraph weld {") {
		t.Errorf("missing digraph header:\n%s", dot)
	}
	for _, want := range []string{
		`"checkout:hello/checked_out"`,
		`"package:hello/installed"`,
		"shape=ellipse",
		"shape=box",
		" -> ",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	// Edge count matches dependency count: three chain edges.
	if got := strings.Count(dot, " -> "); got != 3 {
		t.Errorf("DOT has %d edges, want 3", got)
	}
}

func TestToDOTUnknownTarget(t *testing.T) {
	rs := NewRuleset()
	_, err := ToDOT(rs, []label.Label{label.MustNew(label.KindPackage, "ghost", "", label.TagBuilt, "")})
	if err == nil {
		t.Fatal("expected error for unknown target")
	}
}
