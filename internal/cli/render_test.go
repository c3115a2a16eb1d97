package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/conceptmap/conceptmerge/pkg/graph"
	"github.com/conceptmap/conceptmerge/pkg/render/nodelink"
)

func writeGraph(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := graph.WriteFile(sampleGraph(), path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRunRenderDOTToStdout(t *testing.T) {
	input := writeGraph(t)
	ctx := withLogger(context.Background(), log.New(io.Discard))

	var out bytes.Buffer
	opts := &renderOpts{format: formatDOT}
	if err := runRender(ctx, input, nodelink.LayoutRows, opts, &out); err != nil {
		t.Fatalf("runRender: %v", err)
	}

	dot := out.String()
	if !strings.HasPrefix(dot, "graph G {") {
		t.Errorf("output is not DOT: %q", dot)
	}
	if got := strings.Count(dot, " -- "); got != 2 {
		t.Errorf("edge statements = %d, want 2", got)
	}
}

func TestRunRenderDOTToFile(t *testing.T) {
	input := writeGraph(t)
	output := filepath.Join(t.TempDir(), "graph.dot")
	ctx := withLogger(context.Background(), log.New(io.Discard))

	opts := &renderOpts{format: formatDOT, output: output, detailed: true}
	if err := runRender(ctx, input, nodelink.LayoutRings, opts, io.Discard); err != nil {
		t.Fatalf("runRender: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `6C M4: Waves`) {
		t.Error("detailed labels missing module title")
	}
}

func TestRunRenderMissingInput(t *testing.T) {
	ctx := withLogger(context.Background(), log.New(io.Discard))
	opts := &renderOpts{format: formatDOT}
	err := runRender(ctx, filepath.Join(t.TempDir(), "missing.json"), nodelink.LayoutRows, opts, io.Discard)
	if err == nil {
		t.Fatal("expected error for missing input")
	}
}

func TestRenderCommandRejectsBadFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"render", "g.json", "--format", "png"}},
		{"bad layout", []string{"render", "g.json", "--layout", "spiral"}},
		{"no input", []string{"render"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := New(io.Discard, LogInfo).RootCommand()
			root.SetOut(io.Discard)
			root.SetErr(io.Discard)
			root.SetArgs(tt.args)
			if err := root.ExecuteContext(context.Background()); err == nil {
				t.Error("expected error")
			}
		})
	}
}
