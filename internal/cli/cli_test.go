package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/conceptmap/conceptmerge/pkg/graph"
	"github.com/conceptmap/conceptmerge/pkg/pipeline"
)

func page(graphJSON string) string {
	return `<html><script id="graph-data" type="application/json">` + graphJSON + `</script></html>`
}

func writeFile(t *testing.T, path, body string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// fixtureDir writes both course pages and one connection sheet.
func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "map_6A.html"), page(`{"nodes":[
		{"id":"3B","module_num":3,"module_title":"Forces"},
		{"id":"3C","module_num":3,"module_title":"Forces"}],
		"links":[{"source":"3C","target":"3B","tags":["prereq"]}]}`))
	writeFile(t, filepath.Join(dir, "map_6C.html"), page(`{"nodes":[
		{"id":"4A","module_num":4,"module_title":"Waves"}],"links":[]}`))
	writeFile(t, filepath.Join(dir, "xref", "Module 3_6A.csv"),
		"Label,6C connections\nB,\"4A, 4a\"\nC,9Z\n")
	return dir
}

func parseSourceFlags(t *testing.T, args ...string) (pipeline.Options, string) {
	t.Helper()
	var o sourceOpts
	cmd := &cobra.Command{Use: "test"}
	o.register(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	opts, output, err := o.resolve(cmd)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return opts, output
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()

	want := []string{"browse", "build", "completion", "render", "serve"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.Use != appName {
		t.Errorf("Use = %q, want %q", root.Use, appName)
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	c.Logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatal("debug message logged at info level")
	}
	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Error("debug message missing after SetLogLevel(LogDebug)")
	}
}

func TestResolveDefaults(t *testing.T) {
	opts, output := parseSourceFlags(t)

	if output != pipeline.DefaultOutput {
		t.Errorf("output = %q, want %q", output, pipeline.DefaultOutput)
	}
	if opts.CrossRefDir != pipeline.DefaultCrossRefDir {
		t.Errorf("crossref dir = %q", opts.CrossRefDir)
	}
	if len(opts.Courses) != 2 || opts.Courses[1].ModuleOffset != pipeline.DefaultSecondOffset {
		t.Errorf("courses = %+v", opts.Courses)
	}
}

func TestResolveFlagsOverride(t *testing.T) {
	opts, output := parseSourceFlags(t,
		"--source-a", "a.html",
		"--source-c", "c.html",
		"--crossref-dir", "sheets",
		"--offset", "50",
		"-o", "out.json")

	if output != "out.json" {
		t.Errorf("output = %q", output)
	}
	if opts.CrossRefDir != "sheets" {
		t.Errorf("crossref dir = %q", opts.CrossRefDir)
	}
	if opts.Courses[0].Path != "a.html" || opts.Courses[0].ModuleOffset != 0 {
		t.Errorf("6A course = %+v", opts.Courses[0])
	}
	if opts.Courses[1].Path != "c.html" || opts.Courses[1].ModuleOffset != 50 {
		t.Errorf("6C course = %+v", opts.Courses[1])
	}
}

func TestResolveConfigThenFlags(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, filepath.Join(dir, "conceptmerge.toml"), `
output = "merged.json"

[[course]]
tag  = "6A"
path = "a.html"

[[course]]
tag           = "6C"
path          = "c.html"
module_offset = 30
`)

	opts, output := parseSourceFlags(t, "--config", cfg, "--source-c", "other.html")

	if output != filepath.Join(dir, "merged.json") {
		t.Errorf("output = %q", output)
	}
	if opts.Courses[0].Path != filepath.Join(dir, "a.html") {
		t.Errorf("6A path = %q", opts.Courses[0].Path)
	}
	if opts.Courses[1].Path != "other.html" || opts.Courses[1].ModuleOffset != 30 {
		t.Errorf("6C course = %+v", opts.Courses[1])
	}
}

func TestRunBuildWritesArtifact(t *testing.T) {
	dir := fixtureDir(t)
	opts := pipeline.DefaultOptions()
	opts.Courses[0].Path = filepath.Join(dir, "map_6A.html")
	opts.Courses[1].Path = filepath.Join(dir, "map_6C.html")
	opts.CrossRefDir = filepath.Join(dir, "xref")
	output := filepath.Join(dir, "graph_6AC.json")

	ctx := withLogger(context.Background(), newLogger(&bytes.Buffer{}, log.InfoLevel))
	if err := runBuild(ctx, opts, output); err != nil {
		t.Fatalf("runBuild: %v", err)
	}

	g, err := graph.ReadFile(output)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(g.Nodes) != 3 || len(g.Links) != 2 {
		t.Fatalf("got %d nodes, %d links", len(g.Nodes), len(g.Links))
	}
	if got := g.CrossCourse(); got != 1 {
		t.Errorf("cross-course = %d, want 1", got)
	}
}

func TestRunBuildFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	opts := pipeline.DefaultOptions()
	opts.Courses[0].Path = writeFile(t, filepath.Join(dir, "a.html"), "<html>no graph</html>")
	opts.Courses[1].Path = writeFile(t, filepath.Join(dir, "c.html"), page(`{"nodes":[],"links":[]}`))
	opts.CrossRefDir = ""
	output := filepath.Join(dir, "graph.json")

	ctx := withLogger(context.Background(), newLogger(&bytes.Buffer{}, log.InfoLevel))
	if err := runBuild(ctx, opts, output); err == nil {
		t.Fatal("expected error for missing marker")
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Errorf("artifact written despite failure: %v", err)
	}
}

func TestFormatStats(t *testing.T) {
	got := formatStats(3, 2, 1)
	for _, want := range []string{"3 nodes", "2 links", "1 cross-course"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatStats() = %q, missing %q", got, want)
		}
	}
}
