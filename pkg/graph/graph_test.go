package graph

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/conceptmap/conceptmerge/pkg/errors"
)

const rawFixture = `{
  "nodes": [
    {"id": "1A", "module_num": 1, "module_title": "Forces", "label": "Newton", "color": "#abc"},
    {"id": "1B", "module_num": 1, "module_title": "Forces"},
    {"id": "2A", "module_num": 2, "module_title": "Energy"}
  ],
  "links": [
    {"source": "1A", "target": "1B", "tags": ["prereq"]},
    {"source": "1B", "target": "2A"},
    {"source": "1A", "target": "2A", "tags": "bogus"},
    {"source": "2A", "target": "1A", "tags": ["x", 3, true, null, {"k": 1}, "y"]}
  ]
}`

func TestDecodeRaw(t *testing.T) {
	g, err := DecodeRaw([]byte(rawFixture))
	if err != nil {
		t.Fatalf("DecodeRaw: %v", err)
	}
	if len(g.Nodes) != 3 || len(g.Links) != 4 {
		t.Fatalf("got %d nodes, %d links", len(g.Nodes), len(g.Links))
	}
	if g.Nodes[0].ModuleTitle != "Forces" || g.Nodes[0].ModuleNum != 1 {
		t.Errorf("node 0 = %+v", g.Nodes[0])
	}
	if _, ok := g.Nodes[0].Fields["label"]; !ok {
		t.Error("extra field label not preserved")
	}
	if _, ok := g.Nodes[0].Fields["id"]; ok {
		t.Error("id should not be kept in Fields")
	}
	if g.Links[1].Tags != nil {
		t.Errorf("absent tags = %v, want nil", g.Links[1].Tags)
	}
	if g.Links[2].Tags != nil {
		t.Errorf("non-array tags = %v, want nil", g.Links[2].Tags)
	}
	if got := strings.Join(g.Links[3].Tags, ","); got != "x,3,true,y" {
		t.Errorf("mixed tags = %q, want x,3,true,y", got)
	}
}

func TestDecodeRawErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"MissingID", `{"nodes":[{"module_num":1}],"links":[]}`},
		{"EmptyID", `{"nodes":[{"id":"","module_num":1}],"links":[]}`},
		{"MissingModule", `{"nodes":[{"id":"1A"}],"links":[]}`},
		{"FractionalModule", `{"nodes":[{"id":"1A","module_num":1.5}],"links":[]}`},
		{"NotJSON", `{"nodes":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRaw([]byte(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidGraph) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidGraph)
			}
		})
	}
}

func TestDecodeRawNumericFields(t *testing.T) {
	g, err := DecodeRaw([]byte(`{"nodes":[{"id":7,"module_num":"3"}],"links":[{"source":7,"target":"8"}]}`))
	if err != nil {
		t.Fatalf("DecodeRaw: %v", err)
	}
	if g.Nodes[0].ID != "7" || g.Nodes[0].ModuleNum != 3 {
		t.Errorf("node = %+v", g.Nodes[0])
	}
	if g.Links[0].Source != "7" {
		t.Errorf("source = %q, want 7", g.Links[0].Source)
	}
}

func TestNamespace(t *testing.T) {
	raw, err := DecodeRaw([]byte(rawFixture))
	if err != nil {
		t.Fatalf("DecodeRaw: %v", err)
	}

	nodes, links := Namespace(raw, "6C", 10)

	n := nodes[0]
	if n.ID != "6C:1A" || n.BaseID != "1A" || n.Course != "6C" {
		t.Errorf("ids = %q %q %q", n.ID, n.BaseID, n.Course)
	}
	if n.ModuleNum != 11 || n.CourseModuleNum != 1 {
		t.Errorf("module_num = %d, course_module_num = %d", n.ModuleNum, n.CourseModuleNum)
	}
	if n.ModuleTitle != "6C M1: Forces" {
		t.Errorf("module_title = %q", n.ModuleTitle)
	}
	if string(n.Extra["label"]) != `"Newton"` {
		t.Errorf("extra label = %s", n.Extra["label"])
	}

	if links[0].Source != "6C:1A" || links[0].Target != "6C:1B" {
		t.Errorf("link 0 = %+v", links[0])
	}
	if links[1].Tags == nil || len(links[1].Tags) != 0 {
		t.Errorf("absent tags should default to empty, got %#v", links[1].Tags)
	}
}

func TestNamespaceUniqueAcrossCourses(t *testing.T) {
	raw := RawGraph{Nodes: []RawNode{
		{ID: "1A", ModuleNum: 1, hasID: true, hasModule: true},
		{ID: "2B", ModuleNum: 2, hasID: true, hasModule: true},
	}}

	a, _ := Namespace(raw, "6A", 0)
	c, _ := Namespace(raw, "6C", 10)

	seen := map[string]bool{}
	for _, n := range append(a, c...) {
		if seen[n.ID] {
			t.Fatalf("duplicate id %q", n.ID)
		}
		seen[n.ID] = true
	}
	if len(seen) != 4 {
		t.Errorf("got %d unique ids, want 4", len(seen))
	}
	if a[0].ModuleNum == c[0].ModuleNum {
		t.Error("module numbers collide across courses")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	g := &Combined{
		Nodes: []*Node{
			{ID: "6A:1A", BaseID: "1A", Course: "6A", ModuleNum: 1, CourseModuleNum: 1, ModuleTitle: "6A M1: Forces",
				SX: 506.67, SY: 910, X: 506.67, Y: 910, RX: 700, RY: 75,
				Extra: map[string]json.RawMessage{"label": json.RawMessage(`"Newton & co"`)}},
			{ID: "6C:3B", BaseID: "3B", Course: "6C", ModuleNum: 13, CourseModuleNum: 3, ModuleTitle: "6C M3: Waves"},
		},
		Links: []Edge{{Source: "6A:1A", Target: "6C:3B", Tags: []string{"6A-6C", "cross-course"}}},
	}

	data, err := Marshal(g)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.HasSuffix(data, []byte("}\n")) {
		t.Error("output should end with a newline")
	}
	if !bytes.Contains(data, []byte("\n  \"nodes\": [")) {
		t.Error("output should be indented with two spaces")
	}
	if !bytes.Contains(data, []byte(`"Newton & co"`)) {
		t.Error("extra field should be written without HTML escaping")
	}

	back, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if back.Nodes[0].SX != 506.67 || back.Nodes[0].RY != 75 {
		t.Errorf("coordinates lost: %+v", back.Nodes[0])
	}
	if string(back.Nodes[0].Extra["label"]) != `"Newton & co"` {
		t.Errorf("extra = %s", back.Nodes[0].Extra["label"])
	}
	if back.CrossCourse() != 1 {
		t.Error("cross-course link lost")
	}
}

func TestWriteEmpty(t *testing.T) {
	data, err := Marshal(&Combined{})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != "{\n  \"nodes\": [],\n  \"links\": []\n}\n" {
		t.Errorf("empty graph = %q", data)
	}
}

func TestReadRejectsDanglingLink(t *testing.T) {
	input := `{"nodes":[{"id":"6A:1A"}],"links":[{"source":"6A:1A","target":"6C:1A","tags":[]}]}`
	_, err := Read(strings.NewReader(input))
	if !errors.Is(err, errors.ErrCodeInvalidGraph) {
		t.Errorf("err = %v, want INVALID_GRAPH", err)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "graph_6AC.json")

	g := &Combined{Nodes: []*Node{{ID: "6A:1A", BaseID: "1A"}}}
	if err := WriteFile(g, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	back, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(back.Nodes) != 1 || back.Nodes[0].ID != "6A:1A" {
		t.Errorf("nodes = %+v", back.Nodes)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %d entries", len(entries))
	}
}

func TestCombinedHelpers(t *testing.T) {
	g := &Combined{
		Nodes: []*Node{{ID: "a"}, {ID: "b"}},
		Links: []Edge{{Source: "a", Target: "b", Tags: []string{"cross-course"}}},
	}
	if !g.NodeIDs()["b"] {
		t.Error("NodeIDs missing b")
	}
	if n, ok := g.Node("a"); !ok || n.ID != "a" {
		t.Error("Node(a) not found")
	}
	if _, ok := g.Node("z"); ok {
		t.Error("Node(z) should not exist")
	}
	if !g.Links[0].HasTag("cross-course") || g.Links[0].HasTag("prereq") {
		t.Error("HasTag mismatch")
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	g.Nodes = append(g.Nodes, &Node{ID: "a"})
	if err := g.Validate(); err == nil {
		t.Error("duplicate ids should fail validation")
	}
}

func TestCrossCourseCountsByEndpointCourse(t *testing.T) {
	g := &Combined{
		Nodes: []*Node{
			{ID: "6A:1A", Course: "6A"},
			{ID: "6A:1B", Course: "6A"},
			{ID: "6C:1A", Course: "6C"},
			{ID: "6C:2A", Course: "6C"},
		},
		Links: []Edge{
			{Source: "6A:1A", Target: "6A:1B", Tags: []string{"cross-course"}},
			{Source: "6A:1A", Target: "6C:1A", Tags: []string{"bridge"}},
			{Source: "6A:1B", Target: "6C:2A", Tags: []string{}},
			{Source: "6C:1A", Target: "6C:2A", Tags: []string{}},
		},
	}

	if got := g.CrossCourse(); got != 2 {
		t.Errorf("CrossCourse() = %d, want 2", got)
	}
}
