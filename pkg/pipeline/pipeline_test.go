package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/erdlayout/pkg/diagram"
	"github.com/matzehuels/erdlayout/pkg/errors"
	"github.com/matzehuels/erdlayout/pkg/observability"
)

const libraryJSON = `{
  "nodes": [
    {"id": "book", "position": {"x": 0, "y": 0}, "data": {"nodeType": "entity", "label": "Book", "attributes": ["isbn"]}},
    {"id": "author", "position": {"x": 0, "y": 0}, "data": {"nodeType": "entity", "label": "Author"}},
    {"id": "wrote", "position": {"x": 0, "y": 0}, "data": {"nodeType": "relationship", "entityConnections": ["author", "book"]}},
    {"id": "isbn", "position": {"x": 0, "y": 0}, "data": {"nodeType": "attribute", "label": "isbn", "isPrimaryKey": true}},
    {"id": "stray", "position": {"x": 0, "y": 0}, "data": {"nodeType": "attribute"}}
  ],
  "edges": [],
  "viewport": {"x": 0, "y": 0, "zoom": 1}
}`

const libraryYAML = `
nodes:
  - id: book
    position: {x: 0, y: 0}
    data: {nodeType: entity}
  - id: author
    position: {x: 0, y: 0}
    data: {nodeType: entity}
edges:
  - {id: w, source: book, target: author, kind: relationship}
`

func newTestRunner() *Runner {
	return NewRunner(log.New(io.Discard))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExecute(t *testing.T) {
	path := writeFile(t, "library.json", libraryJSON)

	res, err := newTestRunner().Execute(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	s := res.Stats
	if s.NodeCount != 5 || s.Placed != 5 || s.Staged != 1 || s.Unplaced != 0 || s.Ranks != 2 {
		t.Errorf("Stats = %+v", s)
	}
	if got := res.Diagram.NodeByID("isbn").Position; got.Y <= 0 {
		t.Errorf("isbn position = %+v, want beneath book", got)
	}
	if _, ok := res.Diagram.Extra["viewport"]; !ok {
		t.Error("viewport dropped")
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "library.yaml", libraryYAML)

	d, err := newTestRunner().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(d.Nodes) != 2 || d.Edges[0].Kind != diagram.EdgeRelationship {
		t.Errorf("Load = %+v", d)
	}
}

func TestLoadErrors(t *testing.T) {
	r := newTestRunner()
	ctx := context.Background()

	_, err := r.Load(ctx, filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: GetCode() = %v, want %v", errors.GetCode(err), errors.ErrCodeFileNotFound)
	}

	_, err = r.LoadReader(ctx, strings.NewReader("{"), "broken", false)
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("malformed: GetCode() = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidFormat)
	}
}

func TestLayoutStrict(t *testing.T) {
	d := &diagram.Diagram{
		Nodes: []diagram.Node{
			{ID: "e1", Role: diagram.RoleEntity},
			{ID: "e1", Role: diagram.RoleEntity},
		},
	}
	r := newTestRunner()
	ctx := context.Background()

	if _, err := r.Layout(ctx, d, Options{}); err != nil {
		t.Errorf("non-strict Layout: %v", err)
	}
	_, err := r.Layout(ctx, d, Options{Strict: true})
	if !errors.Is(err, errors.ErrCodeInvalidDiagram) {
		t.Errorf("strict Layout error = %v, want %v", err, errors.ErrCodeInvalidDiagram)
	}
}

func TestLayoutNodeLimit(t *testing.T) {
	d := &diagram.Diagram{Nodes: make([]diagram.Node, 3)}
	_, err := newTestRunner().Layout(context.Background(), d, Options{MaxNodes: 2})
	if !errors.Is(err, errors.ErrCodeInvalidDiagram) {
		t.Errorf("Layout error = %v, want %v", err, errors.ErrCodeInvalidDiagram)
	}
}

func TestLayoutCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestRunner().Layout(ctx, &diagram.Diagram{}, Options{}); err != context.Canceled {
		t.Errorf("Layout error = %v, want %v", err, context.Canceled)
	}
}

func TestLayoutNilDiagram(t *testing.T) {
	res, err := newTestRunner().Layout(context.Background(), nil, Options{})
	if err != nil {
		t.Fatalf("Layout(nil): %v", err)
	}
	if len(res.Diagram.Nodes) != 0 {
		t.Errorf("nodes = %d, want 0", len(res.Diagram.Nodes))
	}
}

func TestLayoutDoesNotModifyInput(t *testing.T) {
	d, err := diagram.Read(strings.NewReader(libraryJSON))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := newTestRunner().Layout(context.Background(), d, Options{}); err != nil {
		t.Fatal(err)
	}
	for _, n := range d.Nodes {
		if n.Position != (diagram.Position{}) {
			t.Errorf("input node %s moved to %+v", n.ID, n.Position)
		}
	}
}

func TestLayoutEmitsHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	rec := &recordingHooks{}
	observability.SetPipelineHooks(rec)

	r := newTestRunner()
	d, err := r.LoadReader(context.Background(), strings.NewReader(libraryJSON), "test", false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Layout(context.Background(), d, Options{Strict: true}); err != nil {
		t.Fatal(err)
	}

	want := []string{"load-start", "load-complete", "validate", "layout-start", "layout-complete"}
	if strings.Join(rec.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
	if rec.stats.Staged != 1 {
		t.Errorf("stats.Staged = %d, want 1", rec.stats.Staged)
	}
}

func TestEncode(t *testing.T) {
	d, err := diagram.Read(strings.NewReader(libraryJSON))
	if err != nil {
		t.Fatal(err)
	}
	res, err := newTestRunner().Layout(context.Background(), d, Options{})
	if err != nil {
		t.Fatal(err)
	}
	data, err := Encode(res)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var doc struct {
		Nodes []map[string]any `json:"nodes"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(doc.Nodes) != 5 {
		t.Errorf("nodes = %d, want 5", len(doc.Nodes))
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	events []string
	stats  observability.LayoutStats
}

func (r *recordingHooks) OnLoadStart(context.Context, string) {
	r.events = append(r.events, "load-start")
}

func (r *recordingHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {
	r.events = append(r.events, "load-complete")
}

func (r *recordingHooks) OnValidate(context.Context, error) {
	r.events = append(r.events, "validate")
}

func (r *recordingHooks) OnLayoutStart(context.Context, int, int) {
	r.events = append(r.events, "layout-start")
}

func (r *recordingHooks) OnLayoutComplete(_ context.Context, s observability.LayoutStats, _ time.Duration) {
	r.events = append(r.events, "layout-complete")
	r.stats = s
}
