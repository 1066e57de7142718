package driver

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"dtl/internal/diag"
	"dtl/internal/observ"
)

func writeTemplates(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
}

func (s *recordingSink) finished() map[string]Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Status)
	for _, evt := range s.events {
		if evt.Status.Finished() {
			out[evt.File] = evt.Status
		}
	}
	return out
}

func TestListTemplates(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"b.html":             "b",
		"a.txt":              "a",
		"notes.md":           "skip",
		"partials/x.dtl":     "x",
		"partials/_tmp.html": "skip",
		"vendor/y.html":      "skip",
	})

	files, err := ListTemplates(dir, DirOptions{Exclude: []string{"_*", "vendor"}})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.html"),
		filepath.Join(dir, "partials", "x.dtl"),
	}
	if len(files) != len(want) {
		t.Fatalf("got %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}

	only, err := ListTemplates(dir, DirOptions{Extensions: []string{".txt"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(only) != 1 || filepath.Base(only[0]) != "a.txt" {
		t.Errorf("extension filter failed: %v", only)
	}
}

func TestParseDirDeterministicOrder(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"c.html": "{{ c }}",
		"a.html": "{{ a|lower }}",
		"b.html": "{{ b|lower:1 }}",
	})

	fs, results, err := ParseDir(context.Background(), dir, ParseOptions{}, DirOptions{}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	names := []string{"a.html", "b.html", "c.html"}
	for i, res := range results {
		if filepath.Base(res.Path) != names[i] {
			t.Errorf("results[%d] = %s, want %s", i, res.Path, names[i])
		}
		if fs.Get(res.FileID).Path != filepath.ToSlash(res.Path) {
			t.Errorf("file id mismatch for %s", res.Path)
		}
	}
	if results[1].Err == nil || !results[1].Bag.HasErrors() {
		t.Errorf("b.html must fail")
	}
	if results[0].Err != nil || len(results[0].Nodes) != 1 {
		t.Errorf("a.html must parse: %v", results[0].Err)
	}
}

func TestCheckWithCacheAndProgress(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"ok.html":   "{{ name|title }}",
		"warn.html": "{{ name|shout }}",
		"bad.html":  "{{ name|default }}",
	})
	cache, err := OpenDiskCacheAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}

	sink := &recordingSink{}
	opts := CheckOptions{
		ParseOptions: ParseOptions{KnownFilters: []string{"title"}},
		Jobs:         2,
		BaseDir:      dir,
		Cache:        cache,
		Progress:     sink,
		Timer:        observ.NewTimer(),
	}
	missing := filepath.Join(dir, "missing.html")

	fs, results, err := Check(context.Background(), []string{dir, missing}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	byName := make(map[string]CheckResult)
	for _, r := range results {
		byName[filepath.Base(r.Path)] = r
		if r.Cached {
			t.Errorf("%s: cold cache must miss", r.Path)
		}
	}
	if byName["ok.html"].Bag.Len() != 0 {
		t.Errorf("ok.html: unexpected diagnostics")
	}
	if w := byName["warn.html"].Bag.Items(); len(w) != 1 || w[0].Code != diag.SemaUnknownFilter {
		t.Errorf("warn.html: expected SEM3001, got %+v", w)
	}
	if bad := byName["bad.html"]; !bad.Failed() {
		t.Errorf("bad.html must fail")
	}
	if m := byName["missing.html"].Bag.Items(); len(m) != 1 || m[0].Code != diag.IOLoadFailed {
		t.Errorf("missing.html: expected IO4001, got %+v", m)
	}
	if fs.Get(byName["missing.html"].FileID).Len() != 0 {
		t.Errorf("missing file must be registered empty")
	}

	statuses := sink.finished()
	if statuses[missing] != StatusError || statuses[filepath.Join(dir, "bad.html")] != StatusError {
		t.Errorf("unexpected statuses %v", statuses)
	}
	if statuses[filepath.Join(dir, "ok.html")] != StatusDone {
		t.Errorf("unexpected statuses %v", statuses)
	}
	if len(opts.Timer.Report().Phases) != 3 {
		t.Errorf("expected discover/load/check phases, got %+v", opts.Timer.Report().Phases)
	}

	// второй прогон: всё, что загрузилось, берётся из кеша
	_, again, err := Check(context.Background(), []string{dir}, opts)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range again {
		if !r.Cached {
			t.Errorf("%s: expected cache hit", r.Path)
		}
		prev := byName[filepath.Base(r.Path)]
		if r.Bag.Len() != prev.Bag.Len() {
			t.Errorf("%s: cached diagnostics differ", r.Path)
			continue
		}
		for i, d := range r.Bag.Items() {
			p := prev.Bag.Items()[i]
			if d.Code != p.Code || d.Message != p.Message || d.Primary.Start != p.Primary.Start || d.Primary.End != p.Primary.End {
				t.Errorf("%s: cached %+v, fresh %+v", r.Path, d, p)
			}
			if d.Primary.File != r.FileID {
				t.Errorf("%s: restored span must use the new file id", r.Path)
			}
		}
	}

	// другой набор фильтров - другой ключ
	opts.KnownFilters = []string{"title", "shout"}
	_, third, err := Check(context.Background(), []string{filepath.Join(dir, "warn.html")}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third[0].Cached || third[0].Bag.Len() != 0 {
		t.Errorf("changed filter set must invalidate: cached=%v len=%d", third[0].Cached, third[0].Bag.Len())
	}
}

func TestCollect(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"a.html": "{{ x|p }}{{ y|q }}",
		"b.html": "{{ z|r }}",
	})
	_, results, err := Check(context.Background(), []string{dir}, CheckOptions{
		ParseOptions: ParseOptions{KnownFilters: []string{"none"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := Collect(results, 0).Len(); got != 3 {
		t.Errorf("expected 3 diagnostics, got %d", got)
	}
	if got := Collect(results, 2).Len(); got != 2 {
		t.Errorf("expected cap of 2, got %d", got)
	}
}

func TestCheckCancelled(t *testing.T) {
	dir := writeTemplates(t, map[string]string{"a.html": "{{ a }}"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := Check(ctx, []string{dir}, CheckOptions{}); err == nil {
		t.Fatal("expected context error")
	}
}
