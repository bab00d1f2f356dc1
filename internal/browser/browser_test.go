package browser

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// fakeCapability records calls and returns canned results.
type fakeCapability struct {
	calls   []string
	failOn  string
	comment string
	text    string
	closed  bool
}

func (f *fakeCapability) record(call string) error {
	f.calls = append(f.calls, call)
	if call == f.failOn {
		return errors.New("element not found")
	}
	return nil
}

func (f *fakeCapability) Navigate(_ context.Context, url string) error {
	return f.record("navigate " + url)
}

func (f *fakeCapability) Search(_ context.Context, selector, query string) error {
	return f.record("search " + query)
}

func (f *fakeCapability) Click(_ context.Context, selector string) error {
	return f.record("click " + selector)
}

func (f *fakeCapability) FirstComment(_ context.Context, selector string) (string, error) {
	if err := f.record("first_comment"); err != nil {
		return "", err
	}
	return f.comment, nil
}

func (f *fakeCapability) ExtractText(_ context.Context, selector string) (string, error) {
	if err := f.record("extract " + selector); err != nil {
		return "", err
	}
	return f.text, nil
}

func (f *fakeCapability) WaitStable(context.Context) error { return f.record("wait") }

func (f *fakeCapability) Close() error {
	f.closed = true
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaultScript(t *testing.T) {
	s := DefaultScript()
	if s.Name != "reddit-first-comment" {
		t.Errorf("unexpected name %q", s.Name)
	}
	var kinds []Kind
	for _, a := range s.Actions {
		kinds = append(kinds, a.Kind)
	}
	want := []Kind{KindNavigate, KindSearch, KindWait, KindClick, KindWait, KindFirstComment}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("kinds = %v, want %v", kinds, want)
	}
	if s.Actions[1].Query != "browser-use" {
		t.Errorf("expected browser-use query, got %q", s.Actions[1].Query)
	}
}

func TestRunner_DefaultScript(t *testing.T) {
	fc := &fakeCapability{comment: "  Great tool!  "}
	results, err := NewRunner(fc, time.Second, quietLogger()).Run(context.Background(), DefaultScript())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}
	if got := Answer(results); got != "Great tool!" {
		t.Errorf("expected trimmed first comment, got %q", got)
	}
	wantCalls := []string{
		"navigate https://www.reddit.com/",
		"search browser-use",
		"wait",
		`click a[data-testid="post-title"]`,
		"wait",
		"first_comment",
	}
	if !reflect.DeepEqual(fc.calls, wantCalls) {
		t.Errorf("calls = %q, want %q", fc.calls, wantCalls)
	}
}

func TestRunner_StopsAtFirstFailure(t *testing.T) {
	fc := &fakeCapability{failOn: `click a[data-testid="post-title"]`, comment: "never read"}
	results, err := NewRunner(fc, 0, quietLogger()).Run(context.Background(), DefaultScript())

	if !errors.Is(err, ErrStep) {
		t.Fatalf("expected ErrStep, got %v", err)
	}
	var se *StepError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StepError, got %T", err)
	}
	if se.Index != 3 || se.Kind != KindClick {
		t.Errorf("expected failure at step 3 (click), got %d (%s)", se.Index, se.Kind)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 completed steps, got %d", len(results))
	}
	if fc.calls[len(fc.calls)-1] != `click a[data-testid="post-title"]` {
		t.Errorf("expected no calls after the failing step, got %q", fc.calls)
	}
}

func TestRunner_ValidatesResults(t *testing.T) {
	tests := []struct {
		name    string
		fake    *fakeCapability
		action  Action
		wantErr error
	}{
		{"empty text", &fakeCapability{text: "   "}, Action{Kind: KindExtractText, Selector: "h1"}, ErrEmptyText},
		{"expect mismatch", &fakeCapability{text: "Hello"}, Action{Kind: KindExtractText, Selector: "h1", Expect: "Bye"}, ErrUnexpectedText},
		{"invalid action", &fakeCapability{}, Action{Kind: KindClick}, ErrInvalidAction},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := Script{Name: "t", Actions: []Action{{Kind: KindNavigate, URL: "https://example.com"}, tc.action}}
			_, err := NewRunner(tc.fake, 0, quietLogger()).Run(context.Background(), s)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			var se *StepError
			if !errors.As(err, &se) || se.Index != 1 {
				t.Errorf("expected failure at index 1, got %v", err)
			}
		})
	}
}

func TestRunner_ExpectMatch(t *testing.T) {
	fc := &fakeCapability{text: "Example Domain"}
	s := Script{Actions: []Action{
		{Kind: KindNavigate, URL: "https://example.com"},
		{Kind: KindExtractText, Selector: "h1", Expect: "Example"},
	}}
	results, err := NewRunner(fc, 0, quietLogger()).Run(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Answer(results) != "Example Domain" {
		t.Errorf("unexpected answer %q", Answer(results))
	}
}

func TestRunner_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fc := &fakeCapability{}
	_, err := NewRunner(fc, 0, quietLogger()).Run(ctx, DefaultScript())
	if !errors.Is(err, context.Canceled) || !errors.Is(err, ErrStep) {
		t.Fatalf("expected canceled step error, got %v", err)
	}
	if len(fc.calls) != 0 {
		t.Errorf("expected no capability calls, got %q", fc.calls)
	}
}

func TestRunner_EmptyScript(t *testing.T) {
	if _, err := NewRunner(&fakeCapability{}, 0, quietLogger()).Run(context.Background(), Script{}); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}

func TestAction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		action  Action
		wantErr bool
	}{
		{"navigate ok", Action{Kind: KindNavigate, URL: "https://www.reddit.com"}, false},
		{"navigate no scheme", Action{Kind: KindNavigate, URL: "reddit.com"}, true},
		{"navigate ftp", Action{Kind: KindNavigate, URL: "ftp://x.org"}, true},
		{"search ok", Action{Kind: KindSearch, Selector: "input", Query: "q"}, false},
		{"search no query", Action{Kind: KindSearch, Selector: "input"}, true},
		{"click no selector", Action{Kind: KindClick}, true},
		{"first comment default selector", Action{Kind: KindFirstComment}, false},
		{"extract no selector", Action{Kind: KindExtractText}, true},
		{"wait", Action{Kind: KindWait}, false},
		{"expect on click", Action{Kind: KindClick, Selector: "a", Expect: "x"}, true},
		{"unknown", Action{Kind: "scroll"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.action.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidAction) {
				t.Errorf("expected ErrInvalidAction, got %v", err)
			}
		})
	}
}

func TestLoadScript(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	os.WriteFile(good, []byte(`
name: example
actions:
  - kind: navigate
    url: https://example.com
  - kind: extract_text
    selector: h1
    expect: Example
`), 0o644)
	s, err := LoadScript(good)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name != "example" || len(s.Actions) != 2 || s.Actions[1].Expect != "Example" {
		t.Errorf("unexpected script %+v", s)
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("name: bad\nactions:\n  - kind: click\n"), 0o644)
	_, err = LoadScript(bad)
	var se *StepError
	if !errors.As(err, &se) || se.Index != 0 {
		t.Errorf("expected step 0 validation error, got %v", err)
	}

	if _, err := LoadScript(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := ParseScript([]byte("actions: [")); err == nil {
		t.Error("expected YAML error")
	}
}
