package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/zinc-sig/pst/internal/classify"
	"github.com/zinc-sig/pst/internal/config"
	"github.com/zinc-sig/pst/internal/orchestrator"
	"github.com/zinc-sig/pst/internal/upload"
)

func successResult() *orchestrator.Result {
	return &orchestrator.Result{
		Status:         orchestrator.StatusSuccess,
		Provider:       "paste_rs",
		URL:            "https://paste.rs/abc",
		Duration:       1500 * time.Millisecond,
		Classification: classify.Classification{Kind: upload.KindText, Filename: "paste.txt"},
		Candidates:     []string{"0x0st", "paste_rs"},
		Attempts: []upload.AttemptRecord{
			{Provider: "0x0st", Retry: 0, Duration: 200 * time.Millisecond, Err: upload.NewError("0x0st", upload.ErrTransport, "connection reset", nil)},
			{Provider: "paste_rs", Retry: 0, Duration: 300 * time.Millisecond, Success: true},
		},
	}
}

func failureResult() *orchestrator.Result {
	return &orchestrator.Result{
		Status: orchestrator.StatusFailure,
		Err: &orchestrator.RunError{
			Reason:  orchestrator.ReasonExhausted,
			Message: "all providers failed: a: boom",
			Err:     errors.New("boom"),
		},
		Attempts: []upload.AttemptRecord{
			{Provider: "a", Duration: time.Second, Err: upload.NewError("a", upload.ErrAuthFailure, "boom", nil)},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"url", FormatURL, false},
		{"JSON", FormatJSON, false},
		{" verbose ", FormatVerbose, false},
		{"", FormatURL, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrintURL(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut, false)

	if err := p.Print(successResult(), FormatURL); err != nil {
		t.Fatal(err)
	}
	if out.String() != "https://paste.rs/abc\n" {
		t.Errorf("Expected URL on stdout, got %q", out.String())
	}
	if errOut.Len() != 0 {
		t.Errorf("Expected empty stderr, got %q", errOut.String())
	}

	out.Reset()
	if err := p.Print(failureResult(), FormatURL); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Errorf("Expected empty stdout on failure, got %q", out.String())
	}
	if !strings.HasPrefix(errOut.String(), "Error: all providers failed") {
		t.Errorf("Unexpected stderr: %q", errOut.String())
	}
}

func TestPrintJSON(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, &bytes.Buffer{}, false)
	if err := p.Print(successResult(), FormatJSON); err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("Invalid JSON %q: %v", out.String(), err)
	}
	if got["success"] != true || got["url"] != "https://paste.rs/abc" || got["provider"] != "paste_rs" {
		t.Errorf("Unexpected fields: %v", got)
	}
	if got["error"] != nil {
		t.Errorf("Expected null error, got %v", got["error"])
	}
	attempts, ok := got["attempts"].([]any)
	if !ok || len(attempts) != 2 {
		t.Fatalf("Expected 2 attempts, got %v", got["attempts"])
	}
	first := attempts[0].(map[string]any)
	if first["provider"] != "0x0st" || first["success"] != false || first["duration_ms"] != float64(200) {
		t.Errorf("Unexpected first attempt: %v", first)
	}
	if first["kind"] != "Transport" {
		t.Errorf("Expected Transport kind, got %v", first["kind"])
	}
}

func TestPrintJSONFailure(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, &bytes.Buffer{}, false)
	if err := p.Print(failureResult(), FormatJSON); err != nil {
		t.Fatal(err)
	}

	var got Result
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Success || got.URL != nil || got.Provider != nil {
		t.Errorf("Expected failure without url/provider, got %+v", got)
	}
	if got.Error == nil || *got.Error != "all providers failed: a: boom" {
		t.Errorf("Unexpected error field: %v", got.Error)
	}
	if got.Reason != "Exhausted" {
		t.Errorf("Expected Exhausted reason, got %q", got.Reason)
	}
}

func TestPrintVerbose(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut, false)
	if err := p.Print(successResult(), FormatVerbose); err != nil {
		t.Fatal(err)
	}

	log := errOut.String()
	for _, want := range []string{heavyRule, "Candidates: 0x0st, paste_rs", "failed Transport: connection reset", "ok", "Provider:   paste_rs", "Duration:   1.5s"} {
		if !strings.Contains(log, want) {
			t.Errorf("Expected %q in verbose output:\n%s", want, log)
		}
	}
	if strings.Index(log, "0x0st ") > strings.Index(log, "paste_rs ") {
		t.Error("attempts must be listed in order")
	}
	if out.String() != "https://paste.rs/abc\n" {
		t.Errorf("Expected URL on stdout, got %q", out.String())
	}
	if strings.Contains(log, "\x1b[") {
		t.Error("Expected no ANSI codes when color is disabled")
	}
}

func TestPrintVerboseRetryLabels(t *testing.T) {
	res := successResult()
	reset := upload.NewError("0x0st", upload.ErrTransport, "connection reset", nil)
	res.Attempts = []upload.AttemptRecord{
		{Provider: "0x0st", Retry: 0, Err: reset},
		{Provider: "0x0st", Retry: 1, Err: reset},
		{Provider: "paste_rs", Retry: 0, Success: true},
	}

	var errOut bytes.Buffer
	if err := NewPrinter(&bytes.Buffer{}, &errOut, false).Print(res, FormatVerbose); err != nil {
		t.Fatal(err)
	}

	var labels []string
	for _, line := range strings.Split(errOut.String(), "\n") {
		if !strings.Contains(line, " try ") {
			continue
		}
		switch {
		case strings.Contains(line, " retry "):
			labels = append(labels, "retry")
		case strings.Contains(line, " failed "):
			labels = append(labels, "failed")
		case strings.HasSuffix(strings.TrimSpace(line), "ok"):
			labels = append(labels, "ok")
		}
	}
	want := []string{"retry", "failed", "ok"}
	if strings.Join(labels, ",") != strings.Join(want, ",") {
		t.Errorf("Expected labels %v, got %v\n%s", want, labels, errOut.String())
	}
}

func TestPrintVerboseColor(t *testing.T) {
	var errOut bytes.Buffer
	p := NewPrinter(&bytes.Buffer{}, &errOut, true)
	if err := p.Print(failureResult(), FormatVerbose); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(errOut.String(), "\x1b[31m") {
		t.Errorf("Expected red failure status, got %q", errOut.String())
	}
}

func TestPrintPlan(t *testing.T) {
	var errOut bytes.Buffer
	p := NewPrinter(&bytes.Buffer{}, &errOut, false)
	p.PrintPlan(PlanDetails{
		Plan: &orchestrator.Plan{
			Classification: classify.Classification{Kind: upload.KindBinary, Filename: "cat.png", MIME: "image/png", Image: true},
			Size:           2048,
			Group:          "images",
			Candidates:     []string{"bunny", "0x0st"},
		},
		Schedule:       []time.Duration{time.Second, 2 * time.Second},
		AttemptTimeout: 30 * time.Second,
	})

	got := errOut.String()
	for _, want := range []string{"DRY RUN", "2.0 KiB", " 1. bunny", " 2. 0x0st", "Group:      images", "Retry Delays:    1s, 2s"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in plan output:\n%s", want, got)
		}
	}
}

type capsAdapter struct {
	name string
	caps upload.Capabilities
}

func (a capsAdapter) Name() string                      { return a.name }
func (a capsAdapter) Capabilities() upload.Capabilities { return a.caps }
func (a capsAdapter) Upload(context.Context, *upload.Request) (*upload.Success, error) {
	return nil, errors.New("not used")
}

type adapterMap map[string]upload.Adapter

func (m adapterMap) Adapter(name string) (upload.Adapter, bool) {
	a, ok := m[name]
	return a, ok
}

func TestPrintProviders(t *testing.T) {
	off := false
	cfg := &config.Config{
		Providers: []config.Provider{
			{Name: "0x0st", Type: config.TypeHTTP, Priority: 1},
			{Name: "paste_rs", Type: config.TypeHTTP, Priority: 2},
			{Name: "bunny", Type: config.TypeBunny, Priority: 3, Enabled: &off},
		},
		ProviderGroups: map[string]config.Group{
			"pastes": {Providers: []string{"paste_rs", "0x0st"}},
			"files":  {Providers: []string{"bunny"}},
		},
	}
	adapters := adapterMap{
		"0x0st":    capsAdapter{"0x0st", upload.Capabilities{MaxSizeBytes: 512 << 20, Accepts: []upload.Kind{upload.KindBinary}}},
		"paste_rs": capsAdapter{"paste_rs", upload.Capabilities{MaxSizeBytes: 10 << 20, Accepts: []upload.Kind{upload.KindText}}},
	}
	var out bytes.Buffer
	NewPrinter(&out, &bytes.Buffer{}, false).PrintProviders(cfg, adapters)

	lines := strings.Split(out.String(), "\n")
	find := func(prefix string) string {
		for _, l := range lines {
			if strings.HasPrefix(l, prefix) {
				return l
			}
		}
		t.Fatalf("No line for %q in:\n%s", prefix, out.String())
		return ""
	}

	if l := find("0x0st "); !strings.Contains(l, "max 512 MiB") || !strings.Contains(l, "accepts binary ") {
		t.Errorf("Expected adapter limits for 0x0st, got %q", l)
	}
	if l := find("paste_rs "); !strings.Contains(l, "max 10 MiB") || !strings.Contains(l, "accepts text ") {
		t.Errorf("Expected adapter limits for paste_rs, got %q", l)
	}
	if l := find("bunny "); !strings.Contains(l, "disabled") || !strings.Contains(l, "accepts - ") {
		t.Errorf("Expected disabled bunny without limits, got %q", l)
	}

	got := out.String()
	if !strings.Contains(got, "pastes       paste_rs -> 0x0st") {
		t.Errorf("Expected pastes group in output:\n%s", got)
	}
	if strings.Index(got, "files") > strings.Index(got, "pastes") {
		t.Error("groups must be sorted by name")
	}
}
