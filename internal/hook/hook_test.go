package hook

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	skillrouter "github.com/flexigpt/skillrouter-go"
	"github.com/flexigpt/skillrouter-go/internal/ledger"
	"github.com/flexigpt/skillrouter-go/scorer/keyword"
	"github.com/flexigpt/skillrouter-go/spec"
)

func testRuntime(t *testing.T, led spec.Ledger) *skillrouter.Runtime {
	t.Helper()
	rt, err := skillrouter.New(
		skillrouter.WithRules([]spec.SkillRule{
			{Name: "git-workflow", AutoActivate: true, Priority: 10, Keywords: []string{"rebase"}},
			{Name: "code-review", AutoActivate: true, Priority: 40, Dependencies: []string{"git-workflow"}},
		}),
		skillrouter.WithLedger(led),
		skillrouter.WithScorer(keyword.New()),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return rt
}

func TestReadEvent(t *testing.T) {
	ev, err := ReadEvent(strings.NewReader(`{"conversation_id":"c1","prompt":"p","candidates":[{"name":"x","confidence":0.9}]}`))
	if err != nil {
		t.Fatalf("ReadEvent: %v", err)
	}
	if ev.ConversationID != "c1" || ev.Prompt != "p" || len(ev.Candidates) != 1 {
		t.Fatalf("ReadEvent = %+v", ev)
	}
}

func TestReadEventRequiresConversationID(t *testing.T) {
	if _, err := ReadEvent(strings.NewReader(`{"prompt":"p"}`)); !errors.Is(err, spec.ErrConversationRequired) {
		t.Fatalf("err = %v, want ErrConversationRequired", err)
	}
}

func TestReadEventMalformedJSON(t *testing.T) {
	if _, err := ReadEvent(strings.NewReader(`{"conversation_id":`)); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestRunWithHostCandidates(t *testing.T) {
	led := ledger.NewMem()
	rt := testRuntime(t, led)

	in := strings.NewReader(`{"conversation_id":"c1","candidates":[{"name":"code-review","confidence":0.9}]}`)
	var out bytes.Buffer
	if err := Run(context.Background(), rt, in, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "<activated_skills>") {
		t.Fatalf("output = %q, want activated block", got)
	}
	// Dependency comes first.
	if strings.Index(got, "git-workflow") > strings.Index(got, "code-review") {
		t.Fatalf("dependency order lost:\n%s", got)
	}
	if !strings.HasSuffix(got, "\n") {
		t.Fatalf("output must end with newline")
	}

	st, _ := led.Read("c1")
	if !st.Has("code-review") || !st.Has("git-workflow") {
		t.Fatalf("ledger = %v, want both skills", st.Activated)
	}
}

func TestRunScoresWhenNoCandidates(t *testing.T) {
	led := ledger.NewMem()
	rt := testRuntime(t, led)

	in := strings.NewReader(`{"conversation_id":"c1","prompt":"rebase my branch"}`)
	var out bytes.Buffer
	if err := Run(context.Background(), rt, in, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "git-workflow") {
		t.Fatalf("output = %q, want git-workflow via keyword scorer", out.String())
	}
}

func TestRunNoActivationWritesNothing(t *testing.T) {
	led := ledger.NewMem()
	rt := testRuntime(t, led)

	in := strings.NewReader(`{"conversation_id":"c1","prompt":"unrelated request"}`)
	var out bytes.Buffer
	if err := Run(context.Background(), rt, in, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("output = %q, want empty", out.String())
	}
	st, _ := led.Read("c1")
	if len(st.Activated) != 0 {
		t.Fatalf("ledger = %v, want empty", st.Activated)
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("pipe closed") }

func TestRunCommitsOnlyAfterOutput(t *testing.T) {
	led := ledger.NewMem()
	rt := testRuntime(t, led)

	in := strings.NewReader(`{"conversation_id":"c1","candidates":[{"name":"git-workflow","confidence":0.9}]}`)
	if err := Run(context.Background(), rt, in, failWriter{}); err == nil {
		t.Fatalf("expected write error")
	}

	// The emit failed, so the turn left no trace and the host can retry.
	st, _ := led.Read("c1")
	if len(st.Activated) != 0 {
		t.Fatalf("ledger = %v, want untouched after failed emit", st.Activated)
	}
}

func TestLoadSettingsMissingFileDefaults(t *testing.T) {
	dir := t.TempDir()
	s, err := LoadSettings(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.CatalogFile != filepath.Join(dir, "skills.yaml") {
		t.Fatalf("CatalogFile = %q", s.CatalogFile)
	}
	if s.Thresholds.High != 0.65 || s.Thresholds.Low != 0.50 {
		t.Fatalf("thresholds = %+v", s.Thresholds)
	}
	if s.Capacity != 2 || s.Tiers.MaxAdmit != 2 || s.Tiers.MaxConsider != 2 {
		t.Fatalf("caps = %+v capacity=%d", s.Tiers, s.Capacity)
	}
	if s.ScoreCacheTTL != 5*time.Minute {
		t.Fatalf("ScoreCacheTTL = %v", s.ScoreCacheTTL)
	}
}

func TestLoadSettingsOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "capacity: 3\nthresholds:\n  high: 0.8\n  low: 0.6\nlogLevel: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Capacity != 3 || s.Thresholds.High != 0.8 || s.Thresholds.Low != 0.6 || s.LogLevel != "debug" {
		t.Fatalf("settings = %+v", s)
	}
	// Unset keys keep defaults rooted at the config dir.
	if s.LedgerDir != filepath.Join(dir, "ledger") {
		t.Fatalf("LedgerDir = %q", s.LedgerDir)
	}
}

func TestLoadSettingsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("capacity: [nope"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadSettings(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSettingsPathEnvOverride(t *testing.T) {
	t.Setenv(ConfigPathEnv, "/tmp/custom.yaml")
	if got := SettingsPath(); got != "/tmp/custom.yaml" {
		t.Fatalf("SettingsPath = %q", got)
	}
}
