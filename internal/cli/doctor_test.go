package cli

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/presidium/internal/config"
	"github.com/example/presidium/internal/db"
)

func statusByName(results []CheckResult) map[string]string {
	m := make(map[string]string, len(results))
	for _, r := range results {
		m[r.Name] = r.Status
	}
	return m
}

func TestRunChecks_MissingHome(t *testing.T) {
	home := filepath.Join(t.TempDir(), "nope")

	results := runChecks(home)
	got := statusByName(results)

	if got["Home"] != "✗" {
		t.Errorf("Home = %q, want ✗", got["Home"])
	}
	if got["Database"] != "✗" {
		t.Errorf("Database = %q, want ✗ before init", got["Database"])
	}
	if !hasFailures(results) {
		t.Error("expected failures")
	}
}

func TestRunChecks_InitializedAndSeeded(t *testing.T) {
	home := t.TempDir()
	cfg := config.Default(home)
	cfg.ActorEmail = "chair@un.test"
	if err := config.SaveConfig(home, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	conn, err := db.Open(cfg.DatabasePath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db.InitSchema(conn, slog.New(slog.DiscardHandler)); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}

	got := statusByName(runChecks(home))
	if got["Committees"] != "⚠" {
		t.Errorf("Committees = %q, want ⚠ with no committees", got["Committees"])
	}

	if err := db.SeedFixtures(conn); err != nil {
		t.Fatalf("SeedFixtures: %v", err)
	}
	conn.Close()

	results := runChecks(home)
	for _, r := range results {
		if r.Status != "✓" {
			t.Errorf("%s = %s:\n%s", r.Name, r.Status, r.Details)
		}
	}

	var out bytes.Buffer
	printChecks(&out, results)
	if !strings.Contains(out.String(), "All checks passed.") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestCheckActor_WarnsWithoutIdentity(t *testing.T) {
	r := checkActor(config.Default(t.TempDir()))
	if r.Status != "⚠" {
		t.Errorf("Status = %q, want ⚠", r.Status)
	}
	if !strings.Contains(r.Details, "actor_email") {
		t.Errorf("Details should point at actor_email: %q", r.Details)
	}
}
