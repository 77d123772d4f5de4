package cli

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/hctools/hc-bulk/internal/config"
	"github.com/hctools/hc-bulk/internal/models"
	"github.com/hctools/hc-bulk/internal/services"
)

func TestLsListsMatches(t *testing.T) {
	t.Setenv("HC_API_KEY", "test-key")
	t.Setenv("HC_BULK_CONFIG", "")

	stub := &apiStub{checks: []models.Check{
		{UUID: "u1", Name: "backup-db", Slug: "backup-db", Tags: "prod", Status: "up"},
		{UUID: "u2", Name: "", Slug: "worker-cleanup", Tags: "", Status: "new"},
	}}
	app := &App{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		NewClient: func(*config.Config) services.CheckClient {
			return stub
		},
	}
	cmd := newLsCommand(app)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(nil)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "2 check(s) matched.") {
		t.Fatalf("missing match count:\n%s", got)
	}
	if !strings.Contains(got, "- backup-db  [up]  tags='prod'  slug='backup-db'  uuid=u1") {
		t.Fatalf("missing check line:\n%s", got)
	}
	if !strings.Contains(got, "- (no-name)  [new]") {
		t.Fatalf("missing placeholder for unnamed check:\n%s", got)
	}
}

func TestLsRejectsMalformedRegexBeforeFetch(t *testing.T) {
	t.Setenv("HC_API_KEY", "test-key")

	app := &App{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		NewClient: func(*config.Config) services.CheckClient {
			t.Fatalf("client must not be constructed for invalid criteria")
			return nil
		},
	}
	cmd := newLsCommand(app)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--name-re", "("})

	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error for malformed regex")
	}
}
