package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/hctools/hc-bulk/internal/config"
	"github.com/hctools/hc-bulk/internal/models"
	"github.com/hctools/hc-bulk/internal/repo"
	"github.com/hctools/hc-bulk/internal/services"
)

type apiStub struct {
	checks    []models.Check
	updateErr map[string]error
	updates   map[string]models.CheckUpdate
	paused    []string
}

func (a *apiStub) ListChecks(_ context.Context, tags []string) ([]models.Check, error) {
	return a.checks, nil
}

func (a *apiStub) UpdateCheck(_ context.Context, uuid string, upd models.CheckUpdate) (*models.Check, error) {
	if err := a.updateErr[uuid]; err != nil {
		return nil, err
	}
	if a.updates == nil {
		a.updates = make(map[string]models.CheckUpdate)
	}
	a.updates[uuid] = upd
	return &models.Check{UUID: uuid}, nil
}

func (a *apiStub) PauseCheck(_ context.Context, uuid string) (*models.Check, error) {
	a.paused = append(a.paused, uuid)
	return &models.Check{UUID: uuid, Status: models.StatusPaused}, nil
}

func runBulkUpdate(t *testing.T, stub *apiStub, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HC_API_KEY", "test-key")
	t.Setenv("HC_BULK_CONFIG", "")

	app := &App{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		NewClient: func(*config.Config) services.CheckClient {
			return stub
		},
	}
	cmd := newBulkUpdateCommand(app)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--progress=false"))

	err := cmd.Execute()
	return out.String(), err
}

func sampleChecks() []models.Check {
	return []models.Check{
		{UUID: "u1", Name: "backup-db", Tags: "prod", Status: "up"},
		{UUID: "u2", Name: "backup-logs", Tags: "prod", Status: "paused"},
		{UUID: "u3", Name: "ping-site", Tags: "prod", Status: "up"},
	}
}

func TestBulkUpdateDryRunMakesNoCalls(t *testing.T) {
	stub := &apiStub{checks: sampleChecks()}
	out, err := runBulkUpdate(t, stub, "",
		"--name-re", "backup", "--add-tags", "okazo", "--dry-run")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "2 check(s) matched. Preview:") {
		t.Fatalf("missing preview header:\n%s", out)
	}
	if !strings.Contains(out, "Planned: 2 update(s) (dry-run)") {
		t.Fatalf("missing planned summary:\n%s", out)
	}
	if len(stub.updates) != 0 || len(stub.paused) != 0 {
		t.Fatalf("dry run issued mutations: %v %v", stub.updates, stub.paused)
	}
}

func TestBulkUpdateDeclinedConfirmation(t *testing.T) {
	stub := &apiStub{checks: sampleChecks()}
	out, err := runBulkUpdate(t, stub, "n\n",
		"--name-re", "backup", "--add-tags", "okazo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Aborted.") {
		t.Fatalf("missing abort message:\n%s", out)
	}
	if len(stub.updates) != 0 {
		t.Fatalf("declined run issued mutations: %v", stub.updates)
	}
}

func TestBulkUpdateAppliesWithYes(t *testing.T) {
	stub := &apiStub{checks: sampleChecks()}
	out, err := runBulkUpdate(t, stub, "",
		"--name-re", "backup", "--add-tags", "okazo", "-y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Done.") {
		t.Fatalf("missing Done message:\n%s", out)
	}
	for _, uuid := range []string{"u1", "u2"} {
		upd, ok := stub.updates[uuid]
		if !ok || upd.Tags == nil || *upd.Tags != "okazo prod" {
			t.Fatalf("expected 'okazo prod' update for %s, got %+v", uuid, upd)
		}
	}
}

func TestBulkUpdateEmptySetTagsIsAnInstruction(t *testing.T) {
	stub := &apiStub{checks: []models.Check{{UUID: "u1", Name: "backup-db", Tags: "prod"}}}
	_, err := runBulkUpdate(t, stub, "", "--set-tags", "", "-y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	upd, ok := stub.updates["u1"]
	if !ok || upd.Tags == nil || *upd.Tags != "" {
		t.Fatalf("expected empty tag replacement, got %+v", upd)
	}
}

func TestBulkUpdateNoMatches(t *testing.T) {
	stub := &apiStub{checks: sampleChecks()}
	out, err := runBulkUpdate(t, stub, "", "--name-re", "nothing-here")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No checks matched filters.") {
		t.Fatalf("missing no-match message:\n%s", out)
	}
}

func TestBulkUpdatePartialFailureExitsNonZero(t *testing.T) {
	stub := &apiStub{
		checks: sampleChecks(),
		updateErr: map[string]error{
			"u2": &repo.APIError{StatusCode: 500, Op: "update check"},
		},
	}
	_, err := runBulkUpdate(t, stub, "",
		"--name-re", "backup", "--add-tags", "okazo", "-y")
	var runErr *RunError
	if !errors.As(err, &runErr) {
		t.Fatalf("expected RunError, got %v", err)
	}
	if runErr.Errors != 1 {
		t.Fatalf("expected 1 error, got %d", runErr.Errors)
	}
	// The failure on u2 must not stop u1 from being attempted.
	if _, ok := stub.updates["u1"]; !ok {
		t.Fatalf("expected u1 to be updated despite u2 failing")
	}
}

func TestBulkUpdatePauseOnly(t *testing.T) {
	stub := &apiStub{checks: sampleChecks()}
	out, err := runBulkUpdate(t, stub, "", "--name-re", "backup", "--pause", "-y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Planned: 0 update(s), 2 pause(s)") {
		t.Fatalf("missing pause summary:\n%s", out)
	}
	if len(stub.updates) != 0 {
		t.Fatalf("pause-only run issued updates: %v", stub.updates)
	}
	if len(stub.paused) != 2 {
		t.Fatalf("expected 2 pauses, got %v", stub.paused)
	}
}
