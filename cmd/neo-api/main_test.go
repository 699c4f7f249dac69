package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Sternrassler/neo-orbit-api/internal/api"
	"github.com/Sternrassler/neo-orbit-api/internal/config"
	"github.com/Sternrassler/neo-orbit-api/internal/testutil"
	"github.com/Sternrassler/neo-orbit-api/pkg/orbit"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "absent.env")))

	err := cmd.Execute()
	return out.String(), err
}

func setupUpstream(t *testing.T) *testutil.MockNeoWs {
	t.Helper()
	mock := testutil.NewMockNeoWs()
	t.Cleanup(mock.Close)

	t.Setenv("NEOWS_BASE_URL", mock.URL())
	t.Setenv("NASA_API_KEY", "cli-key")
	t.Setenv("LOG_LEVEL", "error")
	return mock
}

func TestFetchCommand(t *testing.T) {
	mock := setupUpstream(t)

	out, err := execute(t, "fetch", "--page", "1", "--size", "2", "--pages", "2")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	var page orbit.Page
	if err := json.Unmarshal([]byte(out), &page); err != nil {
		t.Fatalf("Output is not a page: %v\n%s", err, out)
	}

	if page.Count != 4 {
		t.Errorf("Expected 4 items, got %d", page.Count)
	}
	if got := *page.Items[0].ID; got != "p1-0" {
		t.Errorf("Expected first id p1-0, got %s", got)
	}
	if got := mock.GetPages(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Expected pages [1 2], got %v", got)
	}
	if got := mock.GetLastQuery()["api_key"]; got != "cli-key" {
		t.Errorf("Expected api_key cli-key, got %s", got)
	}
}

func TestFetchCommand_InvalidRequest(t *testing.T) {
	mock := setupUpstream(t)

	if _, err := execute(t, "fetch", "--pages", "0"); err == nil {
		t.Fatal("Expected error for --pages 0")
	}
	if mock.GetRequestCount() != 0 {
		t.Errorf("Expected no upstream requests, got %d", mock.GetRequestCount())
	}
}

func TestFetchCommand_UpstreamError(t *testing.T) {
	mock := setupUpstream(t)
	mock.SetPage(0, testutil.NewServerErrorResponse())

	if _, err := execute(t, "fetch"); err == nil {
		t.Fatal("Expected error for upstream 500")
	}
}

func TestExplicitConfigMissing(t *testing.T) {
	setupUpstream(t)

	missing := filepath.Join(t.TempDir(), "missing.yml")
	if _, err := execute(t, "fetch", "--config", missing); err == nil {
		t.Fatal("Expected error for missing explicit config file")
	}
}

func TestEnvFileLoaded(t *testing.T) {
	mock := setupUpstream(t)
	os.Unsetenv("NASA_API_KEY")

	envFile := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(envFile, []byte("NASA_API_KEY=from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"fetch", "--size", "1", "--env-file", envFile})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if got := mock.GetLastQuery()["api_key"]; got != "from-dotenv" {
		t.Errorf("Expected api_key from .env, got %s", got)
	}
}

func TestServe_StopsOnContextCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Catalog.CSVPath = ""

	agg, err := newAggregator(cfg)
	if err != nil {
		t.Fatalf("newAggregator failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, api.NewServer(cfg, agg), "127.0.0.1:0")
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}
