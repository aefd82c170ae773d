package daemon

import (
	"encoding/json"
	"net/http"
	"testing"

	"heic-readyd/internal/activitylog"
	"heic-readyd/internal/config"
	"heic-readyd/internal/trash"
	"heic-readyd/internal/transcode"
)

func newTestServer(t *testing.T) (*CommandServer, *Controller) {
	t.Helper()
	store := config.NewStore(config.FilePath(t.TempDir()), t.TempDir())
	if _, err := store.LoadOrInit(); err != nil {
		t.Fatalf("LoadOrInit: %v", err)
	}
	ctrl := New(store, activitylog.New(nil), transcode.NewFake(), trash.NewFake(), nil)
	srv := NewCommandServer(ctrl, "127.0.0.1:0")
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })
	return srv, ctrl
}

func TestCommandServerGetConfig(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get("http://" + srv.Addr() + "/config")
	if err != nil {
		t.Fatalf("GET /config: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var cfg config.Config
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.OutputPolicy != config.PolicyCoexist {
		t.Fatalf("output_policy = %v, want coexist", cfg.OutputPolicy)
	}
}

func TestCommandServerTogglePause(t *testing.T) {
	srv, ctrl := newTestServer(t)

	before := ctrl.Store().Snapshot().Paused
	resp, err := http.Post("http://"+srv.Addr()+"/pause", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /pause: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	after := ctrl.Store().Snapshot().Paused
	if after == before {
		t.Fatalf("pause state unchanged: before=%v after=%v", before, after)
	}
}

func TestCommandServerGetLogs(t *testing.T) {
	srv, ctrl := newTestServer(t)
	ctrl.Log().Append(activitylog.Entry{Result: activitylog.ResultSuccess, SourcePath: "/w/a.heic"})

	resp, err := http.Get("http://" + srv.Addr() + "/logs")
	if err != nil {
		t.Fatalf("GET /logs: %v", err)
	}
	defer resp.Body.Close()

	var entries []activitylog.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || entries[0].SourcePath != "/w/a.heic" {
		t.Fatalf("entries = %+v", entries)
	}
}
