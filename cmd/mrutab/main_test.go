package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/mrutab/internal/config"
	"github.com/1broseidon/mrutab/internal/ipc"
	"github.com/1broseidon/mrutab/internal/windows"
)

func envFrom(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestSelectBackend(t *testing.T) {
	tests := []struct {
		name    string
		backend config.Backend
		display string
		env     map[string]string
		want    config.Backend
		wantErr bool
	}{
		{name: "explicit sway", backend: config.BackendSway, want: config.BackendSway},
		{name: "explicit x11", backend: config.BackendX11, want: config.BackendX11},
		{name: "auto prefers sway", backend: config.BackendAuto, env: map[string]string{"SWAYSOCK": "/run/sway.sock", "DISPLAY": ":0"}, want: config.BackendSway},
		{name: "auto i3sock", backend: config.BackendAuto, env: map[string]string{"I3SOCK": "/run/i3.sock"}, want: config.BackendSway},
		{name: "auto display", backend: config.BackendAuto, env: map[string]string{"DISPLAY": ":0"}, want: config.BackendX11},
		{name: "auto configured display", backend: config.BackendAuto, display: ":1", want: config.BackendX11},
		{name: "auto nothing", backend: config.BackendAuto, wantErr: true},
		{name: "unknown", backend: "wayfire", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Backend = tt.backend
			cfg.Display = tt.display
			got, err := selectBackend(cfg, envFrom(tt.env))
			if (err != nil) != tt.wantErr {
				t.Fatalf("selectBackend error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("selectBackend = %q, want %q", got, tt.want)
			}
			if tt.name == "auto nothing" && !errors.Is(err, errNoBackend) {
				t.Fatalf("expected errNoBackend, got %v", err)
			}
		})
	}
}

func TestFormatStatus(t *testing.T) {
	idx := 2
	got := formatStatus(&ipc.StatusData{Switching: true, WindowCount: 4, CurrentIndex: &idx})
	want := "switching:    yes\nwindow_count: 4\ncurrent:      2\n"
	if got != want {
		t.Fatalf("formatStatus = %q, want %q", got, want)
	}
	got = formatStatus(&ipc.StatusData{WindowCount: 1})
	if strings.Contains(got, "current") || !strings.HasPrefix(got, "switching:    no") {
		t.Fatalf("unexpected idle status %q", got)
	}
}

func TestFormatList(t *testing.T) {
	if got := formatList(nil); got != "no windows\n" {
		t.Fatalf("formatList(nil) = %q", got)
	}
	got := formatList([]windows.Window{
		{ID: 3, AppID: "foot", Title: "shell"},
		{ID: 1, WindowClass: "Firefox", Title: "docs"},
	})
	want := "    [3] foot - shell\n    [1] Firefox - docs\n"
	if got != want {
		t.Fatalf("formatList = %q, want %q", got, want)
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 2, Column: 7}, "file:/c.yaml:2:7"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml"}, "file:/c.yaml"},
		{config.Source{Kind: config.SourceFile}, "file"},
		{config.Source{Kind: config.SourceDefault, Name: "defaults"}, "default:defaults"},
		{config.Source{Kind: config.SourceDefault}, "default"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Errorf("formatSource(%+v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

// runCLI executes the root command with args and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "mode: all\nrefresh_interval: 5s\n")

	out, err := runCLI(t, "--config", path, "config", "validate")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if strings.TrimSpace(out) != "config: ok" {
		t.Fatalf("validate output %q", out)
	}

	out, err = runCLI(t, "--config", path, "--mode", "current", "config", "print")
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(out, "mode: current") || !strings.Contains(out, "refresh_interval: 5s") {
		t.Fatalf("print output missing overrides:\n%s", out)
	}

	out, err = runCLI(t, "--config", path, "config", "print", "--defaults")
	if err != nil {
		t.Fatalf("print defaults: %v", err)
	}
	if !strings.Contains(out, "backend: auto") || strings.Contains(out, "refresh_interval: 5s") {
		t.Fatalf("unexpected defaults output:\n%s", out)
	}

	out, err = runCLI(t, "--config", path, "config", "explain", "mode")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if !strings.Contains(out, "path: mode") || !strings.Contains(out, ":1:7") || !strings.Contains(out, "all") {
		t.Fatalf("unexpected explain output:\n%s", out)
	}

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "mode: sideways\n")
	if _, err := runCLI(t, "--config", bad, "config", "validate"); err == nil {
		t.Fatalf("expected validation failure")
	}

	if _, err := runCLI(t, "--config", path, "--mode", "nearby", "config", "print"); err == nil {
		t.Fatalf("expected --mode error")
	}
}

// fakeDaemon answers requests from queue with canned responses.
func fakeDaemon(ctx context.Context, t *testing.T, queue <-chan ipc.Request) {
	t.Helper()
	done := make(chan struct{})
	t.Cleanup(func() { <-done })
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case req := <-queue:
				switch req.Command {
				case ipc.CommandStatus:
					idx := 1
					req.Respond(ipc.NewStatusResponse(ipc.StatusData{Switching: true, WindowCount: 2, CurrentIndex: &idx}))
				case ipc.CommandList:
					req.Respond(ipc.NewWindowsResponse([]windows.Window{
						{ID: 3, AppID: "foot", Title: "shell", Workspace: "1"},
						{ID: 1, AppID: "firefox", Title: "docs", Workspace: "1"},
					}))
				case ipc.CommandSelect:
					req.Respond(ipc.NewErrorResponse("compositor command failed: no such window"))
				default:
					req.Respond(ipc.NewOKResponse())
				}
			}
		}
	}()
}

func TestClientCommandsAgainstServer(t *testing.T) {
	dir, err := os.MkdirTemp("", "mrutab")
	if err != nil {
		t.Fatalf("mkdtemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	socket := filepath.Join(dir, "s.sock")
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, "socket_path: "+socket+"\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := make(chan ipc.Request)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := ipc.NewServer(socket, queue, logger)
	if err := server.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer server.Stop()
	fakeDaemon(ctx, t, queue)

	if _, err := runCLI(t, "--config", cfgPath, "next"); err != nil {
		t.Fatalf("next: %v", err)
	}

	out, err := runCLI(t, "--config", cfgPath, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if strings.TrimSpace(out) != `{"status":{"switching":true,"window_count":2,"current_index":1}}` {
		t.Fatalf("unexpected status output %q", out)
	}

	out, err = runCLI(t, "--config", cfgPath, "list", "--json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.HasPrefix(out, `{"windows":[{"id":3,"app_id":"foot"`) {
		t.Fatalf("unexpected list output %q", out)
	}

	_, err = runCLI(t, "--config", cfgPath, "select")
	if !errors.Is(err, ipc.ErrDaemon) {
		t.Fatalf("expected daemon error, got %v", err)
	}
	if !strings.Contains(err.Error(), "no such window") {
		t.Fatalf("expected daemon message, got %v", err)
	}
}

func TestClientCommandWithoutDaemon(t *testing.T) {
	dir, err := os.MkdirTemp("", "mrutab")
	if err != nil {
		t.Fatalf("mkdtemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, "socket_path: "+filepath.Join(dir, "absent.sock")+"\n")

	_, err = runCLI(t, "--config", cfgPath, "cancel")
	if err == nil || !strings.Contains(err.Error(), "is the daemon running") {
		t.Fatalf("expected connection hint, got %v", err)
	}
}

func TestRootRejectsUnknownCommand(t *testing.T) {
	if _, err := runCLI(t, "teleport"); err == nil {
		t.Fatalf("expected unknown command error")
	}
	if _, err := runCLI(t, "next", "extra"); err == nil {
		t.Fatalf("expected argument error")
	}
}
