package ipc

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testSocketPath(t *testing.T) string {
	t.Helper()
	// Unix socket paths are length limited; keep the directory short.
	dir, err := os.MkdirTemp("", "mrutab")
	if err != nil {
		t.Fatalf("MkdirTemp() error: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "s.sock")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startServer runs a server whose queue is served by handler until the test ends.
func startServer(t *testing.T, handler func(Request)) (*Server, string) {
	t.Helper()
	path := testSocketPath(t)
	queue := make(chan Request)
	ctx, cancel := context.WithCancel(context.Background())

	srv := NewServer(path, queue, quietLogger())
	if err := srv.Start(ctx); err != nil {
		cancel()
		t.Fatalf("Start() error: %v", err)
	}

	go func() {
		for {
			select {
			case req := <-queue:
				handler(req)
			case <-ctx.Done():
				return
			}
		}
	}()

	t.Cleanup(func() {
		cancel()
		srv.Stop()
	})
	return srv, path
}

func rawExchange(t *testing.T, path, line string) string {
	t.Helper()
	conn, err := net.DialTimeout("unix", path, time.Second)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(2 * time.Second))

	if _, err := conn.Write([]byte(line)); err != nil {
		t.Fatalf("write error: %v", err)
	}
	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	return strings.TrimSpace(reply)
}

func TestServer_ForwardsCommands(t *testing.T) {
	got := make(chan Command, 4)
	_, path := startServer(t, func(req Request) {
		got <- req.Command
		req.Respond(NewOKResponse())
	})

	if reply := rawExchange(t, path, "SELECT\n"); reply != `{"ok":null}` {
		t.Fatalf("reply = %s, want ok", reply)
	}
	if cmd := <-got; cmd != CommandSelect {
		t.Fatalf("forwarded %q, want select", cmd)
	}
}

func TestServer_RejectsUnknownCommand(t *testing.T) {
	called := make(chan struct{}, 1)
	_, path := startServer(t, func(req Request) {
		called <- struct{}{}
		req.Respond(NewOKResponse())
	})

	reply := rawExchange(t, path, "dance\n")
	if !strings.HasPrefix(reply, `{"error":`) || !strings.Contains(reply, "dance") {
		t.Fatalf("reply = %s, want error naming the command", reply)
	}
	select {
	case <-called:
		t.Fatalf("malformed command reached the daemon loop")
	default:
	}
}

func TestServer_RejectsOverlongRequest(t *testing.T) {
	called := make(chan struct{}, 1)
	_, path := startServer(t, func(req Request) {
		called <- struct{}{}
		req.Respond(NewOKResponse())
	})

	// No newline: the server must answer once the limit is reached instead
	// of waiting for the rest of the line.
	reply := rawExchange(t, path, strings.Repeat("a", 4*maxRequestLen))
	if reply != `{"error":"request too long"}` {
		t.Fatalf("reply = %s, want request too long", reply)
	}
	select {
	case <-called:
		t.Fatalf("overlong request reached the daemon loop")
	default:
	}
}

func TestServer_SocketPermissionsAndCleanup(t *testing.T) {
	srv, path := startServer(t, func(req Request) { req.Respond(NewOKResponse()) })

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Fatalf("socket mode = %o, want 600", perm)
	}

	srv.Stop()
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("socket still present after Stop: %v", err)
	}
}

func TestServer_RemovesStaleSocket(t *testing.T) {
	path := testSocketPath(t)
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	srv := NewServer(path, make(chan Request), quietLogger())
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() over stale file error: %v", err)
	}
	srv.Stop()
}

func TestServer_ShuttingDown(t *testing.T) {
	path := testSocketPath(t)
	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(path, make(chan Request), quietLogger())
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer srv.Stop()

	// Nobody reads the queue; cancelling ctx must release the connection.
	cancel()
	reply := rawExchange(t, path, "show\n")
	if reply != `{"error":"daemon is shutting down"}` {
		t.Fatalf("reply = %s, want shutdown error", reply)
	}
}

func TestClient_RoundTrip(t *testing.T) {
	one := 1
	_, path := startServer(t, func(req Request) {
		switch req.Command {
		case CommandStatus:
			req.Respond(NewStatusResponse(StatusData{Switching: true, WindowCount: 3, CurrentIndex: &one}))
		case CommandList:
			req.Respond(NewWindowsResponse(nil))
		case CommandSelect:
			req.Respond(NewErrorResponse("focus failed"))
		default:
			req.Respond(NewOKResponse())
		}
	})
	client := NewClient(path)

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if !status.Switching || status.WindowCount != 3 || status.CurrentIndex == nil || *status.CurrentIndex != 1 {
		t.Fatalf("Status() = %+v", status)
	}

	list, err := client.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("List() = %v, want empty", list)
	}

	if err := client.Do(CommandNext); err != nil {
		t.Fatalf("Do(next) error: %v", err)
	}

	err = client.Do(CommandSelect)
	if !errors.Is(err, ErrDaemon) || !strings.Contains(err.Error(), "focus failed") {
		t.Fatalf("Do(select) error = %v, want daemon error", err)
	}
}

func TestClient_NoDaemon(t *testing.T) {
	client := NewClient(testSocketPath(t)).WithTimeout(200 * time.Millisecond)
	err := client.Do(CommandShow)
	if err == nil || !strings.Contains(err.Error(), "is the daemon running?") {
		t.Fatalf("Do() error = %v, want connection hint", err)
	}
}
