package sway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

const testTree = `{
  "id": 1, "name": "root", "type": "root", "nodes": [
    {"id": 2, "name": "eDP-1", "type": "output", "nodes": [
      {"id": 3, "name": "1", "type": "workspace", "nodes": [
        {"id": 10, "name": "shell", "type": "con", "pid": 100, "app_id": "foot", "focused": true, "nodes": [], "floating_nodes": []}
      ], "floating_nodes": []}
    ], "floating_nodes": []}
  ], "floating_nodes": []
}`

const testWorkspaces = `[{"num":1,"name":"1","focused":true,"visible":true,"output":"eDP-1"}]`

// fakeSway answers i3-ipc requests on a unix socket.
type fakeSway struct {
	path     string
	listener net.Listener

	mu       sync.Mutex
	commands []string
	reply    string
	events   chan []byte
}

func newFakeSway(t *testing.T) *fakeSway {
	t.Helper()
	dir, err := os.MkdirTemp("", "sway")
	if err != nil {
		t.Fatalf("MkdirTemp() error: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	f := &fakeSway{
		path:   filepath.Join(dir, "sway.sock"),
		reply:  `[{"success":true}]`,
		events: make(chan []byte, 8),
	}
	f.listener, err = net.Listen("unix", f.path)
	if err != nil {
		t.Fatalf("Listen() error: %v", err)
	}
	t.Cleanup(func() { f.listener.Close() })

	go f.serve()
	return f
}

func (f *fakeSway) serve() {
	for {
		conn, err := f.listener.Accept()
		if err != nil {
			return
		}
		go f.handle(conn)
	}
}

func (f *fakeSway) handle(conn net.Conn) {
	defer conn.Close()
	for {
		msgType, payload, err := readMessage(conn)
		if err != nil {
			return
		}
		switch msgType {
		case msgGetTree:
			writeMessage(conn, msgType, []byte(testTree))
		case msgGetWorkspaces:
			writeMessage(conn, msgType, []byte(testWorkspaces))
		case msgRunCommand:
			f.mu.Lock()
			f.commands = append(f.commands, string(payload))
			reply := f.reply
			f.mu.Unlock()
			writeMessage(conn, msgType, []byte(reply))
		case msgSubscribe:
			writeMessage(conn, msgType, []byte(`{"success":true}`))
			for ev := range f.events {
				if err := writeMessage(conn, eventWindow, ev); err != nil {
					return
				}
			}
			return
		}
	}
}

func (f *fakeSway) setReply(reply string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reply = reply
}

func (f *fakeSway) sentCommands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands...)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dialFake(t *testing.T, f *fakeSway) *Client {
	t.Helper()
	c, err := Dial(f.path, quietLogger())
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestFraming(t *testing.T) {
	var buf bytes.Buffer
	if err := writeMessage(&buf, msgRunCommand, []byte("focus")); err != nil {
		t.Fatalf("writeMessage() error: %v", err)
	}
	want := append([]byte("i3-ipc\x05\x00\x00\x00\x00\x00\x00\x00"), "focus"...)
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("frame = %q, want %q", buf.Bytes(), want)
	}

	msgType, payload, err := readMessage(&buf)
	if err != nil || msgType != msgRunCommand || string(payload) != "focus" {
		t.Fatalf("readMessage() = (%d, %q, %v)", msgType, payload, err)
	}

	_, _, err = readMessage(strings.NewReader("i3-ip\x00\x00\x00\x00\x00\x00\x00\x00\x00"))
	if !errors.Is(err, ErrBadMagic) {
		t.Fatalf("readMessage() error = %v, want ErrBadMagic", err)
	}

	_, _, err = readMessage(strings.NewReader("i3-ipc\x05\x00"))
	if err == nil {
		t.Fatalf("expected error for truncated header")
	}
}

func TestSocketPath(t *testing.T) {
	t.Setenv("SWAYSOCK", "")
	t.Setenv("I3SOCK", "")
	if _, err := SocketPath(); !errors.Is(err, ErrNoSocket) {
		t.Fatalf("SocketPath() error = %v, want ErrNoSocket", err)
	}

	t.Setenv("I3SOCK", "/run/i3.sock")
	if got, _ := SocketPath(); got != "/run/i3.sock" {
		t.Fatalf("SocketPath() = %q, want I3SOCK", got)
	}

	t.Setenv("SWAYSOCK", "/run/sway.sock")
	if got, _ := SocketPath(); got != "/run/sway.sock" {
		t.Fatalf("SocketPath() = %q, want SWAYSOCK", got)
	}
}

func TestClient_TreeAndWorkspaces(t *testing.T) {
	f := newFakeSway(t)
	c := dialFake(t, f)
	ctx := context.Background()

	tree, err := c.Tree(ctx)
	if err != nil {
		t.Fatalf("Tree() error: %v", err)
	}
	win := tree.Nodes[0].Nodes[0].Nodes[0]
	if win.ID != 10 || win.AppID != "foot" || win.PID != 100 || !win.Focused {
		t.Fatalf("decoded window = %+v", win)
	}

	workspaces, err := c.Workspaces(ctx)
	if err != nil {
		t.Fatalf("Workspaces() error: %v", err)
	}
	if len(workspaces) != 1 || workspaces[0].Name != "1" || !workspaces[0].Focused {
		t.Fatalf("Workspaces() = %+v", workspaces)
	}
}

func TestClient_FocusWindow(t *testing.T) {
	f := newFakeSway(t)
	c := dialFake(t, f)

	if err := c.FocusWindow(context.Background(), 42); err != nil {
		t.Fatalf("FocusWindow() error: %v", err)
	}
	if got := f.sentCommands(); len(got) != 1 || got[0] != "[con_id=42] focus" {
		t.Fatalf("commands = %q", got)
	}

	f.setReply(`[{"success":false,"error":"No matching node"}]`)
	err := c.FocusWindow(context.Background(), 43)
	if err == nil || !strings.Contains(err.Error(), "No matching node") {
		t.Fatalf("FocusWindow() error = %v, want compositor message", err)
	}
}

func TestClient_ClosedConnection(t *testing.T) {
	f := newFakeSway(t)
	c := dialFake(t, f)
	c.Close()

	if _, err := c.Tree(context.Background()); !errors.Is(err, net.ErrClosed) {
		t.Fatalf("Tree() error = %v, want net.ErrClosed", err)
	}
}

func TestClient_SubscribeFocus(t *testing.T) {
	f := newFakeSway(t)
	c := dialFake(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan int64, 4)
	done := make(chan error, 1)
	go func() { done <- c.SubscribeFocus(ctx, out) }()

	event := func(change string, id int64) []byte {
		var ev windowEvent
		ev.Change = change
		ev.Container.ID = id
		data, _ := json.Marshal(ev)
		return data
	}
	f.events <- event("new", 5)
	f.events <- []byte("not json")
	f.events <- event("focus", 7)

	select {
	case id := <-out:
		if id != 7 {
			t.Fatalf("focused id = %d, want 7", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no focus event received")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("SubscribeFocus() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("SubscribeFocus did not stop on cancel")
	}
}
