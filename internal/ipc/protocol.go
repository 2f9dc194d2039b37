package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/1broseidon/mrutab/internal/windows"
)

// ErrMalformedCommand is returned for request lines that name no known command.
var ErrMalformedCommand = errors.New("malformed command")

// ErrShuttingDown is reported to clients whose request reached a stopping daemon.
var ErrShuttingDown = errors.New("daemon is shutting down")

// Command is one word of the switcher vocabulary.
type Command string

const (
	CommandShow     Command = "show"
	CommandNext     Command = "next"
	CommandPrev     Command = "prev"
	CommandSelect   Command = "select"
	CommandCancel   Command = "cancel"
	CommandStatus   Command = "status"
	CommandShutdown Command = "shutdown"
	CommandList     Command = "list"
)

// Commands lists every command in the order the CLI documents them.
var Commands = []Command{
	CommandShow,
	CommandNext,
	CommandPrev,
	CommandSelect,
	CommandCancel,
	CommandStatus,
	CommandShutdown,
	CommandList,
}

// ParseCommand decodes one request line. Case and surrounding whitespace are ignored.
func ParseCommand(line string) (Command, error) {
	if !utf8.ValidString(line) {
		return "", fmt.Errorf("%w: request is not valid UTF-8", ErrMalformedCommand)
	}
	word := strings.ToLower(strings.TrimSpace(line))
	for _, c := range Commands {
		if Command(word) == c {
			return c, nil
		}
	}
	if word == "" {
		return "", fmt.Errorf("%w: empty request", ErrMalformedCommand)
	}
	return "", fmt.Errorf("%w: unknown command: %s", ErrMalformedCommand, word)
}

// StatusData is the payload of a status response.
type StatusData struct {
	Switching    bool `json:"switching"`
	WindowCount  int  `json:"window_count"`
	CurrentIndex *int `json:"current_index"`
}

type responseKind int

const (
	kindOK responseKind = iota
	kindError
	kindStatus
	kindWindows
)

// Response is one of the four reply shapes:
//
//	{"ok":null}
//	{"error":"<message>"}
//	{"status":{...}}
//	{"windows":[...]}
type Response struct {
	kind    responseKind
	Error   string
	Status  StatusData
	Windows []windows.Window
}

// NewOKResponse creates a plain acknowledgement.
func NewOKResponse() Response {
	return Response{kind: kindOK}
}

// NewErrorResponse creates an error response with a message.
func NewErrorResponse(msg string) Response {
	return Response{kind: kindError, Error: msg}
}

// NewStatusResponse wraps a status payload.
func NewStatusResponse(status StatusData) Response {
	return Response{kind: kindStatus, Status: status}
}

// NewWindowsResponse wraps a window list. A nil list encodes as [].
func NewWindowsResponse(list []windows.Window) Response {
	if list == nil {
		list = []windows.Window{}
	}
	return Response{kind: kindWindows, Windows: list}
}

// IsError reports whether the response carries an error message.
func (r Response) IsError() bool { return r.kind == kindError }

// IsStatus reports whether the response carries a status payload.
func (r Response) IsStatus() bool { return r.kind == kindStatus }

// IsWindows reports whether the response carries a window list.
func (r Response) IsWindows() bool { return r.kind == kindWindows }

// MarshalJSON encodes the response as a single-key object.
func (r Response) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case kindError:
		return json.Marshal(map[string]string{"error": r.Error})
	case kindStatus:
		return json.Marshal(map[string]StatusData{"status": r.Status})
	case kindWindows:
		list := r.Windows
		if list == nil {
			list = []windows.Window{}
		}
		return json.Marshal(map[string][]windows.Window{"windows": list})
	default:
		return []byte(`{"ok":null}`), nil
	}
}

// UnmarshalJSON decodes any of the response shapes.
func (r *Response) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*r = Response{}
	if raw, ok := fields["error"]; ok {
		r.kind = kindError
		return json.Unmarshal(raw, &r.Error)
	}
	if raw, ok := fields["status"]; ok {
		r.kind = kindStatus
		return json.Unmarshal(raw, &r.Status)
	}
	if raw, ok := fields["windows"]; ok {
		r.kind = kindWindows
		if err := json.Unmarshal(raw, &r.Windows); err != nil {
			return err
		}
		if r.Windows == nil {
			r.Windows = []windows.Window{}
		}
		return nil
	}
	if _, ok := fields["ok"]; ok {
		r.kind = kindOK
		return nil
	}
	return fmt.Errorf("unrecognized response: %s", strings.TrimSpace(string(data)))
}

// Marshal converts a response to a JSON line without the trailing newline.
func (r Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// Request carries a command into the daemon loop together with the slot
// its reply is delivered to.
type Request struct {
	Command Command
	reply   chan Response
}

// NewRequest creates a request whose reply can be awaited with Wait.
func NewRequest(cmd Command) Request {
	return Request{Command: cmd, reply: make(chan Response, 1)}
}

// Respond delivers the reply. Only the first reply is kept and Respond never blocks.
func (r Request) Respond(resp Response) {
	if r.reply == nil {
		return
	}
	select {
	case r.reply <- resp:
	default:
	}
}

// Wait blocks until the reply arrives or ctx is done. A reply that is
// already available wins over cancellation.
func (r Request) Wait(ctx context.Context) (Response, error) {
	select {
	case resp := <-r.reply:
		return resp, nil
	case <-ctx.Done():
		select {
		case resp := <-r.reply:
			return resp, nil
		default:
		}
		return Response{}, ErrShuttingDown
	}
}
