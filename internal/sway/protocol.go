// Package sway talks to sway (or i3) over its IPC socket.
package sway

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// IPC message types.
const (
	msgRunCommand    uint32 = 0
	msgGetWorkspaces uint32 = 1
	msgSubscribe     uint32 = 2
	msgGetTree       uint32 = 4
)

// Event types have the high bit set.
const (
	eventMask   uint32 = 1 << 31
	eventWindow uint32 = eventMask | 3
)

const headerLen = 14

// maxPayload bounds a single message; real trees are a few hundred KiB.
const maxPayload = 64 << 20

var ipcMagic = []byte("i3-ipc")

// ErrBadMagic is returned when a reply does not start with the i3-ipc magic.
var ErrBadMagic = errors.New("invalid i3-ipc magic")

// writeMessage frames payload as magic + length + type + payload.
func writeMessage(w io.Writer, msgType uint32, payload []byte) error {
	msg := make([]byte, headerLen+len(payload))
	copy(msg[0:6], ipcMagic)
	binary.LittleEndian.PutUint32(msg[6:10], uint32(len(payload)))
	binary.LittleEndian.PutUint32(msg[10:14], msgType)
	copy(msg[headerLen:], payload)

	_, err := w.Write(msg)
	return err
}

// readMessage reads one framed message.
func readMessage(r io.Reader) (uint32, []byte, error) {
	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, nil, err
	}
	if string(header[0:6]) != string(ipcMagic) {
		return 0, nil, ErrBadMagic
	}

	length := binary.LittleEndian.Uint32(header[6:10])
	msgType := binary.LittleEndian.Uint32(header[10:14])
	if length > maxPayload {
		return 0, nil, fmt.Errorf("i3-ipc message too large: %d bytes", length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, err
	}
	return msgType, payload, nil
}

// commandResult is one entry of a RUN_COMMAND reply.
type commandResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// subscribeResult is the reply to SUBSCRIBE.
type subscribeResult struct {
	Success bool `json:"success"`
}

// windowEvent is the payload of a window event.
type windowEvent struct {
	Change    string `json:"change"`
	Container struct {
		ID int64 `json:"id"`
	} `json:"container"`
}
