package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/mutuals/pkg/errors"
	"github.com/matzehuels/mutuals/pkg/graph"
	"github.com/matzehuels/mutuals/pkg/observability"
	"github.com/matzehuels/mutuals/pkg/selection"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 << 10
	sendBuffer     = 8
)

// Frame types.
const (
	FrameTap      = "tap"
	FrameDeselect = "deselect"
	FrameGet      = "get"
	FrameOutput   = "output"
	FrameReload   = "reload"
	FrameError    = "error"
)

// InFrame is a client message.
type InFrame struct {
	Type string     `json:"type"`
	ID   string     `json:"id,omitempty"`
	Kind graph.Kind `json:"kind,omitempty"`
}

// OutFrame is a server message. Output is set on output and reload frames,
// Error on error frames.
type OutFrame struct {
	Type   string            `json:"type"`
	View   string            `json:"view"`
	Output *selection.Output `json:"output,omitempty"`
	Error  *ErrorBody        `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// event converts a frame to a selection event. Get frames yield nil.
func (f InFrame) event() (selection.Event, error) {
	switch f.Type {
	case FrameTap:
		return selection.Tap{ID: f.ID, Kind: f.Kind}, nil
	case FrameDeselect:
		return selection.Deselect{}, nil
	case FrameGet:
		return nil, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidEvent, "unknown frame type %q", f.Type)
}

func errorFrame(view string, err error) OutFrame {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return OutFrame{Type: FrameError, View: view, Error: &ErrorBody{Code: code, Message: errors.UserMessage(err)}}
}

// handleWebSocket serves one view over a WebSocket. The view lives as long
// as the connection.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	v, err := s.views.Create()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer s.views.Delete(v.ID)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "err", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	observability.HTTP().OnStream(ctx, 1)
	defer observability.HTTP().OnStream(ctx, -1)
	s.logger.Debug("stream opened", "view", v.ID, "remote", r.RemoteAddr)

	send := make(chan OutFrame, sendBuffer)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.writePump(ctx, conn, v, send)
	}()

	out := v.Current()
	send <- OutFrame{Type: FrameOutput, View: v.ID, Output: &out}

	s.readPump(ctx, conn, v, send)
	cancel()
	<-done
	conn.Close()
	s.logger.Debug("stream closed", "view", v.ID)
}

func (s *Server) readPump(ctx context.Context, conn *websocket.Conn, v *View, send chan<- OutFrame) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("stream read failed", "view", v.ID, "err", err)
			}
			return
		}

		var frame OutFrame
		var in InFrame
		if err := json.Unmarshal(data, &in); err != nil {
			frame = errorFrame(v.ID, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid frame"))
		} else if ev, err := in.event(); err != nil {
			frame = errorFrame(v.ID, err)
		} else if ev == nil {
			out := v.Current()
			frame = OutFrame{Type: FrameOutput, View: v.ID, Output: &out}
		} else if out, err := v.Handle(ctx, ev); err != nil {
			frame = errorFrame(v.ID, err)
		} else {
			frame = OutFrame{Type: FrameOutput, View: v.ID, Output: &out}
		}

		select {
		case send <- frame:
		case <-ctx.Done():
			return
		}
	}
}

// writePump owns all writes to conn: queued frames, reload notices and pings.
func (s *Server) writePump(ctx context.Context, conn *websocket.Conn, v *View, send <-chan OutFrame) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	// a dead writer must unblock the reader
	defer func() {
		if ctx.Err() == nil {
			conn.Close()
		}
	}()

	reload := s.reloadSignal()
	write := func(f OutFrame) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(f); err != nil {
			s.logger.Debug("stream write failed", "view", v.ID, "err", err)
			return false
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case f := <-send:
			if !write(f) {
				return
			}
		case <-reload:
			reload = s.reloadSignal()
			out := v.Current()
			if !write(OutFrame{Type: FrameReload, View: v.ID, Output: &out}) {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
