package api

import (
	"log"
	"net/http"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/websocket"

	"github.com/sprite-ai/revlog/internal/codec"
	"github.com/sprite-ai/revlog/internal/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024 * 64,
	WriteBufferSize: 1024 * 64,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local dev; restrict in production
	},
}

// WebSocket message types to client.
const (
	wsMsgSnapshot = "snapshot"
	wsMsgError    = "error"
)

// wsSnapshot carries the full review and its derived state. One is sent
// on connect and another after every change.
type wsSnapshot struct {
	Review *model.Review `json:"review"`
	State  stateJSON     `json:"state"`
}

type wsMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}

	s.subMu.Lock()
	s.subs[conn] = true
	s.subMu.Unlock()

	defer func() {
		s.subMu.Lock()
		delete(s.subs, conn)
		s.subMu.Unlock()
		conn.Close()
	}()

	review := s.snapshot()
	if err := conn.WriteJSON(wsMessage{Type: wsMsgSnapshot, Data: wsSnapshot{Review: review, State: stateFor(review)}}); err != nil {
		log.Printf("ws write: %v", err)
		return
	}

	// Drain the connection until the client goes away. Clients only
	// listen; all mutations arrive over the HTTP endpoints.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read: %v", err)
			}
			return
		}
	}
}

// broadcast pushes the current snapshot to every connected client.
func (s *Server) broadcast() {
	review := s.snapshot()
	msg := wsMessage{Type: wsMsgSnapshot, Data: wsSnapshot{Review: review, State: stateFor(review)}}

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for conn := range s.subs {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("ws write: %v", err)
			conn.Close()
			delete(s.subs, conn)
		}
	}
}

// startWatcher reloads the backing file when something else writes it.
// Editors replace files rather than writing in place, so the watch is
// on the parent directory.
func (s *Server) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != s.path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				s.reload()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("watch error: %v", err)
			}
		}
	}()
	return nil
}

func (s *Server) reload() {
	review, _, err := codec.Load(s.path)
	if err != nil {
		// Partial writes show up as parse errors; the next event wins.
		log.Printf("reloading %s: %v", s.path, err)
		return
	}

	s.mu.Lock()
	changed := !model.Equal(s.review, review)
	if changed {
		s.review = review
	}
	s.mu.Unlock()

	if changed {
		s.broadcast()
	}
}
