package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"fissh/internal/aquarium"
	"fissh/internal/terminal"
)

// controlMessage is a client message on the websocket stream.
type controlMessage struct {
	Type string `json:"type"`
	Rows int    `json:"rows"`
	Cols int    `json:"cols"`
}

// wsSink writes frames as text messages guarded by a mutex and write
// deadline.
type wsSink struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *wsSink) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return 0, err
	}
	if err := w.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsSink) close(code int, text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	msg := websocket.FormatCloseMessage(code, text)
	_ = w.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	_ = w.conn.Close()
}

// Handler serves GET /stream and GET /healthz.
func (s *Server) Handler() http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 16 * 1024,
	}
	if origins := s.cfg.Web.AllowedOrigins; len(origins) > 0 {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			return slices.Contains(origins, r.Header.Get("Origin"))
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /stream", func(w http.ResponseWriter, r *http.Request) {
		s.handleStream(&upgrader, w, r)
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"active": s.Active(),
		})
	})
	return mux
}

// handleStream serves one browser viewer. The query may carry the initial
// terminal size as rows and cols in character columns.
func (s *Server) handleStream(upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request) {
	termRows := queryInt(r, "rows", terminal.FallbackRows)
	termCols := queryInt(r, "cols", terminal.FallbackCols)
	dims := terminal.NewDims(terminal.Viewport(termRows, termCols))
	if err := aquarium.ValidateViewport(dims.Get()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Reserve the slot before upgrading so a full server answers with a
	// plain 503.
	sink := &wsSink{}
	sess, err := s.open(r.Context(), "web", r.RemoteAddr, dims, sink)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrCapacity) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, err.Error(), status)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		sess.stop("handshake failed")
		s.release(sess)
		return
	}
	sink.conn = conn

	if err := sess.sched.Start(r.Context()); err != nil {
		s.logger.Debug("web stream failed to start", "session", sess.id, "err", err)
	}

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		<-sess.sched.Done()
		s.release(sess)
		sink.close(websocket.CloseNormalClosure, sess.finalReason())
	}()

	for {
		kind, payload, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if len(payload) > 0 && (payload[0] == terminal.ETX || payload[0] == terminal.EOT) {
			sess.stop("interrupt")
			break
		}
		if kind != websocket.TextMessage {
			continue
		}
		var msg controlMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logger.Debug("web control message ignored", "session", sess.id, "err", err)
			continue
		}
		if msg.Type == "resize" {
			sess.resize(msg.Rows, msg.Cols)
		}
	}
	sess.stop("closed")
	<-finished
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return fallback
	}
	return v
}
