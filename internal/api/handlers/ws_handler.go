package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/projectgen/internal/models"
	"github.com/yoockh/projectgen/internal/services"
	"github.com/yoockh/projectgen/internal/utils"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
)

type WSHandler struct {
	projects services.ProjectService
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(projects services.ProjectService, l *logrus.Logger) *WSHandler {
	return &WSHandler{
		projects: projects,
		log:      l,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

type wsClientMsg struct {
	Type   string `json:"type"` // "generate" (default)
	Prompt string `json:"prompt"`
}

type wsServerMsg struct {
	Type         string                `json:"type"` // matches|chunk|complete|error
	Seq          int64                 `json:"seq,omitempty"`
	Chunk        string                `json:"chunk,omitempty"`
	Matches      []models.CatalogMatch `json:"matches,omitempty"`
	Project      string                `json:"project,omitempty"`
	GenerationID string                `json:"generation_id,omitempty"`
	Code         utils.Code            `json:"code,omitempty"`
	Message      string                `json:"message,omitempty"`
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeText(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.c.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (w *wsConn) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.writeText(b)
}

func (w *wsConn) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.c.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
}

func wsError(err error) wsServerMsg {
	msg := wsServerMsg{Type: "error", Code: utils.CodeOf(err), Message: "internal error"}
	var ae *utils.AppError
	if errors.As(err, &ae) {
		msg.Message = ae.Message
	}
	return msg
}

// ProjectWS streams project ideas: each client message with a prompt yields
// a matches event, chunk events and a final complete (or error) event.
func (h *WSHandler) ProjectWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response in most cases
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	go func() {
		t := time.NewTicker(wsPingPeriod)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := wc.ping(); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	// reads stay on their own goroutine so close frames and pongs are seen
	// while an answer is streaming
	prompts := make(chan string, 1)
	go func() {
		defer close(prompts)
		defer cancel()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))

			var msg wsClientMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				_ = wc.writeJSON(wsServerMsg{Type: "error", Code: utils.CodeInvalidArgument, Message: "invalid json"})
				continue
			}
			if msg.Type != "" && msg.Type != "generate" {
				_ = wc.writeJSON(wsServerMsg{Type: "error", Code: utils.CodeInvalidArgument, Message: "unknown message type"})
				continue
			}

			select {
			case prompts <- msg.Prompt:
			default:
				_ = wc.writeJSON(wsServerMsg{Type: "error", Code: utils.CodeConflict, Message: "a generation is already in progress"})
			}
		}
	}()

	for prompt := range prompts {
		res, err := h.projects.Stream(ctx, prompt, models.SourceWS, services.StreamHooks{
			OnMatches: func(m []models.CatalogMatch) {
				if err := wc.writeJSON(wsServerMsg{Type: "matches", Matches: m}); err != nil {
					cancel()
				}
			},
			OnChunk: func(seq int64, chunk string) {
				if err := wc.writeJSON(wsServerMsg{Type: "chunk", Seq: seq, Chunk: chunk}); err != nil {
					cancel()
				}
			},
		})
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			if h.log != nil {
				h.log.WithError(err).Warn("ws project stream failed")
			}
			if werr := wc.writeJSON(wsError(err)); werr != nil {
				return
			}
			continue
		}

		if err := wc.writeJSON(wsServerMsg{Type: "complete", Project: res.Project, GenerationID: res.GenerationID}); err != nil {
			return
		}
	}
}
