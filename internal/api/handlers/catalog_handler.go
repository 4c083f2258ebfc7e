package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/yoockh/projectgen/internal/services"
	"github.com/yoockh/projectgen/internal/utils"
)

// IndexQueue hands reindex jobs to the index workers.
type IndexQueue interface {
	Enqueue(ctx context.Context, source string) (jobID string, err error)
}

type CatalogHandler struct {
	svc           services.CatalogService
	queue         IndexQueue
	defaultSource string

	redis         *redis.Client
	statusChannel string
	upgrader      websocket.Upgrader
}

func NewCatalogHandler(svc services.CatalogService, queue IndexQueue, defaultSource string, rdb *redis.Client, statusChannel string) *CatalogHandler {
	return &CatalogHandler{
		svc:           svc,
		queue:         queue,
		defaultSource: defaultSource,
		redis:         rdb,
		statusChannel: statusChannel,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

type ReindexRequest struct {
	Source string `json:"source"`
}

func (h *CatalogHandler) Reindex(c *gin.Context) {
	const op = "CatalogHandler.Reindex"

	var req ReindexRequest
	// an empty body, chunked or not, means "use the configured source"
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
			return
		}
	}
	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = h.defaultSource
	}
	if source == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "source is required (no CATALOG_SOURCE configured)", nil))
		return
	}

	jobID, err := h.queue.Enqueue(c.Request.Context(), source)
	if err != nil {
		writeError(c, utils.Upstream(op, "failed to enqueue reindex job", err))
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": jobID,
		"source": source,
		"status": "queued",
	})
}

func (h *CatalogHandler) Stats(c *gin.Context) {
	n, err := h.svc.Count(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": n})
}

// StatusWS forwards index worker status events to the client until either
// side goes away.
func (h *CatalogHandler) StatusWS(c *gin.Context) {
	if h.redis == nil {
		writeError(c, utils.E(utils.CodeUnavailable, "CatalogHandler.StatusWS", "status feed is not configured", nil))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	pubsub := h.redis.Subscribe(ctx, h.statusChannel)
	defer pubsub.Close()

	// drain client frames so close and pong are processed
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	ch := pubsub.Channel()
	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-readDone:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			if err := wc.ping(); err != nil {
				return
			}
		case m, ok := <-ch:
			if !ok {
				return
			}
			if err := wc.writeText([]byte(m.Payload)); err != nil {
				return
			}
		}
	}
}
