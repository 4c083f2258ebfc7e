package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/projectgen/internal/api/handlers"
	"github.com/yoockh/projectgen/internal/api/middleware"
)

type Deps struct {
	Project     *handlers.ProjectHandler
	Voice       *handlers.VoiceHandler // nil when speech is disabled
	Search      *handlers.SearchHandler
	Generations *handlers.GenerationHandler
	WS          *handlers.WSHandler
	Catalog     *handlers.CatalogHandler
	Keys        *handlers.KeyHandler

	AuthLevel string
	Verifier  middleware.KeyVerifier
	JWT       middleware.JWTConfig
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	keyed := middleware.FunctionKey(d.AuthLevel, d.Verifier)

	api := r.Group("/api", keyed)
	api.GET("/project", d.Project.Generate)
	api.POST("/project", d.Project.Generate)
	if d.Voice != nil {
		api.POST("/project/voice", d.Voice.Generate)
	}
	api.GET("/search", d.Search.Search)
	if d.Generations != nil {
		api.GET("/generations", d.Generations.List)
		api.GET("/generations/:generation_id", d.Generations.Get)
	}

	ws := r.Group("/ws", keyed)
	ws.GET("/project", d.WS.ProjectWS)

	admin := r.Group("/admin", middleware.JWTAuth(d.JWT), middleware.RequireAdmin())
	admin.POST("/catalog/reindex", d.Catalog.Reindex)
	admin.GET("/catalog/stats", d.Catalog.Stats)
	admin.GET("/catalog/status", d.Catalog.StatusWS)
	admin.POST("/keys", d.Keys.Issue)
	admin.DELETE("/keys/:key_id", d.Keys.Revoke)
}
