package api

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "pokedeck"

func RegisterRoutes(r *gin.Engine, h *Handler) {
	// same wire format as the upstream cards API
	r.GET("/cards", h.listCards)

	api := r.Group("/api")
	{
		api.GET("/health", health)
		api.POST("/cards/filter", h.filterCards)

		decks := api.Group("/decks")
		decks.GET("", h.listDecks)
		decks.GET("/:id", h.getDeck)
		decks.DELETE("/:id", h.deleteDeck)
		decks.GET("/:id/export", h.exportDeck)
		decks.GET("/:id/qr", h.deckQR)
		decks.GET("/:id/image", h.deckImage)

		sessions := api.Group("/sessions")
		sessions.POST("", h.createSession)
		sessions.GET("/:id", h.getSession)
		sessions.DELETE("/:id", h.deleteSession)
		sessions.PUT("/:id/name", h.updateName)
		sessions.POST("/:id/cards", h.addCard)
		sessions.DELETE("/:id/cards/:cardId", h.removeCard)
		sessions.POST("/:id/save", h.saveDeck)
		sessions.POST("/:id/keystroke", h.keystroke)
		sessions.POST("/:id/search", h.search)
		sessions.POST("/:id/next", h.nextPage)
		sessions.GET("/:id/cards", h.sessionCards)
	}
}

// NewRouter builds the engine with the middleware stack and all routes.
func NewRouter(h *Handler, origins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), otelgin.Middleware(serviceName), RequestLogger(h.log), CORS(origins))
	RegisterRoutes(r, h)
	return r
}
