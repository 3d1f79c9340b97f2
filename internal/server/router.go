package server

import (
	"context"
	"net/http"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	cehttp "github.com/cloudevents/sdk-go/v2/protocol/http"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/studyloop/reviewsync/internal/platform/logger"
)

// EventHandler is what the router delivers decoded CloudEvents to.
type EventHandler func(ctx context.Context, e cloudevents.Event) error

// NewRouter builds the Eventarc push receiver. One route does the work;
// everything else is operational surface.
func NewRouter(log *logger.Logger, handler EventHandler) *gin.Engine {
	routerLog := log.With("component", "Router")

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	router.GET("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.POST("/events/calendar", func(c *gin.Context) {
		e, err := cehttp.NewEventFromHTTPRequest(c.Request)
		if err != nil {
			routerLog.Warn("Rejecting non-CloudEvent request", "error", err)
			c.Status(http.StatusBadRequest)
			return
		}
		if err := handler(c.Request.Context(), *e); err != nil {
			// Non-2xx makes Eventarc redeliver.
			routerLog.Error("Event handling failed", "event_id", e.ID(), "error", err)
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})

	return router
}
