package app

import (
	"context"
	"fmt"
	"os"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/studyloop/reviewsync/internal/observability"
	"github.com/studyloop/reviewsync/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services

	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "reviewsync",
		Environment: cfg.Environment,
	})

	clientset, err := wireClients(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(clientset.Firestore, log)

	serviceset, err := wireServices(log, cfg, clientset, reposet)
	if err != nil {
		clientset.Close()
		log.Sync()
		return nil, err
	}

	return &App{
		Log:          log,
		Cfg:          cfg,
		Clients:      clientset,
		Repos:        reposet,
		Services:     serviceset,
		otelShutdown: otelShutdown,
	}, nil
}

// HandleCalendarEvent is the shared entry for both deployments: the Cloud
// Functions target and the Eventarc push receiver hand the CloudEvent here.
func (a *App) HandleCalendarEvent(ctx context.Context, e cloudevents.Event) error {
	ctx, span := otel.Tracer("reviewsync").Start(ctx, "calendar_event_sync")
	defer span.End()
	span.SetAttributes(attribute.String("cloudevent.type", e.Type()))

	resourcePath := documentPath(e)
	return a.Services.Sync.HandleEventChange(ctx, resourcePath, e.Data())
}

// documentPath prefers the "document" extension set by Firestore triggers
// and falls back to the CloudEvent subject Eventarc sets on push delivery.
func documentPath(e cloudevents.Event) string {
	if doc, ok := e.Extensions()["document"].(string); ok && doc != "" {
		return doc
	}
	return e.Subject()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	a.Clients.Close()
	if a.Log != nil {
		a.Log.Sync()
	}
}
