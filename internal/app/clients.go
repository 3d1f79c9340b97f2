package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/firestore"

	"github.com/studyloop/reviewsync/internal/clients/gcp"
	redisclient "github.com/studyloop/reviewsync/internal/clients/redis"
	"github.com/studyloop/reviewsync/internal/clients/vertex"
	"github.com/studyloop/reviewsync/internal/platform/logger"
)

type Clients struct {
	Firestore *firestore.Client
	Agent     vertex.AgentClient
	Locks     redisclient.EventLocker
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	fs, err := gcp.NewFirestoreClient(ctx, log, cfg.ProjectID)
	if err != nil {
		return Clients{}, fmt.Errorf("init firestore client: %w", err)
	}

	agent, err := vertex.NewAgentClient(ctx, log, cfg.ProjectID, cfg.Location)
	if err != nil {
		_ = fs.Close()
		return Clients{}, fmt.Errorf("init agent client: %w", err)
	}

	// Redis is optional: without it same-event invocations run unserialized.
	var locks redisclient.EventLocker
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		l, err := redisclient.NewEventLocker(log)
		if err != nil {
			_ = agent.Close()
			_ = fs.Close()
			return Clients{}, fmt.Errorf("init redis event locker: %w", err)
		}
		locks = l
	}

	return Clients{
		Firestore: fs,
		Agent:     agent,
		Locks:     locks,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Locks != nil {
		_ = c.Locks.Close()
	}
	if c.Agent != nil {
		_ = c.Agent.Close()
	}
	if c.Firestore != nil {
		_ = c.Firestore.Close()
	}
}
