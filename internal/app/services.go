package app

import (
	"fmt"

	"github.com/studyloop/reviewsync/internal/platform/logger"
	"github.com/studyloop/reviewsync/internal/services"
)

type Services struct {
	Window     services.WindowFilter
	Router     services.CourseRouter
	Generation services.GenerationService
	Sync       services.SyncService
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, reposet Repos) (Services, error) {
	log.Info("Wiring services...")

	routes, err := services.LoadAgentRoutes(cfg.AgentRoutesPath, cfg.DefaultEngineID)
	if err != nil {
		return Services{}, fmt.Errorf("load agent routes: %w", err)
	}

	window := services.NewWindowFilter(log, cfg.SyncWindow)
	router := services.NewCourseRouter(log, reposet.Courses, routes)
	generation := services.NewGenerationService(log, clients.Agent)

	// A nil locker keeps the interface value nil inside the sync service.
	var locks services.EventLocker
	if clients.Locks != nil {
		locks = clients.Locks
	}

	sync := services.NewSyncService(
		log,
		window,
		router,
		generation,
		reposet.Tasks,
		locks,
		cfg.PreDueOffset,
		cfg.PostDueOffset,
	)

	return Services{
		Window:     window,
		Router:     router,
		Generation: generation,
		Sync:       sync,
	}, nil
}
