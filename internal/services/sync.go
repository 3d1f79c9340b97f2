package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/studyloop/reviewsync/internal/platform/logger"
	"github.com/studyloop/reviewsync/internal/repos"
	"github.com/studyloop/reviewsync/internal/trigger"
	"github.com/studyloop/reviewsync/internal/types"
)

// EventLocker serializes invocations per event id. Optional: a nil locker
// means best-effort mode, where two overlapping invocations for the same
// event can interleave their delete and create batches (each batch itself
// is atomic, the pair is not).
type EventLocker interface {
	WithLock(ctx context.Context, userID, eventID string, fn func() error) error
}

// SyncService is the event reconciliation pipeline: one call per change
// notification, stateless across calls.
type SyncService interface {
	HandleEventChange(ctx context.Context, resourcePath string, payload []byte) error
}

type syncService struct {
	log        *logger.Logger
	window     WindowFilter
	router     CourseRouter
	generation GenerationService
	tasks      repos.TaskRepo
	locks      EventLocker
	preOffset  time.Duration
	postOffset time.Duration
	now        func() time.Time
}

func NewSyncService(
	baseLog *logger.Logger,
	window WindowFilter,
	router CourseRouter,
	generation GenerationService,
	tasks repos.TaskRepo,
	locks EventLocker,
	preOffset, postOffset time.Duration,
) SyncService {
	return &syncService{
		log:        baseLog.With("service", "SyncService"),
		window:     window,
		router:     router,
		generation: generation,
		tasks:      tasks,
		locks:      locks,
		preOffset:  preOffset,
		postOffset: postOffset,
		now:        time.Now,
	}
}

// HandleEventChange runs the full pipeline. Malformed input aborts with no
// side effects and a nil return (redelivery of the same bad input cannot
// help); store write failures are returned so the transport may redeliver.
func (s *syncService) HandleEventChange(ctx context.Context, resourcePath string, payload []byte) error {
	userID, eventID, err := trigger.ResolveEventPath(resourcePath)
	if err != nil {
		s.log.Warn("Ignoring notification with unresolvable path", "path", resourcePath, "error", err)
		return nil
	}
	log := s.log.With("user_id", userID, "event_id", eventID)

	change, err := trigger.DecodeEventChange(payload)
	if err != nil {
		log.Warn("Ignoring undecodable event payload", "error", err)
		return nil
	}

	run := func() error { return s.reconcile(ctx, log, userID, eventID, change) }
	if s.locks != nil {
		return s.locks.WithLock(ctx, userID, eventID, run)
	}
	return run()
}

func (s *syncService) reconcile(ctx context.Context, log *logger.Logger, userID, eventID string, change *types.EventChange) error {
	if change.Deleted {
		deleted, err := s.tasks.DeleteByEvent(ctx, userID, eventID)
		if err != nil {
			return err
		}
		log.Info("Event deleted, removed derived tasks", "count", deleted)
		return nil
	}

	event := change.Event
	if event.Title == "" {
		log.Warn("Event has no title, skipping")
		return nil
	}

	if !s.window.Eligible(event.StartTime) {
		deleted, err := s.tasks.DeleteByEvent(ctx, userID, eventID)
		if err != nil {
			return err
		}
		log.Info("Event outside generation window, removed derived tasks", "start_time", event.StartTime, "count", deleted)
		return nil
	}

	// Clear first so re-delivery converges instead of accumulating.
	if _, err := s.tasks.DeleteByEvent(ctx, userID, eventID); err != nil {
		return err
	}

	route := s.router.Route(ctx, userID, event.CourseID)
	if route.EngineID == "" {
		log.Error("No agent engine configured, skipping generation")
		return nil
	}

	prompts := BuildPrompts(event.Title, route.CourseName, route.CourseCode, route.Mode)
	result := s.generation.Generate(ctx, route.EngineID, userID, prompts)

	return s.materialize(ctx, log, userID, eventID, event, route.Mode, result)
}

// materialize writes one task per populated generation result. The two
// creates are independent: a failure on one side never blocks the other,
// but any failure fails the invocation so the transport can redeliver.
func (s *syncService) materialize(ctx context.Context, log *logger.Logger, userID, eventID string, event *types.EventSnapshot, mode types.GenerationMode, result GenerationResult) error {
	var createErrs []error
	created := 0

	if result.PreTopic != "" {
		task := s.newTask(eventID, event, mode, types.TaskKindPreLecture, result.PreTopic)
		if _, err := s.tasks.Create(ctx, userID, task); err != nil {
			log.Error("Failed to create pre-lecture task", "error", err)
			createErrs = append(createErrs, err)
		} else {
			created++
		}
	}
	if result.PostTopic != "" {
		task := s.newTask(eventID, event, mode, types.TaskKindPostLecture, result.PostTopic)
		if _, err := s.tasks.Create(ctx, userID, task); err != nil {
			log.Error("Failed to create post-lecture task", "error", err)
			createErrs = append(createErrs, err)
		} else {
			created++
		}
	}

	if len(createErrs) > 0 {
		return fmt.Errorf("create review tasks: %w", errors.Join(createErrs...))
	}
	log.Info("Review tasks synchronized", "created", created)
	return nil
}

func (s *syncService) newTask(eventID string, event *types.EventSnapshot, mode types.GenerationMode, kind types.TaskKind, details string) *types.ReviewTask {
	title := fmt.Sprintf("Pre lecture review %s for: %s", mode, event.Title)
	dueDate := event.StartTime.Add(-s.preOffset)
	if kind == types.TaskKindPostLecture {
		title = fmt.Sprintf("Post lecture review %s for: %s", mode, event.Title)
		dueDate = event.StartTime.Add(s.postOffset)
	}
	return &types.ReviewTask{
		Title:                  title,
		Details:                details,
		Status:                 types.TaskStatusPending,
		RelatedCalendarEventID: eventID,
		DueDate:                dueDate,
		Priority:               types.TaskPriorityHigh,
		TaskType:               kind,
		CreatedAt:              s.now(),
	}
}
