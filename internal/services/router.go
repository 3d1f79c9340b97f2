package services

import (
	"context"

	"github.com/studyloop/reviewsync/internal/platform/logger"
	"github.com/studyloop/reviewsync/internal/repos"
	"github.com/studyloop/reviewsync/internal/types"
)

// RouteResult is everything generation needs to know about a course: its
// display context, the content mode, and the engine that serves it.
type RouteResult struct {
	CourseName string
	CourseCode string
	Mode       types.GenerationMode
	EngineID   string
}

// CourseRouter resolves course context. It never fails: a missing course id,
// a missing course document, or a read error all degrade to defaults so the
// pipeline can still generate topic-only material.
type CourseRouter interface {
	Route(ctx context.Context, userID, courseID string) RouteResult
}

type courseRouter struct {
	log     *logger.Logger
	courses repos.CourseRepo
	routes  *AgentRoutes
}

func NewCourseRouter(log *logger.Logger, courses repos.CourseRepo, routes *AgentRoutes) CourseRouter {
	return &courseRouter{
		log:     log.With("service", "CourseRouter"),
		courses: courses,
		routes:  routes,
	}
}

func (s *courseRouter) Route(ctx context.Context, userID, courseID string) RouteResult {
	defaults := RouteResult{
		Mode:     types.GenerationModeFlashcards,
		EngineID: s.routes.DefaultEngine(),
	}
	if courseID == "" {
		return defaults
	}

	course, err := s.courses.GetByID(ctx, userID, courseID)
	if err != nil {
		s.log.Warn("Course lookup failed, using defaults", "course_id", courseID, "error", err)
		return defaults
	}
	if course == nil {
		s.log.Debug("Course not found, using defaults", "course_id", courseID)
		return defaults
	}

	mode := course.GenerationType
	if mode != types.GenerationModeQuiz {
		mode = types.GenerationModeFlashcards
	}
	return RouteResult{
		CourseName: course.Name,
		CourseCode: course.Code,
		Mode:       mode,
		EngineID:   s.routes.Resolve(course.Code),
	}
}
