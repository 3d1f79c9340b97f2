package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/studyloop/reviewsync/internal/types"
)

type fakeCourseRepo struct {
	course *types.CourseConfig
	err    error
}

func (f *fakeCourseRepo) GetByID(ctx context.Context, userID, courseID string) (*types.CourseConfig, error) {
	return f.course, f.err
}

func TestCourseRouterMappedCourse(t *testing.T) {
	routes := NewAgentRoutes(map[string]string{"MA137": "math-engine"}, "default-engine")
	router := NewCourseRouter(testLogger(t), &fakeCourseRepo{
		course: &types.CourseConfig{Name: "Calculus I", Code: "ma137", GenerationType: types.GenerationModeQuiz},
	}, routes)

	got := router.Route(context.Background(), "u1", "course-1")
	if got.EngineID != "math-engine" {
		t.Fatalf("engine: want=math-engine got=%q", got.EngineID)
	}
	if got.Mode != types.GenerationModeQuiz {
		t.Fatalf("mode: want=quiz got=%q", got.Mode)
	}
	if got.CourseName != "Calculus I" || got.CourseCode != "ma137" {
		t.Fatalf("course context: got=%+v", got)
	}
}

func TestCourseRouterUnmappedCourse(t *testing.T) {
	routes := NewAgentRoutes(map[string]string{"MA137": "math-engine"}, "default-engine")
	router := NewCourseRouter(testLogger(t), &fakeCourseRepo{
		course: &types.CourseConfig{Name: "Organic Chemistry", Code: "CH262"},
	}, routes)

	got := router.Route(context.Background(), "u1", "course-2")
	if got.EngineID != "default-engine" {
		t.Fatalf("engine: want=default-engine got=%q", got.EngineID)
	}
	if got.Mode != types.GenerationModeFlashcards {
		t.Fatalf("mode: want=flashcards got=%q", got.Mode)
	}
}

func TestCourseRouterDegradesToDefaults(t *testing.T) {
	routes := NewAgentRoutes(nil, "default-engine")

	tests := []struct {
		name     string
		repo     *fakeCourseRepo
		courseID string
	}{
		{"no course reference", &fakeCourseRepo{}, ""},
		{"course not found", &fakeCourseRepo{course: nil}, "course-1"},
		{"read error", &fakeCourseRepo{err: fmt.Errorf("unavailable")}, "course-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewCourseRouter(testLogger(t), tt.repo, routes).Route(context.Background(), "u1", tt.courseID)
			if got.EngineID != "default-engine" {
				t.Fatalf("engine: want=default-engine got=%q", got.EngineID)
			}
			if got.Mode != types.GenerationModeFlashcards {
				t.Fatalf("mode: want=flashcards got=%q", got.Mode)
			}
			if got.CourseName != "" || got.CourseCode != "" {
				t.Fatalf("expected empty course context, got=%+v", got)
			}
		})
	}
}
