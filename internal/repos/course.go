package repos

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/studyloop/reviewsync/internal/platform/logger"
	"github.com/studyloop/reviewsync/internal/types"
)

type CourseRepo interface {
	// GetByID returns the course config, or (nil, nil) when no such
	// document exists.
	GetByID(ctx context.Context, userID, courseID string) (*types.CourseConfig, error)
}

type courseRepo struct {
	log *logger.Logger
	fs  *firestore.Client
}

func NewCourseRepo(fs *firestore.Client, log *logger.Logger) CourseRepo {
	return &courseRepo{
		log: log.With("repo", "CourseRepo"),
		fs:  fs,
	}
}

func (r *courseRepo) GetByID(ctx context.Context, userID, courseID string) (*types.CourseConfig, error) {
	doc, err := r.fs.Collection("users").Doc(userID).Collection("courses").Doc(courseID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get course %s: %w", courseID, err)
	}
	var course types.CourseConfig
	if err := doc.DataTo(&course); err != nil {
		return nil, fmt.Errorf("decode course %s: %w", courseID, err)
	}
	return &course, nil
}
