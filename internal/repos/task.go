package repos

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/studyloop/reviewsync/internal/platform/logger"
	"github.com/studyloop/reviewsync/internal/types"
)

// Firestore caps a single atomic batch at 500 writes.
const deleteBatchLimit = 500

type TaskRepo interface {
	// DeleteByEvent removes every review task whose relatedCalendarEventId
	// equals eventID. Zero matches is a no-op. Returns the number deleted.
	DeleteByEvent(ctx context.Context, userID, eventID string) (int, error)
	// Create writes a brand new task document and returns its id.
	Create(ctx context.Context, userID string, task *types.ReviewTask) (string, error)
}

type taskRepo struct {
	log *logger.Logger
	fs  *firestore.Client
}

func NewTaskRepo(fs *firestore.Client, log *logger.Logger) TaskRepo {
	return &taskRepo{
		log: log.With("repo", "TaskRepo"),
		fs:  fs,
	}
}

func (r *taskRepo) tasks(userID string) *firestore.CollectionRef {
	return r.fs.Collection("users").Doc(userID).Collection("tasks")
}

func (r *taskRepo) DeleteByEvent(ctx context.Context, userID, eventID string) (int, error) {
	it := r.tasks(userID).Where("relatedCalendarEventId", "==", eventID).Documents(ctx)
	defer it.Stop()

	var refs []*firestore.DocumentRef
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("query tasks for event %s: %w", eventID, err)
		}
		refs = append(refs, doc.Ref)
	}
	if len(refs) == 0 {
		return 0, nil
	}

	// Each batch commits atomically as a group.
	for start := 0; start < len(refs); start += deleteBatchLimit {
		end := start + deleteBatchLimit
		if end > len(refs) {
			end = len(refs)
		}
		batch := r.fs.Batch()
		for _, ref := range refs[start:end] {
			batch.Delete(ref)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return 0, fmt.Errorf("delete tasks for event %s: %w", eventID, err)
		}
	}

	r.log.Debug("Deleted stale review tasks", "user_id", userID, "event_id", eventID, "count", len(refs))
	return len(refs), nil
}

func (r *taskRepo) Create(ctx context.Context, userID string, task *types.ReviewTask) (string, error) {
	ref, _, err := r.tasks(userID).Add(ctx, task)
	if err != nil {
		return "", fmt.Errorf("create review task: %w", err)
	}
	return ref.ID, nil
}
