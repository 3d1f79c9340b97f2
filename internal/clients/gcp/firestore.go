package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/studyloop/reviewsync/internal/platform/logger"
)

// NewFirestoreClient opens the record store client. Every invocation reads
// course/event state fresh through it; nothing is cached in process.
func NewFirestoreClient(ctx context.Context, log *logger.Logger, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("missing GCP project id")
	}
	client, err := firestore.NewClient(ctx, projectID, ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	log.Debug("Firestore client created", "project_id", projectID)
	return client, nil
}
