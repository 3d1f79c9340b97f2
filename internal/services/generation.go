package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/studyloop/reviewsync/internal/clients/vertex"
	"github.com/studyloop/reviewsync/internal/platform/logger"
)

// GenerationResult carries the two independent optional text results. An
// empty string means that side failed or produced nothing; the two sides
// never share a failure.
type GenerationResult struct {
	PreTopic  string
	PostTopic string
}

type GenerationService interface {
	Generate(ctx context.Context, engineID, userID string, prompts PromptPair) GenerationResult
}

type generationService struct {
	log   *logger.Logger
	agent vertex.AgentClient
}

func NewGenerationService(log *logger.Logger, agent vertex.AgentClient) GenerationService {
	return &generationService{
		log:   log.With("service", "GenerationService"),
		agent: agent,
	}
}

// Generate opens one agent session and runs both prompts against it
// concurrently. Errors never escape: each side degrades to empty on its own.
func (s *generationService) Generate(ctx context.Context, engineID, userID string, prompts PromptPair) GenerationResult {
	sessionID, err := s.agent.CreateSession(ctx, engineID, userID)
	if err != nil {
		s.log.Warn("Agent session creation failed, skipping generation", "engine_id", engineID, "error", err)
		return GenerationResult{}
	}

	var result GenerationResult
	var g errgroup.Group
	g.Go(func() error {
		result.PreTopic = s.runPrompt(ctx, engineID, sessionID, userID, "pre-topic", prompts.PreTopic)
		return nil
	})
	g.Go(func() error {
		result.PostTopic = s.runPrompt(ctx, engineID, sessionID, userID, "post-topic", prompts.PostTopic)
		return nil
	})
	_ = g.Wait()
	return result
}

// runPrompt submits one prompt and folds the fragment stream into a single
// string, preserving emission order. Any failure, during submission or mid
// stream, yields "" for this prompt only.
func (s *generationService) runPrompt(ctx context.Context, engineID, sessionID, userID, side, prompt string) string {
	log := s.log.With("engine_id", engineID, "side", side)

	stream, err := s.agent.StreamQuery(ctx, engineID, sessionID, userID, prompt)
	if err != nil {
		log.Warn("Generation request failed", "error", err)
		return ""
	}

	var b strings.Builder
	for {
		frag, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Warn("Generation stream failed", "error", err)
			return ""
		}
		b.WriteString(frag.Text)
	}

	text := b.String()
	if text == "" {
		log.Warn("Generation produced no content")
	}
	return text
}
