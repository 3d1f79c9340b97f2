package vertex

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	aiplatform "cloud.google.com/go/aiplatform/apiv1beta1"
	"cloud.google.com/go/aiplatform/apiv1beta1/aiplatformpb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/studyloop/reviewsync/internal/clients/gcp"
	"github.com/studyloop/reviewsync/internal/platform/logger"
)

// Fragment is one streamed piece of generated content.
type Fragment struct {
	Text string
}

// Stream is a finite, ordered, non-restartable sequence of fragments.
// Recv returns io.EOF when the backend is done.
type Stream interface {
	Recv() (Fragment, error)
}

// AgentClient talks to deployed agent engines. Sessions are backend work:
// create_session is itself a method call on the engine, nothing is cached
// client-side.
type AgentClient interface {
	CreateSession(ctx context.Context, engineID, userID string) (string, error)
	StreamQuery(ctx context.Context, engineID, sessionID, userID, message string) (Stream, error)
	Close() error
}

type agentClient struct {
	log      *logger.Logger
	exec     *aiplatform.ReasoningEngineExecutionClient
	project  string
	location string
}

func NewAgentClient(ctx context.Context, log *logger.Logger, project, location string) (AgentClient, error) {
	serviceLog := log.With("service", "AgentClient")
	if project == "" {
		return nil, fmt.Errorf("missing GCP project id")
	}
	if location == "" {
		return nil, fmt.Errorf("missing GCP location")
	}

	opts := gcp.ClientOptionsFromEnv()
	opts = append(opts, option.WithEndpoint(fmt.Sprintf("%s-aiplatform.googleapis.com:443", location)))
	exec, err := aiplatform.NewReasoningEngineExecutionClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create reasoning engine client: %w", err)
	}

	return &agentClient{
		log:      serviceLog,
		exec:     exec,
		project:  project,
		location: location,
	}, nil
}

func (c *agentClient) Close() error {
	return c.exec.Close()
}

// engineName accepts either a bare engine id or a full resource name.
func (c *agentClient) engineName(engineID string) string {
	if strings.HasPrefix(engineID, "projects/") {
		return engineID
	}
	return fmt.Sprintf("projects/%s/locations/%s/reasoningEngines/%s", c.project, c.location, engineID)
}

func (c *agentClient) CreateSession(ctx context.Context, engineID, userID string) (string, error) {
	input, err := structpb.NewStruct(map[string]interface{}{
		"user_id": userID,
	})
	if err != nil {
		return "", fmt.Errorf("build create_session input: %w", err)
	}
	resp, err := c.exec.QueryReasoningEngine(ctx, &aiplatformpb.QueryReasoningEngineRequest{
		Name:        c.engineName(engineID),
		ClassMethod: "create_session",
		Input:       input,
	})
	if err != nil {
		return "", fmt.Errorf("create_session: %w", err)
	}
	sessionID := sessionIDFromOutput(resp.GetOutput())
	if sessionID == "" {
		return "", fmt.Errorf("create_session: no session id in response")
	}
	c.log.Debug("Agent session created", "engine_id", engineID, "session_id", sessionID)
	return sessionID, nil
}

func sessionIDFromOutput(out *structpb.Value) string {
	fields := out.GetStructValue().GetFields()
	for _, key := range []string{"id", "session_id"} {
		if v := fields[key].GetStringValue(); v != "" {
			return v
		}
	}
	return ""
}

func (c *agentClient) StreamQuery(ctx context.Context, engineID, sessionID, userID, message string) (Stream, error) {
	input, err := structpb.NewStruct(map[string]interface{}{
		"user_id":    userID,
		"session_id": sessionID,
		"message":    message,
	})
	if err != nil {
		return nil, fmt.Errorf("build stream_query input: %w", err)
	}
	stream, err := c.exec.StreamQueryReasoningEngine(ctx, &aiplatformpb.StreamQueryReasoningEngineRequest{
		Name:        c.engineName(engineID),
		ClassMethod: "stream_query",
		Input:       input,
	})
	if err != nil {
		return nil, fmt.Errorf("stream_query: %w", err)
	}
	return &queryStream{stream: stream}, nil
}

type queryStream struct {
	stream aiplatformpb.ReasoningEngineExecutionService_StreamQueryReasoningEngineClient
}

// agentEvent mirrors the event dicts the engine emits: content parts that
// each carry a text chunk.
type agentEvent struct {
	Content struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"content"`
}

func (s *queryStream) Recv() (Fragment, error) {
	body, err := s.stream.Recv()
	if err != nil {
		return Fragment{}, err
	}
	data := body.GetData()

	var ev agentEvent
	if jsonErr := json.Unmarshal(data, &ev); jsonErr == nil {
		// Structured event: keep only the text parts. Metadata-only
		// events contribute an empty fragment.
		var b strings.Builder
		for _, part := range ev.Content.Parts {
			b.WriteString(part.Text)
		}
		return Fragment{Text: b.String()}, nil
	}
	// Engines without structured events stream plain text.
	return Fragment{Text: string(data)}, nil
}
