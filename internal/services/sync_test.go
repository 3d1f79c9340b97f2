package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/googleapis/google-cloudevents-go/cloud/firestoredata"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/studyloop/reviewsync/internal/types"
)

type memTaskRepo struct {
	mu     sync.Mutex
	nextID int
	tasks  map[string]*types.ReviewTask

	failKinds map[types.TaskKind]bool
	deleteErr error
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: map[string]*types.ReviewTask{}}
}

func (r *memTaskRepo) DeleteByEvent(ctx context.Context, userID, eventID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	deleted := 0
	for id, task := range r.tasks {
		if task.RelatedCalendarEventID == eventID {
			delete(r.tasks, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *memTaskRepo) Create(ctx context.Context, userID string, task *types.ReviewTask) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failKinds[task.TaskType] {
		return "", fmt.Errorf("unavailable")
	}
	r.nextID++
	id := fmt.Sprintf("task-%d", r.nextID)
	copied := *task
	r.tasks[id] = &copied
	return id, nil
}

func (r *memTaskRepo) byEvent(eventID string) []*types.ReviewTask {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.ReviewTask
	for _, task := range r.tasks {
		if task.RelatedCalendarEventID == eventID {
			out = append(out, task)
		}
	}
	return out
}

func (r *memTaskRepo) byKind(eventID string, kind types.TaskKind) *types.ReviewTask {
	for _, task := range r.byEvent(eventID) {
		if task.TaskType == kind {
			return task
		}
	}
	return nil
}

func eventPayload(t *testing.T, title, courseID string, start time.Time) []byte {
	t.Helper()
	fields := map[string]*firestoredata.Value{
		"startTime": {ValueType: &firestoredata.Value_TimestampValue{TimestampValue: timestamppb.New(start)}},
	}
	if title != "" {
		fields["title"] = &firestoredata.Value{ValueType: &firestoredata.Value_StringValue{StringValue: title}}
	}
	if courseID != "" {
		fields["courseId"] = &firestoredata.Value{ValueType: &firestoredata.Value_StringValue{StringValue: courseID}}
	}
	raw, err := proto.Marshal(&firestoredata.DocumentEventData{Value: &firestoredata.Document{Fields: fields}})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return raw
}

func deletedPayload(t *testing.T) []byte {
	t.Helper()
	raw, err := proto.Marshal(&firestoredata.DocumentEventData{})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return raw
}

type syncFixture struct {
	svc   SyncService
	tasks *memTaskRepo
	agent *fakeAgent
	now   time.Time
}

func newSyncFixture(t *testing.T, courses *fakeCourseRepo, routes *AgentRoutes) *syncFixture {
	t.Helper()
	log := testLogger(t)
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	tasks := newMemTaskRepo()
	agent := &fakeAgent{
		pre:  streamOf("PRE-CONTENT"),
		post: streamOf("POST-CONTENT"),
	}
	svc := NewSyncService(
		log,
		NewWindowFilterWithClock(log, 14*24*time.Hour, func() time.Time { return now }),
		NewCourseRouter(log, courses, routes),
		NewGenerationService(log, agent),
		tasks,
		nil,
		24*time.Hour,
		24*time.Hour,
	)
	return &syncFixture{svc: svc, tasks: tasks, agent: agent, now: now}
}

const eventPath = "users/u1/calendarEvents/ev1"

func TestSyncScenarioMappedCourse(t *testing.T) {
	// Event "Derivatives", course MA137 routed to backend B, flashcards,
	// start 2025-03-10T15:00Z, now 2025-03-01T00:00Z.
	courses := &fakeCourseRepo{course: &types.CourseConfig{Name: "Calculus I", Code: "MA137"}}
	routes := NewAgentRoutes(map[string]string{"MA137": "backend-b"}, "default-engine")
	f := newSyncFixture(t, courses, routes)
	start := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	if err := f.svc.HandleEventChange(context.Background(), eventPath, eventPayload(t, "Derivatives", "course-1", start)); err != nil {
		t.Fatalf("HandleEventChange: %v", err)
	}

	got := f.tasks.byEvent("ev1")
	if len(got) != 2 {
		t.Fatalf("task count: want=2 got=%d", len(got))
	}

	pre := f.tasks.byKind("ev1", types.TaskKindPreLecture)
	if pre == nil {
		t.Fatalf("missing pre-lecture task")
	}
	if want := time.Date(2025, 3, 9, 15, 0, 0, 0, time.UTC); !pre.DueDate.Equal(want) {
		t.Fatalf("pre due date: want=%v got=%v", want, pre.DueDate)
	}
	if pre.Title != "Pre lecture review flashcards for: Derivatives" {
		t.Fatalf("pre title: got=%q", pre.Title)
	}
	if pre.Details != "PRE-CONTENT" {
		t.Fatalf("pre details: got=%q", pre.Details)
	}
	if pre.Status != types.TaskStatusPending || pre.Priority != types.TaskPriorityHigh {
		t.Fatalf("pre task fields: got=%+v", pre)
	}

	post := f.tasks.byKind("ev1", types.TaskKindPostLecture)
	if post == nil {
		t.Fatalf("missing post-lecture task")
	}
	if want := time.Date(2025, 3, 11, 15, 0, 0, 0, time.UTC); !post.DueDate.Equal(want) {
		t.Fatalf("post due date: want=%v got=%v", want, post.DueDate)
	}
	if post.Title != "Post lecture review flashcards for: Derivatives" {
		t.Fatalf("post title: got=%q", post.Title)
	}
	// Each task stores its own side's generation result.
	if post.Details != "POST-CONTENT" {
		t.Fatalf("post details: got=%q", post.Details)
	}
}

func TestSyncIdempotence(t *testing.T) {
	f := newSyncFixture(t, &fakeCourseRepo{}, NewAgentRoutes(nil, "default-engine"))
	payload := eventPayload(t, "Derivatives", "", f.now.AddDate(0, 0, 5))

	for i := 0; i < 2; i++ {
		if err := f.svc.HandleEventChange(context.Background(), eventPath, payload); err != nil {
			t.Fatalf("pass %d: %v", i, err)
		}
	}

	got := f.tasks.byEvent("ev1")
	if len(got) != 2 {
		t.Fatalf("tasks accumulated across re-delivery: want=2 got=%d", len(got))
	}
	if f.tasks.byKind("ev1", types.TaskKindPreLecture) == nil || f.tasks.byKind("ev1", types.TaskKindPostLecture) == nil {
		t.Fatalf("expected one task of each kind")
	}
}

func TestSyncOutOfWindowCleansUp(t *testing.T) {
	f := newSyncFixture(t, &fakeCourseRepo{}, NewAgentRoutes(nil, "default-engine"))

	// Seed in-window tasks, then move the event thirty days out.
	if err := f.svc.HandleEventChange(context.Background(), eventPath, eventPayload(t, "Derivatives", "", f.now.AddDate(0, 0, 5))); err != nil {
		t.Fatalf("seed: %v", err)
	}
	sessionsBefore := f.agent.sessions

	if err := f.svc.HandleEventChange(context.Background(), eventPath, eventPayload(t, "Derivatives", "", f.now.AddDate(0, 0, 30))); err != nil {
		t.Fatalf("out-of-window pass: %v", err)
	}

	if got := f.tasks.byEvent("ev1"); len(got) != 0 {
		t.Fatalf("stale tasks survived: got=%d", len(got))
	}
	if f.agent.sessions != sessionsBefore {
		t.Fatalf("generation must not run for out-of-window events")
	}
}

func TestSyncDeletedEventRemovesTasks(t *testing.T) {
	f := newSyncFixture(t, &fakeCourseRepo{}, NewAgentRoutes(nil, "default-engine"))

	if err := f.svc.HandleEventChange(context.Background(), eventPath, eventPayload(t, "Derivatives", "", f.now.AddDate(0, 0, 5))); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := f.svc.HandleEventChange(context.Background(), eventPath, deletedPayload(t)); err != nil {
		t.Fatalf("delete pass: %v", err)
	}

	if got := f.tasks.byEvent("ev1"); len(got) != 0 {
		t.Fatalf("tasks survived event deletion: got=%d", len(got))
	}
}

func TestSyncPartialGenerationFailure(t *testing.T) {
	f := newSyncFixture(t, &fakeCourseRepo{}, NewAgentRoutes(nil, "default-engine"))
	f.agent.pre = streamErr(fmt.Errorf("backend down"))

	if err := f.svc.HandleEventChange(context.Background(), eventPath, eventPayload(t, "Derivatives", "", f.now.AddDate(0, 0, 5))); err != nil {
		t.Fatalf("HandleEventChange: %v", err)
	}

	if f.tasks.byKind("ev1", types.TaskKindPreLecture) != nil {
		t.Fatalf("pre-lecture task created despite generation failure")
	}
	post := f.tasks.byKind("ev1", types.TaskKindPostLecture)
	if post == nil || post.Details != "POST-CONTENT" {
		t.Fatalf("post-lecture task must survive sibling failure: got=%+v", post)
	}
}

func TestSyncCreateFailureIsolatedButSurfaced(t *testing.T) {
	f := newSyncFixture(t, &fakeCourseRepo{}, NewAgentRoutes(nil, "default-engine"))
	f.tasks.failKinds = map[types.TaskKind]bool{types.TaskKindPreLecture: true}

	err := f.svc.HandleEventChange(context.Background(), eventPath, eventPayload(t, "Derivatives", "", f.now.AddDate(0, 0, 5)))
	if err == nil {
		t.Fatalf("expected failed invocation when a create fails")
	}
	// The sibling write still happened.
	if f.tasks.byKind("ev1", types.TaskKindPostLecture) == nil {
		t.Fatalf("post-lecture create blocked by pre-lecture failure")
	}
}

func TestSyncInputMalformationHasNoSideEffects(t *testing.T) {
	f := newSyncFixture(t, &fakeCourseRepo{}, NewAgentRoutes(nil, "default-engine"))

	if err := f.svc.HandleEventChange(context.Background(), "users/u1/tasks/t1", eventPayload(t, "X", "", f.now)); err != nil {
		t.Fatalf("bad path must not fail the invocation: %v", err)
	}
	if err := f.svc.HandleEventChange(context.Background(), eventPath, []byte{0xff}); err != nil {
		t.Fatalf("bad payload must not fail the invocation: %v", err)
	}
	// Missing title aborts without touching existing tasks.
	if err := f.svc.HandleEventChange(context.Background(), eventPath, eventPayload(t, "", "", f.now.AddDate(0, 0, 5))); err != nil {
		t.Fatalf("missing title must not fail the invocation: %v", err)
	}
	if f.agent.sessions != 0 {
		t.Fatalf("generation ran on malformed input")
	}
	if len(f.tasks.byEvent("ev1")) != 0 {
		t.Fatalf("side effects on malformed input")
	}
}

func TestSyncNoEngineConfigured(t *testing.T) {
	f := newSyncFixture(t, &fakeCourseRepo{}, NewAgentRoutes(nil, ""))

	if err := f.svc.HandleEventChange(context.Background(), eventPath, eventPayload(t, "Derivatives", "", f.now.AddDate(0, 0, 5))); err != nil {
		t.Fatalf("missing engine config must not fail the invocation: %v", err)
	}
	if f.agent.sessions != 0 {
		t.Fatalf("generation ran without a configured engine")
	}
	if len(f.tasks.byEvent("ev1")) != 0 {
		t.Fatalf("tasks created without a configured engine")
	}
}

func TestSyncQuizModeTitles(t *testing.T) {
	courses := &fakeCourseRepo{course: &types.CourseConfig{Name: "Calculus I", Code: "MA137", GenerationType: types.GenerationModeQuiz}}
	f := newSyncFixture(t, courses, NewAgentRoutes(nil, "default-engine"))

	if err := f.svc.HandleEventChange(context.Background(), eventPath, eventPayload(t, "Derivatives", "course-1", f.now.AddDate(0, 0, 5))); err != nil {
		t.Fatalf("HandleEventChange: %v", err)
	}

	pre := f.tasks.byKind("ev1", types.TaskKindPreLecture)
	if pre == nil || pre.Title != "Pre lecture review quiz for: Derivatives" {
		t.Fatalf("quiz pre title: got=%+v", pre)
	}
}

func TestSyncDeleteFailureFailsInvocation(t *testing.T) {
	f := newSyncFixture(t, &fakeCourseRepo{}, NewAgentRoutes(nil, "default-engine"))
	f.tasks.deleteErr = fmt.Errorf("store unavailable")

	if err := f.svc.HandleEventChange(context.Background(), eventPath, eventPayload(t, "Derivatives", "", f.now.AddDate(0, 0, 5))); err == nil {
		t.Fatalf("expected failed invocation when reconcile delete fails")
	}
}
