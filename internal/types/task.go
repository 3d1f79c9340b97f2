package types

import "time"

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "PENDING"
	TaskStatusCompleted TaskStatus = "COMPLETED"
)

type TaskPriority string

const (
	TaskPriorityHigh   TaskPriority = "HIGH"
	TaskPriorityMedium TaskPriority = "MEDIUM"
)

type TaskKind string

const (
	TaskKindPreLecture  TaskKind = "pre-lecture"
	TaskKindPostLecture TaskKind = "post-lecture"
)

// ReviewTask is a derived record under users/{userID}/tasks. This service
// only ever creates and deletes them; status and quizResult are written by
// the rest of the product after the student works through the material.
type ReviewTask struct {
	Title                  string                 `firestore:"title" json:"title"`
	Details                string                 `firestore:"details" json:"details"`
	Status                 TaskStatus             `firestore:"status" json:"status"`
	RelatedCalendarEventID string                 `firestore:"relatedCalendarEventId" json:"related_calendar_event_id"`
	DueDate                time.Time              `firestore:"dueDate" json:"due_date"`
	Priority               TaskPriority           `firestore:"priority" json:"priority"`
	TaskType               TaskKind               `firestore:"taskType" json:"task_type"`
	QuizResult             map[string]interface{} `firestore:"quizResult,omitempty" json:"quiz_result,omitempty"`
	CreatedAt              time.Time              `firestore:"createdAt" json:"created_at"`
}
