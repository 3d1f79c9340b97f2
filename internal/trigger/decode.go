package trigger

import (
	"fmt"
	"strings"
	"time"

	"github.com/googleapis/google-cloudevents-go/cloud/firestoredata"
	"google.golang.org/protobuf/proto"

	"github.com/studyloop/reviewsync/internal/types"
)

// DecodeError reports a change payload that could not be turned into an
// event snapshot.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("decode calendar event: field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("decode calendar event: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeEventChange unmarshals the raw Firestore change payload. A write
// with no field content decodes to Deleted. A missing title decodes to an
// empty title (the pipeline aborts on it, the decoder does not). A missing
// course reference is fine; an unparsable start time is not.
func DecodeEventChange(payload []byte) (*types.EventChange, error) {
	var data firestoredata.DocumentEventData
	if err := proto.Unmarshal(payload, &data); err != nil {
		return nil, &DecodeError{Err: err}
	}

	doc := data.GetValue()
	if doc == nil || len(doc.GetFields()) == 0 {
		return &types.EventChange{Deleted: true}, nil
	}
	fields := doc.GetFields()

	startTime, err := decodeStartTime(fields["startTime"])
	if err != nil {
		return nil, err
	}

	return &types.EventChange{
		Event: &types.EventSnapshot{
			Title:     fields["title"].GetStringValue(),
			CourseID:  decodeCourseRef(fields["courseId"]),
			StartTime: startTime,
		},
	}, nil
}

func decodeStartTime(v *firestoredata.Value) (time.Time, error) {
	if v == nil {
		return time.Time{}, &DecodeError{Field: "startTime", Err: fmt.Errorf("missing")}
	}
	if ts := v.GetTimestampValue(); ts != nil {
		return ts.AsTime(), nil
	}
	if s := v.GetStringValue(); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, &DecodeError{Field: "startTime", Err: err}
		}
		return t, nil
	}
	return time.Time{}, &DecodeError{Field: "startTime", Err: fmt.Errorf("not a timestamp")}
}

// decodeCourseRef accepts either a plain string id or a full document
// reference, keeping only the final path segment.
func decodeCourseRef(v *firestoredata.Value) string {
	if v == nil {
		return ""
	}
	if ref := v.GetReferenceValue(); ref != "" {
		parts := strings.Split(strings.Trim(ref, "/"), "/")
		return parts[len(parts)-1]
	}
	return v.GetStringValue()
}
