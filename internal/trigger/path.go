package trigger

import (
	"fmt"
	"strings"
)

// PathError reports a change notification whose resource path does not name
// a calendar event document. Not retryable: the transport would redeliver
// the same path.
type PathError struct {
	Path string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("malformed calendar event path: %q", e.Path)
}

// ResolveEventPath extracts (userID, eventID) from a document resource path
// of the shape .../users/{userID}/calendarEvents/{eventID}/... The path may
// carry a projects/databases prefix when it comes straight off the Firestore
// document name.
func ResolveEventPath(path string) (string, string, error) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if seg != "users" {
			continue
		}
		if i+3 >= len(segments) {
			break
		}
		if segments[i+2] != "calendarEvents" {
			break
		}
		userID, eventID := segments[i+1], segments[i+3]
		if userID == "" || eventID == "" {
			break
		}
		return userID, eventID, nil
	}
	return "", "", &PathError{Path: path}
}
