package services

import (
	"fmt"
	"strings"

	"github.com/studyloop/reviewsync/internal/types"
)

// PromptPair holds the two sides of one generation pass: material to review
// before the lecture and material to review after it.
type PromptPair struct {
	PreTopic  string
	PostTopic string
}

// BuildPrompts is a pure function of the event title, the course context and
// the generation mode. When no course is known the prompts omit course
// framing entirely. The backend's output is stored verbatim, so the prompts
// carry the full shape requirements.
func BuildPrompts(title, courseName, courseCode string, mode types.GenerationMode) PromptPair {
	course := courseFraming(courseName, courseCode)

	var format string
	switch mode {
	case types.GenerationModeQuiz:
		format = `Respond with only a JSON array of multiple-choice question objects, each with exactly the keys "question", "options" and "answer". "options" must hold four strings and "answer" must match one of them verbatim.`
	default:
		format = `Respond with only a JSON array of flashcard objects, each with exactly the keys "question" and "answer".`
	}

	pre := fmt.Sprintf(
		"A student has an upcoming lecture titled %q%s. "+
			"Identify the prerequisite concepts the student should already know before this lecture. "+
			"Do not cover the lecture's own content, only what it builds on. "+
			"Generate between 10 and 20 items on those prerequisites. %s",
		title, course, format)

	post := fmt.Sprintf(
		"A student has attended a lecture titled %q%s. "+
			"Summarize the key concepts of the lecture itself. "+
			"Generate between 10 and 20 items covering those concepts. %s",
		title, course, format)

	return PromptPair{PreTopic: pre, PostTopic: post}
}

func courseFraming(courseName, courseCode string) string {
	courseName = strings.TrimSpace(courseName)
	courseCode = strings.TrimSpace(courseCode)
	switch {
	case courseName != "" && courseCode != "":
		return fmt.Sprintf(" in the course %s (%s)", courseName, courseCode)
	case courseName != "":
		return fmt.Sprintf(" in the course %s", courseName)
	case courseCode != "":
		return fmt.Sprintf(" in the course %s", courseCode)
	default:
		return ""
	}
}
