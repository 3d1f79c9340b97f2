package services

import (
	"strings"
	"testing"

	"github.com/studyloop/reviewsync/internal/types"
)

func TestBuildPromptsFlashcards(t *testing.T) {
	prompts := BuildPrompts("Derivatives", "Calculus I", "MA137", types.GenerationModeFlashcards)

	for _, want := range []string{`"Derivatives"`, "Calculus I", "MA137", "prerequisite", `"question"`, `"answer"`, "10 and 20"} {
		if !strings.Contains(prompts.PreTopic, want) {
			t.Fatalf("pre-topic prompt missing %q:\n%s", want, prompts.PreTopic)
		}
	}
	if !strings.Contains(prompts.PreTopic, "Do not cover the lecture's own content") {
		t.Fatalf("pre-topic prompt must exclude the topic's own content:\n%s", prompts.PreTopic)
	}

	for _, want := range []string{`"Derivatives"`, "key concepts", `"question"`, `"answer"`} {
		if !strings.Contains(prompts.PostTopic, want) {
			t.Fatalf("post-topic prompt missing %q:\n%s", want, prompts.PostTopic)
		}
	}
	if strings.Contains(prompts.PreTopic, `"options"`) || strings.Contains(prompts.PostTopic, `"options"`) {
		t.Fatalf("flashcard prompts must not request options")
	}
}

func TestBuildPromptsQuiz(t *testing.T) {
	prompts := BuildPrompts("Derivatives", "Calculus I", "MA137", types.GenerationModeQuiz)

	for _, prompt := range []string{prompts.PreTopic, prompts.PostTopic} {
		for _, want := range []string{`"question"`, `"options"`, `"answer"`, "four strings", "verbatim"} {
			if !strings.Contains(prompt, want) {
				t.Fatalf("quiz prompt missing %q:\n%s", want, prompt)
			}
		}
	}
}

func TestBuildPromptsWithoutCourse(t *testing.T) {
	prompts := BuildPrompts("Derivatives", "", "", types.GenerationModeFlashcards)

	for _, prompt := range []string{prompts.PreTopic, prompts.PostTopic} {
		if strings.Contains(prompt, "course") {
			t.Fatalf("prompt must omit course framing when no course is known:\n%s", prompt)
		}
		if !strings.Contains(prompt, `"Derivatives"`) {
			t.Fatalf("prompt missing title:\n%s", prompt)
		}
	}
}

func TestBuildPromptsCourseCodeOnly(t *testing.T) {
	prompts := BuildPrompts("Derivatives", "", "MA137", types.GenerationModeFlashcards)
	if !strings.Contains(prompts.PreTopic, "MA137") {
		t.Fatalf("pre-topic prompt missing course code:\n%s", prompts.PreTopic)
	}
}

func TestBuildPromptsIsPure(t *testing.T) {
	a := BuildPrompts("Derivatives", "Calculus I", "MA137", types.GenerationModeQuiz)
	b := BuildPrompts("Derivatives", "Calculus I", "MA137", types.GenerationModeQuiz)
	if a != b {
		t.Fatalf("prompts differ across identical inputs")
	}
}
