package types

type GenerationMode string

const (
	GenerationModeFlashcards GenerationMode = "flashcards"
	GenerationModeQuiz       GenerationMode = "quiz"
)

// CourseConfig lives under users/{userID}/courses and is owned by the
// course CRUD surface; this service reads it and never writes it.
type CourseConfig struct {
	Name           string         `firestore:"name" json:"name"`
	Code           string         `firestore:"code" json:"code"`
	GenerationType GenerationMode `firestore:"generationType" json:"generation_type"`
}
