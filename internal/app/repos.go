package app

import (
	"cloud.google.com/go/firestore"

	"github.com/studyloop/reviewsync/internal/platform/logger"
	"github.com/studyloop/reviewsync/internal/repos"
)

type Repos struct {
	Tasks   repos.TaskRepo
	Courses repos.CourseRepo
}

func wireRepos(fs *firestore.Client, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Tasks:   repos.NewTaskRepo(fs, log),
		Courses: repos.NewCourseRepo(fs, log),
	}
}
