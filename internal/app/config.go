package app

import (
	"time"

	"github.com/studyloop/reviewsync/internal/platform/logger"
	"github.com/studyloop/reviewsync/internal/utils"
)

type Config struct {
	ProjectID       string
	Location        string
	DefaultEngineID string
	AgentRoutesPath string
	SyncWindow      time.Duration
	PreDueOffset    time.Duration
	PostDueOffset   time.Duration
	Environment     string
}

func LoadConfig(log *logger.Logger) Config {
	projectID := utils.GetEnv("GOOGLE_CLOUD_PROJECT", "", log)
	if projectID == "" {
		projectID = utils.GetEnv("GCLOUD_PROJECT", "", log)
	}
	location := utils.GetEnv("LOCATION", "us-central1", log)
	defaultEngineID := utils.GetEnv("DEFAULT_AGENT_ENGINE", "", log)
	agentRoutesPath := utils.GetEnv("AGENT_ROUTES_PATH", "", log)
	windowDays := utils.GetEnvAsInt("SYNC_WINDOW_DAYS", 14, log)
	preOffsetHours := utils.GetEnvAsInt("PRE_DUE_OFFSET_HOURS", 24, log)
	postOffsetHours := utils.GetEnvAsInt("POST_DUE_OFFSET_HOURS", 24, log)
	environment := utils.GetEnv("ENVIRONMENT", "development", log)
	return Config{
		ProjectID:       projectID,
		Location:        location,
		DefaultEngineID: defaultEngineID,
		AgentRoutesPath: agentRoutesPath,
		SyncWindow:      time.Duration(windowDays) * 24 * time.Hour,
		PreDueOffset:    time.Duration(preOffsetHours) * time.Hour,
		PostDueOffset:   time.Duration(postOffsetHours) * time.Hour,
		Environment:     environment,
	}
}
