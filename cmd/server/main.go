package main

import (
	"context"
	"os"

	"github.com/studyloop/reviewsync/internal/app"
	"github.com/studyloop/reviewsync/internal/server"
)

func main() {
	ctx := context.Background()

	a, err := app.New(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to initialize app: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer a.Close()

	router := server.NewRouter(a.Log, a.HandleCalendarEvent)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	a.Log.Info("Starting event receiver", "port", port)
	if err := router.Run(":" + port); err != nil {
		a.Log.Fatal("Server stopped", "error", err)
	}
}
