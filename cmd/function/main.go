package main

import (
	"context"
	"os"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"

	"github.com/studyloop/reviewsync/internal/app"
)

func main() {
	ctx := context.Background()

	a, err := app.New(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to initialize app: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer a.Close()

	if err := funcframework.RegisterCloudEventFunctionContext(ctx, "/", a.HandleCalendarEvent); err != nil {
		a.Log.Fatal("Failed to register function", "error", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	a.Log.Info("Starting function framework", "port", port)
	if err := funcframework.Start(port); err != nil {
		a.Log.Fatal("Function framework stopped", "error", err)
	}
}
