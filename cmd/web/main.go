// Command web serves the picks page, the JSON API and the weekly digest,
// and refreshes the picks on the configured schedule.
package main

import (
	"context"
	"log/slog"
	"os"

	"myxpicks/internal/app"
	"myxpicks/web"
)

func main() {
	application, err := app.NewApplication(web.FS())
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
