package main

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/webauth/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		slog.Error("failed to start webauth", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
