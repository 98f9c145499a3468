package zorya

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// NewDefaultLogger returns the slog.Logger DefaultConfig() installs:
// human-readable, colorized output to stderr in local development, the
// same handler the rest of the ambient stack (OpenAPI-merge warnings)
// logs through.
func NewDefaultLogger() *slog.Logger {
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: slog.LevelInfo,
	}))
}
