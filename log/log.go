package log

import (
	"os"

	"go.uber.org/zap"
)

var Logger *zap.Logger

func EnsureLogger() {
	if os.Getenv("LOG_LEVEL") == "production" {
		Logger, _ = zap.NewProduction()
	} else {
		Logger, _ = zap.NewDevelopment()
	}
	defer Logger.Sync()
}
