package initializers

import (
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// LoadEnv loads a .env file when one exists. A missing file is not an error.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		zap.L().Debug("No .env file found, using environment variables")
	}
}
