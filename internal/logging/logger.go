package logging

import (
	"os"

	"github.com/showkit/catalog-api/internal/config"

	"github.com/sirupsen/logrus"
)

// New creates a new structured logger
func New(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	// Set log level
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warn("Invalid log level, defaulting to info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Set output format
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "ts",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "msg",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05.000Z",
		})
	}

	logger.SetOutput(os.Stdout)

	// Add default fields
	logger = logger.WithFields(logrus.Fields{
		"service":     "catalog-api",
		"version":     getVersion(),
		"environment": cfg.Server.Environment,
	}).Logger

	return logger
}

// getVersion returns the application version
func getVersion() string {
	if version := os.Getenv("APP_VERSION"); version != "" {
		return version
	}
	return "dev"
}

// WithUsername adds the acting username to logger context
func WithUsername(logger *logrus.Logger, username string) *logrus.Entry {
	return logger.WithField("username", username)
}
