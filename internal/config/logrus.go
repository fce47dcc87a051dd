package config

import (
	"go-identity-core/internal/config/env"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process-wide logger at the configured level. All
// services share this instance; the monitoring bootstrap attaches its OTLP
// hook to it when enabled.
func NewLogger(config *env.Config) *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.Level(config.Log.Level))
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		ForceColors:     true,
	})
	return log
}
