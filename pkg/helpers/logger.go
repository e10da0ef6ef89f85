package helpers

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a configured Logrus logger. Development gets colored text
// at debug level, other environments JSON at info. A valid level overrides.
func NewLogger(appName, env, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if env == "development" {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if level != "" {
		if lvl, err := logrus.ParseLevel(level); err == nil {
			logger.SetLevel(lvl)
		} else {
			logger.WithField("level", level).Warn("invalid LOG_LEVEL, keeping default")
		}
	}
	logger.WithFields(logrus.Fields{"app": appName, "env": env, "level": logger.GetLevel().String()}).Info("logger initialized")
	return logger
}

// LogError Convenience methods to keep a unified logging interface
func LogError(logger *logrus.Logger, msg string, err error, fields logrus.Fields) {
	if fields == nil {
		fields = logrus.Fields{}
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	logger.WithFields(fields).Error(msg)
}

func LogInfo(logger *logrus.Logger, msg string, fields logrus.Fields) {
	if fields == nil {
		fields = logrus.Fields{}
	}
	logger.WithFields(fields).Info(msg)
}
