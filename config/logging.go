package config

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// ConfigureLogging applies the log level and format to the standard logrus
// logger.
func (c *Config) ConfigureLogging() error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}

	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(level)
	if strings.EqualFold(c.LogFormat, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	logrus.WithFields(logrus.Fields{
		"function": "ConfigureLogging",
		"level":    level.String(),
		"format":   c.LogFormat,
	}).Debug("Logging configured")
	return nil
}
