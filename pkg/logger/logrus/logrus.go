// Package logrus adapts sirupsen/logrus to logger.Logger.
package logrus

import (
	"fmt"
	"io"
	"os"

	"github.com/raykavin/vitaltrend/pkg/logger"
	"github.com/sirupsen/logrus"
)

// Adapter exposes a logrus entry through logger.Logger
type Adapter struct {
	*logrus.Entry
}

// New creates a logrus backed logger
func New(config logger.Config) (*Adapter, error) {
	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var out io.Writer = os.Stdout
	if config.Output != nil {
		out = config.Output
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(level)

	if config.JSON {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: config.TimeFormat})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: config.TimeFormat,
			DisableColors:   !config.Colored,
			ForceColors:     config.Colored,
		})
	}

	return NewAdapter(logrus.NewEntry(log)), nil
}

// NewAdapter wraps an existing logrus entry
func NewAdapter(entry *logrus.Entry) *Adapter {
	return &Adapter{entry}
}

// WithField implements logger.Logger.
func (l *Adapter) WithField(key string, value any) logger.Logger {
	return &Adapter{l.Entry.WithField(key, value)}
}

// WithFields implements logger.Logger.
func (l *Adapter) WithFields(fields map[string]any) logger.Logger {
	return &Adapter{l.Entry.WithFields(fields)}
}

// WithError implements logger.Logger.
func (l *Adapter) WithError(err error) logger.Logger {
	return &Adapter{l.Entry.WithError(err)}
}

// SetLevel implements logger.Logger. The level is shared by every entry of the same logger.
func (l *Adapter) SetLevel(level logger.Level) {
	if level == logger.Disabled {
		l.Entry.Logger.SetOutput(io.Discard)
		return
	}
	if lvl, ok := toLogrus[level]; ok {
		l.Entry.Logger.SetLevel(lvl)
	}
}

// GetLevel implements logger.Logger.
func (l *Adapter) GetLevel() logger.Level {
	current := l.Entry.Logger.GetLevel()
	for level, lvl := range toLogrus {
		if lvl == current {
			return level
		}
	}
	return logger.NoLevel
}

var toLogrus = map[logger.Level]logrus.Level{
	logger.TraceLevel: logrus.TraceLevel,
	logger.DebugLevel: logrus.DebugLevel,
	logger.InfoLevel:  logrus.InfoLevel,
	logger.WarnLevel:  logrus.WarnLevel,
	logger.ErrorLevel: logrus.ErrorLevel,
	logger.FatalLevel: logrus.FatalLevel,
	logger.PanicLevel: logrus.PanicLevel,
}
