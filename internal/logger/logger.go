package logger

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// New builds the structured JSON logger for the service. The level is
// taken from LOG_LEVEL, defaulting to info.
func New(serviceName string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "ts",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	log.SetLevel(logrus.InfoLevel)
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if lvl, err := logrus.ParseLevel(raw); err == nil {
			log.SetLevel(lvl)
		}
	}
	log.AddHook(serviceHook{name: serviceName})
	return log
}

// serviceHook adds the service name to every entry.
type serviceHook struct{ name string }

func (h serviceHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h serviceHook) Fire(e *logrus.Entry) error {
	e.Data["service"] = h.name
	return nil
}
