package launcher

import (
	"fmt"
	"io"

	"github.com/evalphobia/logrus_sentry"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// newLogger builds the run's logger from cfg. Entries go to out.
func newLogger(cfg NodeConfig, out io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(out)

	if cfg.Logging.Verbosity < int(logrus.PanicLevel) || cfg.Logging.Verbosity > int(logrus.TraceLevel) {
		return nil, fmt.Errorf("log verbosity %d out of range 0..%d", cfg.Logging.Verbosity, logrus.TraceLevel)
	}
	log.SetLevel(logrus.Level(cfg.Logging.Verbosity))

	switch cfg.Logging.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{
			ForceColors:   cfg.Logging.Color,
			FullTimestamp: true,
		})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Logging.Format)
	}

	if cfg.Sentry.DSN != "" {
		hook, err := logrus_sentry.NewSentryHook(cfg.Sentry.DSN, []logrus.Level{
			logrus.PanicLevel,
			logrus.FatalLevel,
			logrus.ErrorLevel,
		})
		if err != nil {
			return nil, errors.Wrap(err, "sentry hook")
		}
		log.AddHook(hook)
	}
	return log, nil
}
