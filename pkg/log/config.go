package log

import (
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	Level       string `mapstructure:"level"`
	Pretty      bool   `mapstructure:"pretty"`
	ServiceName string `mapstructure:"service_name"`
}

var (
	global zerolog.Logger
	once   sync.Once
)

func init() {
	global = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// New builds a logger writing to stdout.
func New(cfg Config) zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter builds a logger writing to w. Pretty output wraps w in a
// console writer.
func NewWithWriter(cfg Config, w io.Writer) zerolog.Logger {
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	logger := zerolog.New(w).Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
	if cfg.ServiceName != "" {
		logger = logger.With().Str(FieldService, cfg.ServiceName).Logger()
	}
	return logger
}

// Init sets the global logger once and routes the stdlib log package
// through it.
func Init(cfg Config) {
	once.Do(func() {
		global = New(cfg)

		stdlog.SetFlags(0)
		stdlog.SetOutput(global.With().Str("source", "stdlog").Logger())
	})
}

// L returns the global logger.
func L() zerolog.Logger {
	return global
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
