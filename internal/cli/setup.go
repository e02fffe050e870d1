package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/internal/config"
	"github.com/aretw0/strata/internal/logging"
	"github.com/aretw0/strata/pkg/adapters/memory"
	"github.com/aretw0/strata/pkg/adapters/redis"
	"github.com/aretw0/strata/pkg/persistence/middleware"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// NewLogger configures the application logger.
// Logs go to Stderr so command output on Stdout stays parseable.
// debug overrides the configured level.
func NewLogger(cfg config.LogConfig, debug bool) *slog.Logger {
	return NewLoggerWithWriter(os.Stderr, cfg, debug)
}

// NewLoggerWithWriter is NewLogger for an arbitrary writer.
func NewLoggerWithWriter(w io.Writer, cfg config.LogConfig, debug bool) *slog.Logger {
	level := logging.ParseLevel(cfg.Level)
	if debug {
		level = slog.LevelDebug
	}
	return logging.NewWithWriter(w, level, logging.Format(cfg.Format))
}

// LoadOptions turns the loader settings into strata options.
func LoadOptions(cfg config.LoaderConfig, logger *slog.Logger) []strata.Option {
	opts := []strata.Option{strata.WithBestEffort(cfg.BestEffort)}
	if logger != nil {
		opts = append(opts, strata.WithLogger(logger))
	}
	if cfg.ExternalURI != "" {
		opts = append(opts, strata.WithExternalURI(cfg.ExternalURI))
	}
	return opts
}

// NewCache builds the document cache selected by cfg.Backend, encrypted when
// a key is configured. The returned close function releases backend connections.
func NewCache(cfg config.CacheConfig) (ports.DocumentCache, func() error, error) {
	cache, closeFn, err := newBackend(cfg)
	if err != nil {
		return nil, nil, err
	}
	active, fallback, err := cfg.Keys()
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	if active != nil {
		cache = middleware.Chain(cache, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		}))
	}
	return cache, closeFn, nil
}

func newBackend(cfg config.CacheConfig) (ports.DocumentCache, func() error, error) {
	switch cfg.Backend {
	case "", "memory":
		return memory.NewCache(), func() error { return nil }, nil
	case "redis":
		var opts []redis.Option
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Redis.TTL))
		}
		c := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		return c, c.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the width of w, or fallback when it is not a terminal.
func TerminalWidth(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return fallback
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

// ColorProfile picks colors for terminals and plain ASCII for pipes and files.
func ColorProfile(w io.Writer, noColor bool) termenv.Profile {
	if noColor || !IsTerminal(w) {
		return termenv.Ascii
	}
	return termenv.NewOutput(w).EnvColorProfile()
}
