package commands

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/movingwise/reconcile/internal/actionlog"
	"github.com/movingwise/reconcile/internal/api"
	"github.com/movingwise/reconcile/internal/config"
)

// runEnv bundles what every networked command needs: configuration, a
// logger, the backend client and best-effort action logging.
type runEnv struct {
	cfg    *config.Config
	logger *slog.Logger
	client *api.Client
}

func newRunEnv(configPath string) (*runEnv, error) {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.Log.Level)

	client, err := api.New(api.Options{
		BaseURL:    cfg.API.BaseURL,
		Creds:      api.EnvToken(config.EnvToken),
		HTTPClient: &http.Client{Timeout: cfg.API.Timeout()},
		OnUnauthorized: func() {
			fmt.Fprintf(os.Stderr, "session expired: set %s to a fresh token and retry\n", config.EnvToken)
		},
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	return &runEnv{cfg: cfg, logger: logger, client: client}, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}

// logAction appends to the local action log when enabled. Failures are
// warnings, never command failures.
func (e *runEnv) logAction(session, action string, recordID int64, detail, outcome string) {
	if !e.cfg.Log.ActionsEnabled {
		return
	}
	entry := actionlog.Entry{
		Timestamp: time.Now().UTC(),
		Session:   session,
		Action:    action,
		RecordID:  recordID,
		Detail:    detail,
		Outcome:   outcome,
	}
	if err := actionlog.Append(e.cfg.Log.ActionsDir, []actionlog.Entry{entry}); err != nil {
		e.logger.Warn("failed to write action log", "error", err)
	}
}
