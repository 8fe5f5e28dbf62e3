package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lwmacct/251218-go-pkg-ask/pkg/actor"
)

// NewLogger 按日志配置创建 slog.Logger
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// SystemConfig 转换为 Actor 系统配置，0 值保留系统默认
func (c *Config) SystemConfig(logger *slog.Logger) *actor.SystemConfig {
	sc := actor.DefaultSystemConfig()
	if c.System.Workers > 0 {
		sc.Workers = c.System.Workers
	}
	if c.System.ContinuationWorkers > 0 {
		sc.ContinuationWorkers = c.System.ContinuationWorkers
	}
	if c.Ask.Timeout > 0 {
		sc.AskTimeout = c.Ask.Timeout
	}
	sc.AskFailFast = c.System.AskFailFast
	sc.Logger = logger
	return sc
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
