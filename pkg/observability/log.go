package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks forwards every event to a logger at debug level. Failures are
// logged at warn level.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log through logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

func (h *LogHooks) done(msg string, err error, kv ...any) {
	if err != nil {
		h.logger.Warn(msg+" failed", append(kv, "err", err)...)
		return
	}
	h.logger.Debug(msg, kv...)
}

func (h *LogHooks) OnReduceStart(_ context.Context, actions int) {
	h.logger.Debug("reduce", "actions", actions)
}

func (h *LogHooks) OnReduceComplete(_ context.Context, actions int, d time.Duration, err error) {
	h.done("reduced", err, "actions", actions, "duration", d)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, nodes int) {
	h.logger.Debug("layout", "nodes", nodes)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, nodes int, d time.Duration, err error) {
	h.done("laid out", err, "nodes", nodes, "duration", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, format string) {
	h.logger.Debug("render", "format", format)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	h.done("rendered", err, "format", format, "bytes", size, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	if status >= 500 {
		h.logger.Error("response", "method", method, "route", route, "status", status, "duration", d)
		return
	}
	h.logger.Info("response", "method", method, "route", route, "status", status, "duration", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ ServerHooks   = (*LogHooks)(nil)
)
