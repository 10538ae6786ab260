package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ConsoleOptions configures the Console notifier.
type ConsoleOptions struct {
	ToastsPerMinute int // 0 disables toast rate limiting
}

// Console writes notifications to a terminal. Toasts are rate limited so a
// burst of presence changes cannot flood the screen; modals never are.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	logger  *zap.Logger
	limiter *rate.Limiter
	dropped int
}

// NewConsole creates a Console writing to out.
func NewConsole(out io.Writer, logger *zap.Logger, opts ConsoleOptions) *Console {
	c := &Console{
		out:    out,
		logger: logger.Named("notify"),
	}
	if opts.ToastsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(float64(opts.ToastsPerMinute)/60.0), max(1, opts.ToastsPerMinute/10))
	}
	return c
}

func (c *Console) Toast(_ context.Context, t Toast) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.limiter != nil && !c.limiter.Allow() {
		c.dropped++
		c.logger.Debug("Toast rate limited", zap.String("message", t.Message))
		return
	}
	kind := t.Kind
	if kind == "" {
		kind = KindInfo
	}
	if _, err := fmt.Fprintf(c.out, "[%s] %s\n", kind, t.Message); err != nil {
		c.logger.Warn("Failed to write toast", zap.Error(err))
	}
}

func (c *Console) Modal(_ context.Context, m Modal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	rule := strings.Repeat("=", 60)
	b.WriteString(rule + "\n")
	if m.Danger {
		b.WriteString("!! ")
	}
	b.WriteString(m.Title + "\n")
	for _, line := range m.Lines {
		b.WriteString("   " + line + "\n")
	}
	b.WriteString(rule + "\n")
	if _, err := io.WriteString(c.out, b.String()); err != nil {
		c.logger.Warn("Failed to write modal", zap.Error(err))
	}
}

// Dropped returns how many toasts were suppressed by the rate limiter.
func (c *Console) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}
