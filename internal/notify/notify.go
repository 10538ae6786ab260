// Package notify defines the best-effort notification sinks used to surface
// status changes and co-presence alerts to the operator.
package notify

import (
	"context"
	"time"
)

// Kind classifies a toast.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// DefaultToastTimeout is how long a toast stays visible when the caller does not say.
const DefaultToastTimeout = 4 * time.Second

// Toast is a low-priority, auto-dismissed notification.
type Toast struct {
	Message string
	Kind    Kind
	Timeout time.Duration
}

// Modal is a high-priority notification that stays until dismissed.
type Modal struct {
	Title  string
	Lines  []string
	Danger bool
}

// Notifier presents toasts and modals. Implementations must not block and
// must swallow their own failures; callers treat both as fire-and-forget.
type Notifier interface {
	Toast(ctx context.Context, t Toast)
	Modal(ctx context.Context, m Modal)
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Toast(context.Context, Toast) {}
func (Nop) Modal(context.Context, Modal) {}

// Multi fans out to several notifiers in order.
type Multi []Notifier

func (m Multi) Toast(ctx context.Context, t Toast) {
	for _, n := range m {
		n.Toast(ctx, t)
	}
}

func (m Multi) Modal(ctx context.Context, md Modal) {
	for _, n := range m {
		n.Modal(ctx, md)
	}
}
