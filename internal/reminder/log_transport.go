package reminder

import (
	"context"
	"log/slog"
)

// LogTransport writes messages to the logger instead of sending them.
// Meant for local development.
type LogTransport struct {
	logger *slog.Logger
}

func NewLogTransport(logger *slog.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

func (t *LogTransport) Send(ctx context.Context, msg Message) error {
	t.logger.InfoContext(ctx, "mail (log transport)",
		"to", msg.To,
		"subject", msg.Subject,
	)
	t.logger.DebugContext(ctx, "mail body", "text", msg.TextBody)
	return nil
}

var _ Transport = (*LogTransport)(nil)
