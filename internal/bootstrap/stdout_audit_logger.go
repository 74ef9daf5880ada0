package bootstrap

import (
	"context"
	"time"

	"jovenva-attendance/internal/shared/contextutil"

	"go.uber.org/zap"
)

// ZapAuditLogger writes audit entries as structured log lines on a
// dedicated "audit" logger.
type ZapAuditLogger struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewStdoutAuditLogger(logger ...*zap.Logger) *ZapAuditLogger {
	l := zap.L()
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &ZapAuditLogger{logger: l.Named("audit"), now: time.Now}
}

func (l *ZapAuditLogger) Log(ctx context.Context, entry AuditLog) {
	meta := contextutil.ExtractMetadata(ctx)
	l.logger.Info("audit event",
		zap.String("timestamp", l.now().UTC().Format(time.RFC3339)),
		zap.String("action", entry.Action),
		zap.String("actor_id", entry.ActorID),
		zap.String("request_id", meta.RequestID),
		zap.String("message", entry.Message),
		zap.Any("meta", entry.Meta),
	)
}
