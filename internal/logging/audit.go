package logging

import (
	"time"

	"go.uber.org/zap"
)

// AuditEventType names a structured run event.
type AuditEventType string

const (
	AuditRunStart  AuditEventType = "run_start"
	AuditRunEnd    AuditEventType = "run_end"
	AuditCasePass  AuditEventType = "case_pass"
	AuditCaseFail  AuditEventType = "case_fail"
	AuditCaseError AuditEventType = "case_error"
)

// AuditEvent is one structured record emitted for a script run.
type AuditEvent struct {
	Type       AuditEventType
	RunID      string
	Script     string
	CaseID     string
	Step       string
	Message    string
	DurationMs int64
}

// Audit writes an audit event to the audit category as structured fields.
func Audit(ev AuditEvent) {
	l := Get(CategoryAudit)
	fields := []interface{}{
		zap.String("event", string(ev.Type)),
		zap.String("run_id", ev.RunID),
		zap.Int64("ts", time.Now().UnixMilli()),
	}
	if ev.Script != "" {
		fields = append(fields, zap.String("script", ev.Script))
	}
	if ev.CaseID != "" {
		fields = append(fields, zap.String("case", ev.CaseID))
	}
	if ev.Step != "" {
		fields = append(fields, zap.String("step", ev.Step))
	}
	if ev.DurationMs > 0 {
		fields = append(fields, zap.Int64("duration_ms", ev.DurationMs))
	}

	msg := string(ev.Type)
	if ev.Message != "" {
		msg = ev.Message
	}

	switch ev.Type {
	case AuditCaseFail, AuditCaseError:
		l.sugar.Warnw(msg, fields...)
	default:
		l.sugar.Infow(msg, fields...)
	}
}
