// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go — Cold-path logging helpers
//
// Purpose:
//   - Logs setup steps, progress and failures through a process-wide zap logger.
//   - Adapts ring mutation events to structured debug logs for verbose runs.
//
// Notes:
//   - The default logger is a no-op so libraries and tests stay silent.
//   - The CLI installs a real logger with SetLogger at startup.
//
// ⚠️ Never wire RingObserver into a million-cup run — it logs every mutation.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import (
	"sync/atomic"

	"go.uber.org/zap"

	"crabring/ring"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// SetLogger replaces the process-wide logger. A nil logger restores the no-op.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

// Logger returns the process-wide logger.
func Logger() *zap.Logger {
	return logger.Load()
}

// DropError logs a failure under prefix. With a nil error only the prefix is
// logged, as a tagged warning.
func DropError(prefix string, err error) {
	if err != nil {
		Logger().Warn(prefix, zap.Error(err))
		return
	}
	Logger().Warn(prefix)
}

// DropMessage logs an informational message tagged with prefix.
func DropMessage(prefix, message string) {
	Logger().Info(message, zap.String("tag", prefix))
}

// ringObserver logs every ring mutation at debug level.
type ringObserver struct {
	log *zap.Logger
}

// RingObserver returns a ring.Observer that writes one debug entry per
// completed mutation to l.
func RingObserver(l *zap.Logger) ring.Observer {
	if l == nil {
		l = Logger()
	}
	return ringObserver{log: l.Named("ring")}
}

func (ringObserver) BeforeMutation(ring.Op, uint32) {}

func (o ringObserver) AfterMutation(op ring.Op, value uint32) {
	o.log.Debug("mutation", zap.Stringer("op", op), zap.Uint32("value", value))
}
