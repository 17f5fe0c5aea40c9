package history

import (
	"github.com/iwvelando/signal-timing/internal/simulation"
	"go.uber.org/zap"
)

// Recorder is the fail-soft front of a Repository. Storage problems are
// logged and never surface to callers; without a repository every call is a
// no-op.
type Recorder struct {
	logger *zap.Logger
	repo   Repository
}

// NewRecorder wraps repo, which may be nil.
func NewRecorder(logger *zap.Logger, repo Repository) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{logger: logger, repo: repo}
}

// Enabled reports whether results are being stored.
func (r *Recorder) Enabled() bool {
	return r.repo != nil
}

// SaveResult stores result.
func (r *Recorder) SaveResult(result simulation.Result) {
	if r.repo == nil {
		return
	}
	if err := r.repo.Append(result); err != nil {
		r.logger.Warn("failed to save simulation result",
			zap.String("op", "history.SaveResult"),
			zap.String("id", result.ID),
			zap.Error(err),
		)
	}
}

// GetHistory returns stored results, most recent first. It never returns nil.
func (r *Recorder) GetHistory() []simulation.Result {
	if r.repo == nil {
		return []simulation.Result{}
	}
	list, err := r.repo.List()
	if err != nil {
		r.logger.Warn("failed to read simulation history",
			zap.String("op", "history.GetHistory"),
			zap.Error(err),
		)
		return []simulation.Result{}
	}
	if list == nil {
		return []simulation.Result{}
	}
	return list
}

// ClearHistory removes every stored result.
func (r *Recorder) ClearHistory() {
	if r.repo == nil {
		return
	}
	if err := r.repo.Clear(); err != nil {
		r.logger.Warn("failed to clear simulation history",
			zap.String("op", "history.ClearHistory"),
			zap.Error(err),
		)
	}
}
