package processlog

import (
	"context"
	"log/slog"

	"github.com/mcoot/dutyledger/internal/dependencies/clock"
	"github.com/mcoot/dutyledger/internal/dependencies/ids"
	"github.com/mcoot/dutyledger/internal/model"
	"github.com/mcoot/dutyledger/internal/storage"
)

// DefaultListLimit applies when a caller asks for no particular limit
const DefaultListLimit = 100

// Service keeps an audit trail of request outcomes
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	ids     ids.Generator
	logger  *slog.Logger
}

// New creates a new process log Service
func New(storage storage.Storage, clock clock.Clock, ids ids.Generator, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		ids:     ids,
		logger:  logger,
	}
}

// Record stores the outcome of a request. A nil err records SUCCESS.
// Write failures are logged and never reach the caller.
func (s *Service) Record(ctx context.Context, requestPath, message string, err error) {
	entry := &model.ProcessLog{
		ID:          model.ProcessLogID(s.ids.NewID()),
		Timestamp:   s.clock.Now(),
		Level:       model.ProcessLogSuccess,
		Message:     message,
		RequestPath: requestPath,
	}
	if err != nil {
		entry.Level = model.ProcessLogError
		entry.Error = err.Error()
	}

	if werr := s.storage.AppendProcessLog(context.WithoutCancel(ctx), entry); werr != nil {
		s.logger.Error("failed to write process log",
			"error", werr,
			"request_path", requestPath,
			"level", entry.Level,
		)
	}
}

// List returns up to limit entries, newest first
func (s *Service) List(ctx context.Context, limit int) ([]*model.ProcessLog, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return s.storage.ListProcessLogs(ctx, limit)
}
