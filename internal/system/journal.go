package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/l1jgo/choreo/internal/core/action"
	"github.com/l1jgo/choreo/internal/core/event"
	coresys "github.com/l1jgo/choreo/internal/core/system"
	"github.com/l1jgo/choreo/internal/persist"
	"go.uber.org/zap"
)

// FaultWriter persists a batch of faults. persist.FaultRepo implements it.
type FaultWriter interface {
	WriteFaults(ctx context.Context, faults []persist.Fault) error
}

// FaultJournalSystem collects failed runs from the bus and writes them in
// batches. Phase 2 (Persist).
type FaultJournalSystem struct {
	writer    FaultWriter
	log       *zap.Logger
	runID     string
	frame     func() int64
	batchSize int
	timeout   time.Duration
	pending   []persist.Fault
	written   int
}

// NewFaultJournalSystem subscribes to failures on bus. frame reports the
// current frame number for each recorded fault.
func NewFaultJournalSystem(bus *event.Bus, w FaultWriter, runID string, frame func() int64,
	batchSize int, timeout time.Duration, log *zap.Logger,
) *FaultJournalSystem {
	s := &FaultJournalSystem{
		writer:    w,
		log:       log,
		runID:     runID,
		frame:     frame,
		batchSize: max(batchSize, 1),
		timeout:   timeout,
		pending:   make([]persist.Fault, 0, batchSize),
	}
	event.Subscribe(bus, s.record)
	return s
}

func (s *FaultJournalSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *FaultJournalSystem) Update(_ time.Duration) {
	if len(s.pending) < s.batchSize {
		return
	}
	s.Flush()
}

// Flush writes everything pending. A failed batch is logged and dropped.
func (s *FaultJournalSystem) Flush() {
	if len(s.pending) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.writer.WriteFaults(ctx, s.pending); err != nil {
		s.log.Error("fault journal write failed",
			zap.Int("dropped", len(s.pending)),
			zap.Error(err))
	} else {
		s.written += len(s.pending)
	}
	s.pending = s.pending[:0]
}

// Pending returns the number of faults waiting for the next flush.
func (s *FaultJournalSystem) Pending() int { return len(s.pending) }

// Written returns the number of faults persisted so far.
func (s *FaultJournalSystem) Written() int { return s.written }

func (s *FaultJournalSystem) record(e event.ActionFailed) {
	cause := ""
	var te *action.TickError
	if errors.As(e.Err, &te) {
		cause = te.Cause
	}
	var frame int64
	if s.frame != nil {
		frame = s.frame()
	}
	s.pending = append(s.pending, persist.Fault{
		RunID:      s.runID,
		Frame:      frame,
		Target:     targetOf(e.Target).String(),
		Key:        e.Key,
		ActionKind: fmt.Sprintf("%T", e.Action),
		Cause:      cause,
		Message:    e.Err.Error(),
		OccurredAt: time.Now(),
	})
}
