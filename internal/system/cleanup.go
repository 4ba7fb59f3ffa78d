package system

import (
	"time"

	coresys "github.com/l1jgo/choreo/internal/core/system"
	"github.com/l1jgo/choreo/internal/scene"
	"go.uber.org/zap"
)

// CleanupSystem flushes the scene's deferred destruction queue at frame
// end. Runs targeting the flushed nodes are purged on the next pulse.
// Phase 3 (Cleanup).
type CleanupSystem struct {
	scene *scene.Scene
	log   *zap.Logger
}

func NewCleanupSystem(sc *scene.Scene, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{scene: sc, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	if n := s.scene.Flush(); n > 0 {
		s.log.Debug("nodes destroyed", zap.Int("count", n))
	}
}
