package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/l1jgo/choreo/internal/config"
	"github.com/l1jgo/choreo/internal/core/action"
	"github.com/l1jgo/choreo/internal/core/event"
	coresys "github.com/l1jgo/choreo/internal/core/system"
	"github.com/l1jgo/choreo/internal/data"
	"github.com/l1jgo/choreo/internal/metrics"
	"github.com/l1jgo/choreo/internal/persist"
	"github.com/l1jgo/choreo/internal/scene"
	"github.com/l1jgo/choreo/internal/scripting"
	"github.com/l1jgo/choreo/internal/system"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run <choreography.yaml>",
	Short: "Play a choreography until every node is idle",
	Long: `Builds the scene declared in the file, starts each node's action and drives
the scheduler at the configured frame rate. Stops when no runs remain, when
max_frames is reached, or on SIGINT/SIGTERM.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("max-frames") {
			cfg.Loop.MaxFrames, _ = cmd.Flags().GetInt("max-frames")
		}
		if cmd.Flags().Changed("scripts") {
			cfg.Scripting.Dir, _ = cmd.Flags().GetString("scripts")
		}
		fast, _ := cmd.Flags().GetBool("fast")
		return play(cmd, cfg, args[0], fast)
	},
}

func init() {
	runCmd.Flags().Int("max-frames", 0, "Stop after this many frames (0 = until idle)")
	runCmd.Flags().String("scripts", "", "Directory of Lua step functions (overrides [scripting] dir)")
	runCmd.Flags().Bool("fast", false, "Run frames back to back instead of at wall-clock rate")
}

func play(cmd *cobra.Command, cfg *config.Config, path string, fast bool) error {
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	out := display{w: cmd.OutOrStdout()}
	out.banner("choreo · " + filepath.Base(path))

	// 1. Scripts and choreography
	out.section("Choreography")
	engine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer engine.Close()

	lib, err := data.LoadChoreography(path, data.WithRunner(engine))
	if err != nil {
		return err
	}
	out.stat("Actions", lib.Count())
	out.stat("Nodes", len(lib.Nodes()))
	fmt.Fprintln(cmd.OutOrStdout())

	// 2. Scheduler, metrics and events
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	bus := event.NewBus()
	system.LogOutcomes(bus, log)
	sched := action.New(
		action.WithLogger(log),
		action.WithMetrics(metrics.NewScheduler(reg)),
		action.WithObserver(system.NewEventBridge(bus)),
	)

	sc := scene.New()
	runs, err := populate(sc, sched, lib)
	if err != nil {
		return err
	}

	// 3. Systems
	runner := coresys.NewRunner()
	actions := system.NewActionSystem(sched, cfg.Loop.TimeScale, nil)
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(actions)
	runner.Register(system.NewCleanupSystem(sc, log))

	var journal *system.FaultJournalSystem
	if cfg.Journal.Enabled {
		out.section("Fault journal")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err := persist.OpenJournal(ctx, cfg.Journal, log)
		cancel()
		if err != nil {
			return fmt.Errorf("journal: %w", err)
		}
		defer db.Close()
		runID := fmt.Sprintf("%s-%d", filepath.Base(path), time.Now().Unix())
		journal = system.NewFaultJournalSystem(bus, persist.NewFaultRepo(db), runID,
			actions.Frame, cfg.Journal.BatchSize, cfg.Journal.FlushTimeout, log)
		runner.Register(journal)
		out.ok("PostgreSQL connected, migrations applied")
		out.value("Run", runID)
		fmt.Fprintln(cmd.OutOrStdout())
	}

	st := &loopStatus{}
	if cfg.Metrics.Enabled {
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: newStatusRouter(reg, st)}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("status server", zap.Error(err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
	}

	// 4. Frame loop
	out.section("Playing")
	out.ready(fmt.Sprintf("%d runs started (frame: %s)", runs, cfg.Loop.TickRate))
	if cfg.Metrics.Enabled {
		out.ready(fmt.Sprintf("status on http://%s/healthz", cfg.Metrics.Addr))
	}
	fmt.Fprintln(cmd.OutOrStdout())

	reason := loop(runner, actions, sched, st, cfg.Loop, fast, log)
	st.done.Store(true)

	// Deliver the last frame's events and flush what they queued.
	runner.TickPhase(coresys.PhasePreUpdate, 0)
	if journal != nil {
		journal.Flush()
	}

	out.section("Stopped")
	out.value("Reason", reason)
	out.stat("Frames", int(actions.Frame()))
	out.stat("Runs left", sched.Len())
	for _, s := range sc.Snapshot() {
		out.value(s.Name, fmt.Sprintf("(%.2f, %.2f) α%.2f", s.X, s.Y, s.Alpha))
	}
	return nil
}

// loop ticks the runner until the scheduler is idle, the frame limit is hit
// or a signal arrives, and returns why it stopped.
func loop(runner *coresys.Runner, actions *system.ActionSystem, sched *action.Scheduler,
	st *loopStatus, cfg config.LoopConfig, fast bool, log *zap.Logger,
) string {
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	var frames <-chan time.Time
	if fast {
		c := make(chan time.Time)
		close(c)
		frames = c
	} else {
		ticker := time.NewTicker(cfg.TickRate)
		defer ticker.Stop()
		frames = ticker.C
	}

	for {
		select {
		case <-frames:
			runner.Tick(cfg.TickRate)
			st.update(actions.Frame(), sched.Len())
			if actions.Idle() {
				log.Info("all actions finished", zap.Int64("frame", actions.Frame()))
				return "idle"
			}
			if cfg.MaxFrames > 0 && actions.Frame() >= int64(cfg.MaxFrames) {
				log.Info("frame limit reached", zap.Int64("frame", actions.Frame()))
				return "frame limit"
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			return "signal " + sig.String()
		}
	}
}
