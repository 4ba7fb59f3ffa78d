package main

import (
	"fmt"
	"strings"

	"github.com/l1jgo/choreo/internal/core/action"
	"github.com/l1jgo/choreo/internal/data"
	"github.com/l1jgo/choreo/internal/scripting"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var validateCmd = &cobra.Command{
	Use:   "validate <choreography.yaml>...",
	Short: "Compile choreography files and print their durations",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("scripts") {
			cfg.Scripting.Dir, _ = cmd.Flags().GetString("scripts")
		}
		engine, err := scripting.NewEngine(cfg.Scripting.Dir, zap.NewNop())
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer engine.Close()

		out := display{w: cmd.OutOrStdout()}
		failed := 0
		for _, path := range args {
			if err := validateFile(out, path, engine); err != nil {
				out.fail(err.Error())
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed to compile", failed, len(args))
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().String("scripts", "", "Directory of Lua step functions (overrides [scripting] dir)")
}

func validateFile(out display, path string, engine *scripting.Engine) error {
	lib, err := data.LoadChoreography(path, data.WithRunner(engine))
	if err != nil {
		return err
	}
	out.section(path)
	for _, name := range lib.Names() {
		a, _ := lib.Get(name)
		out.value(fmt.Sprintf("%s %s", name, describe(a)), formatSeconds(a.ScaledDuration()))
	}
	out.stat("Nodes", len(lib.Nodes()))
	out.ok("compiled")
	return nil
}

// describe names the outermost action kind, e.g. "(sequence)".
func describe(a action.Action) string {
	for {
		u, ok := a.(interface{ Unwrap() action.Action })
		if !ok {
			break
		}
		a = u.Unwrap()
	}
	kind := fmt.Sprintf("%T", a)
	kind = kind[strings.LastIndex(kind, ".")+1:]
	return "(" + strings.ToLower(kind) + ")"
}
