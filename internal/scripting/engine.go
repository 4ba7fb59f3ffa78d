package scripting

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/l1jgo/choreo/internal/core/action"
	"github.com/l1jgo/choreo/internal/effect"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// ErrNoStep is returned by RunStep when no global Lua function has the name.
var ErrNoStep = errors.New("scripting: step function not defined")

// Engine wraps a single gopher-lua VM hosting step functions.
// Single-goroutine access only (frame loop).
//
// A step function has the signature
//
//	function name(node, t, dt)
//
// where node is a table holding the target's properties (x, y, rotation,
// scale_x, scale_y, skew_x, skew_y, alpha, tint, width, height, texture and
// a read-only name). Fields the target supports are written back after the
// call returns.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every .lua file in scriptsDir.
// A missing directory yields an empty engine.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	vm.SetGlobal("log", vm.NewFunction(e.luaLog))

	if scriptsDir != "" {
		if err := e.loadDir(scriptsDir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory, in name order.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// DoString runs a chunk of Lua source in the engine's global scope.
func (e *Engine) DoString(src string) error { return e.vm.DoString(src) }

// Has reports whether a step function called name is defined.
func (e *Engine) Has(name string) bool {
	return e.vm.GetGlobal(name).Type() == lua.LTFunction
}

// Close releases the VM.
func (e *Engine) Close() { e.vm.Close() }

// RunStep calls the Lua function name with the target's property table.
func (e *Engine) RunStep(name string, target action.Target, t, dt float64) error {
	fn := e.vm.GetGlobal(name)
	if fn.Type() != lua.LTFunction {
		return fmt.Errorf("%w: %q", ErrNoStep, name)
	}

	node := e.pack(target)
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, node, lua.LNumber(t), lua.LNumber(dt)); err != nil {
		return fmt.Errorf("lua step %s: %w", name, err)
	}
	unpack(node, target)
	return nil
}

func (e *Engine) pack(target action.Target) *lua.LTable {
	t := e.vm.NewTable()
	if n, ok := target.(interface{ Name() string }); ok {
		t.RawSetString("name", lua.LString(n.Name()))
	}
	if p, ok := target.(effect.Positioner); ok {
		x, y := p.Position()
		t.RawSetString("x", lua.LNumber(x))
		t.RawSetString("y", lua.LNumber(y))
	}
	if r, ok := target.(effect.Rotator); ok {
		t.RawSetString("rotation", lua.LNumber(r.Rotation()))
	}
	if s, ok := target.(effect.Scaler); ok {
		x, y := s.Scale()
		t.RawSetString("scale_x", lua.LNumber(x))
		t.RawSetString("scale_y", lua.LNumber(y))
	}
	if s, ok := target.(effect.Skewer); ok {
		x, y := s.Skew()
		t.RawSetString("skew_x", lua.LNumber(x))
		t.RawSetString("skew_y", lua.LNumber(y))
	}
	if f, ok := target.(effect.Fader); ok {
		t.RawSetString("alpha", lua.LNumber(f.Alpha()))
	}
	if c, ok := target.(effect.Tinter); ok {
		t.RawSetString("tint", lua.LNumber(c.Tint()))
	}
	if s, ok := target.(effect.Sizer); ok {
		w, h := s.Size()
		t.RawSetString("width", lua.LNumber(w))
		t.RawSetString("height", lua.LNumber(h))
	}
	if tx, ok := target.(effect.Textured); ok {
		t.RawSetString("texture", lua.LString(tx.Texture()))
	}
	return t
}

// unpack writes numeric fields back to target. A field the script cleared
// or set to a non-number keeps the target's current value.
func unpack(t *lua.LTable, target action.Target) {
	num := func(key string, cur float64) float64 {
		if n, ok := t.RawGetString(key).(lua.LNumber); ok {
			return float64(n)
		}
		return cur
	}

	if p, ok := target.(effect.Positioner); ok {
		x, y := p.Position()
		p.SetPosition(num("x", x), num("y", y))
	}
	if r, ok := target.(effect.Rotator); ok {
		r.SetRotation(num("rotation", r.Rotation()))
	}
	if s, ok := target.(effect.Scaler); ok {
		x, y := s.Scale()
		s.SetScale(num("scale_x", x), num("scale_y", y))
	}
	if s, ok := target.(effect.Skewer); ok {
		x, y := s.Skew()
		s.SetSkew(num("skew_x", x), num("skew_y", y))
	}
	if f, ok := target.(effect.Fader); ok {
		f.SetAlpha(num("alpha", f.Alpha()))
	}
	if c, ok := target.(effect.Tinter); ok {
		if n, isNum := t.RawGetString("tint").(lua.LNumber); isNum {
			c.SetTint(clampTint(float64(n)))
		}
	}
	if s, ok := target.(effect.Sizer); ok {
		w, h := s.Size()
		s.SetSize(num("width", w), num("height", h))
	}
	if tx, ok := target.(effect.Textured); ok {
		if name, isStr := t.RawGetString("texture").(lua.LString); isStr {
			tx.SetTexture(string(name))
		}
	}
}

// clampTint maps a script number onto 0xRRGGBB.
func clampTint(v float64) uint32 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 0xFFFFFF:
		return 0xFFFFFF
	}
	return uint32(v)
}

// luaLog exposes log(msg) to scripts at debug level.
func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Debug("lua", zap.String("msg", L.CheckString(1)))
	return 0
}

var _ effect.StepRunner = (*Engine)(nil)
