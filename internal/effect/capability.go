package effect

import (
	"fmt"

	"github.com/l1jgo/choreo/internal/core/action"
)

// Capabilities a target may expose. Each effect asks only for the one it
// touches and fails with action.ErrCapability when it is missing.
type (
	Positioner interface {
		Position() (x, y float64)
		SetPosition(x, y float64)
	}
	Rotator interface {
		Rotation() float64
		SetRotation(r float64)
	}
	Scaler interface {
		Scale() (x, y float64)
		SetScale(x, y float64)
	}
	Skewer interface {
		Skew() (x, y float64)
		SetSkew(x, y float64)
	}
	Fader interface {
		Alpha() float64
		SetAlpha(a float64)
	}
	Tinter interface {
		Tint() uint32
		SetTint(c uint32)
	}
	Sizer interface {
		Size() (w, h float64)
		SetSize(w, h float64)
	}
	Textured interface {
		Texture() string
		SetTexture(name string)
	}
	Container interface {
		ChildByName(name string) (action.Target, bool)
	}
	Detachable interface {
		RemoveFromParent()
	}
)

func capability[C any](target action.Target, what string) (C, error) {
	c, ok := target.(C)
	if !ok {
		var zero C
		return zero, fmt.Errorf("%w: %v (%T) cannot %s", action.ErrCapability, target, target, what)
	}
	return c, nil
}

func lerp(from, to, t float64) float64 { return from + (to-from)*t }
