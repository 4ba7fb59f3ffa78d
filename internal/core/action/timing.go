package action

import (
	"math"
	"sort"
)

// TimingFunc remaps linear progress in [0,1]. The result may leave [0,1]
// for curves that overshoot.
type TimingFunc func(x float64) float64

// Compose returns outer(inner(x)).
func Compose(outer, inner TimingFunc) TimingFunc {
	if outer == nil {
		outer = Linear
	}
	if inner == nil {
		inner = Linear
	}
	return func(x float64) float64 { return outer(inner(x)) }
}

// Reverse mirrors fn so an ease-in becomes the matching ease-out.
func Reverse(fn TimingFunc) TimingFunc {
	return func(x float64) float64 { return 1 - fn(1-x) }
}

func Linear(x float64) float64 { return x }

func EaseInQuad(x float64) float64  { return x * x }
func EaseOutQuad(x float64) float64 { return x * (2 - x) }
func EaseInOutQuad(x float64) float64 {
	if x < 0.5 {
		return 2 * x * x
	}
	return -1 + (4-2*x)*x
}

func EaseInCubic(x float64) float64  { return x * x * x }
func EaseOutCubic(x float64) float64 { return 1 - math.Pow(1-x, 3) }
func EaseInOutCubic(x float64) float64 {
	if x < 0.5 {
		return 4 * x * x * x
	}
	return 1 - math.Pow(-2*x+2, 3)/2
}

func EaseInSine(x float64) float64    { return 1 - math.Cos(x*math.Pi/2) }
func EaseOutSine(x float64) float64   { return math.Sin(x * math.Pi / 2) }
func EaseInOutSine(x float64) float64 { return -(math.Cos(math.Pi*x) - 1) / 2 }

func EaseInExpo(x float64) float64 {
	if x == 0 {
		return 0
	}
	return math.Pow(2, 10*x-10)
}

func EaseOutExpo(x float64) float64 {
	if x == 1 {
		return 1
	}
	return 1 - math.Pow(2, -10*x)
}

// back easing overshoot constant (~10% past the end).
const backOvershoot = 1.70158

func EaseInBack(x float64) float64 {
	return (backOvershoot+1)*x*x*x - backOvershoot*x*x
}

func EaseOutBack(x float64) float64 {
	y := x - 1
	return 1 + (backOvershoot+1)*y*y*y + backOvershoot*y*y
}

func EaseOutBounce(x float64) float64 {
	const n, d = 7.5625, 2.75
	switch {
	case x < 1/d:
		return n * x * x
	case x < 2/d:
		x -= 1.5 / d
		return n*x*x + 0.75
	case x < 2.5/d:
		x -= 2.25 / d
		return n*x*x + 0.9375
	default:
		x -= 2.625 / d
		return n*x*x + 0.984375
	}
}

var timings = map[string]TimingFunc{
	"linear":            Linear,
	"ease_in_quad":      EaseInQuad,
	"ease_out_quad":     EaseOutQuad,
	"ease_in_out_quad":  EaseInOutQuad,
	"ease_in_cubic":     EaseInCubic,
	"ease_out_cubic":    EaseOutCubic,
	"ease_in_out_cubic": EaseInOutCubic,
	"ease_in_sine":      EaseInSine,
	"ease_out_sine":     EaseOutSine,
	"ease_in_out_sine":  EaseInOutSine,
	"ease_in_expo":      EaseInExpo,
	"ease_out_expo":     EaseOutExpo,
	"ease_in_back":      EaseInBack,
	"ease_out_back":     EaseOutBack,
	"ease_out_bounce":   EaseOutBounce,
}

// TimingByName looks up a timing function by its snake_case name.
func TimingByName(name string) (TimingFunc, bool) {
	fn, ok := timings[name]
	return fn, ok
}

// TimingNames returns every registered timing name, sorted.
func TimingNames() []string {
	names := make([]string, 0, len(timings))
	for n := range timings {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
