package effect

import (
	"math"
	"slices"

	"github.com/l1jgo/choreo/internal/core/action"
)

// FadeBy adds alpha to the target's opacity.
type FadeBy struct {
	action.Base
	alpha float64
}

func NewFadeBy(alpha, duration float64) (*FadeBy, error) {
	b, err := action.NewBase(duration)
	if err != nil {
		return nil, err
	}
	return &FadeBy{Base: b, alpha: alpha}, nil
}

func (f *FadeBy) Reversed() action.Action { return &FadeBy{Base: f.Base, alpha: -f.alpha} }

func (f *FadeBy) OnAdded(target action.Target, _ *action.Ticker) (any, error) {
	return capability[Fader](target, "fade")
}

func (f *FadeBy) OnUpdate(_ action.Target, _, dt float64, tk *action.Ticker, _ float64) error {
	fd := action.Data[Fader](tk)
	fd.SetAlpha(fd.Alpha() + f.alpha*dt)
	return nil
}

type fadeTo struct {
	f     Fader
	start float64
}

// FadeTo fades the target to an absolute opacity.
type FadeTo struct {
	action.Base
	alpha float64
}

func NewFadeTo(alpha, duration float64) (*FadeTo, error) {
	b, err := action.NewBase(duration)
	if err != nil {
		return nil, err
	}
	return &FadeTo{Base: b, alpha: alpha}, nil
}

func NewFadeIn(duration float64) (*FadeTo, error)  { return NewFadeTo(1, duration) }
func NewFadeOut(duration float64) (*FadeTo, error) { return NewFadeTo(0, duration) }

func (f *FadeTo) Reversed() action.Action { return waitFor(f.Base) }

func (f *FadeTo) OnAdded(target action.Target, _ *action.Ticker) (any, error) {
	fd, err := capability[Fader](target, "fade")
	if err != nil {
		return nil, err
	}
	return &fadeTo{f: fd, start: fd.Alpha()}, nil
}

func (f *FadeTo) OnUpdate(_ action.Target, t, _ float64, tk *action.Ticker, _ float64) error {
	d := action.Data[*fadeTo](tk)
	d.f.SetAlpha(lerp(d.start, f.alpha, t))
	return nil
}

type tintTo struct {
	t     Tinter
	start uint32
}

// TintTo blends the target's tint towards color, channel by channel.
type TintTo struct {
	action.Base
	color uint32
}

func NewTintTo(color uint32, duration float64) (*TintTo, error) {
	b, err := action.NewBase(duration)
	if err != nil {
		return nil, err
	}
	return &TintTo{Base: b, color: color & 0xFFFFFF}, nil
}

func (c *TintTo) Reversed() action.Action { return waitFor(c.Base) }

func (c *TintTo) OnAdded(target action.Target, _ *action.Ticker) (any, error) {
	tn, err := capability[Tinter](target, "tint")
	if err != nil {
		return nil, err
	}
	return &tintTo{t: tn, start: tn.Tint()}, nil
}

func (c *TintTo) OnUpdate(_ action.Target, t, _ float64, tk *action.Ticker, _ float64) error {
	d := action.Data[*tintTo](tk)
	d.t.SetTint(blend(d.start, c.color, t))
	return nil
}

func blend(from, to uint32, t float64) uint32 {
	var out uint32
	for shift := 0; shift <= 16; shift += 8 {
		a := float64(from >> shift & 0xFF)
		b := float64(to >> shift & 0xFF)
		ch := math.Round(lerp(a, b, t))
		ch = math.Max(0, math.Min(255, ch))
		out |= uint32(ch) << shift
	}
	return out
}

type resizeTo struct {
	s      Sizer
	sw, sh float64
}

// ResizeTo changes the target's width and height.
type ResizeTo struct {
	action.Base
	w, h float64
}

func NewResizeTo(w, h, duration float64) (*ResizeTo, error) {
	b, err := action.NewBase(duration)
	if err != nil {
		return nil, err
	}
	return &ResizeTo{Base: b, w: w, h: h}, nil
}

func (r *ResizeTo) Reversed() action.Action { return waitFor(r.Base) }

func (r *ResizeTo) OnAdded(target action.Target, _ *action.Ticker) (any, error) {
	s, err := capability[Sizer](target, "resize")
	if err != nil {
		return nil, err
	}
	sw, sh := s.Size()
	return &resizeTo{s: s, sw: sw, sh: sh}, nil
}

func (r *ResizeTo) OnUpdate(_ action.Target, t, _ float64, tk *action.Ticker, _ float64) error {
	d := action.Data[*resizeTo](tk)
	d.s.SetSize(lerp(d.sw, r.w, t), lerp(d.sh, r.h, t))
	return nil
}

type animation struct {
	tx       Textured
	original string
}

// Animate flips through texture frames over len(frames)*timePerFrame
// seconds. With Restoring, the texture in place before the run comes back
// when the run ends.
type Animate struct {
	action.Base
	frames  []string
	restore bool
}

func NewAnimate(frames []string, timePerFrame float64) (*Animate, error) {
	b, err := action.NewBase(float64(len(frames)) * timePerFrame)
	if err != nil {
		return nil, err
	}
	return &Animate{Base: b, frames: slices.Clone(frames)}, nil
}

// Restoring returns a copy that puts the original texture back on removal.
func (a *Animate) Restoring() *Animate {
	c := *a
	c.restore = true
	return &c
}

func (a *Animate) Frames() []string { return slices.Clone(a.frames) }

func (a *Animate) Reversed() action.Action {
	rev := slices.Clone(a.frames)
	slices.Reverse(rev)
	return &Animate{Base: a.Base, frames: rev, restore: a.restore}
}

func (a *Animate) OnAdded(target action.Target, _ *action.Ticker) (any, error) {
	tx, err := capability[Textured](target, "animate")
	if err != nil {
		return nil, err
	}
	return &animation{tx: tx, original: tx.Texture()}, nil
}

func (a *Animate) OnUpdate(_ action.Target, t, _ float64, tk *action.Ticker, _ float64) error {
	if len(a.frames) == 0 {
		return nil
	}
	d := action.Data[*animation](tk)
	i := int(t * float64(len(a.frames)))
	i = max(0, min(i, len(a.frames)-1))
	d.tx.SetTexture(a.frames[i])
	return nil
}

func (a *Animate) OnRemoved(_ action.Target, tk *action.Ticker) {
	if !a.restore {
		return
	}
	if d := action.Data[*animation](tk); d != nil {
		d.tx.SetTexture(d.original)
	}
}
