package effect

import "github.com/l1jgo/choreo/internal/core/action"

// MoveBy shifts the target's position by (x, y).
type MoveBy struct {
	action.Base
	x, y float64
}

func NewMoveBy(x, y, duration float64) (*MoveBy, error) {
	b, err := action.NewBase(duration)
	if err != nil {
		return nil, err
	}
	return &MoveBy{Base: b, x: x, y: y}, nil
}

func (m *MoveBy) Reversed() action.Action { return &MoveBy{Base: m.Base, x: -m.x, y: -m.y} }

func (m *MoveBy) OnAdded(target action.Target, _ *action.Ticker) (any, error) {
	return capability[Positioner](target, "move")
}

func (m *MoveBy) OnUpdate(_ action.Target, _, dt float64, tk *action.Ticker, _ float64) error {
	p := action.Data[Positioner](tk)
	x, y := p.Position()
	p.SetPosition(x+m.x*dt, y+m.y*dt)
	return nil
}

type moveTo struct {
	p      Positioner
	sx, sy float64
}

// MoveTo moves the target to (x, y) from wherever it is when the run starts.
type MoveTo struct {
	action.Base
	x, y float64
}

func NewMoveTo(x, y, duration float64) (*MoveTo, error) {
	b, err := action.NewBase(duration)
	if err != nil {
		return nil, err
	}
	return &MoveTo{Base: b, x: x, y: y}, nil
}

func (m *MoveTo) Reversed() action.Action { return waitFor(m.Base) }

func (m *MoveTo) OnAdded(target action.Target, _ *action.Ticker) (any, error) {
	p, err := capability[Positioner](target, "move")
	if err != nil {
		return nil, err
	}
	sx, sy := p.Position()
	return &moveTo{p: p, sx: sx, sy: sy}, nil
}

func (m *MoveTo) OnUpdate(_ action.Target, t, _ float64, tk *action.Ticker, _ float64) error {
	d := action.Data[*moveTo](tk)
	d.p.SetPosition(lerp(d.sx, m.x, t), lerp(d.sy, m.y, t))
	return nil
}

// RotateBy turns the target by angle radians.
type RotateBy struct {
	action.Base
	angle float64
}

func NewRotateBy(angle, duration float64) (*RotateBy, error) {
	b, err := action.NewBase(duration)
	if err != nil {
		return nil, err
	}
	return &RotateBy{Base: b, angle: angle}, nil
}

func (r *RotateBy) Reversed() action.Action { return &RotateBy{Base: r.Base, angle: -r.angle} }

func (r *RotateBy) OnAdded(target action.Target, _ *action.Ticker) (any, error) {
	return capability[Rotator](target, "rotate")
}

func (r *RotateBy) OnUpdate(_ action.Target, _, dt float64, tk *action.Ticker, _ float64) error {
	rot := action.Data[Rotator](tk)
	rot.SetRotation(rot.Rotation() + r.angle*dt)
	return nil
}

type rotateTo struct {
	r     Rotator
	start float64
}

// RotateTo turns the target to an absolute angle in radians.
type RotateTo struct {
	action.Base
	angle float64
}

func NewRotateTo(angle, duration float64) (*RotateTo, error) {
	b, err := action.NewBase(duration)
	if err != nil {
		return nil, err
	}
	return &RotateTo{Base: b, angle: angle}, nil
}

func (r *RotateTo) Reversed() action.Action { return waitFor(r.Base) }

func (r *RotateTo) OnAdded(target action.Target, _ *action.Ticker) (any, error) {
	rot, err := capability[Rotator](target, "rotate")
	if err != nil {
		return nil, err
	}
	return &rotateTo{r: rot, start: rot.Rotation()}, nil
}

func (r *RotateTo) OnUpdate(_ action.Target, t, _ float64, tk *action.Ticker, _ float64) error {
	d := action.Data[*rotateTo](tk)
	d.r.SetRotation(lerp(d.start, r.angle, t))
	return nil
}

// ScaleBy adds (x, y) to the target's scale.
type ScaleBy struct {
	action.Base
	x, y float64
}

func NewScaleBy(x, y, duration float64) (*ScaleBy, error) {
	b, err := action.NewBase(duration)
	if err != nil {
		return nil, err
	}
	return &ScaleBy{Base: b, x: x, y: y}, nil
}

func (s *ScaleBy) Reversed() action.Action { return &ScaleBy{Base: s.Base, x: -s.x, y: -s.y} }

func (s *ScaleBy) OnAdded(target action.Target, _ *action.Ticker) (any, error) {
	return capability[Scaler](target, "scale")
}

func (s *ScaleBy) OnUpdate(_ action.Target, _, dt float64, tk *action.Ticker, _ float64) error {
	sc := action.Data[Scaler](tk)
	x, y := sc.Scale()
	sc.SetScale(x+s.x*dt, y+s.y*dt)
	return nil
}

type scaleTo struct {
	s      Scaler
	sx, sy float64
}

// ScaleTo scales the target to an absolute (x, y).
type ScaleTo struct {
	action.Base
	x, y float64
}

func NewScaleTo(x, y, duration float64) (*ScaleTo, error) {
	b, err := action.NewBase(duration)
	if err != nil {
		return nil, err
	}
	return &ScaleTo{Base: b, x: x, y: y}, nil
}

func (s *ScaleTo) Reversed() action.Action { return waitFor(s.Base) }

func (s *ScaleTo) OnAdded(target action.Target, _ *action.Ticker) (any, error) {
	sc, err := capability[Scaler](target, "scale")
	if err != nil {
		return nil, err
	}
	sx, sy := sc.Scale()
	return &scaleTo{s: sc, sx: sx, sy: sy}, nil
}

func (s *ScaleTo) OnUpdate(_ action.Target, t, _ float64, tk *action.Ticker, _ float64) error {
	d := action.Data[*scaleTo](tk)
	d.s.SetScale(lerp(d.sx, s.x, t), lerp(d.sy, s.y, t))
	return nil
}

// SkewBy adds (x, y) radians to the target's skew.
type SkewBy struct {
	action.Base
	x, y float64
}

func NewSkewBy(x, y, duration float64) (*SkewBy, error) {
	b, err := action.NewBase(duration)
	if err != nil {
		return nil, err
	}
	return &SkewBy{Base: b, x: x, y: y}, nil
}

func (s *SkewBy) Reversed() action.Action { return &SkewBy{Base: s.Base, x: -s.x, y: -s.y} }

func (s *SkewBy) OnAdded(target action.Target, _ *action.Ticker) (any, error) {
	return capability[Skewer](target, "skew")
}

func (s *SkewBy) OnUpdate(_ action.Target, _, dt float64, tk *action.Ticker, _ float64) error {
	sk := action.Data[Skewer](tk)
	x, y := sk.Skew()
	sk.SetSkew(x+s.x*dt, y+s.y*dt)
	return nil
}
