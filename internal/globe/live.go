package globe

import "github.com/san-kum/dotglobe/internal/config"

// LiveParams are the values that change without reallocating the field.
type LiveParams struct {
	ScatterEnabled bool
	Radius         float64
	Strength       float64
	Decay          float64
	Color          string
	DotSize        float64
	AutoRotate     bool
	RotateSpeed    float64
	Workers        int
}

// LiveParams returns the live portion of the configuration.
func (g *Globe) LiveParams() LiveParams {
	return LiveParams{
		ScatterEnabled: g.cfg.Scatter.Enabled,
		Radius:         g.cfg.Scatter.Radius,
		Strength:       g.cfg.Scatter.Strength,
		Decay:          g.cfg.Decay,
		Color:          g.cfg.Color,
		DotSize:        g.cfg.DotSize,
		AutoRotate:     g.cfg.AutoRotate,
		RotateSpeed:    g.cfg.RotateSpeed,
		Workers:        g.cfg.Workers,
	}
}

// UpdateLive stores new live values. It never rebuilds the field.
func (g *Globe) UpdateLive(p LiveParams) error {
	next := g.cfg
	next.Scatter.Enabled = p.ScatterEnabled
	next.Scatter.Radius = p.Radius
	next.Scatter.Strength = p.Strength
	next.Decay = p.Decay
	next.Color = p.Color
	next.DotSize = p.DotSize
	next.AutoRotate = p.AutoRotate
	next.RotateSpeed = p.RotateSpeed
	next.Workers = p.Workers

	_, err := g.Apply(&next)
	return err
}

func (g *Globe) setLive(fn func(*LiveParams)) error {
	p := g.LiveParams()
	fn(&p)
	return g.UpdateLive(p)
}

func (g *Globe) SetScatterEnabled(on bool) error {
	return g.setLive(func(p *LiveParams) { p.ScatterEnabled = on })
}

func (g *Globe) SetScatterRadius(r float64) error {
	if err := config.ValidateRadius(r); err != nil {
		g.reject(err)
		return err
	}
	return g.setLive(func(p *LiveParams) { p.Radius = r })
}

func (g *Globe) SetScatterStrength(s float64) error {
	if err := config.ValidateStrength(s); err != nil {
		g.reject(err)
		return err
	}
	return g.setLive(func(p *LiveParams) { p.Strength = s })
}

func (g *Globe) SetDecay(d float64) error {
	if err := config.ValidateDecay(d); err != nil {
		g.reject(err)
		return err
	}
	return g.setLive(func(p *LiveParams) { p.Decay = d })
}

func (g *Globe) SetColor(hex string) error {
	return g.setLive(func(p *LiveParams) { p.Color = hex })
}

func (g *Globe) SetDotSize(s float64) error {
	return g.setLive(func(p *LiveParams) { p.DotSize = s })
}

func (g *Globe) SetAutoRotate(on bool) error {
	return g.setLive(func(p *LiveParams) { p.AutoRotate = on })
}

func (g *Globe) SetRotateSpeed(v float64) error {
	return g.setLive(func(p *LiveParams) { p.RotateSpeed = v })
}
