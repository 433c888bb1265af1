package generator

import (
	"errors"
	"fmt"
	"math/rand"
)

var ErrInvalidParams = errors.New("generator: invalid parameters")

const (
	KindThrustCurve = "thrustcurve"
	KindSized       = "sized"
)

// Range is a closed interval sampled uniformly. Min == Max pins the value.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func Fixed(v float64) Range { return Range{Min: v, Max: v} }

func (r Range) Sample(rng *rand.Rand) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

func (r Range) validate(name string) error {
	if r.Max < r.Min {
		return fmt.Errorf("%w: %s range max %g below min %g", ErrInvalidParams, name, r.Max, r.Min)
	}
	return nil
}

type Airframe struct {
	Diameter      float64 `yaml:"diameter"`
	NoseLength    float64 `yaml:"nose_length"`
	NoseMass      float64 `yaml:"nose_mass"`
	PayloadLength float64 `yaml:"payload_length"`
	PayloadMass   float64 `yaml:"payload_mass"`
	BodyLength    float64 `yaml:"body_length"`
	BodyMass      float64 `yaml:"body_mass"`
}

// ThrustCurveParams describes the parametric motor: thrust holds at peak
// until Delay, then follows MinThrust*GrowthRate^(t-Delay) capped at 1.
type ThrustCurveParams struct {
	PeakThrust   Range   `yaml:"peak_thrust"`
	Delay        Range   `yaml:"delay"`
	MinThrust    Range   `yaml:"min_thrust"`
	GrowthRate   Range   `yaml:"growth_rate"`
	PropMass     float64 `yaml:"prop_mass"`
	Isp          float64 `yaml:"isp"`
	EngineLength float64 `yaml:"engine_length"`
	Samples      int     `yaml:"samples"`
	SampleDt     float64 `yaml:"sample_dt"`
}

// SizedParams sizes the whole airframe around an end-burning solid grain.
type SizedParams struct {
	Isp     Range `yaml:"isp"`
	Thrust  Range `yaml:"thrust"`
	Impulse Range `yaml:"impulse"`
}

type DragParams struct {
	CD    float64     `yaml:"cd"`
	Table [][]float64 `yaml:"table,omitempty"`
}

type Params struct {
	Kind        string            `yaml:"kind"`
	Name        string            `yaml:"name"`
	Airframe    Airframe          `yaml:"airframe"`
	ThrustCurve ThrustCurveParams `yaml:"thrust_curve"`
	Sized       SizedParams       `yaml:"sized"`
	Drag        DragParams        `yaml:"drag"`
}

func (p Params) Validate() error {
	switch p.Kind {
	case KindThrustCurve:
		tc := p.ThrustCurve
		for name, r := range map[string]Range{
			"peak_thrust": tc.PeakThrust,
			"delay":       tc.Delay,
			"min_thrust":  tc.MinThrust,
			"growth_rate": tc.GrowthRate,
		} {
			if err := r.validate(name); err != nil {
				return err
			}
		}
		if tc.Samples <= 0 || tc.SampleDt <= 0 {
			return fmt.Errorf("%w: thrust curve needs positive samples and sample_dt", ErrInvalidParams)
		}
		if tc.PropMass <= 0 || tc.Isp <= 0 {
			return fmt.Errorf("%w: prop_mass and isp must be positive", ErrInvalidParams)
		}
		if p.Airframe.Diameter <= 0 {
			return fmt.Errorf("%w: airframe diameter must be positive", ErrInvalidParams)
		}
	case KindSized:
		for name, r := range map[string]Range{
			"isp":     p.Sized.Isp,
			"thrust":  p.Sized.Thrust,
			"impulse": p.Sized.Impulse,
		} {
			if err := r.validate(name); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: unknown generator kind %q", ErrInvalidParams, p.Kind)
	}

	for i, row := range p.Drag.Table {
		if len(row) != 2 {
			return fmt.Errorf("%w: drag table row %d needs [mach, cd]", ErrInvalidParams, i)
		}
	}
	return nil
}
