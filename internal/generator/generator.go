package generator

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/rocketmc/internal/vehicle"
)

const (
	// impulseG converts the propellant budget to a total impulse cap.
	impulseG = 9.8

	propDensity = 1750.0 // kg/m3, HTPB composite
	grainLD     = 10.0
	noseLD      = 5.0
)

// Generator produces randomized vehicles. It owns its random source and is
// not safe for concurrent use; give each worker its own instance.
type Generator struct {
	params Params
	rng    *rand.Rand
}

func New(params Params, seed int64) (*Generator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Generator{params: params, rng: rand.New(rand.NewSource(seed))}, nil
}

func (g *Generator) Generate() (*vehicle.Rocket, error) {
	var (
		r   *vehicle.Rocket
		err error
	)
	switch g.params.Kind {
	case KindSized:
		r, err = g.sized()
	default:
		r, err = g.thrustCurve()
	}
	if err != nil {
		return nil, err
	}
	r.Drag = g.drag()
	return r, nil
}

func (g *Generator) name() string {
	if g.params.Name != "" {
		return g.params.Name
	}
	return "Rocket"
}

func (g *Generator) drag() vehicle.Drag {
	d := vehicle.Drag{CD: g.params.Drag.CD}
	for _, row := range g.params.Drag.Table {
		d.Table = append(d.Table, vehicle.MachCD{Mach: row[0], CD: row[1]})
	}
	return d
}

func (g *Generator) thrustCurve() (*vehicle.Rocket, error) {
	p := g.params.ThrustCurve
	af := g.params.Airframe

	peak := p.PeakThrust.Sample(g.rng)
	delay := p.Delay.Sample(g.rng)
	minThrust := p.MinThrust.Sample(g.rng)
	growth := p.GrowthRate.Sample(g.rng)

	curve := ThrustCurve(peak, delay, minThrust, growth, p.PropMass*p.Isp*impulseG, p.Samples, p.SampleDt)
	if len(curve) == 0 {
		return nil, fmt.Errorf("generator: empty thrust curve")
	}

	engine := &vehicle.Engine{
		Name:        "Motor",
		Isp:         p.Isp,
		MProp:       p.PropMass,
		Diameter:    af.Diameter,
		Length:      p.EngineLength,
		ThrustCurve: curve,
		ImpulseTot:  Impulse(curve),
	}
	engine.ThrustAvg = engine.ImpulseTot / math.Max(engine.BurnTime(), 1e-9)

	body := vehicle.NewBodytube("Body", af.BodyMass, af.BodyLength, af.Diameter)
	body.Components = []*vehicle.Component{vehicle.NewEngineComponent(engine)}

	return &vehicle.Rocket{
		Name: g.name(),
		Stages: []*vehicle.Component{
			vehicle.NewStage("Sustainer",
				vehicle.NewNosecone(vehicle.NoseTangentOgive, 1.0, af.NoseMass, af.NoseLength, af.Diameter),
				vehicle.NewBodytube("Payload", af.PayloadMass, af.PayloadLength, af.Diameter),
				body,
			),
		},
	}, nil
}

func (g *Generator) sized() (*vehicle.Rocket, error) {
	p := g.params.Sized
	af := g.params.Airframe

	isp := p.Isp.Sample(g.rng)
	thrust := p.Thrust.Sample(g.rng)
	impulse := p.Impulse.Sample(g.rng)
	if isp <= 0 || thrust <= 0 || impulse <= 0 {
		return nil, fmt.Errorf("generator: non-positive motor sample isp=%g thrust=%g impulse=%g", isp, thrust, impulse)
	}

	engine := &vehicle.Engine{
		Name:       "Motor",
		Isp:        isp,
		ThrustAvg:  thrust,
		ImpulseTot: impulse,
		MProp:      impulse / (isp * vehicle.G0),
	}

	volume := engine.MProp / propDensity
	engine.Diameter = 2 * math.Cbrt(volume/(2*grainLD*math.Pi))
	engine.Length = engine.Diameter * grainLD

	body := vehicle.NewBodytube("Body", af.BodyMass, engine.Length, engine.Diameter)
	body.Components = []*vehicle.Component{vehicle.NewEngineComponent(engine)}

	return &vehicle.Rocket{
		Name: g.name(),
		Stages: []*vehicle.Component{
			vehicle.NewStage("Sustainer",
				vehicle.NewNosecone(vehicle.NoseTangentOgive, 1.0, af.NoseMass, engine.Diameter*noseLD, engine.Diameter),
				vehicle.NewBodytube("Payload", af.PayloadMass, af.PayloadLength, engine.Diameter),
				body,
			),
		},
	}, nil
}

// ThrustCurve samples the parametric profile every dt seconds and stops once
// the trapezoidal impulse exceeds maxImpulse.
func ThrustCurve(peak, delay, minThrust, growth, maxImpulse float64, samples int, dt float64) []vehicle.ThrustPoint {
	curve := make([]vehicle.ThrustPoint, 0, samples)
	throttle := 1.0
	itot := 0.0

	for i := 0; i < samples; i++ {
		t := float64(i) * dt
		if t > delay {
			throttle = math.Min(minThrust*math.Pow(growth, t-delay), 1.0)
		}
		thrust := throttle * peak

		if i > 0 {
			prev := curve[len(curve)-1]
			itot += (t - prev.T) * (thrust + prev.Thrust) / 2.0
		}
		curve = append(curve, vehicle.ThrustPoint{T: t, Thrust: thrust})

		if itot > maxImpulse {
			break
		}
	}
	return curve
}

func Impulse(curve []vehicle.ThrustPoint) float64 {
	total := 0.0
	for i := 1; i < len(curve); i++ {
		total += (curve[i].T - curve[i-1].T) * (curve[i].Thrust + curve[i-1].Thrust) / 2.0
	}
	return total
}
