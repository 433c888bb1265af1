package vehicle

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

// G0 is standard gravity, used to convert specific impulse to exhaust velocity.
const G0 = 9.80665

type Kind string

const (
	KindStage    Kind = "stage"
	KindNosecone Kind = "nosecone"
	KindBodytube Kind = "bodytube"
	KindEngine   Kind = "engine"
)

type NoseShape string

const (
	NoseConical      NoseShape = "CONE"
	NoseTangentOgive NoseShape = "TANGENT_OGIVE"
	NoseVonKarman    NoseShape = "VONKARMAN"
)

type ThrustPoint struct {
	T      float64 `json:"t" yaml:"t"`
	Thrust float64 `json:"thrust" yaml:"thrust"`
}

// Engine is a solid or liquid motor. ThrustCurve, when present, takes
// precedence over ThrustAvg for the thrust table.
type Engine struct {
	Name        string
	Isp         float64
	ThrustAvg   float64
	ImpulseTot  float64
	MProp       float64
	Diameter    float64
	Length      float64
	ThrustCurve []ThrustPoint
}

func (e *Engine) Slug() string { return Slugify(e.Name) }

// BurnTime is the duration of the thrust curve, or I/F for a flat motor.
func (e *Engine) BurnTime() float64 {
	if n := len(e.ThrustCurve); n > 0 {
		return e.ThrustCurve[n-1].T
	}
	if e.ThrustAvg <= 0 {
		return 0
	}
	return e.ImpulseTot / e.ThrustAvg
}

// MassFlow is the average propellant mass flow over the burn.
func (e *Engine) MassFlow() float64 {
	bt := e.BurnTime()
	if bt <= 0 {
		return 0
	}
	return e.MProp / bt
}

// Component is a node of the vehicle tree. Engines may be nested at any
// depth, most commonly inside a body tube.
type Component struct {
	Name           string
	Kind           Kind
	Mass           float64
	Length         float64
	Diameter       float64
	Shape          NoseShape
	ShapeParameter float64
	Engine         *Engine
	Components     []*Component
}

func NewNosecone(shape NoseShape, shapeParam, mass, length, diameter float64) *Component {
	return &Component{
		Name:           "Nosecone",
		Kind:           KindNosecone,
		Shape:          shape,
		ShapeParameter: shapeParam,
		Mass:           mass,
		Length:         length,
		Diameter:       diameter,
	}
}

func NewBodytube(name string, mass, length, diameter float64) *Component {
	return &Component{Name: name, Kind: KindBodytube, Mass: mass, Length: length, Diameter: diameter}
}

func NewStage(name string, components ...*Component) *Component {
	return &Component{Name: name, Kind: KindStage, Components: components}
}

func NewEngineComponent(e *Engine) *Component {
	return &Component{
		Name:     e.Name,
		Kind:     KindEngine,
		Mass:     e.MProp,
		Length:   e.Length,
		Diameter: e.Diameter,
		Engine:   e,
	}
}

type MachCD struct {
	Mach float64 `json:"mach" yaml:"mach"`
	CD   float64 `json:"cd" yaml:"cd"`
}

// Drag holds either a constant drag coefficient or a Mach table.
type Drag struct {
	CD    float64
	Table []MachCD
}

type Rocket struct {
	Name   string
	Drag   Drag
	Stages []*Component
}

func (r *Rocket) Slug() string { return Slugify(r.Name) }

// Walk visits every component depth first, stages included.
func (r *Rocket) Walk(fn func(c *Component, depth int)) {
	var visit func(cs []*Component, depth int)
	visit = func(cs []*Component, depth int) {
		for _, c := range cs {
			if c == nil {
				continue
			}
			fn(c, depth)
			visit(c.Components, depth+1)
		}
	}
	visit(r.Stages, 0)
}

// Engines returns every engine in the tree regardless of nesting depth.
func (r *Rocket) Engines() []*Engine {
	var engines []*Engine
	r.Walk(func(c *Component, _ int) {
		if c.Engine != nil {
			engines = append(engines, c.Engine)
		}
	})
	return engines
}

// EngineSlugs names each engine's artifacts, in Engines order. Repeated
// slugs get _2, _3 and so on so that no two engines share a file.
func (r *Rocket) EngineSlugs() []string {
	engines := r.Engines()
	slugs := make([]string, len(engines))
	used := make(map[string]bool, len(engines))
	for i, e := range engines {
		base := e.Slug()
		slug := base
		for n := 2; used[slug]; n++ {
			slug = fmt.Sprintf("%s_%d", base, n)
		}
		used[slug] = true
		slugs[i] = slug
	}
	return slugs
}

// Length sums the airframe sections of each stage. Nested components sit
// inside their parent and do not add length.
func (r *Rocket) Length() float64 {
	total := 0.0
	for _, s := range r.Stages {
		for _, c := range s.Components {
			total += c.Length
		}
	}
	return total
}

func (r *Rocket) Diameter() float64 {
	d := 0.0
	r.Walk(func(c *Component, _ int) {
		d = math.Max(d, c.Diameter)
	})
	return d
}

// DryMass excludes propellant carried by engines.
func (r *Rocket) DryMass() float64 {
	m := 0.0
	r.Walk(func(c *Component, _ int) {
		if c.Kind != KindEngine {
			m += c.Mass
		}
	})
	return m
}

func (r *Rocket) PropellantMass() float64 {
	m := 0.0
	for _, e := range r.Engines() {
		m += e.MProp
	}
	return m
}

// Slugify lower-cases name and collapses every run of characters outside
// [a-z0-9] into a single underscore.
func Slugify(name string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(name) {
		if r < 128 && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	if b.Len() == 0 {
		return "vehicle"
	}
	return b.String()
}
