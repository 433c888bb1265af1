package jsbsim

import (
	"encoding/xml"
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/rocketmc/internal/vehicle"
)

const (
	kgToLb  = 2.20462262
	nToLbf  = 0.224808943
	author  = "rocketmc"
	version = "2.0"
)

// Writer serializes vehicles and engines to JSBSim aircraft and engine
// files. The zero value is ready to use.
type Writer struct{}

type fileHeader struct {
	Author      string `xml:"author"`
	Description string `xml:"description"`
}

type location struct {
	Name string  `xml:"name,attr,omitempty"`
	Unit string  `xml:"unit,attr"`
	X    float64 `xml:"x"`
	Y    float64 `xml:"y"`
	Z    float64 `xml:"z"`
}

type metrics struct {
	WingArea Quantity   `xml:"wingarea"`
	WingSpan Quantity   `xml:"wingspan"`
	Chord    Quantity   `xml:"chord"`
	HTailArm Quantity   `xml:"htailarm"`
	VTailArm Quantity   `xml:"vtailarm"`
	Location []location `xml:"location"`
}

type massBalance struct {
	Ixx      Quantity `xml:"ixx"`
	Iyy      Quantity `xml:"iyy"`
	Izz      Quantity `xml:"izz"`
	EmptyWt  Quantity `xml:"emptywt"`
	Location location `xml:"location"`
}

type orient struct {
	Unit  string  `xml:"unit,attr"`
	Roll  float64 `xml:"roll"`
	Pitch float64 `xml:"pitch"`
	Yaw   float64 `xml:"yaw"`
}

type thruster struct {
	File     string   `xml:"file,attr"`
	Location location `xml:"location"`
	Orient   orient   `xml:"orient"`
}

type engineRef struct {
	File     string   `xml:"file,attr"`
	Location location `xml:"location"`
	Orient   orient   `xml:"orient"`
	Feed     int      `xml:"feed"`
	Thruster thruster `xml:"thruster"`
}

type tank struct {
	Type     string   `xml:"type,attr"`
	Location location `xml:"location"`
	Radius   Quantity `xml:"radius"`
	Grain    string   `xml:"grain_config>type"`
	Length   Quantity `xml:"grain_config>length"`
	Capacity Quantity `xml:"capacity"`
	Contents Quantity `xml:"contents"`
}

type propulsion struct {
	Engines []engineRef `xml:"engine"`
	Tanks   []tank      `xml:"tank"`
}

type independentVar struct {
	Lookup   string `xml:"lookup,attr"`
	Property string `xml:",chardata"`
}

type table struct {
	Name           string          `xml:"name,attr,omitempty"`
	Type           string          `xml:"type,attr,omitempty"`
	IndependentVar *independentVar `xml:"independentVar,omitempty"`
	Data           string          `xml:"tableData"`
}

type product struct {
	Properties []string `xml:"property"`
	Value      string   `xml:"value,omitempty"`
	Table      *table   `xml:"table,omitempty"`
}

type function struct {
	Name        string  `xml:"name,attr"`
	Description string  `xml:"description"`
	Product     product `xml:"product"`
}

type axis struct {
	Name      string     `xml:"name,attr"`
	Functions []function `xml:"function"`
}

type aerodynamics struct {
	Axes []axis `xml:"axis"`
}

type fdmConfig struct {
	XMLName      xml.Name     `xml:"fdm_config"`
	Name         string       `xml:"name,attr"`
	Version      string       `xml:"version,attr"`
	Release      string       `xml:"release,attr"`
	Header       fileHeader   `xml:"fileheader"`
	Metrics      metrics      `xml:"metrics"`
	MassBalance  massBalance  `xml:"mass_balance"`
	Propulsion   propulsion   `xml:"propulsion"`
	Aerodynamics aerodynamics `xml:"aerodynamics"`
}

type rocketEngine struct {
	XMLName     xml.Name `xml:"rocket_engine"`
	Name        string   `xml:"name,attr"`
	Isp         float64  `xml:"isp"`
	BuildupTime float64  `xml:"builduptime"`
	ThrustTable table    `xml:"thrust_table"`
}

// Vehicle renders r as a JSBSim fdm_config. Positions are measured aft
// from the nose tip in the structural frame.
func (Writer) Vehicle(r *vehicle.Rocket) (string, error) {
	if r == nil {
		return "", fmt.Errorf("jsbsim: nil vehicle")
	}
	length := r.Length()
	diameter := r.Diameter()
	if length <= 0 || diameter <= 0 {
		return "", fmt.Errorf("jsbsim: vehicle %q has no airframe (length %g, diameter %g)", r.Name, length, diameter)
	}

	refArea := math.Pi * diameter * diameter / 4
	dry := r.DryMass()
	ixx := 0.5 * dry * (diameter / 2) * (diameter / 2)
	iyy := dry * length * length / 12

	cfg := fdmConfig{
		Name:    r.Name,
		Version: version,
		Release: "ALPHA",
		Header:  fileHeader{Author: author, Description: "Generated Monte-Carlo vehicle " + r.Slug()},
		Metrics: metrics{
			WingArea: Quantity{"M2", formatFloat(refArea)},
			WingSpan: Quantity{"M", formatFloat(diameter)},
			Chord:    Quantity{"M", formatFloat(length)},
			HTailArm: Quantity{"M", "0"},
			VTailArm: Quantity{"M", "0"},
			Location: []location{
				{Name: "AERORP", Unit: "M", X: length * 0.75},
				{Name: "EYEPOINT", Unit: "M"},
				{Name: "VRP", Unit: "M"},
			},
		},
		MassBalance: massBalance{
			Ixx:      Quantity{"KG*M2", formatFloat(ixx)},
			Iyy:      Quantity{"KG*M2", formatFloat(iyy)},
			Izz:      Quantity{"KG*M2", formatFloat(iyy)},
			EmptyWt:  Quantity{"KG", formatFloat(dry)},
			Location: location{Name: "CG", Unit: "M", X: length / 2},
		},
		Aerodynamics: aerodynamics{Axes: []axis{dragAxis(r.Drag)}},
	}

	slugs := r.EngineSlugs()
	for i, e := range r.Engines() {
		slug := slugs[i]
		at := location{Unit: "M", X: length}
		cfg.Propulsion.Engines = append(cfg.Propulsion.Engines, engineRef{
			File:     slug,
			Location: at,
			Orient:   orient{Unit: "DEG"},
			Feed:     i,
			Thruster: thruster{File: slug + "_nozzle", Location: at, Orient: orient{Unit: "DEG"}},
		})
		cfg.Propulsion.Tanks = append(cfg.Propulsion.Tanks, tank{
			Type:     "FUEL",
			Location: location{Unit: "M", X: length - e.Length/2},
			Radius:   Quantity{"M", formatFloat(e.Diameter / 2)},
			Grain:    "ENDBURNING",
			Length:   Quantity{"M", formatFloat(e.Length)},
			Capacity: Quantity{"KG", formatFloat(e.MProp)},
			Contents: Quantity{"KG", formatFloat(e.MProp)},
		})
	}

	out, err := Encode(cfg)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func dragAxis(d vehicle.Drag) axis {
	fn := function{
		Name:        "aero/coefficient/CD",
		Description: "Drag",
		Product:     product{Properties: []string{"aero/qbar-psf", "metrics/Sw-sqft"}},
	}
	if len(d.Table) > 0 {
		rows := make([]string, len(d.Table))
		for i, row := range d.Table {
			rows[i] = fmt.Sprintf("%s %s", formatFloat(row.Mach), formatFloat(row.CD))
		}
		fn.Product.Table = &table{
			IndependentVar: &independentVar{Lookup: "row", Property: "velocities/mach"},
			Data:           "\n" + strings.Join(rows, "\n") + "\n",
		}
	} else {
		fn.Product.Value = formatFloat(d.CD)
	}
	return axis{Name: "DRAG", Functions: []function{fn}}
}

// Engine renders e as a JSBSim rocket_engine whose thrust table is indexed
// by propellant remaining, as JSBSim expects for solid motors.
func (Writer) Engine(e *vehicle.Engine) (string, error) {
	if e == nil {
		return "", fmt.Errorf("jsbsim: nil engine")
	}
	if e.Isp <= 0 {
		return "", fmt.Errorf("jsbsim: engine %q has non-positive isp %g", e.Name, e.Isp)
	}

	rows := thrustRows(e)
	doc := rocketEngine{
		Name:        e.Name,
		Isp:         e.Isp,
		BuildupTime: 0.1,
		ThrustTable: table{
			Name: "propulsion/thrust_prop_remain",
			Type: "internal",
			Data: "\n" + strings.Join(rows, "\n") + "\n",
		},
	}
	out, err := Encode(doc)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func thrustRows(e *vehicle.Engine) []string {
	if len(e.ThrustCurve) == 0 {
		lbf := formatFloat(e.ThrustAvg * nToLbf)
		return []string{
			fmt.Sprintf("%s %s", formatFloat(e.MProp*kgToLb), lbf),
			fmt.Sprintf("0 %s", lbf),
		}
	}

	// Propellant consumed follows cumulative impulse over exhaust velocity.
	ve := e.Isp * vehicle.G0
	rows := make([]string, 0, len(e.ThrustCurve))
	impulse := 0.0
	for i, p := range e.ThrustCurve {
		if i > 0 {
			prev := e.ThrustCurve[i-1]
			impulse += (p.T - prev.T) * (p.Thrust + prev.Thrust) / 2
		}
		remain := math.Max(e.MProp-impulse/ve, 0)
		rows = append(rows, fmt.Sprintf("%s %s", formatFloat(remain*kgToLb), formatFloat(p.Thrust*nToLbf)))
	}
	return rows
}
