package jsbsim

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
)

const (
	schemaInstance = "http://www.w3.org/2001/XMLSchema-instance"
	schemaLocation = "http://jsbsim.sourceforge.net/JSBSim.xsd"

	// NozzleArea is the placeholder exit area written for every engine.
	NozzleArea = "0.001"
)

// Encode marshals v as indented XML preceded by a declaration.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("jsbsim: encode %T: %w", v, err)
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type Quantity struct {
	Unit  string `xml:"unit,attr"`
	Value string `xml:",chardata"`
}

type Initialize struct {
	XMLName   xml.Name `xml:"initialize"`
	Name      string   `xml:"name,attr"`
	UBody     Quantity `xml:"ubody"`
	VBody     Quantity `xml:"vbody"`
	WBody     Quantity `xml:"wbody"`
	Phi       Quantity `xml:"phi"`
	Theta     Quantity `xml:"theta"`
	Psi       Quantity `xml:"psi"`
	Altitude  Quantity `xml:"altitude"`
	Latitude  Quantity `xml:"latitude"`
	Longitude Quantity `xml:"longitude"`
	Elevation Quantity `xml:"elevation"`
}

// NewInitialize returns the launch-rail initial conditions: at rest, nose
// up, on the pad. They do not depend on the vehicle.
func NewInitialize() Initialize {
	return Initialize{
		Name:      "Initial Conditions",
		UBody:     Quantity{"M/SEC", "0.0"},
		VBody:     Quantity{"M/SEC", "0.0"},
		WBody:     Quantity{"M/SEC", "0.0"},
		Phi:       Quantity{"DEG", "0.0"},
		Theta:     Quantity{"DEG", "90.0"},
		Psi:       Quantity{"DEG", "0.0"},
		Altitude:  Quantity{"M", "0.0"},
		Latitude:  Quantity{"DEG", "45.0"},
		Longitude: Quantity{"DEG", "-122.0"},
		Elevation: Quantity{"M", "250"},
	}
}

type Nozzle struct {
	XMLName xml.Name `xml:"nozzle"`
	Name    string   `xml:"name,attr"`
	Area    Quantity `xml:"area"`
}

func NewNozzle() Nozzle {
	return Nozzle{Name: "Nozzle", Area: Quantity{"M2", NozzleArea}}
}

type OutputProperty struct {
	Caption string `xml:"caption,attr"`
	Name    string `xml:",chardata"`
}

type Output struct {
	XMLName    xml.Name         `xml:"output"`
	Name       string           `xml:"name,attr"`
	Type       string           `xml:"type,attr"`
	Rate       string           `xml:"rate,attr"`
	Properties []OutputProperty `xml:"property"`
}

// Telemetry channels sampled into every result artifact.
var Telemetry = []OutputProperty{
	{Caption: "Altitude MSL [m]", Name: "position/h-sl-meters"},
	{Caption: "Velocity Down [fps]", Name: "velocities/v-down-fps"},
	{Caption: "Thrust [lbf]", Name: "forces/fbx-prop-lbs"},
}

// NewOutput builds a CSV logging directive writing to name at rate Hz.
func NewOutput(name string, rate float64) Output {
	props := make([]OutputProperty, len(Telemetry))
	copy(props, Telemetry)
	return Output{Name: name, Type: "CSV", Rate: formatFloat(rate), Properties: props}
}

type Use struct {
	Aircraft   string `xml:"aircraft,attr"`
	Initialize string `xml:"initialize,attr"`
}

type SetProperty struct {
	Value string `xml:"value,attr"`
	Name  string `xml:",chardata"`
}

type Set struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type Notify struct{}

type Event struct {
	Name      string  `xml:"name,attr"`
	Condition string  `xml:"condition"`
	Set       *Set    `xml:"set,omitempty"`
	Notify    *Notify `xml:"notify"`
}

type Run struct {
	Start      string        `xml:"start,attr"`
	End        string        `xml:"end,attr"`
	Dt         string        `xml:"dt,attr"`
	Properties []SetProperty `xml:"property"`
	Events     []Event       `xml:"event"`
}

type RunScript struct {
	XMLName xml.Name `xml:"runscript"`
	Name    string   `xml:"name,attr"`
	XSI     string   `xml:"xmlns:xsi,attr"`
	Schema  string   `xml:"xsi:noNamespaceSchemaLocation,attr"`
	Use     Use      `xml:"use"`
	Run     Run      `xml:"run"`
}

// Events evaluated by the simulator on every run. The conditions and
// thresholds are read by JSBSim verbatim.
func Events() []Event {
	return []Event{
		{
			Name:      "Ignition",
			Condition: "simulation/sim-time-sec  ge  0.001",
			Set:       &Set{Name: "fcs/throttle-cmd-norm[0]", Value: "1.0"},
			Notify:    &Notify{},
		},
		{
			Name:      "Liftoff",
			Condition: "forces/fbx-prop-lbs gt inertia/weight-lbs",
			Set:       &Set{Name: "forces/hold-down", Value: "0"},
			Notify:    &Notify{},
		},
		{
			Name:      "APOGEE",
			Condition: "velocities/v-down-fps gt 1",
			Notify:    &Notify{},
		},
	}
}

// NewRunScript references the aircraft by slug and the "init" initial
// conditions, holding the vehicle down until the liftoff event fires.
func NewRunScript(name, aircraft string, end, dt float64) RunScript {
	return RunScript{
		Name:   name,
		XSI:    schemaInstance,
		Schema: schemaLocation,
		Use:    Use{Aircraft: aircraft, Initialize: "init"},
		Run: Run{
			Start:      "0.0",
			End:        formatFloat(end),
			Dt:         formatFloat(dt),
			Properties: []SetProperty{{Value: "1", Name: "forces/hold-down"}},
			Events:     Events(),
		},
	}
}
