package config

import (
	"sort"

	"github.com/san-kum/rocketmc/internal/generator"
)

// Presets build fresh configurations so callers may mutate the result.
var Presets = map[string]func() *Config{
	"vertical-shoot":       verticalShoot,
	"vertical-shoot-100km": verticalShoot100km,
	"sized":                sized,
}

func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := build()
	cfg.Name = name
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func verticalShoot() *Config {
	cfg := base()
	cfg.Generator = generator.Params{
		Kind: generator.KindThrustCurve,
		Name: "Rocket",
		Airframe: generator.Airframe{
			Diameter: 0.2, NoseLength: 1.0, NoseMass: 3.5,
			PayloadLength: 0.33, PayloadMass: 3.5, BodyLength: 2.0, BodyMass: 10.0,
		},
		ThrustCurve: generator.ThrustCurveParams{
			PeakThrust:   generator.Range{Min: 500, Max: 2500},
			Delay:        generator.Range{Min: 0.5, Max: 8.0},
			MinThrust:    generator.Range{Min: 0.15, Max: 0.9},
			GrowthRate:   generator.Range{Min: 1.01, Max: 2.0},
			PropMass:     10.0,
			Isp:          200,
			EngineLength: 1.5,
			Samples:      500,
			SampleDt:     0.1,
		},
		Drag: generator.DragParams{CD: 0.6},
	}
	return cfg
}

func verticalShoot100km() *Config {
	cfg := base()
	cfg.Iterations = 1000
	cfg.Workers = 3
	cfg.Generator = generator.Params{
		Kind: generator.KindThrustCurve,
		Name: "Rocket",
		Airframe: generator.Airframe{
			Diameter: 0.28, NoseLength: 1.0, NoseMass: 3.5,
			PayloadLength: 0.5, PayloadMass: 10.0, BodyLength: 2.0, BodyMass: 30.0,
		},
		ThrustCurve: generator.ThrustCurveParams{
			PeakThrust:   generator.Range{Min: 3000, Max: 4200},
			Delay:        generator.Range{Min: 0.5, Max: 30.0},
			MinThrust:    generator.Range{Min: 0.5, Max: 1.0},
			GrowthRate:   generator.Range{Min: 1.01, Max: 2.5},
			PropMass:     70.0,
			Isp:          244,
			EngineLength: 1.5,
			Samples:      500,
			SampleDt:     0.1,
		},
		Drag: generator.DragParams{Table: [][]float64{
			{0.010, 0.699865}, {0.200, 0.580362}, {0.300, 0.586504}, {0.400, 0.595115},
			{0.500, 0.606208}, {0.600, 0.619801}, {0.700, 0.635912}, {0.800, 0.654567},
			{0.900, 0.675792}, {0.950, 0.681607}, {1.000, 0.688266}, {1.050, 0.725044},
			{1.100, 0.722610}, {1.200, 0.657679}, {1.300, 0.595412}, {1.400, 0.572275},
			{1.500, 0.550839}, {1.600, 0.530843}, {1.700, 0.512105}, {1.800, 0.494492},
			{1.900, 0.477901}, {2.000, 0.462252},
		}},
	}
	return cfg
}

func sized() *Config {
	cfg := base()
	cfg.Iterations = 30
	cfg.Workers = 3
	cfg.Generator = generator.Params{
		Kind: generator.KindSized,
		Name: "Rocket",
		Airframe: generator.Airframe{
			NoseMass: 3.5, PayloadLength: 0.33, PayloadMass: 3.5, BodyMass: 20.0,
		},
		Sized: generator.SizedParams{
			Isp:     generator.Fixed(200),
			Thrust:  generator.Fixed(1200),
			Impulse: generator.Fixed(15000),
		},
		Drag: generator.DragParams{CD: 0.6},
	}
	return cfg
}
