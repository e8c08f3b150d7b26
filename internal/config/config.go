package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bob-anderson-ok/LunarOccultation/filters"
	"github.com/bob-anderson-ok/LunarOccultation/observing"
	"github.com/bob-anderson-ok/LunarOccultation/units"
)

var (
	// ErrInvalidConfig reports values that describe no physical observation.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrLoadConfig reports a parameter file or environment that could not be read.
	ErrLoadConfig = errors.New("cannot load configuration")
)

// Config holds every knob of a resolution estimate. Units follow the names
// used on the command line: metres, milliseconds, km, km/s, arcsec and mas.
type Config struct {
	TelescopeDiameter float64 `koanf:"tel_diam"`
	Exposure          float64 `koanf:"exp_time"`
	MoonVelocity      float64 `koanf:"vmoon"`
	MoonDistance      float64 `koanf:"moon_dist"`
	Filter            string  `koanf:"filter"`
	Magnitude         float64 `koanf:"mag"`
	Seeing            float64 `koanf:"seeing"`
	Airmass           float64 `koanf:"airmass"`
	Readout           string  `koanf:"readout"`

	Start float64 `koanf:"start"`
	End   float64 `koanf:"end"`
	Step  float64 `koanf:"step"`

	Trials   int    `koanf:"trials"`
	Elements int    `koanf:"elements"`
	Workers  int    `koanf:"workers"`
	Seed     uint64 `koanf:"seed"`

	StarRadius   float64 `koanf:"star_radius"`   // solar radii
	StarDistance float64 `koanf:"star_distance"` // parsecs

	Moonglare      bool    `koanf:"moonglare"`
	SunlitFraction float64 `koanf:"sunlit_fraction"`
	CuspAngle      float64 `koanf:"cusp_angle"` // degrees

	Plot        string `koanf:"plot"`
	Show        bool   `koanf:"show"`
	MetricsAddr string `koanf:"metrics_addr"`
	LogLevel    string `koanf:"log_level"`
	LogFormat   string `koanf:"log_format"`
}

// New returns the defaults: an 8th magnitude star observed in g with a
// 10.2 m telescope at 0.5 ms cadence.
func New() *Config {
	return &Config{
		TelescopeDiameter: 10.2,
		Exposure:          0.5,
		MoonVelocity:      1,
		MoonDistance:      384400,
		Filter:            "g",
		Magnitude:         8,
		Seeing:            0.8,
		Airmass:           1.3,
		Readout:           "slow",
		Start:             0.1,
		End:               2.0,
		Step:              0.2,
		Trials:            50,
		Elements:          2800,
		Seed:              1,
		StarRadius:        1,
		StarDistance:      1,
		SunlitFraction:    0.5,
		CuspAngle:         30,
		Plot:              "resolution.png",
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// Validate rejects configurations that cannot describe an observation.
func (c *Config) Validate() error {
	var problems []string
	check := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	check(c.TelescopeDiameter > 0, "tel_diam must be positive")
	check(c.Exposure > 0, "exp_time must be positive")
	check(c.MoonVelocity != 0, "vmoon must be non-zero")
	check(c.MoonDistance > 0, "moon_dist must be positive")
	if _, err := filters.Lookup(c.Filter); err != nil {
		problems = append(problems, fmt.Sprintf("filter %q is unknown", c.Filter))
	}
	check(c.Seeing > 0, "seeing must be positive")
	check(c.Airmass >= 1, "airmass must be at least 1")
	if _, err := observing.ParseReadoutSpeed(c.Readout); err != nil {
		problems = append(problems, fmt.Sprintf("readout %q is unknown", c.Readout))
	}
	check(c.Start > 0, "start must be positive")
	check(c.Step > 0, "step must be positive")
	check(c.End > c.Start, "end must exceed start")
	check(c.Trials >= 1, "trials must be at least 1")
	check(c.Elements >= 2, "elements must be at least 2")
	check(c.Workers >= 0, "workers must not be negative")
	check(c.StarRadius > 0, "star_radius must be positive")
	check(c.StarDistance > 0, "star_distance must be positive")
	if c.Moonglare {
		check(c.SunlitFraction >= 0 && c.SunlitFraction <= 1, "sunlit_fraction must lie in [0, 1]")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Observation converts the configured seeing, airmass, cadence and
// readout into the noise model's conditions.
func (c *Config) Observation() (observing.Conditions, error) {
	readout, err := observing.ParseReadoutSpeed(c.Readout)
	if err != nil {
		return observing.Conditions{}, err
	}
	return observing.Conditions{
		Exposure: units.Interval(c.Exposure) * units.Millisecond,
		Seeing:   units.Angle(c.Seeing) * units.Arcsecond,
		Airmass:  c.Airmass,
		Readout:  readout,
	}, nil
}

// Typed views of the configured quantities.
func (c *Config) TelescopeSize() units.Length           { return units.Length(c.TelescopeDiameter) }
func (c *Config) ExposureTime() units.Interval          { return units.Interval(c.Exposure) * units.Millisecond }
func (c *Config) ShadowVelocity() units.Speed           { return units.Speed(c.MoonVelocity) * units.KilometerPerSecond }
func (c *Config) LunarDistance() units.Length           { return units.Length(c.MoonDistance) * units.Kilometer }
func (c *Config) StellarRadius() units.Length           { return units.Length(c.StarRadius) * units.SolarRadius }
func (c *Config) StellarDistance() units.Length         { return units.Length(c.StarDistance) * units.Parsec }
func (c *Config) CuspDistance() units.Angle             { return units.Angle(c.CuspAngle) * units.Degree }
func (c *Config) SearchStart() units.Angle              { return units.Angle(c.Start) * units.Milliarcsecond }
func (c *Config) SearchEnd() units.Angle                { return units.Angle(c.End) * units.Milliarcsecond }
func (c *Config) SearchStep() units.Angle               { return units.Angle(c.Step) * units.Milliarcsecond }
func (c *Config) LookupFilter() (filters.Filter, error) { return filters.Lookup(c.Filter) }
