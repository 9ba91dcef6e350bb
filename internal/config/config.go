// Package config loads the skygp YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/user/skygp_go/internal/analysis"
	"github.com/user/skygp_go/internal/collision"
	"github.com/user/skygp_go/internal/errkind"
	"github.com/user/skygp_go/internal/isotope"
)

// DefaultPath is used when no --config flag is given.
const DefaultPath = "skygp.yaml"

type Config struct {
	Log       LogConfig       `yaml:"log"`
	MassTable MassTableConfig `yaml:"mass_table"`
	Training  TrainingConfig  `yaml:"training"`
	Emulator  EmulatorConfig  `yaml:"emulator"`
	Report    ReportConfig    `yaml:"report"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

type ColumnsConfig struct {
	Z              int `yaml:"z" validate:"gte=0"`
	A              int `yaml:"a" validate:"gte=0"`
	Symbol         int `yaml:"symbol" validate:"gte=0"`
	MassExcess     int `yaml:"mass_excess" validate:"gte=0"`
	MassExcessErr  int `yaml:"mass_excess_err" validate:"gte=0"`
	ExpectedFields int `yaml:"expected_fields" validate:"gte=0"`
}

type MassTableConfig struct {
	URL         string         `yaml:"url" validate:"required,url"`
	LocalPath   string         `yaml:"local_path" validate:"required"`
	DataMarker  string         `yaml:"data_marker" validate:"required"`
	MarkerCount int            `yaml:"marker_count" validate:"gte=1"`
	Columns     ColumnsConfig  `yaml:"columns"`
	Renames     map[int]string `yaml:"renames" validate:"dive,required,alpha"`
	UserAgent   string         `yaml:"user_agent"`
	Timeout     time.Duration  `yaml:"timeout" validate:"gt=0"`
}

// SystemConfig names the run directories of one collision system. Template
// wins when set; otherwise it is derived from the collision fields.
type SystemConfig struct {
	Template        string  `yaml:"template"`
	Projectile      string  `yaml:"projectile" validate:"required_without=Template"`
	Target          string  `yaml:"target" validate:"required_without=Template"`
	BeamEnergy      float64 `yaml:"beam_energy" validate:"gte=0"`
	ImpactParameter float64 `yaml:"impact_parameter" validate:"gte=0"`
}

type TrainingConfig struct {
	DataDir     string       `yaml:"data_dir" validate:"required"`
	ParamFile   string       `yaml:"param_file" validate:"required"`
	RunFile     string       `yaml:"run_file" validate:"required"`
	Numerator   SystemConfig `yaml:"numerator"`
	Denominator SystemConfig `yaml:"denominator"`
	Codes       []int        `yaml:"codes" validate:"required,min=1,dive,gte=0"`
	EnergyMin   float64      `yaml:"energy_min"`
	EnergyMax   float64      `yaml:"energy_max" validate:"gtefield=EnergyMin"`
}

type EmulatorConfig struct {
	LengthScale    float64 `yaml:"length_scale" validate:"gt=0"`
	SignalVariance float64 `yaml:"signal_variance" validate:"gt=0"`
	Noise          float64 `yaml:"noise" validate:"gte=0"`
	Optimize       bool    `yaml:"optimize"`
	Restarts       int     `yaml:"restarts" validate:"gte=0"`
	Seed           uint64  `yaml:"seed"`
}

type ReportConfig struct {
	PDF   string `yaml:"pdf"`
	Plots bool   `yaml:"plots"`
	Title string `yaml:"title"`
}

// Default returns the configuration used for every key the file leaves out.
func Default() Config {
	opts := isotope.DefaultBuildOptions()
	return Config{
		Log: LogConfig{Level: "info", Format: "text"},
		MassTable: MassTableConfig{
			URL:         isotope.DefaultURL,
			LocalPath:   filepath.Join("database", "mass16.txt"),
			DataMarker:  opts.DataMarker,
			MarkerCount: opts.MarkerCount,
			Columns: ColumnsConfig{
				Z:              opts.Layout.Z,
				A:              opts.Layout.A,
				Symbol:         opts.Layout.Symbol,
				MassExcess:     opts.Layout.MassExcess,
				MassExcessErr:  opts.Layout.MassExcessErr,
				ExpectedFields: opts.Layout.ExpectedFields,
			},
			Renames: opts.Renames,
			Timeout: 30 * time.Second,
		},
		Training: TrainingConfig{
			ParamFile: "param.dat",
			RunFile:   "NP-EK-A16Z6.DAT",
			EnergyMax: 1000,
		},
		Emulator: EmulatorConfig{LengthScale: 1, SignalVariance: 1, Noise: 1e-10},
		Report:   ReportConfig{Plots: true, Title: "Double ratio training set"},
	}
}

var validate = validator.New()

// Load reads path on top of Default and validates the result. A missing
// file is an error; an empty file yields the defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open config: %w", errkind.ErrIO, err)
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parse config %s: %v", errkind.ErrFormat, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags. The training section is only checked when it
// is needed, by TrainingRequest.
func (c *Config) Validate() error {
	for _, section := range []any{c.Log, c.MassTable, c.Emulator} {
		if err := validate.Struct(section); err != nil {
			return fmt.Errorf("%w: invalid config: %v", errkind.ErrFormat, err)
		}
	}
	return nil
}

// BuildOptions converts the mass_table section into isotope build options.
func (c *Config) BuildOptions() isotope.BuildOptions {
	m := c.MassTable
	return isotope.BuildOptions{
		DataMarker:  m.DataMarker,
		MarkerCount: m.MarkerCount,
		Layout: isotope.Layout{
			Z:              m.Columns.Z,
			A:              m.Columns.A,
			Symbol:         m.Columns.Symbol,
			MassExcess:     m.Columns.MassExcess,
			MassExcessErr:  m.Columns.MassExcessErr,
			ExpectedFields: m.Columns.ExpectedFields,
		},
		Renames: m.Renames,
	}
}

func (c *Config) StoreConfig() isotope.StoreConfig {
	return isotope.StoreConfig{
		URL:       c.MassTable.URL,
		LocalPath: c.MassTable.LocalPath,
		Options:   c.BuildOptions(),
	}
}

// TrainingRequest validates the training section and resolves the run path
// templates under data_dir.
func (c *Config) TrainingRequest() (analysis.Request, error) {
	t := c.Training
	if err := validate.Struct(t); err != nil {
		return analysis.Request{}, fmt.Errorf("%w: invalid training config: %v", errkind.ErrFormat, err)
	}
	num, err := t.Numerator.runTemplate()
	if err != nil {
		return analysis.Request{}, fmt.Errorf("numerator: %w", err)
	}
	den, err := t.Denominator.runTemplate()
	if err != nil {
		return analysis.Request{}, fmt.Errorf("denominator: %w", err)
	}
	return analysis.Request{
		ParamIndexPath:      filepath.Join(t.DataDir, t.ParamFile),
		Codes:               append([]int(nil), t.Codes...),
		NumeratorTemplate:   filepath.Join(t.DataDir, num, t.RunFile),
		DenominatorTemplate: filepath.Join(t.DataDir, den, t.RunFile),
		Energy:              analysis.EnergyRange{Min: t.EnergyMin, Max: t.EnergyMax},
	}, nil
}

func (s SystemConfig) runTemplate() (string, error) {
	if s.Template != "" {
		return s.Template, nil
	}
	var opts []collision.Option
	if s.BeamEnergy > 0 {
		opts = append(opts, collision.WithEnergy(s.BeamEnergy))
	}
	if s.ImpactParameter > 0 {
		opts = append(opts, collision.WithImpactParameter(s.ImpactParameter))
	}
	sys, err := collision.Parse(s.Projectile, s.Target, opts...)
	if err != nil {
		return "", err
	}
	return sys.RunTemplate(true), nil
}
