package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/skygp_go/internal/errkind"
	"github.com/user/skygp_go/internal/isotope"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skygp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_EmptyFileGivesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
	assert.Equal(t, isotope.DefaultBuildOptions(), cfg.BuildOptions())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
log:
  level: debug
  format: json
mass_table:
  local_path: /tmp/mass.txt
  timeout: 5s
  renames:
    119: Uue
emulator:
  noise: 0.001
  optimize: true
  restarts: 2
  seed: 9
`))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 5*time.Second, cfg.MassTable.Timeout)
	assert.Equal(t, "/tmp/mass.txt", cfg.StoreConfig().LocalPath)
	assert.Equal(t, isotope.DefaultURL, cfg.StoreConfig().URL)
	assert.Equal(t, 0.001, cfg.Emulator.Noise)
	assert.Equal(t, 1.0, cfg.Emulator.LengthScale)
	assert.True(t, cfg.Emulator.Optimize)
	assert.Equal(t, 2, cfg.Emulator.Restarts)
	assert.Equal(t, uint64(9), cfg.Emulator.Seed)

	renames := cfg.BuildOptions().Renames
	assert.Equal(t, "Uue", renames[119])
	assert.Equal(t, "Og", renames[118])
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, errkind.ErrIO)

	tests := map[string]string{
		"unknown key":    "bogus: 1\n",
		"bad level":      "log:\n  level: loud\n",
		"bad url":        "mass_table:\n  url: not a url\n",
		"zero markers":   "mass_table:\n  marker_count: 0\n",
		"bad rename":     "mass_table:\n  renames:\n    113: \"N1\"\n",
		"negative scale": "emulator:\n  length_scale: -1\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.ErrorIs(t, err, errkind.ErrFormat)
		})
	}
}

func TestTrainingRequest(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
training:
  data_dir: /data
  numerator:
    projectile: Ca48
    target: Ni64
    beam_energy: 140
  denominator:
    template: ca40ni58_%03de140x-1
  codes: [1, 2, 3]
  energy_min: 10
  energy_max: 100
`))
	require.NoError(t, err)

	req, err := cfg.TrainingRequest()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "param.dat"), req.ParamIndexPath)
	assert.Equal(t, filepath.Join("/data", "ca48ni64_%03de140x-1", "NP-EK-A16Z6.DAT"), req.NumeratorTemplate)
	assert.Equal(t, filepath.Join("/data", "ca40ni58_%03de140x-1", "NP-EK-A16Z6.DAT"), req.DenominatorTemplate)
	assert.Equal(t, []int{1, 2, 3}, req.Codes)
	assert.Equal(t, 10.0, req.Energy.Min)
	assert.Equal(t, 100.0, req.Energy.Max)
}

func TestTrainingRequest_Invalid(t *testing.T) {
	base := Default()
	base.Training.DataDir = "/data"
	base.Training.Codes = []int{1}
	base.Training.Numerator.Template = "a_%03d"
	base.Training.Denominator.Template = "b_%03d"

	_, err := base.TrainingRequest()
	require.NoError(t, err)

	noCodes := base
	noCodes.Training.Codes = nil
	_, err = noCodes.TrainingRequest()
	assert.ErrorIs(t, err, errkind.ErrFormat)

	inverted := base
	inverted.Training.EnergyMin = 50
	inverted.Training.EnergyMax = 10
	_, err = inverted.TrainingRequest()
	assert.ErrorIs(t, err, errkind.ErrFormat)

	noSystem := base
	noSystem.Training.Numerator = SystemConfig{}
	_, err = noSystem.TrainingRequest()
	assert.ErrorIs(t, err, errkind.ErrFormat)
}
