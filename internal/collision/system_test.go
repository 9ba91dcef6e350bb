package collision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/skygp_go/internal/errkind"
)

func TestSystem_Name(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		imqmd bool
		want  string
	}{
		{"bare", nil, false, "ca48ni64"},
		{"energy only", []Option{WithEnergy(140)}, false, "ca48ni64_e140"},
		{"full imqmd", []Option{WithSkyrme(1), WithEnergy(140), WithImpactParameter(2)}, true, "ca48ni64_001e140b2x-1"},
		{"fraction truncated", []Option{WithEnergy(140.9)}, false, "ca48ni64_e140"},
		{"imqmd suffix only", nil, true, "ca48ni64x-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse("Ca48", "ni64", tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Name(tt.imqmd))
		})
	}
}

func TestSystem_StringAndTemplate(t *testing.T) {
	s, err := Parse("48Ca", "Ni-64", WithEnergy(140), WithImpactParameter(2))
	require.NoError(t, err)
	assert.Equal(t, "<CollisionSystem> name: ca48ni64_e140b2", s.String())
	assert.Equal(t, "ca48ni64_%03de140b2x-1", s.RunTemplate(true))
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("ca", "ni64")
	assert.ErrorIs(t, err, errkind.ErrFormat)
	assert.ErrorContains(t, err, "projectile")

	_, err = Parse("ca48", "64")
	assert.ErrorIs(t, err, errkind.ErrFormat)
	assert.ErrorContains(t, err, "target")

	_, err = Parse("ca48", "ni64", WithSkyrme(-1))
	assert.ErrorIs(t, err, errkind.ErrFormat)
}
