// Package collision names heavy-ion collision configurations the way the
// transport code lays out its run directories.
package collision

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/user/skygp_go/internal/errkind"
)

var (
	lettersPattern = regexp.MustCompile(`[A-Za-z]+`)
	digitsPattern  = regexp.MustCompile(`[0-9]+`)
)

// Nucleus is a lower-cased element symbol and mass number.
type Nucleus struct {
	Symbol string
	A      int
}

func (n Nucleus) String() string { return n.Symbol + strconv.Itoa(n.A) }

// ParseNucleus accepts "Ca48", "48ca", "ca-48" and similar spellings.
func ParseNucleus(text string) (Nucleus, error) {
	symbol := strings.ToLower(strings.Join(lettersPattern.FindAllString(text, -1), ""))
	digits := strings.Join(digitsPattern.FindAllString(text, -1), "")
	if symbol == "" || digits == "" {
		return Nucleus{}, fmt.Errorf("%w: nucleus %q needs a symbol and a mass number", errkind.ErrFormat, text)
	}
	a, err := strconv.Atoi(digits)
	if err != nil {
		return Nucleus{}, fmt.Errorf("%w: nucleus %q: %v", errkind.ErrFormat, text, err)
	}
	return Nucleus{Symbol: symbol, A: a}, nil
}

// System is a beam/target pair with optional run settings. Nil settings are
// left out of the name.
type System struct {
	Projectile      Nucleus
	Target          Nucleus
	Skyrme          *int
	Energy          *float64 // MeV/u
	ImpactParameter *float64 // fm
}

type Option func(*System)

func WithSkyrme(code int) Option { return func(s *System) { s.Skyrme = &code } }

func WithEnergy(mevPerU float64) Option { return func(s *System) { s.Energy = &mevPerU } }

func WithImpactParameter(fm float64) Option {
	return func(s *System) { s.ImpactParameter = &fm }
}

// Parse builds a System from projectile and target spellings.
func Parse(projectile, target string, opts ...Option) (*System, error) {
	p, err := ParseNucleus(projectile)
	if err != nil {
		return nil, fmt.Errorf("projectile: %w", err)
	}
	t, err := ParseNucleus(target)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	s := &System{Projectile: p, Target: t}
	for _, opt := range opts {
		opt(s)
	}
	if s.Skyrme != nil && *s.Skyrme < 0 {
		return nil, fmt.Errorf("%w: skyrme code must be >= 0, got %d", errkind.ErrFormat, *s.Skyrme)
	}
	return s, nil
}

// Name returns the readable name, or the run directory name when imqmd is set,
// e.g. "ca48ni64_001e140b2x-1".
func (s *System) Name(imqmd bool) string {
	skyrme := ""
	if s.Skyrme != nil {
		skyrme = fmt.Sprintf("%03d", *s.Skyrme)
	}
	return s.build(skyrme, s.Skyrme != nil, imqmd)
}

// RunTemplate returns the run directory name with a "%03d" slot where the
// skyrme code goes, suitable for the aggregator's path templates.
func (s *System) RunTemplate(imqmd bool) string {
	return s.build("%03d", true, imqmd)
}

func (s *System) build(skyrme string, hasSkyrme, imqmd bool) string {
	var b strings.Builder
	b.WriteString(s.Projectile.String())
	b.WriteString(s.Target.String())
	if hasSkyrme || s.Energy != nil || s.ImpactParameter != nil {
		b.WriteByte('_')
	}
	b.WriteString(skyrme)
	if s.Energy != nil {
		fmt.Fprintf(&b, "e%d", int64(*s.Energy))
	}
	if s.ImpactParameter != nil {
		fmt.Fprintf(&b, "b%d", int64(*s.ImpactParameter))
	}
	if imqmd {
		b.WriteString("x-1")
	}
	return b.String()
}

func (s *System) String() string {
	return "<CollisionSystem> name: " + s.Name(false)
}
