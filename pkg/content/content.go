// Package content loads the page catalog: the ordered sections of the
// landing page, their reveal and counter settings, and the static lists
// (attack marquee, feature cards, industries) the sections display.
//
// The bundled catalog is embedded; [LoadFile] reads an override from disk.
package content

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/nodeward/pkg/errors"
)

//go:embed default.yaml
var defaultCatalog []byte

// Catalog is the full page description.
type Catalog struct {
	Version    string     `yaml:"version" json:"version"`
	Sections   []Section  `yaml:"sections" json:"sections"`
	Marquee    [][]Attack `yaml:"marquee" json:"marquee"`
	Features   []Feature  `yaml:"features" json:"features"`
	Industries []Industry `yaml:"industries" json:"industries"`
}

// Section is one vertical block of the page.
type Section struct {
	ID       string        `yaml:"id" json:"id"`
	Tag      string        `yaml:"tag,omitempty" json:"tag,omitempty"`
	Title    string        `yaml:"title" json:"title"`
	Subtitle string        `yaml:"subtitle,omitempty" json:"subtitle,omitempty"`
	Height   float64       `yaml:"height" json:"height"`
	Reveal   *RevealSpec   `yaml:"reveal,omitempty" json:"reveal,omitempty"`
	Body     *TrackingSpec `yaml:"body,omitempty" json:"body,omitempty"`
	Stats    *StatsRow     `yaml:"stats,omitempty" json:"stats,omitempty"`
}

// RevealSpec configures the entrance animation wrapping a section.
type RevealSpec struct {
	Animation  string  `yaml:"animation" json:"animation"`
	Delay      string  `yaml:"delay,omitempty" json:"delay,omitempty"`
	Threshold  float64 `yaml:"threshold" json:"threshold"`
	RootMargin string  `yaml:"rootMargin,omitempty" json:"rootMargin,omitempty"`
}

// TrackingSpec configures a visibility tracker on a section body.
type TrackingSpec struct {
	Threshold float64 `yaml:"threshold" json:"threshold"`
	Once      bool    `yaml:"once" json:"once"`
}

// StatsRow is a row of animated counters placed inside a section.
type StatsRow struct {
	// Offset is the row's distance from the top of its section.
	Offset    float64 `yaml:"offset" json:"offset"`
	Height    float64 `yaml:"height" json:"height"`
	Threshold float64 `yaml:"threshold" json:"threshold"`
	// Once latches the row after its first reveal. Rows toggle by default.
	Once  bool   `yaml:"once,omitempty" json:"once,omitempty"`
	Items []Stat `yaml:"items" json:"items"`
}

// Stat is a single counter.
type Stat struct {
	Label    string        `yaml:"label" json:"label"`
	Prefix   string        `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Suffix   string        `yaml:"suffix,omitempty" json:"suffix,omitempty"`
	End      float64       `yaml:"end" json:"end"`
	Duration time.Duration `yaml:"duration" json:"duration"`
}

// Attack is a marquee entry.
type Attack struct {
	Name string `yaml:"name" json:"name"`
	Icon string `yaml:"icon" json:"icon"`
}

// Feature is a capability card.
type Feature struct {
	Icon  string `yaml:"icon" json:"icon"`
	Title string `yaml:"title" json:"title"`
	Desc  string `yaml:"desc" json:"desc"`
	Color string `yaml:"color" json:"color"`
}

// Industry is an option of the contact form's industry field.
type Industry struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Load(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic(fmt.Sprintf("content: embedded catalog: %v", err))
	}
	return c
}

// Load decodes and validates a catalog. Unknown fields are rejected.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, errors.Configuration("content.Load", fmt.Errorf("parse catalog: %w", err))
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile reads a catalog from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Configuration("content.LoadFile", err)
	}
	defer f.Close()
	return Load(f)
}

// Validate checks the catalog for structural errors.
func (c *Catalog) Validate() error {
	const op = "content.Validate"
	if !semver.IsValid(c.Version) {
		return errors.Configuration(op, fmt.Errorf("version %q is not a semantic version", c.Version))
	}
	if semver.Major(c.Version) != "v1" {
		return errors.Configuration(op, fmt.Errorf("unsupported catalog version %s", c.Version))
	}
	if len(c.Sections) == 0 {
		return errors.Configuration(op, fmt.Errorf("catalog has no sections"))
	}
	seen := make(map[string]bool, len(c.Sections))
	for i, s := range c.Sections {
		id := strings.TrimSpace(s.ID)
		if id == "" {
			return errors.Configuration(op, fmt.Errorf("section %d has no id", i))
		}
		if seen[id] {
			return errors.Configuration(op, fmt.Errorf("duplicate section id %q", id))
		}
		seen[id] = true
		if s.Height <= 0 {
			return errors.Configuration(op, fmt.Errorf("section %q: height must be positive", id))
		}
		if s.Reveal != nil && !unit(s.Reveal.Threshold) {
			return errors.Configuration(op, fmt.Errorf("section %q: reveal threshold %v outside [0,1]", id, s.Reveal.Threshold))
		}
		if s.Body != nil && !unit(s.Body.Threshold) {
			return errors.Configuration(op, fmt.Errorf("section %q: body threshold %v outside [0,1]", id, s.Body.Threshold))
		}
		if s.Stats != nil {
			if err := s.Stats.validate(id); err != nil {
				return errors.Configuration(op, err)
			}
		}
	}
	return nil
}

// Section returns the section with the given id.
func (c *Catalog) Section(id string) (Section, bool) {
	for _, s := range c.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

func (r *StatsRow) validate(section string) error {
	if !unit(r.Threshold) {
		return fmt.Errorf("section %q: stats threshold %v outside [0,1]", section, r.Threshold)
	}
	if r.Height <= 0 {
		return fmt.Errorf("section %q: stats height must be positive", section)
	}
	for _, st := range r.Items {
		if st.Duration < 0 {
			return fmt.Errorf("section %q: stat %q has negative duration", section, st.Label)
		}
	}
	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}
