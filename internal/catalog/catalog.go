// Package catalog holds the guidance content: the five-step lists for each
// struggle and approach, and the display titles derived from struggle tags.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nhle/guidance/internal/model"
)

// StepsPerList is the number of steps every list must define.
const StepsPerList = 5

//go:embed content.yaml
var builtinContent []byte

// document mirrors content.yaml.
type document struct {
	Titles     []titleEntry    `yaml:"titles"`
	Approaches []approachEntry `yaml:"approaches"`
}

type titleEntry struct {
	Tag   string `yaml:"tag"`
	Title string `yaml:"title"`
}

type approachEntry struct {
	Name    string                 `yaml:"name"`
	General []model.StepDefinition `yaml:"general"`
	Tags    []tagEntry             `yaml:"tags"`
}

type tagEntry struct {
	Tag   string                 `yaml:"tag"`
	Steps []model.StepDefinition `yaml:"steps"`
}

// stepTable is the content of one approach.
type stepTable struct {
	general []model.StepDefinition
	byTag   map[string][]model.StepDefinition
}

// Catalog answers step and title lookups. It is immutable once built and
// safe for concurrent use.
type Catalog struct {
	approaches map[model.Approach]stepTable
	titles     map[string]string
	knownTags  []string
}

// Default parses the content compiled into the binary.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(builtinContent))
}

// LoadFile reads a catalog document from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	return c, nil
}

// Load decodes and validates a catalog document.
func Load(r io.Reader) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	c := &Catalog{
		approaches: make(map[model.Approach]stepTable),
		titles:     make(map[string]string),
	}

	seenTag := make(map[string]bool)
	for _, ae := range doc.Approaches {
		approach, err := model.ParseApproach(ae.Name)
		if err != nil {
			return nil, err
		}
		if _, dup := c.approaches[approach]; dup {
			return nil, fmt.Errorf("approach %s defined twice", approach)
		}

		general, err := numberSteps(approach, "general", ae.General)
		if err != nil {
			return nil, err
		}
		table := stepTable{
			general: general,
			byTag:   make(map[string][]model.StepDefinition),
		}
		for _, te := range ae.Tags {
			if strings.TrimSpace(te.Tag) == "" {
				return nil, fmt.Errorf("approach %s: empty tag", approach)
			}
			if _, dup := table.byTag[te.Tag]; dup {
				return nil, fmt.Errorf("approach %s: tag %q defined twice", approach, te.Tag)
			}
			steps, err := numberSteps(approach, te.Tag, te.Steps)
			if err != nil {
				return nil, err
			}
			table.byTag[te.Tag] = steps
			if !seenTag[te.Tag] {
				seenTag[te.Tag] = true
				c.knownTags = append(c.knownTags, te.Tag)
			}
		}
		c.approaches[approach] = table
	}

	for _, a := range []model.Approach{model.ApproachCBTPCIT, model.ApproachAlternative} {
		if _, ok := c.approaches[a]; !ok {
			return nil, fmt.Errorf("approach %s is missing", a)
		}
	}

	for _, te := range doc.Titles {
		key := normalizeTag(te.Tag)
		if key == "" || strings.TrimSpace(te.Title) == "" {
			return nil, fmt.Errorf("title entry %q is incomplete", te.Tag)
		}
		c.titles[key] = te.Title
	}

	return c, nil
}

// numberSteps validates a list and assigns contiguous 1-based numbers.
func numberSteps(a model.Approach, tag string, defs []model.StepDefinition) ([]model.StepDefinition, error) {
	if len(defs) != StepsPerList {
		return nil, fmt.Errorf("%s/%s: expected %d steps, got %d", a, tag, StepsPerList, len(defs))
	}
	out := make([]model.StepDefinition, len(defs))
	for i, d := range defs {
		if strings.TrimSpace(d.Title) == "" {
			return nil, fmt.Errorf("%s/%s: step %d has no title", a, tag, i+1)
		}
		d.Number = i + 1
		d.Approach = a
		out[i] = d
	}
	return out, nil
}

// Steps returns the ordered steps for a tag under an approach. Tags without a
// dedicated list get the approach's general list. The result is a copy.
func (c *Catalog) Steps(tag string, approach model.Approach) []model.StepDefinition {
	table, ok := c.approaches[approach]
	if !ok {
		return nil
	}
	steps, ok := table.byTag[tag]
	if !ok {
		steps = table.general
	}
	return append([]model.StepDefinition(nil), steps...)
}

// HasDedicatedSteps reports whether the tag has its own list under approach
// rather than falling back to the general one.
func (c *Catalog) HasDedicatedSteps(tag string, approach model.Approach) bool {
	_, ok := c.approaches[approach].byTag[tag]
	return ok
}

// KnownTags returns the struggle tags with dedicated content, in document order.
func (c *Catalog) KnownTags() []string {
	return append([]string(nil), c.knownTags...)
}
