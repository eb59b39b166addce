// file: internals/features/dossier/catalog/catalog.go
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed form_sections.yaml
var embeddedSections []byte

// SectionCount is the number of cadres on the registration dossier.
const SectionCount = 24

// Declared type markers. Anything else in the YAML is rejected at load.
const (
	TypeChoice   = "choice"
	TypeCheckbox = "checkbox"
	TypeInfo     = "info"
)

// FieldDescriptor describes one form field of a section.
type FieldDescriptor struct {
	Name        string   `yaml:"key" json:"name"`
	Required    bool     `yaml:"required" json:"required"`
	Type        string   `yaml:"type" json:"type,omitempty"`
	Format      string   `yaml:"format" json:"format"`
	Options     []string `yaml:"options" json:"options,omitempty"`
	Condition   string   `yaml:"condition" json:"condition,omitempty"`
	Help        string   `yaml:"help" json:"help,omitempty"`
	WhereToFind string   `yaml:"where_to_find" json:"where_to_find,omitempty"`
	Note        string   `yaml:"note" json:"note,omitempty"`
	Annex       int      `yaml:"annex" json:"annex,omitempty"`
}

// AppliesTo reports whether the field's declared condition allows it for the
// given enrollment situation. Fields without a condition always apply.
func (f FieldDescriptor) AppliesTo(reenrolling bool) bool {
	cond := strings.ToLower(f.Condition)
	switch {
	case cond == "":
		return true
	case strings.Contains(cond, "réinscription") || strings.Contains(cond, "re-enrol"):
		return reenrolling
	case strings.Contains(cond, "première inscription") || strings.Contains(cond, "first enrol"):
		return !reenrolling
	}
	return true
}

func (f FieldDescriptor) clone() FieldDescriptor {
	out := f
	if f.Options != nil {
		out.Options = append([]string(nil), f.Options...)
	}
	return out
}

// FormSection is one numbered cadre of the dossier. Exactly one of Field or
// Fields is set.
type FormSection struct {
	Number     int               `yaml:"number" json:"number"`
	Name       string            `yaml:"name" json:"name"`
	Required   bool              `yaml:"required" json:"required"`
	Field      *FieldDescriptor  `yaml:"field" json:"field,omitempty"`
	Fields     []FieldDescriptor `yaml:"fields" json:"fields,omitempty"`
	Additional *FieldDescriptor  `yaml:"additional" json:"additional,omitempty"`
}

// IsSingle reports whether the section holds a single field.
func (s FormSection) IsSingle() bool { return s.Field != nil }

// Descriptors returns every field of the section in declaration order,
// including the optional additional field.
func (s FormSection) Descriptors() []FieldDescriptor {
	out := make([]FieldDescriptor, 0, len(s.Fields)+2)
	if s.Field != nil {
		out = append(out, s.Field.clone())
	}
	for _, f := range s.Fields {
		out = append(out, f.clone())
	}
	if s.Additional != nil {
		out = append(out, s.Additional.clone())
	}
	return out
}

func (s FormSection) clone() FormSection {
	out := s
	if s.Field != nil {
		f := s.Field.clone()
		out.Field = &f
	}
	if s.Fields != nil {
		out.Fields = make([]FieldDescriptor, len(s.Fields))
		for i, f := range s.Fields {
			out.Fields[i] = f.clone()
		}
	}
	if s.Additional != nil {
		f := s.Additional.clone()
		out.Additional = &f
	}
	return out
}

type document struct {
	Version  string        `yaml:"version"`
	Sections []FormSection `yaml:"sections"`
}

// Catalog is the immutable, validated form definition.
type Catalog struct {
	version  string
	sections []FormSection
	bySect   map[string]int // field name -> index in sections
}

// Load decodes and validates a catalog document.
func Load(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	c := &Catalog{
		version:  doc.Version,
		sections: doc.Sections,
		bySect:   make(map[string]int),
	}
	if err := c.normalize(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) normalize() error {
	if len(c.sections) == 0 {
		return errors.New("catalog: no sections")
	}
	for i := range c.sections {
		s := &c.sections[i]
		if s.Number != i+1 {
			return fmt.Errorf("catalog: section at position %d has number %d", i+1, s.Number)
		}
		s.Name = norm.NFC.String(strings.TrimSpace(s.Name))
		if s.Name == "" {
			return fmt.Errorf("catalog: section %d has no name", s.Number)
		}
		switch {
		case s.Field != nil && len(s.Fields) > 0:
			return fmt.Errorf("catalog: section %d declares both field and fields", s.Number)
		case s.Field == nil && len(s.Fields) == 0:
			return fmt.Errorf("catalog: section %d declares neither field nor fields", s.Number)
		}
		// A single-field section carries its requiredness on the section.
		if s.Field != nil {
			s.Field.Required = s.Required
			if err := c.register(s.Field, i); err != nil {
				return err
			}
		}
		for j := range s.Fields {
			if err := c.register(&s.Fields[j], i); err != nil {
				return err
			}
		}
		if s.Additional != nil {
			s.Additional.Required = false
			if err := c.register(s.Additional, i); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Catalog) register(f *FieldDescriptor, idx int) error {
	num := c.sections[idx].Number
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return fmt.Errorf("catalog: section %d has a field without key", num)
	}
	if prev, dup := c.bySect[f.Name]; dup {
		return fmt.Errorf("catalog: field %q declared in sections %d and %d", f.Name, c.sections[prev].Number, num)
	}
	switch f.Type {
	case "", TypeChoice, TypeCheckbox, TypeInfo:
	default:
		return fmt.Errorf("catalog: field %q has unknown type %q", f.Name, f.Type)
	}
	if f.Type == TypeChoice && len(f.Options) == 0 {
		return fmt.Errorf("catalog: choice field %q has no options", f.Name)
	}
	f.Format = norm.NFC.String(f.Format)
	f.Condition = norm.NFC.String(f.Condition)
	for i, o := range f.Options {
		f.Options[i] = norm.NFC.String(o)
	}
	if f.Annex == 0 {
		f.Annex = AnnexOf(f.Format)
	}
	c.bySect[f.Name] = idx
	return nil
}

var annexRe = regexp.MustCompile(`(?i)annexe?\s*(\d+)`)

// AnnexOf returns the reference-annex number cited by a format hint, or 0.
func AnnexOf(hint string) int {
	m := annexRe.FindStringSubmatch(hint)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the embedded catalog, decoded once per process.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Load(embeddedSections)
		if defaultErr == nil && len(defaultCat.sections) != SectionCount {
			defaultErr = fmt.Errorf("catalog: expected %d sections, got %d", SectionCount, len(defaultCat.sections))
		}
	})
	return defaultCat, defaultErr
}

// MustDefault is Default for process start-up; a malformed catalog is fatal.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Version() string { return c.version }

// Sections returns a copy of all sections in ascending number order.
func (c *Catalog) Sections() []FormSection {
	out := make([]FormSection, len(c.sections))
	for i, s := range c.sections {
		out[i] = s.clone()
	}
	return out
}

// SectionByNumber looks a section up by its 1-based number.
func (c *Catalog) SectionByNumber(n int) (FormSection, bool) {
	if n < 1 || n > len(c.sections) {
		return FormSection{}, false
	}
	return c.sections[n-1].clone(), true
}

// SectionForField returns the section declaring the named field.
func (c *Catalog) SectionForField(name string) (FormSection, bool) {
	idx, ok := c.bySect[name]
	if !ok {
		return FormSection{}, false
	}
	return c.sections[idx].clone(), true
}

// Field returns the descriptor of a field by name.
func (c *Catalog) Field(name string) (FieldDescriptor, bool) {
	idx, ok := c.bySect[name]
	if !ok {
		return FieldDescriptor{}, false
	}
	for _, f := range c.sections[idx].Descriptors() {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

func (c *Catalog) HasField(name string) bool {
	_, ok := c.bySect[name]
	return ok
}

// FieldNames lists every declared field in presentation order.
func (c *Catalog) FieldNames() []string {
	out := make([]string, 0, len(c.bySect))
	for _, s := range c.sections {
		for _, f := range s.Descriptors() {
			out = append(out, f.Name)
		}
	}
	return out
}

// AllRequiredFieldNames lists the required fields of required sections in
// presentation order. When reenrolling is non-nil, fields whose condition
// excludes that situation are left out.
func (c *Catalog) AllRequiredFieldNames(reenrolling *bool) []string {
	var out []string
	for _, s := range c.sections {
		if !s.Required {
			continue
		}
		if s.Field != nil {
			out = append(out, s.Field.Name)
			continue
		}
		for _, f := range s.Fields {
			if !f.Required {
				continue
			}
			if reenrolling != nil && !f.AppliesTo(*reenrolling) {
				continue
			}
			out = append(out, f.Name)
		}
	}
	return out
}

// UnknownFields returns the keys not declared by the catalog, in input order
// of the given slice.
func (c *Catalog) UnknownFields(keys []string) []string {
	var out []string
	for _, k := range keys {
		if !c.HasField(k) {
			out = append(out, k)
		}
	}
	return out
}
