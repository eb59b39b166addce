// file: internals/features/dossier/fieldtype/fieldtype.go
package fieldtype

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"inscription_backend/internals/features/dossier/catalog"
)

type Kind string

const (
	KindText           Kind = "text"
	KindUppercase      Kind = "uppercase"
	KindNumeric        Kind = "numeric"
	KindDate           Kind = "date"
	KindChoice         Kind = "choice"
	KindCodedReference Kind = "coded_reference"
	KindAddress        Kind = "address"
	KindYear           Kind = "year"
	KindCheckbox       Kind = "checkbox"
)

// FieldType is the input kind derived for a field. Length is set for
// fixed-length numerics, Annex for coded references.
type FieldType struct {
	Kind   Kind `json:"kind"`
	Length int  `json:"length,omitempty"`
	Annex  int  `json:"annex,omitempty"`
}

type rule struct {
	name  string
	apply func(f catalog.FieldDescriptor, hint string) (FieldType, bool)
}

var firstInt = regexp.MustCompile(`\d+`)

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Evaluated top to bottom; the first rule that applies wins.
var rules = []rule{
	{"choice", func(f catalog.FieldDescriptor, hint string) (FieldType, bool) {
		if f.Type == catalog.TypeChoice || len(f.Options) > 0 || containsAny(hint, "choisir", "choose") {
			return FieldType{Kind: KindChoice}, true
		}
		return FieldType{}, false
	}},
	{"checkbox", func(f catalog.FieldDescriptor, _ string) (FieldType, bool) {
		if f.Type == catalog.TypeCheckbox {
			return FieldType{Kind: KindCheckbox}, true
		}
		return FieldType{}, false
	}},
	{"date", func(_ catalog.FieldDescriptor, hint string) (FieldType, bool) {
		if containsAny(hint, "jj/mm/aaaa", "dd/mm/yyyy", "date") {
			return FieldType{Kind: KindDate}, true
		}
		return FieldType{}, false
	}},
	{"year", func(_ catalog.FieldDescriptor, hint string) (FieldType, bool) {
		if containsAny(hint, "année", "annee", "year") {
			return FieldType{Kind: KindYear}, true
		}
		return FieldType{}, false
	}},
	{"numeric", func(_ catalog.FieldDescriptor, hint string) (FieldType, bool) {
		if !containsAny(hint, "caractères", "caracteres", "chiffres", "characters", "digits") {
			return FieldType{}, false
		}
		ft := FieldType{Kind: KindNumeric}
		if m := firstInt.FindString(hint); m != "" {
			if n, err := strconv.Atoi(m); err == nil {
				ft.Length = n
			}
		}
		return ft, true
	}},
	{"coded_reference", func(f catalog.FieldDescriptor, hint string) (FieldType, bool) {
		if !strings.Contains(hint, "code") || !containsAny(hint, "annexe", "annex") {
			return FieldType{}, false
		}
		annex := f.Annex
		if annex == 0 {
			annex = catalog.AnnexOf(hint)
		}
		return FieldType{Kind: KindCodedReference, Annex: annex}, true
	}},
	{"address", func(_ catalog.FieldDescriptor, hint string) (FieldType, bool) {
		if containsAny(hint, "adresse", "address") && containsAny(hint, "complète", "complete") {
			return FieldType{Kind: KindAddress}, true
		}
		return FieldType{}, false
	}},
	{"uppercase", func(_ catalog.FieldDescriptor, hint string) (FieldType, bool) {
		if containsAny(hint, "majuscules", "uppercase") {
			return FieldType{Kind: KindUppercase}, true
		}
		return FieldType{}, false
	}},
}

// Rules lists the rule names in evaluation order, text being the fallback.
func Rules() []string {
	out := make([]string, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.name)
	}
	return append(out, string(KindText))
}

// Classify derives the input kind of a field from its declared type,
// options and format hint.
func Classify(f catalog.FieldDescriptor) FieldType {
	hint := strings.ToLower(norm.NFC.String(f.Format))
	for _, r := range rules {
		if ft, ok := r.apply(f, hint); ok {
			return ft
		}
	}
	return FieldType{Kind: KindText}
}

// Classifier memoises Classify per field name for one catalog.
type Classifier struct {
	cat   *catalog.Catalog
	mu    sync.RWMutex
	cache map[string]FieldType
}

func NewClassifier(cat *catalog.Catalog) *Classifier {
	return &Classifier{cat: cat, cache: make(map[string]FieldType)}
}

// TypeOf classifies a catalog field by name. Unknown names yield text and
// false.
func (c *Classifier) TypeOf(name string) (FieldType, bool) {
	c.mu.RLock()
	ft, ok := c.cache[name]
	c.mu.RUnlock()
	if ok {
		return ft, true
	}

	f, ok := c.cat.Field(name)
	if !ok {
		return FieldType{Kind: KindText}, false
	}
	ft = Classify(f)

	c.mu.Lock()
	c.cache[name] = ft
	c.mu.Unlock()
	return ft, true
}

// IsCoded reports whether the field expects a code from a reference annex.
func (t FieldType) IsCoded() bool { return t.Kind == KindCodedReference }
