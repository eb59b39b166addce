// file: internals/features/dossier/completeness/completeness.go
package completeness

import (
	"reflect"

	"inscription_backend/internals/features/dossier/catalog"
)

// MissingSection is a required section with at least one unfilled field.
type MissingSection struct {
	Number        int      `json:"number"`
	Name          string   `json:"name"`
	MissingFields []string `json:"missing_fields"`
}

// MissingSections walks the catalog in section order and reports every
// required field whose value is absent or empty. Optional sections are
// skipped. Field conditions are not consulted; callers filter with
// FieldDescriptor.AppliesTo when they need to.
func MissingSections(cat *catalog.Catalog, data map[string]any) []MissingSection {
	var out []MissingSection
	for _, s := range cat.Sections() {
		if !s.Required {
			continue
		}
		var missing []string
		if s.Field != nil {
			if IsEmpty(data[s.Field.Name]) {
				missing = append(missing, s.Field.Name)
			}
		} else {
			for _, f := range s.Fields {
				if f.Required && IsEmpty(data[f.Name]) {
					missing = append(missing, f.Name)
				}
			}
		}
		if len(missing) > 0 {
			out = append(out, MissingSection{Number: s.Number, Name: s.Name, MissingFields: missing})
		}
	}
	return out
}

func IsComplete(cat *catalog.Catalog, data map[string]any) bool {
	return len(MissingSections(cat, data)) == 0
}

// MissingFieldNames flattens MissingSections, keeping order.
func MissingFieldNames(cat *catalog.Catalog, data map[string]any) []string {
	var out []string
	for _, m := range MissingSections(cat, data) {
		out = append(out, m.MissingFields...)
	}
	return out
}

// NextField is the first missing field, or "" when the form is complete.
func NextField(cat *catalog.Catalog, data map[string]any) string {
	for _, m := range MissingSections(cat, data) {
		if len(m.MissingFields) > 0 {
			return m.MissingFields[0]
		}
	}
	return ""
}

// IsEmpty is the emptiness test used for required fields: nil, false, the
// empty string, numeric zero and empty collections count as unfilled.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case int:
		return t == 0
	case int64:
		return t == 0
	case float64:
		return t == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return rv.Len() == 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return IsEmpty(rv.Elem().Interface())
	}
	return false
}
