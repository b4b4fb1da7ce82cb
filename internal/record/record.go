package record

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/pdf-extractor/constants"
)

// Kind classifies a whole batch of records. A single document yields a
// homogeneous batch: classification happens once, never per record.
type Kind string

const (
	KindOrganization Kind = "organization"
	KindPerson       Kind = "person"
)

// Record is one extracted entity: canonical fields plus an explicit overflow
// bucket for data that maps onto no known field.
type Record struct {
	Fields map[string]string
	Other  string
}

// New returns an empty record.
func New() Record {
	return Record{Fields: make(map[string]string)}
}

// Set stores a value. Canonical keys land in Fields; anything else is
// appended to the overflow bucket as "<key>: <value>; " so no data is lost.
// Empty values are ignored.
func (r *Record) Set(key, value string) {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" || value == "" {
		return
	}
	if key == constants.FieldOther {
		r.AppendOther(value)
		return
	}
	if constants.IsCanonical(key) {
		if r.Fields == nil {
			r.Fields = make(map[string]string)
		}
		r.Fields[key] = value
		return
	}
	r.AppendOther(fmt.Sprintf("%s: %s; ", key, value))
}

// AppendOther adds raw text to the overflow bucket.
func (r *Record) AppendOther(s string) {
	r.Other += s
}

// Get returns the value for a canonical key; the "other" key reads the
// overflow bucket.
func (r Record) Get(key string) string {
	if key == constants.FieldOther {
		return r.Other
	}
	return r.Fields[key]
}

// Has reports whether the record carries a non-empty value for key.
func (r Record) Has(key string) bool {
	return r.Get(key) != ""
}

// IsEmpty reports whether nothing was populated.
func (r Record) IsEmpty() bool {
	return len(r.Fields) == 0 && r.Other == ""
}

// FromMap builds a record from an arbitrary field->value mapping, routing
// unknown keys into the overflow bucket.
func FromMap(m map[string]string) Record {
	r := New()
	// canonical keys first so overflow concatenation stays readable
	for _, k := range constants.OrganizationFields {
		if v, ok := m[k]; ok {
			r.Set(k, v)
		}
	}
	for _, k := range constants.PersonFields {
		if v, ok := m[k]; ok && k != constants.FieldOther {
			r.Set(k, v)
		}
	}
	for k, v := range m {
		if !constants.IsCanonical(k) {
			r.Set(k, v)
		}
	}
	return r
}

// Classify inspects a batch and picks the active variant: organization-type
// if any record carries an organization-indicating key, person-type otherwise.
func Classify(recs []Record) Kind {
	for _, r := range recs {
		for _, key := range constants.OrganizationIndicators {
			if r.Has(key) {
				return KindOrganization
			}
		}
	}
	return KindPerson
}

// PriorityFields returns the export column priority order for a kind.
func PriorityFields(k Kind) []string {
	if k == KindOrganization {
		return constants.OrganizationPriority
	}
	return constants.PersonPriority
}

// SheetTitle returns the localized export sheet label for a kind.
func SheetTitle(k Kind) string {
	if k == KindOrganization {
		return constants.SheetOrganizations
	}
	return constants.SheetMedicalExams
}

// UnionKeys returns every key present in at least one record, in canonical
// schema order for the given kind (overflow last). Deterministic so export
// column order is stable across runs.
func UnionKeys(recs []Record, k Kind) []string {
	schema := constants.PersonFields
	if k == KindOrganization {
		schema = constants.OrganizationFields
	}
	present := make(map[string]bool)
	for _, r := range recs {
		for key, v := range r.Fields {
			if v != "" {
				present[key] = true
			}
		}
		if r.Other != "" {
			present[constants.FieldOther] = true
		}
	}
	keys := make([]string, 0, len(present))
	for _, key := range schema {
		if present[key] {
			keys = append(keys, key)
			delete(present, key)
		}
	}
	// fields from the opposite schema can still appear in mixed documents
	other := constants.OrganizationFields
	if k == KindOrganization {
		other = constants.PersonFields
	}
	for _, key := range other {
		if present[key] {
			keys = append(keys, key)
		}
	}
	return keys
}
