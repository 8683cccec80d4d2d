package store

import (
	"context"
	"strconv"

	"github.com/jacentio/protondoc/native"
)

// Encoding selects how a field value is written.
type Encoding int

const (
	// EncodingDefault writes the value as a native item of its own kind.
	EncodingDefault Encoding = iota

	// EncodingJSON writes the value as a single JSON text item (non-summary).
	EncodingJSON

	// EncodingMIME and EncodingMIMEBean are declared by schemas but are not
	// implemented; fields using them fail with ErrUnsupportedValueKind.
	EncodingMIME
	EncodingMIMEBean
)

func (e Encoding) String() string {
	switch e {
	case EncodingDefault:
		return "Default"
	case EncodingJSON:
		return "JSON"
	case EncodingMIME:
		return "MIME"
	case EncodingMIMEBean:
		return "MIMEBean"
	}
	return "Encoding(" + strconv.Itoa(int(e)) + ")"
}

// Operation is the kind of write a conversion is for.
type Operation int

const (
	OpInsert Operation = iota
	OpUpdate
)

// Policy is the storage policy of one field. The zero value is the default:
// insertable, updatable, persisted, summary, default encoding and no
// precision override.
type Policy struct {
	// SkipInsert omits the field when inserting.
	SkipInsert bool

	// SkipUpdate omits the field when updating.
	SkipUpdate bool

	// Transient writes the item with no value, removing any stored value.
	Transient bool

	// Precision is the number of decimal places numbers are rounded to (0 = as is).
	Precision int

	Encoding Encoding

	Authors    bool
	Readers    bool
	Names      bool
	Encrypted  bool
	NonSummary bool
}

// Allows reports whether the field is written by op.
func (p Policy) Allows(op Operation) bool {
	if op == OpInsert {
		return !p.SkipInsert
	}
	return !p.SkipUpdate
}

// Flags returns the item flags the policy asks for. Authors and readers
// fields are also names fields.
func (p Policy) Flags() native.Flags {
	var f native.Flags
	if p.Authors {
		f |= native.FlagAuthors
	}
	if p.Readers {
		f |= native.FlagReaders
	}
	if p.Authors || p.Readers || p.Names {
		f |= native.FlagNames
	}
	if p.Encrypted {
		f |= native.FlagEncrypted
	}
	if p.NonSummary {
		f |= native.FlagNonSummary
	}
	return f
}

// FieldMapping declares one field of a collection.
type FieldMapping struct {
	// Name is the application-side field name.
	Name string

	// Item is the native item name. Empty means the field is not mapped to
	// an item and is left out of projections.
	Item string

	Policy Policy
}

// Mapping declares the fields of a collection.
type Mapping struct {
	Collection string
	Fields     []FieldMapping
}

// ItemNames returns the item names to request when reading the collection.
func (m Mapping) ItemNames() []string {
	var names []string
	for _, f := range m.Fields {
		if f.Item != "" {
			names = append(names, f.Item)
		}
	}
	return names
}

// PolicyFor returns the policy of the named field, or the default policy
// when the field is not declared.
func (m Mapping) PolicyFor(field string) Policy {
	f, _ := m.Field(field)
	return f.Policy
}

// Field returns the declaration of the named field.
func (m Mapping) Field(name string) (FieldMapping, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldMapping{}, false
}

// ItemName returns the item the named field is stored as. Undeclared fields
// and fields with no item name are stored under their own name.
func (m Mapping) ItemName(field string) string {
	if f, ok := m.Field(field); ok && f.Item != "" {
		return f.Item
	}
	return field
}

// FieldName is the inverse of ItemName.
func (m Mapping) FieldName(item string) string {
	for _, f := range m.Fields {
		if f.Item == item {
			return f.Name
		}
	}
	return item
}

// MappingProvider supplies collection mappings.
type MappingProvider interface {
	Mapping(ctx context.Context, collection string) (Mapping, error)
}

// Registry is an in-process MappingProvider.
type Registry struct {
	mappings     []Mapping
	byCollection map[string]Mapping
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		mappings:     []Mapping{},
		byCollection: make(map[string]Mapping),
	}
}

// Register adds or replaces the mapping of m.Collection.
func (r *Registry) Register(m Mapping) {
	if _, ok := r.byCollection[m.Collection]; !ok {
		r.mappings = append(r.mappings, m)
	} else {
		for i := range r.mappings {
			if r.mappings[i].Collection == m.Collection {
				r.mappings[i] = m
			}
		}
	}
	r.byCollection[m.Collection] = m
}

// Mapping returns the mapping of collection. Undeclared collections get an
// empty mapping, so every field uses the default policy.
func (r *Registry) Mapping(_ context.Context, collection string) (Mapping, error) {
	if m, ok := r.byCollection[collection]; ok {
		return m, nil
	}
	return Mapping{Collection: collection}, nil
}

// AllMappings returns all registered mappings in registration order.
func (r *Registry) AllMappings() []Mapping {
	return r.mappings
}
