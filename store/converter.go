package store

import (
	"iter"

	"github.com/jacentio/protondoc/native"
)

// Converter turns entities into native documents and back.
type Converter struct {
	coercions       *Coercions
	collectionField string
}

// NewConverter returns a converter that coerces field values with coercions
// and records the entity name in the collectionField item.
func NewConverter(coercions *Coercions, collectionField string) *Converter {
	if collectionField == "" {
		collectionField = FieldName
	}
	return &Converter{coercions: coercions, collectionField: collectionField}
}

// CollectionField is the item recording an entity's collection name.
func (c *Converter) CollectionField() string {
	return c.collectionField
}

func (c *Converter) reserved(name string) bool {
	switch name {
	case FieldID, c.collectionField, FieldCreated, FieldModified, FieldNoteID, FieldETag:
		return true
	}
	return false
}

// ToNative converts e for a write of kind op. Reserved fields and fields
// whose policy excludes op are left out. The entity's name is always
// appended as the collection item.
func (c *Converter) ToNative(e *Entity, m Mapping, op Operation) (native.Document, error) {
	doc := native.Document{Items: make([]native.Item, 0, len(e.Fields)+1)}
	for _, f := range e.Fields {
		if c.reserved(f.Name) {
			continue
		}
		p := m.PolicyFor(f.Name)
		if !p.Allows(op) {
			continue
		}
		item, err := MapItem(m.ItemName(f.Name), c.coercions.Apply(f.Value), p)
		if err != nil {
			return native.Document{}, err
		}
		doc.Items = append(doc.Items, item)
	}
	doc.Items = append(doc.Items, native.TextItem(c.collectionField, e.Name))
	return doc, nil
}

// FromNative converts doc into an entity of m's collection. The first field
// is always the identity field holding the document's UNID. Null items
// become nil fields; lists become slices.
func (c *Converter) FromNative(m Mapping, doc native.Document) *Entity {
	e := &Entity{Name: m.Collection, Fields: make([]Field, 0, len(doc.Items)+1)}
	e.Fields = append(e.Fields, Field{Name: FieldID, Value: doc.UNID})
	for _, it := range doc.Items {
		if it.Name == FieldID {
			continue
		}
		var v any
		if !it.IsNull() {
			v = it.Value.Any()
		}
		e.Add(m.FieldName(it.Name), v)
	}
	return e
}

// Entities lazily converts docs in order.
func (c *Converter) Entities(m Mapping, docs []native.Document) iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		for _, doc := range docs {
			if !yield(c.FromNative(m, doc)) {
				return
			}
		}
	}
}
