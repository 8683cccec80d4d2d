package store

// Reserved field names. They are never written as items.
const (
	// FieldID holds the document's UNID.
	FieldID = "id"

	// FieldName is the default item recording the entity's collection name.
	FieldName = "EntityName"

	FieldCreated  = "@cdate"
	FieldModified = "@mdate"
	FieldNoteID   = "@noteid"
	FieldETag     = "@etag"
)

// Field is a named entity value. Value may be nil, a scalar or a
// homogeneous slice.
type Field struct {
	Name  string
	Value any
}

// Entity is a named record of fields. Field names are unique.
type Entity struct {
	// Name is the entity's collection (type) name.
	Name string

	Fields []Field
}

// NewEntity returns an entity of the named collection.
func NewEntity(name string, fields ...Field) *Entity {
	e := &Entity{Name: name}
	for _, f := range fields {
		e.Add(f.Name, f.Value)
	}
	return e
}

// Find returns the field called name.
func (e *Entity) Find(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Get returns the value of the field called name, or nil.
func (e *Entity) Get(name string) any {
	f, _ := e.Find(name)
	return f.Value
}

// Add sets a field, replacing any field of the same name in place.
func (e *Entity) Add(name string, value any) {
	for i, f := range e.Fields {
		if f.Name == name {
			e.Fields[i].Value = value
			return
		}
	}
	e.Fields = append(e.Fields, Field{Name: name, Value: value})
}

// ID returns the entity's identity field when it holds a non-empty string.
func (e *Entity) ID() (string, bool) {
	f, ok := e.Find(FieldID)
	if !ok {
		return "", false
	}
	id, ok := f.Value.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
