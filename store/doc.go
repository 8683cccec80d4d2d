// Package store maps a generic entity model onto a native document database.
//
// An [Entity] is a named record of fields. The [Store] converts entities to
// native documents on write, converts documents back on read, and renders
// queries as DQL statements for the native client. It holds no state of its
// own: a database handle is obtained from a [native.DatabaseProvider] on
// every call.
//
// # Mappings
//
// Each collection may declare its fields through a [MappingProvider]. A
// [FieldMapping] names the native item a field is stored as and carries its
// storage [Policy]:
//
//	reg := store.NewRegistry()
//	reg.Register(store.Mapping{
//	    Collection: "Person",
//	    Fields: []store.FieldMapping{
//	        {Name: "name", Item: "name"},
//	        {Name: "owner", Item: "owner", Policy: store.Policy{Authors: true}},
//	        {Name: "prefs", Item: "prefs", Policy: store.Policy{Encoding: store.EncodingJSON}},
//	        {Name: "score", Item: "score", Policy: store.Policy{Precision: 2}},
//	    },
//	})
//
// Undeclared fields are written under their own name with the default
// policy.
//
// # Value mapping
//
// Field values first pass through the configured [Coercions], then
// [MapItem] picks the item kind: strings are text, civil.Date is a date,
// civil.Time is a time, time.Time is a date-time and Go numbers are numbers.
// Slices of these become multi-valued items. Nil values and empty slices
// become a text item with no value.
//
// # Queries
//
// [Query] predicates are built from [Condition] nodes ([Eq], [Gt], [And],
// [Between] and so on) and rendered by [TranslateQuery]. Equality on the
// "id" field matches the document's unique ID. Sort hints are accepted but
// not translated.
//
// # Errors
//
//   - [ErrUnsupportedCapability] - view, folder and note ID operations
//   - [ErrUnsupportedValueKind] - a field value has no native item kind
//   - [ErrStoreFailure] - the native client failed
//
// Point reads report a missing document with a false result rather than an
// error.
package store
