package store

import (
	"context"
	"errors"
	"iter"
	"log/slog"

	"github.com/jacentio/protondoc/dql"
	"github.com/jacentio/protondoc/native"
)

// Store maps entities onto a native document database.
type Store struct {
	databases native.DatabaseProvider
	mappings  MappingProvider
	config    Config
	converter *Converter
	logger    *slog.Logger
}

// New creates a new Store instance. A database handle is requested from
// databases on every call.
func New(databases native.DatabaseProvider, mappings MappingProvider, config Config) *Store {
	config.validate()
	return &Store{
		databases: databases,
		mappings:  mappings,
		config:    config,
		converter: NewConverter(config.Coercions, config.CollectionField),
		logger:    config.Logger,
	}
}

// Converter returns the converter the store writes and reads with.
func (s *Store) Converter() *Converter {
	return s.converter
}

// args prepends the access token, when there is one, to opts.
func (s *Store) args(ctx context.Context, opts ...native.Option) []native.Option {
	token := s.config.AccessTokens.AccessToken(ctx)
	if token == "" {
		return opts
	}
	return append([]native.Option{native.AccessToken(token)}, opts...)
}

func (s *Store) database(ctx context.Context, op string) (native.Database, error) {
	db, err := s.databases.Database(ctx)
	if err != nil {
		return nil, storeFailure(op, err)
	}
	return db, nil
}

func (s *Store) mapping(ctx context.Context, collection string) (Mapping, error) {
	m, err := s.mappings.Mapping(ctx, collection)
	if err != nil {
		return Mapping{}, err
	}
	if m.Collection == "" {
		m.Collection = collection
	}
	return m, nil
}

// computeOptions is sent on every write. Compute errors are always ignored.
func computeOptions(compute bool) []native.Option {
	return []native.Option{native.Compute(native.ComputeOptions{
		ComputeWithForm:     compute,
		IgnoreComputeErrors: true,
	})}
}

// Insert always creates a new document and sets the entity's identity field
// to the new document's UNID.
func (s *Store) Insert(ctx context.Context, e *Entity, compute bool) (*Entity, error) {
	m, err := s.mapping(ctx, e.Name)
	if err != nil {
		return nil, err
	}
	doc, err := s.converter.ToNative(e, m, OpInsert)
	if err != nil {
		return nil, err
	}
	db, err := s.database(ctx, "insert")
	if err != nil {
		return nil, err
	}
	created, err := db.CreateDocument(ctx, doc, s.args(ctx, computeOptions(compute)...)...)
	if err != nil {
		return nil, storeFailure("insert", err)
	}
	e.Add(FieldID, created.UNID)
	return e, nil
}

// Update writes the entity over the document its identity field names. An
// entity with no identity is inserted instead.
func (s *Store) Update(ctx context.Context, e *Entity, compute bool) (*Entity, error) {
	id, ok := e.ID()
	if !ok {
		return s.Insert(ctx, e, compute)
	}
	m, err := s.mapping(ctx, e.Name)
	if err != nil {
		return nil, err
	}
	doc, err := s.converter.ToNative(e, m, OpUpdate)
	if err != nil {
		return nil, err
	}
	db, err := s.database(ctx, "update")
	if err != nil {
		return nil, err
	}
	stmt := dql.UNID(id).String()
	s.logger.DebugContext(ctx, "upserting document", "collection", e.Name, "query", stmt)
	if _, err := db.UpsertDocument(ctx, stmt, doc, s.args(ctx, computeOptions(compute)...)...); err != nil {
		return nil, storeFailure("update", err)
	}
	return e, nil
}

// ExistsByID reports whether a document with the given UNID exists.
func (s *Store) ExistsByID(ctx context.Context, id string) (bool, error) {
	db, err := s.database(ctx, "exists")
	if err != nil {
		return false, err
	}
	_, err = db.ReadDocumentByUNID(ctx, id, s.args(ctx, native.ItemNames([]string{}))...)
	if errors.Is(err, native.ErrDocumentNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storeFailure("exists", err)
	}
	return true, nil
}

// GetByID reads one entity of collection. The second result is false when
// the document does not exist. Stores report some missing documents as a
// failed bulk operation, so that failure is treated as not found too.
func (s *Store) GetByID(ctx context.Context, collection, id string) (*Entity, bool, error) {
	m, err := s.mapping(ctx, collection)
	if err != nil {
		return nil, false, err
	}
	db, err := s.database(ctx, "get")
	if err != nil {
		return nil, false, err
	}
	doc, err := db.ReadDocumentByUNID(ctx, id, s.args(ctx, projection(m)...)...)
	switch {
	case errors.Is(err, native.ErrDocumentNotFound):
		return nil, false, nil
	case native.IsBulkOperation(err):
		s.logger.DebugContext(ctx, "bulk operation failure read as not found", "collection", collection, "id", id, "error", err)
		return nil, false, nil
	case err != nil:
		return nil, false, storeFailure("get", err)
	}
	return s.converter.FromNative(m, doc), true, nil
}

// InsertAll inserts entities one at a time in order. Nothing is rolled
// back: on failure it returns the entities inserted so far with the error.
func (s *Store) InsertAll(ctx context.Context, entities []*Entity) ([]*Entity, error) {
	inserted := make([]*Entity, 0, len(entities))
	for _, e := range entities {
		out, err := s.Insert(ctx, e, false)
		if err != nil {
			return inserted, err
		}
		inserted = append(inserted, out)
	}
	return inserted, nil
}

// Delete removes the documents q names. Explicit IDs win over a predicate and
// are sent once each; a query with neither does nothing.
func (s *Store) Delete(ctx context.Context, q DeleteQuery) error {
	var ids []string
	seen := make(map[string]struct{}, len(q.IDs))
	for _, id := range q.IDs {
		if id == nil || *id == "" {
			continue
		}
		if _, dup := seen[*id]; dup {
			continue
		}
		seen[*id] = struct{}{}
		ids = append(ids, *id)
	}

	switch {
	case len(ids) > 0:
		db, err := s.database(ctx, "delete")
		if err != nil {
			return err
		}
		if err := db.DeleteDocumentsByUNID(ctx, ids, s.args(ctx)...); err != nil {
			return storeFailure("delete", err)
		}
	case q.Where != nil:
		m, err := s.mapping(ctx, q.Collection)
		if err != nil {
			return err
		}
		stmt, err := TranslateCondition(*q.Where, m)
		if err != nil {
			return err
		}
		db, err := s.database(ctx, "delete")
		if err != nil {
			return err
		}
		s.logger.DebugContext(ctx, "deleting documents", "collection", q.Collection, "query", stmt.String())
		if err := db.DeleteDocuments(ctx, stmt.String(), s.args(ctx)...); err != nil {
			return storeFailure("delete", err)
		}
	}
	return nil
}

// Select reads the entities matching q. A query with no predicate reads the
// whole collection. Sort hints are ignored.
func (s *Store) Select(ctx context.Context, q Query) (iter.Seq[*Entity], error) {
	m, err := s.mapping(ctx, q.Collection)
	if err != nil {
		return nil, err
	}
	t, err := TranslateQuery(q, m, s.config.UnboundedCount)
	if err != nil {
		return nil, err
	}
	stmt := t.Statement
	if stmt == nil {
		stmt = s.collectionScan(q.Collection)
	}
	db, err := s.database(ctx, "select")
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "reading documents", "collection", q.Collection, "query", stmt.String(), "skip", t.Skip, "limit", t.Limit)
	opts := append(projection(m), native.Start(t.Skip), native.Count(t.Limit))
	docs, err := db.ReadDocuments(ctx, stmt.String(), s.args(ctx, opts...)...)
	if err != nil {
		return nil, storeFailure("select", err)
	}
	return s.converter.Entities(m, docs), nil
}

// Count returns the number of documents in collection. It reads every
// matching document, so it is only suited to small collections.
func (s *Store) Count(ctx context.Context, collection string) (int64, error) {
	db, err := s.database(ctx, "count")
	if err != nil {
		return 0, err
	}
	stmt := s.collectionScan(collection).String()
	docs, err := db.ReadDocuments(ctx, stmt, s.args(ctx, native.ItemNames([]string{}), native.Count(s.config.UnboundedCount))...)
	if err != nil {
		return 0, storeFailure("count", err)
	}
	return int64(len(docs)), nil
}

func (s *Store) collectionScan(collection string) dql.Term {
	return dql.Item(s.config.CollectionField).Equal(dql.String(collection))
}

// projection requests the mapped items, or every item when the mapping
// declares none.
func projection(m Mapping) []native.Option {
	names := m.ItemNames()
	if len(names) == 0 {
		return nil
	}
	return []native.Option{native.ItemNames(names)}
}

// ViewQuery addresses entries of a named view.
type ViewQuery struct {
	View     string
	Category string
	Key      any
	Skip     int
	Limit    int
}

// ViewEntryQuery is not supported.
func (s *Store) ViewEntryQuery(ctx context.Context, q ViewQuery) (iter.Seq[*Entity], error) {
	return nil, unsupported("view entry query")
}

// ViewDocumentQuery is not supported.
func (s *Store) ViewDocumentQuery(ctx context.Context, q ViewQuery) (iter.Seq[*Entity], error) {
	return nil, unsupported("view document query")
}

// PutInFolder is not supported.
func (s *Store) PutInFolder(ctx context.Context, id, folder string) error {
	return unsupported("put in folder")
}

// RemoveFromFolder is not supported.
func (s *Store) RemoveFromFolder(ctx context.Context, id, folder string) error {
	return unsupported("remove from folder")
}

// GetByNoteID is not supported.
func (s *Store) GetByNoteID(ctx context.Context, collection string, noteID int) (*Entity, bool, error) {
	return nil, false, unsupported("get by note ID")
}
