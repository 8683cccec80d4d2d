package native

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Database is the native store client. Queries are DQL statements.
type Database interface {
	// CreateDocument stores doc as a new document and returns it with its UNID.
	CreateDocument(ctx context.Context, doc Document, opts ...Option) (Document, error)

	// UpsertDocument replaces the items of every document matching query,
	// creating a new document when nothing matches.
	UpsertDocument(ctx context.Context, query string, doc Document, opts ...Option) (Document, error)

	// ReadDocumentByUNID returns a single document.
	// Returns ErrDocumentNotFound when no document has that UNID.
	ReadDocumentByUNID(ctx context.Context, unid string, opts ...Option) (Document, error)

	// ReadDocuments returns the documents matching query.
	ReadDocuments(ctx context.Context, query string, opts ...Option) ([]Document, error)

	// DeleteDocumentsByUNID deletes the listed documents.
	DeleteDocumentsByUNID(ctx context.Context, unids []string, opts ...Option) error

	// DeleteDocuments deletes the documents matching query.
	DeleteDocuments(ctx context.Context, query string, opts ...Option) error
}

// DatabaseProvider yields a ready-to-use Database for one call.
type DatabaseProvider interface {
	Database(ctx context.Context) (Database, error)
}

// DatabaseProviderFunc adapts a function to DatabaseProvider.
type DatabaseProviderFunc func(ctx context.Context) (Database, error)

func (f DatabaseProviderFunc) Database(ctx context.Context) (Database, error) {
	return f(ctx)
}

// StaticDatabase returns a provider that always yields db.
func StaticDatabase(db Database) DatabaseProvider {
	return DatabaseProviderFunc(func(context.Context) (Database, error) {
		return db, nil
	})
}

// AccessTokenProvider yields the current access token, or "" for none.
type AccessTokenProvider interface {
	AccessToken(ctx context.Context) string
}

// AccessTokenFunc adapts a function to AccessTokenProvider.
type AccessTokenFunc func(ctx context.Context) string

func (f AccessTokenFunc) AccessToken(ctx context.Context) string {
	return f(ctx)
}

// ComputeOptions control form computation on write.
type ComputeOptions struct {
	ComputeWithForm     bool
	IgnoreComputeErrors bool
}

// Options is the resolved set of optional call arguments.
type Options struct {
	// ItemNames restricts the items returned by reads. Nil means every item;
	// an empty non-nil slice requests no items.
	ItemNames []string

	// Start is the number of matching documents to skip.
	Start int

	// Count caps the number of documents returned (0 = store default).
	Count int

	AccessToken string

	Compute *ComputeOptions
}

// Option sets an optional call argument.
type Option func(*Options)

// ItemNames requests only the named items. An empty list requests none.
func ItemNames(names []string) Option {
	return func(o *Options) {
		o.ItemNames = append(make([]string, 0, len(names)), names...)
	}
}

// Start skips the first n matches.
func Start(n int) Option {
	return func(o *Options) { o.Start = n }
}

// Count caps the number of results.
func Count(n int) Option {
	return func(o *Options) { o.Count = n }
}

// AccessToken authenticates the call with token.
func AccessToken(token string) Option {
	return func(o *Options) { o.AccessToken = token }
}

// Compute sets form computation options.
func Compute(c ComputeOptions) Option {
	return func(o *Options) { o.Compute = &c }
}

// Apply resolves opts in order.
func Apply(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// ErrDocumentNotFound is returned when a document does not exist.
var ErrDocumentNotFound = errors.New("native: document not found")

// BulkOperationError reports per-document failures of a multi-document
// operation. Some stores also report a missing document this way.
type BulkOperationError struct {
	Op       string
	Failures map[string]error
}

func (e *BulkOperationError) Error() string {
	unids := make([]string, 0, len(e.Failures))
	for unid := range e.Failures {
		unids = append(unids, unid)
	}
	sort.Strings(unids)
	parts := make([]string, 0, len(unids))
	for _, unid := range unids {
		parts = append(parts, fmt.Sprintf("%s: %v", unid, e.Failures[unid]))
	}
	return fmt.Sprintf("native: bulk %s failed for %d document(s): %s", e.Op, len(unids), strings.Join(parts, "; "))
}

// IsBulkOperation reports whether err is or wraps a *BulkOperationError.
func IsBulkOperation(err error) bool {
	var bulk *BulkOperationError
	return errors.As(err, &bulk)
}
