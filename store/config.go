package store

import (
	"context"
	"log/slog"
	"math"

	"github.com/jacentio/protondoc/native"
)

// Unbounded is the count sent to the store when a query has no limit.
const Unbounded = math.MaxInt32

// Config holds configuration for the Store.
type Config struct {
	// CollectionField is the text item recording an entity's collection name.
	// It is written on every insert and update and used to count and scan
	// a collection.
	// Default: "EntityName"
	CollectionField string

	// UnboundedCount is the count sent when a query asks for no limit.
	// Default: Unbounded
	UnboundedCount int

	// AccessTokens supplies the token attached to every native call.
	// Default: no token.
	AccessTokens native.AccessTokenProvider

	// Coercions run over every field value before it is mapped to an item.
	// Default: NewCoercions(DefaultRules()...)
	Coercions *Coercions

	// Logger receives debug records for translated statements.
	// Default: slog.Default()
	Logger *slog.Logger
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		CollectionField: FieldName,
		UnboundedCount:  Unbounded,
		Coercions:       NewCoercions(DefaultRules()...),
	}
}

// validate fills unset values with their defaults.
func (c *Config) validate() {
	if c.CollectionField == "" {
		c.CollectionField = FieldName
	}
	if c.UnboundedCount < 1 {
		c.UnboundedCount = Unbounded
	}
	if c.AccessTokens == nil {
		c.AccessTokens = native.AccessTokenFunc(func(ctx context.Context) string { return "" })
	}
	if c.Coercions == nil {
		c.Coercions = NewCoercions(DefaultRules()...)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
