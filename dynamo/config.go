package dynamo

import "log/slog"

// Config holds configuration for the Database.
type Config struct {
	// Table is the name of the document table. Its partition key is the
	// string attribute "unid".
	// Default: "protondoc_documents"
	Table string

	// ScanPageSize caps the items read per Scan page (0 = service default).
	ScanPageSize int32

	// Logger receives debug records for scans and writes.
	// Default: slog.Default()
	Logger *slog.Logger
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Table: "protondoc_documents",
	}
}

// validate fills unset values with their defaults.
func (c *Config) validate() {
	if c.Table == "" {
		c.Table = "protondoc_documents"
	}
	if c.ScanPageSize < 0 {
		c.ScanPageSize = 0
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
