package client

// Options configures an Executor.
type Options struct {
	// Dialect renders statements and describes how generated keys come back.
	// Default: DuckDB
	Dialect *Dialect

	// DebugMode enables verbose error serialization with stack traces and
	// logs every rendered statement.
	// Default: false
	DebugMode bool

	// Logger is the logger implementation to use.
	// If nil, a logger is built from LogLevel and LogPretty.
	Logger Logger

	// LogLevel sets the minimum log level (DEBUG, INFO, WARN, ERROR).
	// Default: "INFO"
	LogLevel string

	// LogPretty selects human-readable console output instead of JSON.
	// Default: false
	LogPretty bool

	// StatementCacheSize is the maximum number of rendered INSERT statements
	// to keep. Zero or negative disables caching.
	// Default: 100
	StatementCacheSize int
}

// DefaultOptions returns Options with default values.
func DefaultOptions() Options {
	return Options{
		Dialect:            DuckDB(),
		DebugMode:          false,
		LogLevel:           "INFO",
		LogPretty:          false,
		StatementCacheSize: 100,
	}
}
