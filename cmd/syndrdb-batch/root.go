package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dan-strohschein/syndrdb-batch/client"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	dsn        string
	schemaPath string
	logLevel   string
	logPretty  bool
	debug      bool
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "syndrdb-batch",
		Short: "Batched multi-row inserts with generated-key reconciliation",
		Long: `Load rows into a table with one multi-row INSERT and print the values
each row received: auto-increment keys from the database and values computed
by client-side default generators.

Tables are described in a YAML (or JSON) schema file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.dsn, "dsn", envOr("SYNDRDB_BATCH_DSN", ":memory:"), "DuckDB database path (env SYNDRDB_BATCH_DSN)")
	pf.StringVarP(&flags.schemaPath, "schema", "s", envOr("SYNDRDB_BATCH_SCHEMA", "schema.yaml"), "Schema file (env SYNDRDB_BATCH_SCHEMA)")
	pf.StringVar(&flags.logLevel, "log-level", envOr("SYNDRDB_BATCH_LOG_LEVEL", "warn"), "Log level: debug, info, warn, error (env SYNDRDB_BATCH_LOG_LEVEL)")
	pf.BoolVar(&flags.logPretty, "log-pretty", true, "Human-readable log output")
	pf.BoolVar(&flags.debug, "debug", false, "Verbose errors and statement logging")

	rootCmd.AddCommand(newLoadCmd(flags))
	rootCmd.AddCommand(newDDLCmd(flags))
	rootCmd.AddCommand(newJSONSchemaCmd(flags))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func (f *globalFlags) logger(cmd *cobra.Command) client.Logger {
	if f.logPretty {
		return client.NewConsoleLogger(f.logLevel, cmd.ErrOrStderr())
	}
	return client.NewLogger(f.logLevel, cmd.ErrOrStderr())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("syndrdb-batch %s\n", client.Version)
		},
	}
}
