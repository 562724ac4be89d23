package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dan-strohschein/syndrdb-batch/client"
	"github.com/dan-strohschein/syndrdb-batch/mapper"
	"github.com/dan-strohschein/syndrdb-batch/schema"
)

type loadFlags struct {
	create  bool
	ignore  bool
	dryRun  bool
	format  string
	timeout time.Duration
}

func newLoadCmd(flags *globalFlags) *cobra.Command {
	lf := &loadFlags{}

	cmd := &cobra.Command{
		Use:   "load <table> <rows-file>",
		Short: "Insert rows from a YAML or JSON file in one statement",
		Long: `Reads a list of rows from a YAML or JSON file, inserts them into a DuckDB
table with a single multi-row INSERT, and prints the values each row received
from the database or from client-side default generators.

Examples:
  syndrdb-batch load users rows.yaml --create
  syndrdb-batch load users rows.json --dsn data.duckdb --format table
  syndrdb-batch load users rows.yaml --dry-run`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, flags, lf, args[0], args[1])
		},
	}

	cmd.Flags().BoolVar(&lf.create, "create", false, "Create the table (and its sequence) if missing")
	cmd.Flags().BoolVar(&lf.ignore, "ignore", false, "Skip rows that conflict with existing keys")
	cmd.Flags().BoolVar(&lf.dryRun, "dry-run", false, "Print the statement and parameters without executing")
	cmd.Flags().StringVarP(&lf.format, "format", "f", "json", "Output format: json, table")
	cmd.Flags().DurationVar(&lf.timeout, "timeout", 30*time.Second, "Execution timeout")

	return cmd
}

func runLoad(cmd *cobra.Command, flags *globalFlags, lf *loadFlags, tableName, rowsPath string) error {
	if lf.format != "json" && lf.format != "table" {
		return fmt.Errorf("unsupported output format: %s", lf.format)
	}

	table, err := schema.LoadTable(flags.schemaPath, tableName, schema.NewGenerators())
	if err != nil {
		return err
	}

	rows, err := readRows(rowsPath, table)
	if err != nil {
		return err
	}

	batch, err := buildBatch(table, lf.ignore, rows)
	if err != nil {
		return err
	}

	opts := client.DefaultOptions()
	opts.DebugMode = flags.debug
	opts.Logger = flags.logger(cmd)

	out := cmd.OutOrStdout()

	if lf.dryRun {
		stmt, params, err := client.NewExecutor(nil, &opts).Statement(batch)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, stmt)
		return writeJSON(out, params)
	}

	db, err := sql.Open("duckdb", flags.dsn)
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", flags.dsn, err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), lf.timeout)
	defer cancel()

	if lf.create {
		for _, stmt := range opts.Dialect.CreateTable(table) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to create table %s: %w", table.Name, err)
			}
		}
	}

	exec := client.NewExecutor(db, &opts)
	result, err := exec.Insert(ctx, batch)
	if err != nil {
		return errors.New(client.FormatError(err, flags.debug))
	}

	generated := generatedRows(table, result.Generated)
	if lf.format == "table" {
		printGeneratedTable(out, table, generated)
		printSuccess(cmd.ErrOrStderr(), fmt.Sprintf("Inserted %d rows into %s", result.Inserted, colorCyan(table.Name)))
		return nil
	}
	return writeJSON(out, generated)
}

// readRows decodes a list of row documents and coerces each value to its
// column's declared type.
func readRows(path string, table *schema.Table) ([]map[string]interface{}, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rows file %s: %w", path, err)
	}

	var raw []map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse rows file %s: %w", path, err)
	}

	m := mapper.NewResponseMapper()
	rows := make([]map[string]interface{}, 0, len(raw))
	for i, r := range raw {
		row, err := m.CoerceRow(table, r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// buildBatch adds one batch row per input row, setting columns in table
// order so identical input shapes render identical statements.
func buildBatch(table *schema.Table, ignore bool, rows []map[string]interface{}) (*client.BatchInsert, error) {
	batch := client.NewBatchInsert(table, ignore)
	for _, row := range rows {
		if err := batch.AddBatch(); err != nil {
			return nil, err
		}
		for _, col := range table.Columns {
			v, ok := row[col.Name]
			if !ok {
				continue
			}
			if err := batch.Set(col, v); err != nil {
				return nil, err
			}
		}
	}
	return batch, nil
}

// generatedRows keys each row's generated values by column name.
func generatedRows(table *schema.Table, generated []client.GeneratedValues) []map[string]interface{} {
	out := make([]map[string]interface{}, len(generated))
	for i, values := range generated {
		row := make(map[string]interface{}, len(values))
		for _, col := range table.Columns {
			if v, ok := values[col]; ok {
				row[col.Name] = v
			}
		}
		out[i] = row
	}
	return out
}

func printGeneratedTable(w io.Writer, table *schema.Table, rows []map[string]interface{}) {
	headers := []string{"#"}
	var columns []*schema.Column
	for _, col := range table.Columns {
		for _, row := range rows {
			if _, ok := row[col.Name]; ok {
				headers = append(headers, col.Name)
				columns = append(columns, col)
				break
			}
		}
	}

	if len(columns) == 0 {
		printWarning(w, "No generated values")
		return
	}

	cells := make([][]string, len(rows))
	for i, row := range rows {
		line := []string{fmt.Sprintf("%d", i)}
		for _, col := range columns {
			if v, ok := row[col.Name]; ok {
				line = append(line, fmt.Sprintf("%v", v))
			} else {
				line = append(line, "")
			}
		}
		cells[i] = line
	}
	printTable(w, headers, cells)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
