package client

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// DB is the subset of *sql.DB, *sql.Tx and *sql.Conn used by the executor.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// BatchResult is the outcome of one executed batch.
type BatchResult struct {
	// Inserted is the row count used for key reconciliation.
	Inserted int
	// Generated holds one entry per row, in row order.
	Generated []GeneratedValues
	// TraceID identifies the execution in logs and hooks.
	TraceID string
	// Statement is the SQL that was sent.
	Statement string
}

// Executor renders batches into multi-row INSERT statements, runs them and
// reconciles generated keys. It is safe for concurrent use; each batch
// passed to Insert must have a single owner.
type Executor struct {
	db        DB
	dialect   *Dialect
	logger    Logger
	debugMode atomic.Bool
	cache     *StatementCache

	hooks   []hookEntry
	hooksMu sync.RWMutex
}

// NewExecutor creates an executor for db. A nil opts uses DefaultOptions.
func NewExecutor(db DB, opts *Options) *Executor {
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}

	logger := opts.Logger
	if logger == nil {
		if opts.LogPretty {
			logger = NewConsoleLogger(opts.LogLevel, nil)
		} else {
			logger = NewLogger(opts.LogLevel, nil)
		}
	}

	e := &Executor{
		db:      db,
		dialect: opts.Dialect,
		logger:  logger.WithFields(String("component", "executor")),
		cache:   NewStatementCache(opts.StatementCacheSize),
	}
	e.debugMode.Store(opts.DebugMode)
	return e
}

// Dialect returns the executor's dialect.
func (e *Executor) Dialect() *Dialect {
	return e.dialect
}

// CacheStats returns statement cache statistics.
func (e *Executor) CacheStats() CacheStatsSnapshot {
	return e.cache.Stats()
}

// Statement renders the INSERT statement for batch and returns it with its
// bound values in placeholder order. It does not execute anything.
func (e *Executor) Statement(batch *BatchInsert) (string, []interface{}, error) {
	if e.dialect == nil {
		return "", nil, ErrNoDialect()
	}

	layout, err := e.dialect.newInsertLayout(batch)
	if err != nil {
		return "", nil, err
	}

	key := layout.signature(e.dialect.Name)
	stmt, ok := e.cache.Get(key)
	if !ok {
		stmt = e.dialect.renderInsert(layout)
		e.cache.Add(key, stmt)
	}
	return stmt, flattenParameters(batch), nil
}

// Insert executes batch as a single multi-row INSERT and maps generated
// keys and client-computed defaults back onto its rows.
//
// A batch without rows never reaches the database. Errors returned by the
// driver are passed through unchanged.
func (e *Executor) Insert(ctx context.Context, batch *BatchInsert) (*BatchResult, error) {
	if state := batch.State(); state != BUILDING {
		return nil, ErrInvalidBatchState("execute", state)
	}

	traceID := uuid.New().String()
	result := &BatchResult{TraceID: traceID}

	if batch.Len() == 0 {
		generated, err := batch.GeneratedKeys(NewKeyCursor(), 0)
		if err != nil {
			return nil, err
		}
		result.Generated = generated
		return result, nil
	}

	if e.dialect == nil {
		batch.fail()
		return nil, ErrNoDialect()
	}
	batch.SetMultipleGeneratedKeys(e.dialect.SupportsMultipleGeneratedKeys)

	stmt, params, err := e.Statement(batch)
	if err != nil {
		batch.fail()
		e.logger.Error("failed to render batch insert",
			String("table", batch.Table().Name),
			String("trace_id", traceID),
			String("error", FormatError(err, e.IsDebugMode())))
		return nil, err
	}
	result.Statement = stmt

	if err := batch.state.transitionTo(EXECUTING); err != nil {
		return nil, err
	}

	hookCtx := &HookContext{
		Statement: stmt,
		Table:     batch.Table().Name,
		Params:    params,
		Rows:      batch.Len(),
		StartTime: time.Now(),
		Metadata:  make(map[string]interface{}),
		TraceID:   traceID,
	}

	if err := e.executeBeforeHooks(ctx, hookCtx); err != nil {
		batch.fail()
		return nil, err
	}

	if e.IsDebugMode() {
		e.logger.Debug("executing batch insert",
			String("statement", hookCtx.Statement),
			Int("rows", hookCtx.Rows),
			Int("params", len(hookCtx.Params)),
			String("trace_id", traceID))
	}

	inserted, generated, execErr := e.execute(ctx, batch, hookCtx)
	if execErr != nil {
		batch.fail()
	}

	hookCtx.Duration = time.Since(hookCtx.StartTime)
	hookCtx.Inserted = inserted
	hookCtx.Result = generated
	hookCtx.Error = execErr

	if hookErr := e.executeAfterHooks(ctx, hookCtx); hookErr != nil {
		if execErr == nil {
			execErr = hookErr
		}
	}

	if execErr != nil {
		e.logger.Error("batch insert failed",
			String("table", hookCtx.Table),
			Int("rows", hookCtx.Rows),
			String("trace_id", traceID),
			Duration("duration", hookCtx.Duration),
			String("error", FormatError(execErr, e.IsDebugMode())))
		return nil, execErr
	}

	e.logger.Debug("batch insert completed",
		String("table", hookCtx.Table),
		Int("rows", hookCtx.Rows),
		Int("inserted", inserted),
		String("trace_id", traceID),
		Duration("duration", hookCtx.Duration))

	result.Inserted = inserted
	result.Generated = generated
	return result, nil
}

// execute sends the statement. With RETURNING the returned rows are the key
// cursor; otherwise the single key from LastInsertId is.
func (e *Executor) execute(ctx context.Context, batch *BatchInsert, hookCtx *HookContext) (int, []GeneratedValues, error) {
	autoInc := batch.Table().AutoIncrementColumn()

	if e.dialect.SupportsReturning && autoInc != nil {
		rows, err := e.db.QueryContext(ctx, hookCtx.Statement, hookCtx.Params...)
		if err != nil {
			return 0, nil, err
		}
		defer rows.Close()

		inserted := batch.Len()
		generated, err := batch.GeneratedKeys(rows, inserted)
		if err != nil {
			return 0, nil, err
		}
		return inserted, generated, nil
	}

	res, err := e.db.ExecContext(ctx, hookCtx.Statement, hookCtx.Params...)
	if err != nil {
		return 0, nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil, err
	}

	cursor := NewKeyCursor()
	if autoInc != nil && affected > 0 {
		lastID, err := res.LastInsertId()
		if err != nil {
			return 0, nil, err
		}
		cursor = NewKeyCursor(lastID)
	}

	generated, err := batch.GeneratedKeys(cursor, int(affected))
	if err != nil {
		return 0, nil, err
	}
	return int(affected), generated, nil
}
