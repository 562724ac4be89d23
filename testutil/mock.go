package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
)

// MockDB is an in-process database/sql driver for testing code that takes a
// *sql.DB. It provides a fluent API for setting up expectations and
// verifying calls.
//
// Example usage:
//
//	mock := NewMockDB()
//	mock.ExpectQuery(`INSERT INTO "t" ("name") VALUES (?) RETURNING "id"`).
//	    WillReturnRows([]string{"id"}, []interface{}{int64(1)})
//
//	exec := client.NewExecutor(mock.DB(), nil)
//	result, err := exec.Insert(ctx, batch)
//	mock.VerifyExpectations(t)
type MockDB struct {
	expectations []*Expectation
	calls        []Call
	mu           sync.Mutex
	strict       bool // If true, unexpected calls will panic
	db           *sql.DB
}

// Expectation represents an expected statement and its response.
type Expectation struct {
	method      string // "Query" or "Exec"
	statement   string
	columns     []string
	rows        [][]interface{}
	rowErrAt    int
	rowErr      error
	lastID      int64
	affected    int64
	err         error
	times       int // Expected number of calls (-1 = any)
	actualCalls int
}

// Call represents a statement that was sent to the mock.
type Call struct {
	Method    string
	Statement string
	Args      []interface{}
}

// NewMockDB creates a new mock database.
func NewMockDB() *MockDB {
	m := &MockDB{
		expectations: make([]*Expectation, 0),
		calls:        make([]Call, 0),
	}
	m.db = sql.OpenDB(&mockConnector{mock: m})
	return m
}

// DB returns the *sql.DB backed by the mock.
func (m *MockDB) DB() *sql.DB {
	return m.db
}

// Close closes the underlying *sql.DB.
func (m *MockDB) Close() error {
	return m.db.Close()
}

// Strict enables strict mode where unexpected calls will panic.
func (m *MockDB) Strict() *MockDB {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strict = true
	return m
}

// ExpectQuery sets up an expectation for a QueryContext call.
// Returns the expectation for chaining WillReturnRows/WillReturnError.
func (m *MockDB) ExpectQuery(statement string) *Expectation {
	return m.expect("Query", statement)
}

// ExpectExec sets up an expectation for an ExecContext call.
func (m *MockDB) ExpectExec(statement string) *Expectation {
	return m.expect("Exec", statement)
}

func (m *MockDB) expect(method, statement string) *Expectation {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp := &Expectation{
		method:    method,
		statement: statement,
		rowErrAt:  -1,
		times:     1,
	}
	m.expectations = append(m.expectations, exp)
	return exp
}

// WillReturnRows sets the result set returned by a query.
func (e *Expectation) WillReturnRows(columns []string, rows ...[]interface{}) *Expectation {
	e.columns = columns
	e.rows = rows
	return e
}

// WillFailAtRow makes row iteration fail with err when reaching row index i.
func (e *Expectation) WillFailAtRow(i int, err error) *Expectation {
	e.rowErrAt = i
	e.rowErr = err
	return e
}

// WillReturnResult sets the sql.Result returned by an exec.
func (e *Expectation) WillReturnResult(lastInsertID, rowsAffected int64) *Expectation {
	e.lastID = lastInsertID
	e.affected = rowsAffected
	return e
}

// WillReturnError sets the error to return for this expectation.
func (e *Expectation) WillReturnError(err error) *Expectation {
	e.err = err
	return e
}

// Times sets the expected number of times this call should occur.
// Use -1 for "any number of times".
func (e *Expectation) Times(n int) *Expectation {
	e.times = n
	return e
}

// Once is a shorthand for Times(1).
func (e *Expectation) Once() *Expectation {
	return e.Times(1)
}

// AnyTimes allows this expectation to match any number of times.
func (e *Expectation) AnyTimes() *Expectation {
	return e.Times(-1)
}

// VerifyExpectations checks that all expectations were met.
// Should be called at the end of each test.
func (m *MockDB) VerifyExpectations(t *testing.T) {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, exp := range m.expectations {
		if exp.times != -1 && exp.actualCalls != exp.times {
			t.Errorf("expectation %d (%s %s): expected %d calls, got %d",
				i, exp.method, exp.statement, exp.times, exp.actualCalls)
		}
	}
}

// GetCalls returns all recorded calls.
func (m *MockDB) GetCalls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call{}, m.calls...)
}

// GetCallCount returns the number of times a method was called.
func (m *MockDB) GetCallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, call := range m.calls {
		if call.Method == method {
			count++
		}
	}
	return count
}

// Reset clears all expectations and recorded calls.
func (m *MockDB) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expectations = make([]*Expectation, 0)
	m.calls = make([]Call, 0)
}

// match records the call and returns the first expectation that still
// accepts calls for method and statement.
func (m *MockDB) match(method, statement string, args []driver.NamedValue) (*Expectation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	values := make([]interface{}, len(args))
	for i, a := range args {
		values[i] = a.Value
	}
	m.calls = append(m.calls, Call{Method: method, Statement: statement, Args: values})

	for _, exp := range m.expectations {
		if exp.method != method || exp.statement != statement {
			continue
		}
		if exp.times == -1 || exp.actualCalls < exp.times {
			exp.actualCalls++
			return exp, nil
		}
	}

	if m.strict {
		panic(fmt.Sprintf("unexpected %s call: %s", method, statement))
	}
	return nil, fmt.Errorf("no expectation set for %s: %s", method, statement)
}

// mockConnector hands out connections bound to one MockDB.
type mockConnector struct {
	mock *MockDB
}

func (c *mockConnector) Connect(context.Context) (driver.Conn, error) {
	return &mockConn{mock: c.mock}, nil
}

func (c *mockConnector) Driver() driver.Driver {
	return mockDriver{}
}

type mockDriver struct{}

func (mockDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("testutil: open MockDB through NewMockDB")
}

type mockConn struct {
	mock *MockDB
}

func (c *mockConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("testutil: prepared statements are not supported")
}

func (c *mockConn) Close() error {
	return nil
}

func (c *mockConn) Begin() (driver.Tx, error) {
	return mockTx{}, nil
}

// CheckNamedValue accepts every argument unchanged so tests see exactly
// what the caller bound.
func (c *mockConn) CheckNamedValue(*driver.NamedValue) error {
	return nil
}

func (c *mockConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	exp, err := c.mock.match("Exec", query, args)
	if err != nil {
		return nil, err
	}
	if exp.err != nil {
		return nil, exp.err
	}
	return mockResult{lastID: exp.lastID, affected: exp.affected}, nil
}

func (c *mockConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	exp, err := c.mock.match("Query", query, args)
	if err != nil {
		return nil, err
	}
	if exp.err != nil {
		return nil, exp.err
	}
	return &mockRows{columns: exp.columns, rows: exp.rows, errAt: exp.rowErrAt, err: exp.rowErr}, nil
}

type mockTx struct{}

func (mockTx) Commit() error   { return nil }
func (mockTx) Rollback() error { return nil }

type mockResult struct {
	lastID   int64
	affected int64
}

func (r mockResult) LastInsertId() (int64, error) { return r.lastID, nil }
func (r mockResult) RowsAffected() (int64, error) { return r.affected, nil }

type mockRows struct {
	columns []string
	rows    [][]interface{}
	pos     int
	errAt   int
	err     error
}

func (r *mockRows) Columns() []string {
	return r.columns
}

func (r *mockRows) Close() error {
	return nil
}

func (r *mockRows) Next(dest []driver.Value) error {
	if r.errAt >= 0 && r.pos == r.errAt {
		return r.err
	}
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	for i := range dest {
		if i < len(r.rows[r.pos]) {
			dest[i] = r.rows[r.pos][i]
		}
	}
	r.pos++
	return nil
}
