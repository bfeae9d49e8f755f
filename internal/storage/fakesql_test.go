package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/matthieukhl/storefront/internal/database"
)

// fakeKVDriver is a database/sql driver that understands the three statements
// SQLKV issues and keeps the rows in memory.
type fakeKVDriver struct{}

type fakeKVTable struct {
	mu   sync.Mutex
	rows map[string]string
}

var (
	fakeKVRegisterOnce sync.Once
	fakeKVMu           sync.Mutex
	fakeKVTables       = map[string]*fakeKVTable{}
)

func (fakeKVDriver) Open(name string) (driver.Conn, error) {
	fakeKVMu.Lock()
	table := fakeKVTables[name]
	fakeKVMu.Unlock()
	if table == nil {
		return nil, fmt.Errorf("unknown fake db name: %s", name)
	}
	return &fakeKVConn{table: table}, nil
}

type fakeKVConn struct {
	table *fakeKVTable
}

func (c *fakeKVConn) Prepare(query string) (driver.Stmt, error) {
	return nil, fmt.Errorf("prepare not supported")
}
func (c *fakeKVConn) Close() error              { return nil }
func (c *fakeKVConn) Begin() (driver.Tx, error) { return nil, fmt.Errorf("tx not supported") }

func rowKey(args []driver.NamedValue) string {
	return fmt.Sprint(args[0].Value) + "\x00" + fmt.Sprint(args[1].Value)
}

func (c *fakeKVConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.table.mu.Lock()
	defer c.table.mu.Unlock()

	switch verb(query) {
	case "INSERT":
		c.table.rows[rowKey(args)] = fmt.Sprint(args[2].Value)
	case "DELETE":
		delete(c.table.rows, rowKey(args))
	default:
		return nil, fmt.Errorf("unexpected exec: %s", query)
	}
	return driver.RowsAffected(1), nil
}

func (c *fakeKVConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.table.mu.Lock()
	defer c.table.mu.Unlock()

	if verb(query) != "SELECT" {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	rows := &fakeKVRows{}
	if v, ok := c.table.rows[rowKey(args)]; ok {
		rows.values = []string{v}
	}
	return rows, nil
}

func verb(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

type fakeKVRows struct {
	values []string
	idx    int
}

func (r *fakeKVRows) Columns() []string { return []string{"v"} }
func (r *fakeKVRows) Close() error      { return nil }
func (r *fakeKVRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.values) {
		return io.EOF
	}
	dest[0] = r.values[r.idx]
	r.idx++
	return nil
}

func openFakeDB(t *testing.T) *database.DB {
	t.Helper()

	fakeKVRegisterOnce.Do(func() {
		sql.Register("storefront_fake_kv", fakeKVDriver{})
	})

	name := t.Name()
	fakeKVMu.Lock()
	fakeKVTables[name] = &fakeKVTable{rows: make(map[string]string)}
	fakeKVMu.Unlock()

	t.Cleanup(func() {
		fakeKVMu.Lock()
		delete(fakeKVTables, name)
		fakeKVMu.Unlock()
	})

	db, err := sql.Open("storefront_fake_kv", name)
	if err != nil {
		t.Fatalf("sql.Open() error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return database.Wrap(db)
}
