package datarecording

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/fatih/structs"
	"github.com/pkg/errors"
	"github.com/tebeka/atexit"
)

// clickHouseWriter records entries into a ClickHouse server. Each table uses
// the MergeTree engine, ordered by its indexed fields.
type clickHouseWriter struct {
	lock sync.Mutex
	conn driver.Conn
	ctx  context.Context

	tables     map[string]*table
	batchSize  int
	entryCount int
	closed     bool
}

// NewClickHouseRecorder connects to the ClickHouse server described by dsn,
// for example "clickhouse://localhost:9000/default".
func NewClickHouseRecorder(dsn string, batchSize int) (DataRecorder, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "invalid ClickHouse DSN")
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open ClickHouse connection")
	}

	ctx := context.Background()
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "cannot reach ClickHouse server")
	}

	if batchSize <= 0 {
		batchSize = 10000
	}

	w := &clickHouseWriter{
		conn:      conn,
		ctx:       ctx,
		tables:    make(map[string]*table),
		batchSize: batchSize,
	}

	atexit.Register(func() { w.Flush() })

	return w, nil
}

func clickHouseType(kind reflect.Kind) (string, bool) {
	switch kind {
	case reflect.Bool:
		return "Bool", true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "Int64", true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64:
		return "UInt64", true
	case reflect.Float32, reflect.Float64:
		return "Float64", true
	case reflect.String:
		return "String", true
	default:
		return "", false
	}
}

// clickHouseCreateTable builds the CREATE TABLE statement for a sample
// entry.
func clickHouseCreateTable(tableName string, sampleEntry any) (string, error) {
	fields := structs.Fields(sampleEntry)
	cols := make([]string, 0, len(fields))

	for _, f := range fields {
		chType, ok := clickHouseType(f.Kind())
		if !ok {
			return "", errors.Errorf("field %s has unsupported kind %s",
				f.Name(), f.Kind())
		}

		cols = append(cols, f.Name()+" "+chType)
	}

	if len(cols) == 0 {
		return "", errors.New("entry has no exported fields")
	}

	orderBy := "tuple()"
	if indexed := indexedFields(sampleEntry); len(indexed) > 0 {
		orderBy = "(" + strings.Join(indexed, ", ") + ")"
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s) ENGINE = MergeTree() ORDER BY %s",
		tableName, strings.Join(cols, ", "), orderBy), nil
}

// clickHouseValues converts the fields of an entry to the exact Go types the
// columns expect.
func clickHouseValues(entry any) []any {
	values := structs.Values(entry)

	for i, v := range values {
		rv := reflect.ValueOf(v)

		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
			reflect.Int64:
			values[i] = rv.Int()
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
			reflect.Uint64:
			values[i] = rv.Uint()
		case reflect.Float32, reflect.Float64:
			values[i] = rv.Float()
		case reflect.Bool:
			values[i] = rv.Bool()
		case reflect.String:
			values[i] = rv.String()
		}
	}

	return values
}

func (w *clickHouseWriter) CreateTable(tableName string, sampleEntry any) {
	w.lock.Lock()
	defer w.lock.Unlock()

	if _, exists := w.tables[tableName]; exists {
		panic(fmt.Sprintf("table %s already exists", tableName))
	}

	query, err := clickHouseCreateTable(tableName, sampleEntry)
	if err != nil {
		panic(errors.Wrapf(err, "cannot create table %s", tableName))
	}

	if err := w.conn.Exec(w.ctx, query); err != nil {
		panic(errors.Wrapf(err, "failed to execute %q", query))
	}

	w.tables[tableName] = &table{structType: reflect.TypeOf(sampleEntry)}
}

func (w *clickHouseWriter) InsertData(tableName string, entry any) {
	w.lock.Lock()

	t, exists := w.tables[tableName]
	if !exists {
		w.lock.Unlock()
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != t.structType {
		w.lock.Unlock()
		panic(fmt.Sprintf("table %s stores %s, got %T",
			tableName, t.structType, entry))
	}

	t.entries = append(t.entries, entry)
	w.entryCount++
	full := w.entryCount >= w.batchSize

	w.lock.Unlock()

	if full {
		w.Flush()
	}
}

func (w *clickHouseWriter) ListTables() []string {
	w.lock.Lock()
	defer w.lock.Unlock()

	tables := make([]string, 0, len(w.tables))
	for name := range w.tables {
		tables = append(tables, name)
	}

	return tables
}

func (w *clickHouseWriter) Flush() {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.entryCount == 0 || w.closed {
		return
	}

	for name, t := range w.tables {
		if len(t.entries) == 0 {
			continue
		}

		if err := w.sendBatch(name, t.entries); err != nil {
			panic(err)
		}

		t.entries = nil
	}

	w.entryCount = 0
}

func (w *clickHouseWriter) sendBatch(tableName string, entries []any) error {
	batch, err := w.conn.PrepareBatch(w.ctx, "INSERT INTO "+tableName)
	if err != nil {
		return errors.Wrapf(err, "cannot prepare batch for %s", tableName)
	}

	for _, entry := range entries {
		if err := batch.Append(clickHouseValues(entry)...); err != nil {
			return errors.Wrapf(err, "cannot append to %s", tableName)
		}
	}

	return errors.Wrapf(batch.Send(), "cannot send batch to %s", tableName)
}

func (w *clickHouseWriter) Close() error {
	w.Flush()

	w.lock.Lock()
	defer w.lock.Unlock()

	if w.closed {
		return nil
	}

	w.closed = true

	return w.conn.Close()
}
