package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store with failure injection.
type memStore struct {
	header []string
	rows   [][]string

	headerErr    error
	rowsErr      error
	writeHdrErr  error
	writeErrs    map[string]error // by key column value
	appendErrs   map[string]error
	sortErr      error
	flushErr     error
	formatCalls  int
	sortCalls    int
	flushCalls   int
	headerWrites int
	style        HeaderStyle
}

func newMemStore(header []string, rows ...[]string) *memStore {
	return &memStore{header: header, rows: rows}
}

func (m *memStore) HeaderRow(ctx context.Context) (HeaderSet, error) {
	if m.headerErr != nil {
		return nil, m.headerErr
	}
	return HeaderSet(m.header).Clone(), nil
}

func (m *memStore) DataRows(ctx context.Context) ([]Row, error) {
	if m.rowsErr != nil {
		return nil, m.rowsErr
	}
	out := make([]Row, len(m.rows))
	for i, r := range m.rows {
		values := make([]string, len(r))
		copy(values, r)
		out[i] = Row{Position: i + 1, Values: values}
	}
	return out, nil
}

func (m *memStore) WriteHeaderRow(ctx context.Context, header HeaderSet) error {
	if m.writeHdrErr != nil {
		return m.writeHdrErr
	}
	m.headerWrites++
	m.header = header.Clone()
	return nil
}

func (m *memStore) WriteRow(ctx context.Context, position int, values []string) error {
	if err, ok := m.writeErrs[values[0]]; ok {
		return err
	}
	if position < 1 || position > len(m.rows) {
		return fmt.Errorf("position %d out of range", position)
	}
	m.rows[position-1] = values
	return nil
}

func (m *memStore) AppendRow(ctx context.Context, values []string) error {
	if err, ok := m.appendErrs[values[0]]; ok {
		return err
	}
	m.rows = append(m.rows, values)
	return nil
}

func (m *memStore) SortDataRows(ctx context.Context, keyColumn int, ascending bool) error {
	m.sortCalls++
	if m.sortErr != nil {
		return m.sortErr
	}
	rows := make([]Row, len(m.rows))
	for i, r := range m.rows {
		rows[i] = Row{Position: i + 1, Values: r}
	}
	SortRows(rows, keyColumn, ascending)
	for i, r := range rows {
		m.rows[i] = r.Values
	}
	return nil
}

func (m *memStore) FormatHeaderRow(ctx context.Context, width int, style HeaderStyle) error {
	m.formatCalls++
	m.style = style
	return nil
}

// value returns the cell under column name for the row with key in column 0.
func (m *memStore) value(key, column string) string {
	col := HeaderSet(m.header).Index(column)
	for _, r := range m.rows {
		if r[0] == key {
			return Row{Values: r}.Value(col)
		}
	}
	return "<missing>"
}

// flushStore adds Flusher and RowCounter to memStore.
type flushStore struct {
	*memStore
}

func (f *flushStore) Flush(ctx context.Context) error {
	f.flushCalls++
	return f.flushErr
}

func (f *flushStore) DataRowCount(ctx context.Context) (int, error) {
	return len(f.rows), nil
}

func rec(pairs ...string) Record {
	var r Record
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i], pairs[i+1])
	}
	return r
}

func TestSync_EmptyStoreInsert(t *testing.T) {
	store := newMemStore(nil)
	engine := NewEngine(store, Options{}, nil)

	report := engine.Sync(context.Background(), []Record{rec("ComputerName", "PC1", "CPU", "X")})

	require.NoError(t, report.Err())
	assert.True(t, report.Success)
	assert.Equal(t, SyncResult{Updated: 0, Added: 1, Total: 1}, report.SyncResult)
	assert.Equal(t, []string{"ComputerName", "CPU"}, store.header)
	assert.Equal(t, [][]string{{"PC1", "X"}}, store.rows)
	assert.Equal(t, 1, store.formatCalls, "header is formatted once on initialization")
}

func TestSync_UpdateInPlace(t *testing.T) {
	store := newMemStore([]string{"ComputerName", "CPU"}, []string{"PC1", "X"})
	engine := NewEngine(store, Options{}, nil)

	report := engine.Sync(context.Background(), []Record{rec("ComputerName", "PC1", "CPU", "Y")})

	require.NoError(t, report.Err())
	assert.Equal(t, SyncResult{Updated: 1, Added: 0, Total: 1}, report.SyncResult)
	assert.Equal(t, [][]string{{"PC1", "Y"}}, store.rows)
	assert.Equal(t, 0, store.formatCalls)
	assert.Equal(t, 0, store.headerWrites, "unchanged header is not rewritten")
}

func TestSync_DuplicateKeysInBatchLastWins(t *testing.T) {
	store := newMemStore(nil)
	engine := NewEngine(store, Options{}, nil)

	report := engine.Sync(context.Background(), []Record{
		rec("ComputerName", "PC1", "CPU", "first"),
		rec("ComputerName", "PC1", "CPU", "last"),
	})

	require.NoError(t, report.Err())
	assert.Equal(t, SyncResult{Updated: 0, Added: 1, Total: 1}, report.SyncResult)
	assert.Equal(t, [][]string{{"PC1", "last"}}, store.rows)
}

func TestSync_EmptyKeySkipped(t *testing.T) {
	store := newMemStore(nil)
	engine := NewEngine(store, Options{}, nil)

	report := engine.Sync(context.Background(), []Record{
		rec("ComputerName", "", "CPU", "X"),
		rec("ComputerName", "PC2", "CPU", "Y"),
	})

	require.NoError(t, report.Err())
	assert.True(t, report.Success)
	assert.Equal(t, SyncResult{Updated: 0, Added: 1, Total: 1}, report.SyncResult)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 0, report.Skipped[0].Index)
	assert.ErrorIs(t, report.Skipped[0].Err, ErrMissingKey)
}

func TestSync_Idempotent(t *testing.T) {
	store := newMemStore(nil)
	engine := NewEngine(store, Options{}, nil)
	batch := []Record{
		rec("ComputerName", "PC2", "CPU", "B"),
		rec("ComputerName", "PC1", "CPU", "A"),
	}

	first := engine.Sync(context.Background(), batch)
	require.NoError(t, first.Err())
	assert.Equal(t, 2, first.Added)

	second := engine.Sync(context.Background(), batch)
	require.NoError(t, second.Err())
	assert.Equal(t, 0, second.Added)
	assert.Equal(t, 2, second.Updated)
	assert.Equal(t, first.Total, second.Total)
	assert.Len(t, store.rows, 2)
}

func TestSync_SchemaGrowth(t *testing.T) {
	store := newMemStore([]string{"A", "B"}, []string{"k1", "b1"})
	engine := NewEngine(store, Options{KeyField: "A"}, nil)

	report := engine.Sync(context.Background(), []Record{rec("A", "k2", "B", "b2", "C", "c2")})

	require.NoError(t, report.Err())
	assert.Equal(t, HeaderSet{"A", "B", "C"}, report.Header)
	assert.Equal(t, []string{"A", "B", "C"}, store.header)
	assert.Equal(t, "", store.value("k1", "C"), "pre-existing rows read empty under the new column")
	assert.Equal(t, "c2", store.value("k2", "C"))
	assert.Equal(t, 0, store.formatCalls)
}

func TestSync_StoreOrderWinsOverBatchOrder(t *testing.T) {
	store := newMemStore([]string{"ComputerName", "CPU", "RAM"}, []string{"PC1", "X", "8"})
	engine := NewEngine(store, Options{}, nil)

	report := engine.Sync(context.Background(), []Record{
		rec("RAM", "16", "ComputerName", "PC1", "CPU", "Y"),
	})

	require.NoError(t, report.Err())
	assert.Equal(t, []string{"ComputerName", "CPU", "RAM"}, store.header)
	assert.Equal(t, [][]string{{"PC1", "Y", "16"}}, store.rows)
}

func TestSync_UpdateClearsStaleColumns(t *testing.T) {
	store := newMemStore([]string{"ComputerName", "CPU", "GPU"}, []string{"PC1", "X", "old-gpu"})
	engine := NewEngine(store, Options{}, nil)

	report := engine.Sync(context.Background(), []Record{rec("ComputerName", "PC1", "CPU", "Y")})

	require.NoError(t, report.Err())
	assert.Equal(t, [][]string{{"PC1", "Y", ""}}, store.rows)
}

func TestSync_SortPostcondition(t *testing.T) {
	store := newMemStore([]string{"ComputerName", "CPU"},
		[]string{"PC5", "x"},
		[]string{"PC3", "x"},
	)
	engine := NewEngine(store, Options{}, nil)

	report := engine.Sync(context.Background(), []Record{
		rec("ComputerName", "PC4", "CPU", "y"),
		rec("ComputerName", "PC1", "CPU", "y"),
		rec("ComputerName", "PC3", "CPU", "z"),
	})

	require.NoError(t, report.Err())
	assert.Equal(t, SyncResult{Updated: 1, Added: 2, Total: 4}, report.SyncResult)

	keys := make([]string, len(store.rows))
	for i, r := range store.rows {
		keys[i] = r[0]
	}
	assert.True(t, sort.StringsAreSorted(keys), "rows sorted by key: %v", keys)
	assert.Equal(t, []string{"PC1", "PC3", "PC4", "PC5"}, keys)
}

func TestSync_KeyUniqueness(t *testing.T) {
	store := newMemStore(nil)
	engine := NewEngine(store, Options{}, nil)

	batches := [][]Record{
		{rec("ComputerName", "A"), rec("ComputerName", "B"), rec("ComputerName", "A")},
		{rec("ComputerName", "B", "X", "1"), rec("ComputerName", "C")},
		{rec("ComputerName", "C"), rec("ComputerName", "A"), rec("ComputerName", "")},
	}
	for _, batch := range batches {
		require.NoError(t, engine.Sync(context.Background(), batch).Err())
	}

	seen := make(map[string]bool)
	for _, r := range store.rows {
		assert.False(t, seen[r[0]], "duplicate key %s", r[0])
		seen[r[0]] = true
	}
	assert.Len(t, store.rows, 3)
}

func TestSync_ProjectionCompleteness(t *testing.T) {
	store := newMemStore(nil)
	engine := NewEngine(store, Options{}, nil)

	batch := []Record{
		rec("ComputerName", "PC1", "CPU", "X", "RAM", "8"),
		rec("ComputerName", "PC2", "OS", "Linux"),
	}
	report := engine.Sync(context.Background(), batch)
	require.NoError(t, report.Err())

	for _, r := range batch {
		key := r.Value("ComputerName")
		for _, column := range store.header {
			assert.Equal(t, r.Value(column), store.value(key, column), "%s/%s", key, column)
		}
	}
}

func TestSync_EmptyBatch(t *testing.T) {
	store := newMemStore(nil)
	report := NewEngine(store, Options{}, nil).Sync(context.Background(), nil)

	assert.False(t, report.Success)
	assert.ErrorIs(t, report.Err(), ErrEmptyBatch)
	assert.NotEmpty(t, report.Message)
	assert.Equal(t, 0, store.headerWrites)
}

func TestSync_SchemaConflict(t *testing.T) {
	store := newMemStore([]string{"Hostname", "CPU"}, []string{"h1", "x"})
	engine := NewEngine(store, Options{}, nil)

	report := engine.Sync(context.Background(), []Record{rec("Hostname", "h2", "CPU", "y")})

	assert.False(t, report.Success)
	assert.ErrorIs(t, report.Err(), ErrSchemaConflict)
	assert.Equal(t, [][]string{{"h1", "x"}}, store.rows)
}

func TestSync_RowsWithoutHeaderIsConflict(t *testing.T) {
	store := newMemStore(nil, []string{"PC1", "x"})
	report := NewEngine(store, Options{}, nil).Sync(context.Background(), []Record{rec("ComputerName", "PC2")})

	assert.ErrorIs(t, report.Err(), ErrSchemaConflict)
}

func TestSync_StoreReadFailure(t *testing.T) {
	tests := []struct {
		name  string
		store *memStore
	}{
		{"Header", &memStore{headerErr: errors.New("header unavailable")}},
		{"Rows", &memStore{rowsErr: errors.New("rows unavailable")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := NewEngine(tt.store, Options{}, nil).Sync(context.Background(), []Record{rec("ComputerName", "PC1")})
			assert.False(t, report.Success)
			assert.ErrorIs(t, report.Err(), ErrStoreRead)
		})
	}
}

func TestSync_HeaderWriteFailureAborts(t *testing.T) {
	store := newMemStore(nil)
	store.writeHdrErr = errors.New("quota exceeded")

	report := NewEngine(store, Options{}, nil).Sync(context.Background(), []Record{rec("ComputerName", "PC1")})

	assert.False(t, report.Success)
	assert.ErrorIs(t, report.Err(), ErrStoreWrite)
	assert.Empty(t, store.rows)
}

func TestSync_RowWriteFailureContinues(t *testing.T) {
	store := newMemStore([]string{"ComputerName", "CPU"},
		[]string{"PC1", "x"},
		[]string{"PC2", "x"},
	)
	store.writeErrs = map[string]error{"PC1": errors.New("rate limited")}
	store.appendErrs = map[string]error{"PC3": errors.New("rate limited")}
	engine := NewEngine(store, Options{}, nil)

	report := engine.Sync(context.Background(), []Record{
		rec("ComputerName", "PC1", "CPU", "y"),
		rec("ComputerName", "PC2", "CPU", "y"),
		rec("ComputerName", "PC3", "CPU", "y"),
		rec("ComputerName", "PC4", "CPU", "y"),
	})

	require.NoError(t, report.Err())
	assert.True(t, report.Success)
	assert.Equal(t, SyncResult{Updated: 1, Added: 1, Total: 3}, report.SyncResult)
	require.Len(t, report.Failed, 2)
	for _, f := range report.Failed {
		assert.ErrorIs(t, f.Err, ErrStoreWrite)
	}
	assert.Equal(t, "x", store.value("PC1", "CPU"))
	assert.Equal(t, "y", store.value("PC2", "CPU"))
	assert.Equal(t, "<missing>", store.value("PC3", "CPU"))
	assert.Equal(t, "y", store.value("PC4", "CPU"))
}

func TestSync_CanceledContextWritesNothing(t *testing.T) {
	store := newMemStore([]string{"ComputerName", "CPU"}, []string{"PC1", "x"})
	engine := NewEngine(store, Options{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report := engine.Sync(ctx, []Record{
		rec("ComputerName", "PC1", "CPU", "y"),
		rec("ComputerName", "PC2", "CPU", "y"),
	})

	assert.Equal(t, 0, report.Updated)
	assert.Equal(t, 0, report.Added)
	require.Len(t, report.Failed, 2)
	for _, f := range report.Failed {
		assert.ErrorIs(t, f.Err, ErrStoreWrite)
	}
	assert.Equal(t, [][]string{{"PC1", "x"}}, store.rows)
}

func TestSync_SortFailureIsWarning(t *testing.T) {
	store := newMemStore(nil)
	store.sortErr = errors.New("sort unsupported")

	report := NewEngine(store, Options{}, nil).Sync(context.Background(), []Record{rec("ComputerName", "PC1")})

	require.NoError(t, report.Err())
	assert.True(t, report.Success)
	assert.Equal(t, 1, report.Added)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], ErrSort.Error())
}

func TestSync_DryRunDoesNotMutate(t *testing.T) {
	store := newMemStore([]string{"ComputerName", "CPU"}, []string{"PC1", "x"})
	engine := NewEngine(store, Options{DryRun: true}, nil)

	report := engine.Sync(context.Background(), []Record{
		rec("ComputerName", "PC1", "CPU", "y", "GPU", "g"),
		rec("ComputerName", "PC2", "CPU", "y"),
	})

	require.NoError(t, report.Err())
	assert.True(t, report.DryRun)
	assert.Equal(t, SyncResult{Updated: 1, Added: 1, Total: 2}, report.SyncResult)
	assert.Equal(t, HeaderSet{"ComputerName", "CPU", "GPU"}, report.Header)
	assert.Equal(t, []string{"ComputerName", "CPU"}, store.header)
	assert.Equal(t, [][]string{{"PC1", "x"}}, store.rows)
	assert.Equal(t, 0, store.sortCalls)
}

func TestSync_StrictSchemaRejectsUnknownFields(t *testing.T) {
	store := newMemStore([]string{"ComputerName", "CPU"}, []string{"PC1", "x"})
	engine := NewEngine(store, Options{SchemaPolicy: SchemaStrict}, nil)

	report := engine.Sync(context.Background(), []Record{
		rec("ComputerName", "PC1", "CPU", "y", "GPU", "g"),
		rec("ComputerName", "PC2", "CPU", "z"),
	})

	require.NoError(t, report.Err())
	assert.Equal(t, []string{"ComputerName", "CPU"}, store.header)
	assert.Equal(t, SyncResult{Updated: 0, Added: 1, Total: 2}, report.SyncResult)
	require.Len(t, report.Skipped, 1)
	assert.ErrorIs(t, report.Skipped[0].Err, ErrUnknownField)
}

func TestSync_FlushAndRowCounter(t *testing.T) {
	store := &flushStore{memStore: newMemStore(nil)}
	report := NewEngine(store, Options{}, nil).Sync(context.Background(), []Record{rec("ComputerName", "PC1")})

	require.NoError(t, report.Err())
	assert.Equal(t, 1, store.flushCalls)
	assert.Equal(t, 1, report.Total)
}

func TestSync_FlushFailureAborts(t *testing.T) {
	store := &flushStore{memStore: newMemStore(nil)}
	store.flushErr = errors.New("upload failed")

	report := NewEngine(store, Options{}, nil).Sync(context.Background(), []Record{rec("ComputerName", "PC1")})

	assert.False(t, report.Success)
	assert.ErrorIs(t, report.Err(), ErrStoreWrite)
	assert.Equal(t, SyncResult{}, report.SyncResult)
}

func TestNewEngine_Defaults(t *testing.T) {
	engine := NewEngine(newMemStore(nil), Options{}, nil)
	opts := engine.Options()

	assert.Equal(t, DefaultKeyField, opts.KeyField)
	assert.Equal(t, SchemaGrow, opts.SchemaPolicy)
	require.NotNil(t, opts.HeaderStyle)
	assert.Equal(t, DefaultHeaderStyle, *opts.HeaderStyle)
	assert.Nil(t, engine.pacer)
}

func TestSync_PlainHeaderStyleIsKept(t *testing.T) {
	store := newMemStore(nil)
	engine := NewEngine(store, Options{HeaderStyle: &HeaderStyle{Bold: false}}, nil)

	report := engine.Sync(context.Background(), []Record{rec("ComputerName", "PC1")})

	require.NoError(t, report.Err())
	assert.Equal(t, 1, store.formatCalls)
	assert.Equal(t, HeaderStyle{}, store.style)
	assert.False(t, engine.Options().HeaderStyle.Bold)
}
