// Package delegate implements the NOODLES delegate layer: the per-kind
// behavior record attached to a component instance. Every kind has a
// passive default; Table additionally exposes a capability interface for
// row-level mutation that user code can override at server construction.
package delegate

import (
	"context"
	"sync"

	"github.com/noodles-go/noodles/pkg/ncerr"
)

// Row is one table row: column values in column-declaration order. Row
// values are the same any-typed scalars InvokeMethod arguments use.
type Row []any

// TableDelegate is the capability set a Table component's row storage is
// dispatched through. All methods run on the server event loop; a
// delegate that blocks blocks the whole server, same as any other
// handler.
type TableDelegate interface {
	// HandleInsert appends rows and returns the primary key assigned to
	// each, in the same order as rows.
	HandleInsert(ctx context.Context, rows []Row) (keys []any, err error)

	// HandleUpdate mutates the row at each key with the corresponding
	// entry in rows and returns the keys actually updated (a key with no
	// matching row is omitted, not an error).
	HandleUpdate(ctx context.Context, keys []any, rows []Row) (updated []any, err error)

	// HandleRemove deletes the rows named by keys and returns the keys
	// actually removed.
	HandleRemove(ctx context.Context, keys []any) (removed []any, err error)

	// HandleClear deletes every row.
	HandleClear(ctx context.Context) error

	// HandleUpdateSelection replaces the named selection's row-key set.
	HandleUpdateSelection(ctx context.Context, selection string, rowKeys []any) error

	// Snapshot returns every live row keyed by primary key, for building
	// the TableUpdate a newly Introduced client needs to reconstruct
	// table contents.
	Snapshot() (keys []any, rows []Row)
}

// DefaultTableDelegate is the passive, in-memory TableDelegate every
// Table component gets unless a factory overrides it. Most kinds get a
// passive holder; Table's passive default still needs real row storage
// since it is the one kind with mutation methods.
type DefaultTableDelegate struct {
	mu         sync.Mutex
	nextKey    int64
	rows       map[any]Row
	order      []any // insertion order, for deterministic Snapshot
	selections map[string][]any
}

// NewDefaultTableDelegate constructs an empty delegate with integer
// auto-incrementing keys starting at 0.
func NewDefaultTableDelegate() *DefaultTableDelegate {
	return &DefaultTableDelegate{
		rows:       make(map[any]Row),
		selections: make(map[string][]any),
	}
}

func (d *DefaultTableDelegate) HandleInsert(_ context.Context, rows []Row) ([]any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	keys := make([]any, len(rows))
	for i, row := range rows {
		key := d.nextKey
		d.nextKey++
		d.rows[key] = row
		d.order = append(d.order, key)
		keys[i] = key
	}
	return keys, nil
}

func (d *DefaultTableDelegate) HandleUpdate(_ context.Context, keys []any, rows []Row) ([]any, error) {
	if len(keys) != len(rows) {
		return nil, ncerr.InvalidArgument("table update: %d keys but %d rows", len(keys), len(rows))
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var updated []any
	for i, key := range keys {
		if _, ok := d.rows[key]; !ok {
			continue
		}
		d.rows[key] = rows[i]
		updated = append(updated, key)
	}
	return updated, nil
}

func (d *DefaultTableDelegate) HandleRemove(_ context.Context, keys []any) ([]any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var removed []any
	for _, key := range keys {
		if _, ok := d.rows[key]; !ok {
			continue
		}
		delete(d.rows, key)
		for i, k := range d.order {
			if k == key {
				d.order = append(d.order[:i], d.order[i+1:]...)
				break
			}
		}
		removed = append(removed, key)
	}
	return removed, nil
}

func (d *DefaultTableDelegate) HandleClear(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.rows = make(map[any]Row)
	d.order = nil
	d.selections = make(map[string][]any)
	return nil
}

func (d *DefaultTableDelegate) HandleUpdateSelection(_ context.Context, selection string, rowKeys []any) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.selections[selection] = append([]any(nil), rowKeys...)
	return nil
}

func (d *DefaultTableDelegate) Snapshot() ([]any, []Row) {
	d.mu.Lock()
	defer d.mu.Unlock()

	keys := make([]any, len(d.order))
	rows := make([]Row, len(d.order))
	for i, key := range d.order {
		keys[i] = key
		rows[i] = d.rows[key]
	}
	return keys, rows
}
