package delegate

import (
	"context"
	"testing"
)

func TestDefaultTableDelegateInsertAssignsSequentialKeys(t *testing.T) {
	d := NewDefaultTableDelegate()
	keys, err := d.HandleInsert(context.Background(), []Row{{1, "a"}, {2, "b"}})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if len(keys) != 2 || keys[0] != int64(0) || keys[1] != int64(1) {
		t.Fatalf("keys = %v, want [0 1]", keys)
	}
}

func TestDefaultTableDelegateUpdateSkipsUnknownKeys(t *testing.T) {
	d := NewDefaultTableDelegate()
	keys, _ := d.HandleInsert(context.Background(), []Row{{1, "a"}})
	updated, err := d.HandleUpdate(context.Background(), []any{keys[0], "ghost"}, []Row{{9, "z"}, {0, "x"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated) != 1 || updated[0] != keys[0] {
		t.Fatalf("updated = %v, want [%v]", updated, keys[0])
	}
}

func TestDefaultTableDelegateRemoveAndSnapshot(t *testing.T) {
	d := NewDefaultTableDelegate()
	keys, _ := d.HandleInsert(context.Background(), []Row{{1}, {2}, {3}})

	removed, err := d.HandleRemove(context.Background(), []any{keys[1]})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(removed) != 1 || removed[0] != keys[1] {
		t.Fatalf("removed = %v, want [%v]", removed, keys[1])
	}

	gotKeys, gotRows := d.Snapshot()
	if len(gotKeys) != 2 {
		t.Fatalf("snapshot has %d rows, want 2", len(gotKeys))
	}
	if gotKeys[0] != keys[0] || gotKeys[1] != keys[2] {
		t.Fatalf("snapshot keys = %v, want [%v %v]", gotKeys, keys[0], keys[2])
	}
	if gotRows[0][0] != 1 || gotRows[1][0] != 3 {
		t.Fatalf("snapshot rows = %v", gotRows)
	}
}

func TestDefaultTableDelegateClearResetsState(t *testing.T) {
	d := NewDefaultTableDelegate()
	d.HandleInsert(context.Background(), []Row{{1}})
	if err := d.HandleClear(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	keys, rows := d.Snapshot()
	if len(keys) != 0 || len(rows) != 0 {
		t.Fatalf("expected empty table after clear, got keys=%v rows=%v", keys, rows)
	}
}

func TestDefaultTableDelegateUpdateSelection(t *testing.T) {
	d := NewDefaultTableDelegate()
	keys, _ := d.HandleInsert(context.Background(), []Row{{1}, {2}})
	if err := d.HandleUpdateSelection(context.Background(), "highlighted", keys); err != nil {
		t.Fatalf("update selection: %v", err)
	}
	if got := d.selections["highlighted"]; len(got) != 2 {
		t.Fatalf("selections[highlighted] = %v, want 2 entries", got)
	}
}
