package noodles

import (
	"context"

	"github.com/noodles-go/noodles/pkg/delegate"
	"github.com/noodles-go/noodles/pkg/dispatch"
	"github.com/noodles-go/noodles/pkg/ncerr"
	"github.com/noodles-go/noodles/pkg/noodleid"
	"github.com/noodles-go/noodles/pkg/scene"
	"github.com/noodles-go/noodles/pkg/wire"
)

// attachTableMethods creates the five built-in row-mutation methods as
// fresh Method components attached to tableID, and registers handlers
// that dispatch straight through del. It returns the new method IDs so
// the caller can add them to the Table's methods_list.
func (s *Server) attachTableMethods(tableID noodleid.ID, del delegate.TableDelegate) ([]noodleid.ID, error) {
	specs := []struct {
		name    string
		argDoc  []scene.MethodArg
		handler dispatch.Handler
	}{
		{"tbl_insert", []scene.MethodArg{{Name: "rows", EditorHint: "any"}}, s.handleTblInsert(tableID, del)},
		{"tbl_update", []scene.MethodArg{{Name: "keys", EditorHint: "any"}, {Name: "rows", EditorHint: "any"}}, s.handleTblUpdate(tableID, del)},
		{"tbl_remove", []scene.MethodArg{{Name: "keys", EditorHint: "any"}}, s.handleTblRemove(tableID, del)},
		{"tbl_clear", nil, s.handleTblClear(tableID, del)},
		{"tbl_update_selection", []scene.MethodArg{{Name: "selection", EditorHint: "string"}, {Name: "keys", EditorHint: "any"}}, s.handleTblUpdateSelection(tableID, del)},
	}

	ids := make([]noodleid.ID, 0, len(specs))
	for _, sp := range specs {
		id, err := s.registry.Create(noodleid.KindMethod, sp.name, scene.Method{Name: sp.name, ArgDoc: sp.argDoc})
		if err != nil {
			return nil, err
		}
		s.dispatcher.Register(id, sp.handler)
		s.broadcastEntry(mustEntry(s.registry, id))
		ids = append(ids, id)
	}
	return ids, nil
}

func mustEntry(reg *scene.Registry, id noodleid.ID) scene.Entry {
	entry, _ := reg.Get(id)
	return entry
}

func decodeRows(raw any) ([]delegate.Row, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, ncerr.InvalidArgument("rows must be a list of row lists, got %T", raw)
	}
	rows := make([]delegate.Row, len(list))
	for i, r := range list {
		row, ok := r.([]any)
		if !ok {
			return nil, ncerr.InvalidArgument("row %d must be a list, got %T", i, r)
		}
		rows[i] = delegate.Row(row)
	}
	return rows, nil
}

func decodeKeys(raw any) ([]any, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, ncerr.InvalidArgument("keys must be a list, got %T", raw)
	}
	return list, nil
}

func rowsToWire(rows []delegate.Row) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = []any(r)
	}
	return out
}

func (s *Server) handleTblInsert(tableID noodleid.ID, del delegate.TableDelegate) dispatch.Handler {
	return func(hctx dispatch.HandlerContext, args []any) (any, error) {
		if len(args) != 1 {
			return nil, ncerr.InvalidArgument("tbl_insert expects 1 argument, got %d", len(args))
		}
		rows, err := decodeRows(args[0])
		if err != nil {
			return nil, err
		}
		keys, err := del.HandleInsert(context.Background(), rows)
		if err != nil {
			return nil, err
		}
		s.broadcastFrame(wire.TagTableUpdate, wire.TableUpdatePayload{
			ID:           wire.ToWire(tableID),
			KeysInserted: keys,
			RowsInserted: rowsToWire(rows),
		})
		return keys, nil
	}
}

func (s *Server) handleTblUpdate(tableID noodleid.ID, del delegate.TableDelegate) dispatch.Handler {
	return func(hctx dispatch.HandlerContext, args []any) (any, error) {
		if len(args) != 2 {
			return nil, ncerr.InvalidArgument("tbl_update expects 2 arguments, got %d", len(args))
		}
		keys, err := decodeKeys(args[0])
		if err != nil {
			return nil, err
		}
		rows, err := decodeRows(args[1])
		if err != nil {
			return nil, err
		}
		updated, err := del.HandleUpdate(context.Background(), keys, rows)
		if err != nil {
			return nil, err
		}
		updatedRows := make([]delegate.Row, 0, len(updated))
		for _, key := range updated {
			for i, candidate := range keys {
				if candidate == key && i < len(rows) {
					updatedRows = append(updatedRows, rows[i])
					break
				}
			}
		}
		s.broadcastFrame(wire.TagTableUpdate, wire.TableUpdatePayload{
			ID:          wire.ToWire(tableID),
			KeysUpdated: updated,
			RowsUpdated: rowsToWire(updatedRows),
		})
		return updated, nil
	}
}

func (s *Server) handleTblRemove(tableID noodleid.ID, del delegate.TableDelegate) dispatch.Handler {
	return func(hctx dispatch.HandlerContext, args []any) (any, error) {
		if len(args) != 1 {
			return nil, ncerr.InvalidArgument("tbl_remove expects 1 argument, got %d", len(args))
		}
		keys, err := decodeKeys(args[0])
		if err != nil {
			return nil, err
		}
		removed, err := del.HandleRemove(context.Background(), keys)
		if err != nil {
			return nil, err
		}
		s.broadcastFrame(wire.TagTableUpdate, wire.TableUpdatePayload{
			ID:          wire.ToWire(tableID),
			KeysRemoved: removed,
		})
		return removed, nil
	}
}

func (s *Server) handleTblClear(tableID noodleid.ID, del delegate.TableDelegate) dispatch.Handler {
	return func(hctx dispatch.HandlerContext, args []any) (any, error) {
		if err := del.HandleClear(context.Background()); err != nil {
			return nil, err
		}
		s.broadcastFrame(wire.TagTableUpdate, wire.TableUpdatePayload{
			ID:      wire.ToWire(tableID),
			Cleared: true,
		})
		return nil, nil
	}
}

func (s *Server) handleTblUpdateSelection(tableID noodleid.ID, del delegate.TableDelegate) dispatch.Handler {
	return func(hctx dispatch.HandlerContext, args []any) (any, error) {
		if len(args) != 2 {
			return nil, ncerr.InvalidArgument("tbl_update_selection expects 2 arguments, got %d", len(args))
		}
		selection, ok := args[0].(string)
		if !ok {
			return nil, ncerr.InvalidArgument("selection must be a string, got %T", args[0])
		}
		keys, err := decodeKeys(args[1])
		if err != nil {
			return nil, err
		}
		if err := del.HandleUpdateSelection(context.Background(), selection, keys); err != nil {
			return nil, err
		}
		s.broadcastFrame(wire.TagTableUpdate, wire.TableUpdatePayload{
			ID:            wire.ToWire(tableID),
			Selection:     selection,
			SelectionKeys: keys,
		})
		return nil, nil
	}
}
