package noodles

import (
	"encoding/json"
	"os"

	"github.com/noodles-go/noodles/pkg/noodleid"
	"github.com/noodles-go/noodles/pkg/scene"
	"github.com/noodles-go/noodles/pkg/session"
	"github.com/noodles-go/noodles/pkg/wire"
)

// sendSnapshot emits the full ordered Create sequence, the live tables'
// row data, a DocumentUpdate summarizing global methods/signals, and
// InitDone to a single newly Introduced session.
func (s *Server) sendSnapshot(sess *session.Session) {
	entries := s.registry.Snapshot()
	for _, entry := range entries {
		tag, payload, err := wire.CreateMessage(entry)
		if err != nil {
			s.log.Error("wire: snapshot entry skipped", "id", entry.ID.String(), "error", err)
			continue
		}
		s.sendFrame(sess.ID(), tag, payload)

		if entry.ID.Kind == noodleid.KindTable {
			if del, ok := s.tableDelegates[entry.ID]; ok {
				keys, rows := del.Snapshot()
				if len(keys) > 0 {
					s.sendFrame(sess.ID(), wire.TagTableUpdate, wire.TableUpdatePayload{
						ID:           wire.ToWire(entry.ID),
						KeysInserted: keys,
						RowsInserted: rowsToWire(rows),
					})
				}
			}
		}
	}

	s.sendFrame(sess.ID(), wire.TagDocumentUpdate, s.buildDocumentUpdate(entries))
	s.sendFrame(sess.ID(), wire.TagInitDone, wire.InitDonePayload{})
}

// buildDocumentUpdate derives the global methods/signals list: every live
// Method/Signal not already attached to some Entity/Plot/Table's
// methods_list/signals_list is, by elimination, invocable in the global
// context.
func (s *Server) buildDocumentUpdate(entries []scene.Entry) wire.DocumentUpdatePayload {
	attachedMethods := make(map[noodleid.ID]bool)
	attachedSignals := make(map[noodleid.ID]bool)
	for _, entry := range entries {
		switch v := entry.Payload.(type) {
		case scene.Entity:
			markAttached(attachedMethods, v.MethodsList)
			markAttached(attachedSignals, v.SignalsList)
		case scene.Plot:
			markAttached(attachedMethods, v.MethodsList)
			markAttached(attachedSignals, v.SignalsList)
		case scene.Table:
			markAttached(attachedMethods, v.MethodsList)
			markAttached(attachedSignals, v.SignalsList)
		}
	}

	var globalMethods, globalSignals []noodleid.ID
	for _, entry := range entries {
		switch entry.ID.Kind {
		case noodleid.KindMethod:
			if !attachedMethods[entry.ID] {
				globalMethods = append(globalMethods, entry.ID)
			}
		case noodleid.KindSignal:
			if !attachedSignals[entry.ID] {
				globalSignals = append(globalSignals, entry.ID)
			}
		}
	}

	return wire.DocumentUpdatePayload{
		MethodsList: idSliceToWire(globalMethods),
		SignalsList: idSliceToWire(globalSignals),
	}
}

func markAttached(set map[noodleid.ID]bool, ids []noodleid.ID) {
	for _, id := range ids {
		set[id] = true
	}
}

func idSliceToWire(ids []noodleid.ID) []wire.IDWire {
	if len(ids) == 0 {
		return nil
	}
	out := make([]wire.IDWire, len(ids))
	for i, id := range ids {
		out[i] = wire.ToWire(id)
	}
	return out
}

// dumpSnapshotJSON writes the current registry snapshot to path as JSON,
// a debug aid for inspecting startup state.
func (s *Server) dumpSnapshotJSON(path string) error {
	entries := s.registry.Snapshot()
	type dumpEntry struct {
		ID      string `json:"id"`
		Name    string `json:"name,omitempty"`
		Payload any    `json:"payload"`
	}
	dump := make([]dumpEntry, len(entries))
	for i, e := range entries {
		dump[i] = dumpEntry{ID: e.ID.String(), Name: e.Name, Payload: e.Payload}
	}

	b, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
