package wire

import (
	"testing"

	"github.com/noodles-go/noodles/pkg/noodleid"
	"github.com/noodles-go/noodles/pkg/scene"
)

func TestCreateMessageEntityRoundTrip(t *testing.T) {
	id := noodleid.ID{Kind: noodleid.KindEntity, Slot: 3, Generation: 1}
	visible := true
	entry := scene.Entry{ID: id, Name: "cube", Payload: scene.Entity{Visible: &visible}}

	tag, payload, err := CreateMessage(entry)
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if tag != TagEntityCreate {
		t.Fatalf("tag = %v, want EntityCreate", tag)
	}

	frame, err := EncodeServerValues(int(tag), payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	msgs, err := DecodeServer(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var got EntityCreatePayload
	if err := msgs[0].Decode(&got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got.ID.FromWire() != id {
		t.Fatalf("id = %v, want %v", got.ID.FromWire(), id)
	}
	if got.Visible == nil || !*got.Visible {
		t.Fatal("expected visible=true to round-trip")
	}
}

func TestUpdateMessageRejectsNonUpdatableKind(t *testing.T) {
	entry := scene.Entry{ID: noodleid.ID{Kind: noodleid.KindBuffer}, Payload: scene.Buffer{Size: 1, InlineBytes: []byte{0}}}
	if _, _, err := UpdateMessage(entry); err == nil {
		t.Fatal("expected Buffer update to be rejected (no update message for this kind)")
	}
}

func TestUpdateMessageMaterial(t *testing.T) {
	id := noodleid.ID{Kind: noodleid.KindMaterial, Slot: 0}
	entry := scene.Entry{ID: id, Payload: scene.Material{BaseColor: [4]float32{1, 0, 0, 1}, Metallic: 0.5, Roughness: 0.2}}
	tag, _, err := UpdateMessage(entry)
	if err != nil {
		t.Fatalf("UpdateMessage: %v", err)
	}
	if tag != TagMaterialUpdate {
		t.Fatalf("tag = %v, want MaterialUpdate", tag)
	}
}

func TestUpdateMessageTableUsesTableUpdatePayload(t *testing.T) {
	id := noodleid.ID{Kind: noodleid.KindTable, Slot: 2}
	entry := scene.Entry{ID: id, Payload: scene.Table{Meta: "grid", Columns: []scene.TableColumnInfo{{Name: "x"}}}}

	tag, payload, err := UpdateMessage(entry)
	if err != nil {
		t.Fatalf("UpdateMessage: %v", err)
	}
	if tag != TagTableUpdate {
		t.Fatalf("tag = %v, want TableUpdate", tag)
	}
	tup, ok := payload.(TableUpdatePayload)
	if !ok {
		t.Fatalf("payload type = %T, want TableUpdatePayload", payload)
	}
	if tup.Meta != "grid" || len(tup.Columns) != 1 {
		t.Fatalf("payload = %+v, want meta=grid with 1 column", tup)
	}
	if len(tup.KeysInserted) != 0 {
		t.Fatalf("expected no row delta on a component-field update, got %+v", tup.KeysInserted)
	}
}

func TestDeleteTagForEveryKind(t *testing.T) {
	for _, kind := range noodleid.AllKinds() {
		if tag := DeleteTagFor(kind); tag < 0 {
			t.Fatalf("kind %v has no delete tag", kind)
		}
	}
}
