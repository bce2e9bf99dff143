package wire

import (
	"testing"

	"github.com/noodles-go/noodles/pkg/noodleid"
)

func TestEncodeDecodeServerRoundTrip(t *testing.T) {
	frame, err := EncodeServerValues(
		int(TagMethodCreate), MethodCreatePayload{ID: ToWire(noodleid.ID{Kind: noodleid.KindMethod, Slot: 1}), Name: "ping"},
		int(TagInitDone), InitDonePayload{},
	)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	msgs, err := DecodeServer(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Tag != TagMethodCreate {
		t.Fatalf("tag[0] = %v, want MethodCreate", msgs[0].Tag)
	}
	var create MethodCreatePayload
	if err := msgs[0].Decode(&create); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if create.Name != "ping" {
		t.Fatalf("name = %q, want ping", create.Name)
	}
	if msgs[1].Tag != TagInitDone {
		t.Fatalf("tag[1] = %v, want InitDone", msgs[1].Tag)
	}
}

func TestDecodeServerRejectsUnknownTag(t *testing.T) {
	frame, err := EncodeServerValues(int(999), MethodCreatePayload{Name: "x"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeServer(frame); err == nil {
		t.Fatal("expected unknown tag to fail decode")
	}
}

func TestDecodeServerRejectsOddLengthFrame(t *testing.T) {
	frame, err := encMode.Marshal([]any{int(TagInitDone)})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeServer(frame); err == nil {
		t.Fatal("expected odd-length frame to fail decode")
	}
}

func TestDecodeServerIgnoresUnknownPayloadFields(t *testing.T) {
	type methodCreateWithExtra struct {
		ID        IDWire `cbor:"id"`
		Name      string `cbor:"name"`
		FutureKey string `cbor:"future_key"`
	}
	frame, err := EncodeServerValues(int(TagMethodCreate), methodCreateWithExtra{Name: "ping", FutureKey: "ignored"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	msgs, err := DecodeServer(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var create MethodCreatePayload
	if err := msgs[0].Decode(&create); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if create.Name != "ping" {
		t.Fatalf("name = %q, want ping", create.Name)
	}
}

func TestEncodeClientDecodeClientRoundTrip(t *testing.T) {
	frame, err := EncodeClient(ClientMessage{
		Tag:     TagIntroMessage,
		Payload: mustMarshal(t, IntroMessagePayload{ClientName: "alice"}),
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	msgs, err := DecodeClient(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Tag != TagIntroMessage {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
	var intro IntroMessagePayload
	if err := msgs[0].Decode(&intro); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if intro.ClientName != "alice" {
		t.Fatalf("client_name = %q, want alice", intro.ClientName)
	}
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	b, err := encMode.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}
