package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Message is one decoded server→client wire message: a tag plus its
// still-encoded payload, left as a cbor.RawMessage so a caller can decode
// into the concrete *Payload type selected by Tag. Unknown fields are
// ignored on decode, which cbor.Unmarshal already does for struct
// targets with no matching field.
type Message struct {
	Tag     ServerTag
	Payload cbor.RawMessage
}

// ClientMessage is the client→server counterpart of Message.
type ClientMessage struct {
	Tag     ClientTag
	Payload cbor.RawMessage
}

var encMode = func() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	mode, err := opts.EncMode()
	if err != nil {
		panic(err) // options are static and known-valid; a failure here is a programming error
	}
	return mode
}()

// EncodeServer packs an alternating sequence of (tag, payload) pairs into
// one wire frame; multiple logical messages may be packed into one frame.
func EncodeServer(msgs ...Message) ([]byte, error) {
	flat := make([]any, 0, len(msgs)*2)
	for _, m := range msgs {
		flat = append(flat, int(m.Tag), m.Payload)
	}
	return encMode.Marshal(flat)
}

// EncodeServerValues is like EncodeServer but accepts (tag, payload-value)
// pairs where payload is any Go value, not a pre-encoded RawMessage. This
// is the form pkg/noodles uses: it builds payload structs with
// wire.CreateMessage/wire.UpdateMessage/etc., hands them straight to the
// encoder, and passes the resulting frame to pkg/broadcast.
func EncodeServerValues(pairs ...any) ([]byte, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("wire: EncodeServerValues requires an even number of arguments")
	}
	return encMode.Marshal(pairs)
}

// EncodeClient packs a client→server frame; used by test clients and by
// pkg/session's inbound test doubles.
func EncodeClient(msgs ...ClientMessage) ([]byte, error) {
	flat := make([]any, 0, len(msgs)*2)
	for _, m := range msgs {
		flat = append(flat, int(m.Tag), m.Payload)
	}
	return encMode.Marshal(flat)
}

// DecodeServer splits a raw frame into its alternating (tag, payload)
// messages. An odd number of top-level elements, a non-integer tag, or an
// unrecognized tag value is a decode failure; any of these fails the
// session the frame arrived on.
func DecodeServer(frame []byte) ([]Message, error) {
	raw, err := decodeFlatArray(frame)
	if err != nil {
		return nil, err
	}
	out := make([]Message, 0, len(raw)/2)
	for i := 0; i < len(raw); i += 2 {
		var tagNum int64
		if err := cbor.Unmarshal(raw[i], &tagNum); err != nil {
			return nil, fmt.Errorf("wire: tag at offset %d is not an integer: %w", i, err)
		}
		tag := ServerTag(tagNum)
		if !tag.Valid() {
			return nil, fmt.Errorf("wire: unknown server tag %d", tagNum)
		}
		out = append(out, Message{Tag: tag, Payload: raw[i+1]})
	}
	return out, nil
}

// DecodeClient is DecodeServer's client→server counterpart.
func DecodeClient(frame []byte) ([]ClientMessage, error) {
	raw, err := decodeFlatArray(frame)
	if err != nil {
		return nil, err
	}
	out := make([]ClientMessage, 0, len(raw)/2)
	for i := 0; i < len(raw); i += 2 {
		var tagNum int64
		if err := cbor.Unmarshal(raw[i], &tagNum); err != nil {
			return nil, fmt.Errorf("wire: tag at offset %d is not an integer: %w", i, err)
		}
		tag := ClientTag(tagNum)
		if !tag.Valid() {
			return nil, fmt.Errorf("wire: unknown client tag %d", tagNum)
		}
		out = append(out, ClientMessage{Tag: tag, Payload: raw[i+1]})
	}
	return out, nil
}

func decodeFlatArray(frame []byte) ([]cbor.RawMessage, error) {
	var raw []cbor.RawMessage
	if err := cbor.Unmarshal(frame, &raw); err != nil {
		return nil, fmt.Errorf("wire: frame is not a CBOR array: %w", err)
	}
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("wire: frame has odd element count %d, want tag/payload pairs", len(raw))
	}
	return raw, nil
}

// Decode unmarshals a message's payload into dst (a pointer to one of the
// *Payload types in payloads.go).
func (m Message) Decode(dst any) error {
	return cbor.Unmarshal(m.Payload, dst)
}

// Decode unmarshals a client message's payload into dst.
func (m ClientMessage) Decode(dst any) error {
	return cbor.Unmarshal(m.Payload, dst)
}
