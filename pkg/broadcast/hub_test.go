package broadcast

import (
	"errors"
	"testing"
)

type fakeOutbound struct {
	received [][]byte
	failNext bool
}

func (f *fakeOutbound) Enqueue(frame []byte) error {
	if f.failNext {
		return errors.New("queue overflow")
	}
	f.received = append(f.received, frame)
	return nil
}

// orderRecorder appends its own ID to a shared log on every Enqueue, so a
// test can observe the order in which the hub delivered to sessions.
type orderRecorder struct {
	id  SessionID
	log *[]SessionID
}

func (o orderRecorder) Enqueue([]byte) error {
	*o.log = append(*o.log, o.id)
	return nil
}

func TestBroadcastDeliversInRegistrationOrder(t *testing.T) {
	h := New(nil)
	var order, delivered []SessionID
	for _, id := range []SessionID{"a", "b", "c"} {
		h.Register(id, orderRecorder{id: id, log: &delivered})
		order = append(order, id)
	}

	h.Broadcast([]byte("frame-1"))

	if len(delivered) != len(order) {
		t.Fatalf("delivered to %v, want %v", delivered, order)
	}
	for i := range order {
		if delivered[i] != order[i] {
			t.Fatalf("delivery[%d] = %v, want %v", i, delivered[i], order[i])
		}
	}
}

func TestBroadcastReachesEverySession(t *testing.T) {
	h := New(nil)
	a := &fakeOutbound{}
	b := &fakeOutbound{}
	h.Register("a", a)
	h.Register("b", b)

	h.Broadcast([]byte("hello"))

	if len(a.received) != 1 || string(a.received[0]) != "hello" {
		t.Fatalf("a.received = %v", a.received)
	}
	if len(b.received) != 1 || string(b.received[0]) != "hello" {
		t.Fatalf("b.received = %v", b.received)
	}
}

func TestBroadcastTearsDownFailingSession(t *testing.T) {
	var failedID SessionID
	var failedErr error
	h := New(func(id SessionID, err error) {
		failedID, failedErr = id, err
	})
	bad := &fakeOutbound{failNext: true}
	good := &fakeOutbound{}
	h.Register("bad", bad)
	h.Register("good", good)

	h.Broadcast([]byte("x"))

	if h.Len() != 1 {
		t.Fatalf("expected failing session to be unregistered, Len() = %d", h.Len())
	}
	if failedID != "bad" {
		t.Fatalf("onFailure called with id=%v, want bad", failedID)
	}
	if failedErr == nil {
		t.Fatal("expected onFailure to receive non-nil error")
	}
	if len(good.received) != 1 {
		t.Fatal("expected the good session to still receive the frame")
	}
}

func TestSendTargetsSingleSession(t *testing.T) {
	h := New(nil)
	a := &fakeOutbound{}
	b := &fakeOutbound{}
	h.Register("a", a)
	h.Register("b", b)

	ok := h.Send("a", []byte("reply"))
	if !ok {
		t.Fatal("expected Send to succeed for registered session")
	}
	if len(a.received) != 1 {
		t.Fatalf("a.received = %v, want one frame", a.received)
	}
	if len(b.received) != 0 {
		t.Fatal("expected Send not to reach session b")
	}
}

func TestSendUnknownSessionReturnsFalse(t *testing.T) {
	h := New(nil)
	if h.Send("ghost", []byte("x")) {
		t.Fatal("expected Send to an unregistered session to return false")
	}
}
