package dispatch

import (
	"context"
	"testing"

	"github.com/noodles-go/noodles/pkg/broadcast"
	"github.com/noodles-go/noodles/pkg/delegate"
	"github.com/noodles-go/noodles/pkg/ncerr"
	"github.com/noodles-go/noodles/pkg/noodleid"
	"github.com/noodles-go/noodles/pkg/scene"
)

type fakeServer struct {
	signals []struct {
		id   noodleid.ID
		ctx  InvocationContext
		args []any
	}
}

func (f *fakeServer) CreateComponent(noodleid.Kind, string, any) (noodleid.ID, error) {
	return noodleid.Null, nil
}
func (f *fakeServer) UpdateComponent(noodleid.ID, any) error { return nil }
func (f *fakeServer) DeleteComponent(noodleid.ID) error      { return nil }
func (f *fakeServer) InvokeSignal(signal noodleid.ID, ctx InvocationContext, args []any) {
	f.signals = append(f.signals, struct {
		id   noodleid.ID
		ctx  InvocationContext
		args []any
	}{signal, ctx, args})
}
func (f *fakeServer) GetComponent(id noodleid.ID) (scene.Entry, bool) { return scene.Entry{}, false }
func (f *fakeServer) GetIDsByKind(noodleid.Kind) []noodleid.ID        { return nil }
func (f *fakeServer) GetComponentID(noodleid.Kind, string) (noodleid.ID, bool) {
	return noodleid.Null, false
}
func (f *fakeServer) GetDelegate(noodleid.ID) (delegate.TableDelegate, bool) { return nil, false }
func (f *fakeServer) Defer(fn func())                                        { fn() }

func TestInvokeUnknownMethodReturnsMethodNotFound(t *testing.T) {
	reg := scene.New()
	d := New(reg, nil, nil)

	bogus := noodleid.ID{Kind: noodleid.KindMethod, Slot: 5}
	_, err := d.Invoke(context.Background(), &fakeServer{}, "sess", bogus, InvocationContext{}, "inv-1", nil)
	if err == nil || err.Code != ncerr.CodeMethodNotFound {
		t.Fatalf("err = %v, want MethodNotFound", err)
	}
}

func TestInvokeValidatesArity(t *testing.T) {
	reg := scene.New()
	id, err := reg.Create(noodleid.KindMethod, "add", scene.Method{
		Name:   "add",
		ArgDoc: []scene.MethodArg{{Name: "a", EditorHint: "int"}, {Name: "b", EditorHint: "int"}},
	})
	if err != nil {
		t.Fatalf("create method: %v", err)
	}
	d := New(reg, nil, nil)
	d.Register(id, func(HandlerContext, []any) (any, error) { return nil, nil })

	_, mErr := d.Invoke(context.Background(), &fakeServer{}, "sess", id, InvocationContext{}, "inv-1", []any{1})
	if mErr == nil || mErr.Code != ncerr.CodeInvalidArgument {
		t.Fatalf("err = %v, want InvalidArgument for arity mismatch", mErr)
	}
}

func TestInvokeRunsHandlerAndReturnsResult(t *testing.T) {
	reg := scene.New()
	id, _ := reg.Create(noodleid.KindMethod, "double", scene.Method{
		Name:   "double",
		ArgDoc: []scene.MethodArg{{Name: "x", EditorHint: "int"}},
	})
	d := New(reg, nil, nil)
	d.Register(id, func(hctx HandlerContext, args []any) (any, error) {
		n := args[0].(int)
		return n * 2, nil
	})

	result, mErr := d.Invoke(context.Background(), &fakeServer{}, "sess", id, InvocationContext{}, "inv-7", []any{21})
	if mErr != nil {
		t.Fatalf("unexpected error: %v", mErr)
	}
	if result != 42 {
		t.Fatalf("result = %v, want 42", result)
	}
}

func TestInvokeTranslatesHandlerError(t *testing.T) {
	reg := scene.New()
	id, _ := reg.Create(noodleid.KindMethod, "fail", scene.Method{Name: "fail"})
	d := New(reg, nil, nil)
	d.Register(id, func(HandlerContext, []any) (any, error) {
		return nil, ncerr.InUse("resource busy")
	})

	_, mErr := d.Invoke(context.Background(), &fakeServer{}, "sess", id, InvocationContext{}, "inv-1", nil)
	if mErr == nil || mErr.Code != ncerr.CodeInUse {
		t.Fatalf("err = %v, want InUse", mErr)
	}
}

func TestInvokeRecoversFromHandlerPanic(t *testing.T) {
	reg := scene.New()
	id, _ := reg.Create(noodleid.KindMethod, "boom", scene.Method{Name: "boom"})
	d := New(reg, nil, nil)
	d.Register(id, func(HandlerContext, []any) (any, error) {
		panic("kaboom")
	})

	_, mErr := d.Invoke(context.Background(), &fakeServer{}, "sess", id, InvocationContext{}, "inv-1", nil)
	if mErr == nil || mErr.Code != ncerr.CodeInternalError {
		t.Fatalf("err = %v, want InternalError after panic recovery", mErr)
	}
}

func TestInvokeRejectsMethodNotAttachedToEntity(t *testing.T) {
	reg := scene.New()
	methodID, _ := reg.Create(noodleid.KindMethod, "m", scene.Method{Name: "m"})
	entityID, err := reg.Create(noodleid.KindEntity, "", scene.Entity{}) // no methods_list entry
	if err != nil {
		t.Fatalf("create entity: %v", err)
	}
	d := New(reg, nil, nil)
	d.Register(methodID, func(HandlerContext, []any) (any, error) { return nil, nil })

	_, mErr := d.Invoke(context.Background(), &fakeServer{}, "sess", methodID, InvocationContext{Entity: &entityID}, "inv-1", nil)
	if mErr == nil || mErr.Code != ncerr.CodeMethodNotFound {
		t.Fatalf("err = %v, want MethodNotFound for unattached method", mErr)
	}
}

func TestInvokeAllowsMethodAttachedToEntity(t *testing.T) {
	reg := scene.New()
	methodID, _ := reg.Create(noodleid.KindMethod, "m", scene.Method{Name: "m"})
	entityID, err := reg.Create(noodleid.KindEntity, "", scene.Entity{MethodsList: []noodleid.ID{methodID}})
	if err != nil {
		t.Fatalf("create entity: %v", err)
	}
	d := New(reg, nil, nil)
	d.Register(methodID, func(HandlerContext, []any) (any, error) { return "ok", nil })

	result, mErr := d.Invoke(context.Background(), &fakeServer{}, "sess", methodID, InvocationContext{Entity: &entityID}, "inv-1", nil)
	if mErr != nil {
		t.Fatalf("unexpected error: %v", mErr)
	}
	if result != "ok" {
		t.Fatalf("result = %v, want ok", result)
	}
}

func TestInvokeRejectsEntityMethodInGlobalContext(t *testing.T) {
	reg := scene.New()
	methodID, _ := reg.Create(noodleid.KindMethod, "m", scene.Method{Name: "m"})
	if _, err := reg.Create(noodleid.KindEntity, "", scene.Entity{MethodsList: []noodleid.ID{methodID}}); err != nil {
		t.Fatalf("create entity: %v", err)
	}
	d := New(reg, nil, nil)
	d.Register(methodID, func(HandlerContext, []any) (any, error) { return "ok", nil })

	_, mErr := d.Invoke(context.Background(), &fakeServer{}, "sess", methodID, InvocationContext{}, "inv-1", nil)
	if mErr == nil || mErr.Code != ncerr.CodeMethodNotFound {
		t.Fatalf("err = %v, want MethodNotFound for a method attached only to an entity", mErr)
	}
}

func TestInvokeAllowsUnattachedMethodInGlobalContext(t *testing.T) {
	reg := scene.New()
	methodID, _ := reg.Create(noodleid.KindMethod, "m", scene.Method{Name: "m"})
	d := New(reg, nil, nil)
	d.Register(methodID, func(HandlerContext, []any) (any, error) { return "ok", nil })

	result, mErr := d.Invoke(context.Background(), &fakeServer{}, "sess", methodID, InvocationContext{}, "inv-1", nil)
	if mErr != nil {
		t.Fatalf("unexpected error: %v", mErr)
	}
	if result != "ok" {
		t.Fatalf("result = %v, want ok", result)
	}
}

var _ broadcast.SessionID = "sess"
