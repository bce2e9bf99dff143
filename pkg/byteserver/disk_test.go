package byteserver_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/noodles-go/noodles/pkg/byteserver"
)

func TestDiskStore_PutThenGetReturnsExactBytes(t *testing.T) {
	dir := t.TempDir()
	store, err := byteserver.NewDiskStore(dir, "http://localhost:8081/buffers/")
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}

	want := []byte{0x01, 0x02, 0x03, 0xff}
	uri, err := store.Put(context.Background(), "mybuffer", want)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if uri != "http://localhost:8081/buffers/mybuffer" {
		t.Fatalf("uri = %q, want the baseURL+key", uri)
	}

	got, err := store.Get(context.Background(), "mybuffer")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("Get returned %v, want %v", got, want)
	}
}

func TestDiskStore_GetMissingKeyReturnsErrNotFound(t *testing.T) {
	dir := t.TempDir()
	store, err := byteserver.NewDiskStore(dir, "http://localhost:8081/buffers/")
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	if _, err := store.Get(context.Background(), "nope"); err != byteserver.ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDiskStore_ResolveRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := byteserver.NewDiskStore(dir, "http://localhost:8081/buffers/")
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	if _, err := store.Put(context.Background(), "../../etc/passwd", []byte("x")); err == nil {
		t.Fatal("expected a traversal key to be rejected")
	}
}

func TestDiskStore_DeleteThenGetMissesAgain(t *testing.T) {
	dir := t.TempDir()
	store, err := byteserver.NewDiskStore(dir, "http://localhost:8081/buffers/")
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	if _, err := store.Put(context.Background(), "k", []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Delete(context.Background(), "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(context.Background(), "k"); err != byteserver.ErrNotFound {
		t.Fatalf("err after delete = %v, want ErrNotFound", err)
	}
	// Deleting again is not an error.
	if err := store.Delete(context.Background(), "k"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestServer_GetBufferRoundTripsThroughHTTP(t *testing.T) {
	dir := t.TempDir()
	store, err := byteserver.NewDiskStore(dir, "http://localhost:8081/buffers/")
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	if _, err := store.Put(context.Background(), "hello", []byte("world")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	srv := byteserver.NewServer(byteserver.Config{}, store)
	req := httptest.NewRequest("GET", "/buffers/hello", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "world" {
		t.Fatalf("body = %q, want %q", rec.Body.String(), "world")
	}
}

func TestServer_GetBufferMissingKeyReturns404(t *testing.T) {
	dir := t.TempDir()
	store, err := byteserver.NewDiskStore(dir, "http://localhost:8081/buffers/")
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	srv := byteserver.NewServer(byteserver.Config{}, store)
	req := httptest.NewRequest("GET", "/buffers/nope", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != 404 {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
