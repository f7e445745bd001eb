package storage

import (
	"io"
	"strings"
	"testing"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}

	key := "attachments/1/message/" + NewKey()
	if store.Has(key) {
		t.Fatal("Has() = true before Save")
	}

	if err := store.Save(key, strings.NewReader("payload")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !store.Has(key) {
		t.Error("Has() = false after Save")
	}

	rc, size, err := store.Open(key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	if size != int64(len("payload")) {
		t.Errorf("size = %d, want %d", size, len("payload"))
	}
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("content = %q, want %q", data, "payload")
	}

	if err := store.Delete(key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if store.Has(key) {
		t.Error("Has() = true after Delete")
	}
	// deleting again is a no-op
	if err := store.Delete(key); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestNewKeyOrdered(t *testing.T) {
	a := NewKey()
	b := NewKey()
	if a == b {
		t.Error("NewKey returned equal keys")
	}
	if len(a) != 26 {
		t.Errorf("key length = %d, want 26", len(a))
	}
}
