package archive

import (
	"context"
	"testing"
)

func TestLocalFS_WriteAndRead(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := fs.Write(ctx, "runs/abc.json", []byte("hello")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := fs.Read(ctx, "runs/abc.json")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("Read() = %q, want %q", data, "hello")
	}
}

func TestLocalFS_Exists(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	ok, err := fs.Exists(ctx, "missing.json")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if ok {
		t.Error("Exists() = true for missing path")
	}

	fs.Write(ctx, "present.json", []byte("x"))
	ok, err = fs.Exists(ctx, "present.json")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !ok {
		t.Error("Exists() = false for written path")
	}
}

func TestLocalFS_ListMissingPrefix(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	paths, err := fs.List(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("List() = %v, want empty", paths)
	}
}

func TestLocalFS_Delete(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	fs.Write(ctx, "a.json", []byte("x"))
	if err := fs.Delete(ctx, "a.json"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if ok, _ := fs.Exists(ctx, "a.json"); ok {
		t.Error("path still exists after Delete()")
	}
}
