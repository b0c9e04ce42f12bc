package storage

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
)

func TestFSStorePutGet(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key, err := s.Put("exports/results.xlsx", strings.NewReader("payload"))
	if err != nil {
		t.Fatal(err)
	}
	if key != "exports/results.xlsx" || !s.Exists(key) {
		t.Fatalf("key = %q exists=%v", key, s.Exists(key))
	}
	rc, err := s.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if string(b) != "payload" {
		t.Fatalf("read %q", b)
	}
}

func TestFSStoreOverwrite(t *testing.T) {
	s, _ := NewFSStore(t.TempDir())
	_, _ = s.Put("bank.txt", strings.NewReader("old"))
	_, _ = s.Put("bank.txt", strings.NewReader("new"))
	b, err := s.ReadAll("bank.txt")
	if err != nil || string(b) != "new" {
		t.Fatalf("ReadAll = %q, %v", b, err)
	}
}

func TestFSStoreRejectsEscapes(t *testing.T) {
	s, _ := NewFSStore(t.TempDir())
	for _, k := range []string{"", "../secret", "a/../../b"} {
		if _, err := s.Put(k, strings.NewReader("x")); !errors.Is(err, ErrBadKey) {
			t.Fatalf("Put(%q) err = %v", k, err)
		}
	}
	if s.Exists("../secret") {
		t.Fatal("escape reported as existing")
	}
}

func TestFSStoreAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewFSStore(filepath.Join(dir, "base"))
	abs := filepath.Join(dir, "roster.txt")
	other := filepath.Join(dir, "secret.txt")

	if _, err := s.Put(abs, strings.NewReader("S1, Ada")); !errors.Is(err, ErrBadKey) {
		t.Fatalf("unregistered absolute Put err = %v", err)
	}
	s.AllowAbsolute(abs, "relative.txt", "")
	if _, err := s.Put(abs, strings.NewReader("S1, Ada")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ReadAll(other); !errors.Is(err, ErrBadKey) {
		t.Fatalf("other absolute path err = %v", err)
	}
	if s.Exists(other) {
		t.Fatal("unregistered absolute path reported as existing")
	}
	b, err := s.ReadAll(abs)
	if err != nil || string(b) != "S1, Ada" {
		t.Fatalf("ReadAll = %q, %v", b, err)
	}
}
