package store

import (
	"path/filepath"
	"testing"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func TestPutGetRoundtrip(t *testing.T) {
	s := openTest(t)

	in := map[string]int{"a": 1, "b": 2}
	if err := s.Put(KeyCart, in); err != nil {
		t.Fatalf("put: %v", err)
	}

	var out map[string]int
	ok, err := s.Get(KeyCart, &out)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if out["a"] != 1 || out["b"] != 2 {
		t.Fatalf("roundtrip mismatch: %v", out)
	}
}

func TestGetMissingKey(t *testing.T) {
	s := openTest(t)

	var out string
	ok, err := s.Get(KeyToken, &out)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("missing key should report not found")
	}
}

func TestPutOverwrites(t *testing.T) {
	s := openTest(t)

	if err := s.Put(KeyLanguage, "en"); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(KeyLanguage, "ar"); err != nil {
		t.Fatal(err)
	}

	var lang string
	if ok, _ := s.Get(KeyLanguage, &lang); !ok || lang != "ar" {
		t.Fatalf("expected overwritten value, got %q", lang)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	s := openTest(t)

	if err := s.Put(KeyToken, "tok"); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(KeyLanguage, "en"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(KeyToken); err != nil {
		t.Fatal(err)
	}

	var tok string
	if ok, _ := s.Get(KeyToken, &tok); ok {
		t.Fatal("token should be gone")
	}
	var lang string
	if ok, _ := s.Get(KeyLanguage, &lang); !ok || lang != "en" {
		t.Fatal("language should be untouched")
	}
}
