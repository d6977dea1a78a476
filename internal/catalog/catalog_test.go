package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"storefront-client/internal/model"
)

func TestLoadMissingFileYieldsEmptyCatalog(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 0 {
		t.Fatalf("len = %d", c.Len())
	}
}

func TestLoadAndLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	raw := `[{"id":1,"name":"قهوة","name_en":"Coffee","price":"3.50"},{"id":2,"name_en":"Dates"}]`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 2 {
		t.Fatalf("len = %d", c.Len())
	}

	p, ok := c.Lookup(1)
	if !ok || p.NameEn != "Coffee" {
		t.Fatalf("lookup(1) = %+v, %v", p, ok)
	}
	if _, ok := c.Lookup(99); ok {
		t.Fatal("lookup of unknown id must miss")
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(`{"not":"an array"`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("malformed catalog must be an error")
	}
}

func TestFromProductsNil(t *testing.T) {
	c := FromProducts(nil)
	if c.Len() != 0 || c.All() != nil {
		t.Fatal("nil products should give an empty catalog")
	}
	if _, ok := c.Lookup(model.Product{}.ID); ok {
		t.Fatal("empty catalog must not match")
	}
}
