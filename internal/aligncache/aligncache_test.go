package aligncache

import (
	"path/filepath"
	"testing"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "aligncache"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCacheStoreLookup(t *testing.T) {
	c := openTestCache(t)
	key := Key([]byte("history"), []byte("replacements"), 0, 0)

	if _, found, err := c.Lookup(key); err != nil {
		t.Fatal(err)
	} else if found {
		t.Fatal("expected a miss before Store")
	}

	if err := c.Store(key, 5); err != nil {
		t.Fatal(err)
	}
	offset, found, err := c.Lookup(key)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("expected a hit after Store")
	}
	if offset != 5 {
		t.Fatalf("offset = %d, want 5", offset)
	}
}

func TestKeyDistinguishesParameters(t *testing.T) {
	k1 := Key([]byte("history"), []byte("replacements"), 0, 0)
	k2 := Key([]byte("history"), []byte("replacements"), 100, 1.5)
	if string(k1) == string(k2) {
		t.Fatal("keys with different search parameters must not collide")
	}
}
