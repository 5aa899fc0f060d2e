package cache

import (
	"bytes"
	"fmt"
	"image/png"
	"path/filepath"
	"testing"
	"time"

	"git.unix.lgbt/diamondburned/tsplot"
)

func prepCache(t testing.TB) *Cache {
	t.Helper()

	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal("failed to open cache:", err)
	}

	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Error("failed to close cache:", err)
		}
	})

	return c
}

func TestKey(t *testing.T) {
	if Key("a", "bc") == Key("ab", "c") {
		t.Fatal("keys of different parts collide")
	}
	if Key("a", "b") != Key("a", "b") {
		t.Fatal("keys are not stable")
	}
	if k := Key(); len(k) != 64 {
		t.Fatalf("expected a 64 character key, got %q", k)
	}
}

func TestPutGet(t *testing.T) {
	c := prepCache(t)

	if _, ok, err := c.Get("missing"); err != nil || ok {
		t.Fatalf("expected a miss, got ok=%v err=%v", ok, err)
	}

	if err := c.Put("a", []byte("png a")); err != nil {
		t.Fatal("failed to put:", err)
	}

	b, ok, err := c.Get("a")
	if err != nil {
		t.Fatal("failed to get:", err)
	}
	if !ok || string(b) != "png a" {
		t.Fatalf("unexpected entry %q (found %v)", b, ok)
	}
}

func TestGC(t *testing.T) {
	c := prepCache(t)

	now := time.Now()

	if err := c.put("old", []byte("old"), now.Add(-48*time.Hour)); err != nil {
		t.Fatal("failed to put old:", err)
	}
	if err := c.put("new", []byte("new"), now); err != nil {
		t.Fatal("failed to put new:", err)
	}

	if err := c.GC(24 * time.Hour); err != nil {
		t.Fatal("failed to gc:", err)
	}

	if _, ok, _ := c.Get("old"); ok {
		t.Error("old entry survived GC")
	}
	if _, ok, _ := c.Get("new"); !ok {
		t.Error("new entry was removed")
	}
}

func TestRender(t *testing.T) {
	c := prepCache(t)

	tbl := tsplot.NewTable("A")
	for i := 0; i < 5; i++ {
		tbl.Append(fmt.Sprintf("2021-05-%02d", i+1), float64(i))
	}

	r := tsplot.NewRenderer(tsplot.DefaultConfig())
	req := tsplot.Request{Source: tbl, Columns: tsplot.Columns("A")}
	key := Key("A")

	first, err := c.Render(r, key, req)
	if err != nil {
		t.Fatal("failed to render:", err)
	}

	if _, err := png.Decode(bytes.NewReader(first)); err != nil {
		t.Fatal("cached chart is not a PNG:", err)
	}

	// A cached chart is served without touching the source.
	req.Source = nil

	second, err := c.Render(r, key, req)
	if err != nil {
		t.Fatal("failed to render from cache:", err)
	}

	if !bytes.Equal(first, second) {
		t.Fatal("cached chart differs")
	}
}
