// Package cache stores rendered chart PNGs in a bbolt database, keyed by a
// fingerprint of the request.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"image/png"
	"os"
	"time"

	"git.unix.lgbt/diamondburned/tsplot"
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

var bucketName = []byte("tsplot-charts-v1")

// entry is a cached chart.
type entry struct {
	Created int64  `cbor:"1,keyasint"`
	PNG     []byte `cbor:"2,keyasint"`
}

// Cache describes a wrapped database instance.
type Cache struct {
	db *bbolt.DB
}

// Open opens a cache database, creating it if needed. Caches must be closed once
// they're done.
func Open(path string) (*Cache, error) {
	b, err := bbolt.Open(path, os.ModePerm, &bbolt.Options{
		Timeout:      time.Minute,
		FreelistType: bbolt.FreelistArrayType,
	})
	if err != nil {
		return nil, errors.Wrap(err, "bbolt")
	}

	return &Cache{b}, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key returns the hex SHA-256 of the given parts.
func Key(parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached PNG of the given key.
func (c *Cache) Get(key string) ([]byte, bool, error) {
	var e entry
	var found bool

	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}

		v := b.Get([]byte(key))
		if v == nil {
			return nil
		}

		found = true
		return cbor.Unmarshal(v, &e)
	})
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to read cache")
	}

	return e.PNG, found, nil
}

// Put stores the PNG under the given key, stamped with the current time.
func (c *Cache) Put(key string, png []byte) error {
	return c.put(key, png, time.Now())
}

func (c *Cache) put(key string, png []byte, now time.Time) error {
	v, err := cbor.Marshal(entry{
		Created: now.Unix(),
		PNG:     png,
	})
	if err != nil {
		return errors.Wrap(err, "failed to marshal")
	}

	tx := func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return errors.Wrap(err, "failed to create bucket")
		}

		return b.Put([]byte(key), v)
	}

	if err = c.db.Update(tx); err != nil {
		return errors.Wrap(err, "failed to update db")
	}

	return nil
}

// GC removes all entries older than the given age.
func (c *Cache) GC(age time.Duration) error {
	before := time.Now().Add(-age).Unix()

	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}

		var keys [][]byte

		err := b.ForEach(func(k, v []byte) error {
			var e entry
			if err := cbor.Unmarshal(v, &e); err != nil || e.Created < before {
				keys = append(keys, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return errors.Wrap(err, "failed to delete")
			}
		}

		return nil
	})
}

// Render returns the cached PNG of the key, or renders the request and caches
// the encoded result.
func (c *Cache) Render(r *tsplot.Renderer, key string, req tsplot.Request) ([]byte, error) {
	b, ok, err := c.Get(key)
	if err != nil {
		return nil, err
	}
	if ok {
		return b, nil
	}

	img, err := r.Render(req)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(err, "failed to encode")
	}

	if err := c.Put(key, buf.Bytes()); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
