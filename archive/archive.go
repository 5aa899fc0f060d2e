// Package archive stores time-keyed series rows in a badger database.
package archive

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"time"

	"git.unix.lgbt/diamondburned/tsplot/internal/badgerlog"
	"github.com/dgraph-io/badger/v3"
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

// Version is the type for the version of the archive row format.
type Version uint8

const (
	_ Version = iota
	Version1
)

// CurrentVersion is the version that rows will be written as.
const CurrentVersion = Version1

// this is never a valid CBOR map header
const versionBytePrefix = 0xFE

// rowsPrefix is the key prefix of all rows.
var rowsPrefix = []byte("tsplot-rows:")

// ErrUninitialized is returned when the archive has no rows to read.
var ErrUninitialized = errors.New("archive has no rows")

// Row describes the values of a single point in time.
type Row struct {
	Values map[string]float64 `cbor:"1,keyasint"`

	time uint32
}

// NewRow creates a new row at the given time. The time is truncated to the
// second.
func NewRow(t time.Time, values map[string]float64) Row {
	return Row{
		Values: values,
		time:   convertWithUnixZero(t),
	}
}

func (r Row) Time() time.Time { return time.Unix(r.UnixTime(), 0).UTC() }
func (r Row) UnixTime() int64 { return int64(r.time) }

// Keys returns the row's keys in sorted order.
func (r Row) Keys() []string {
	keys := make([]string, 0, len(r.Values))
	for k := range r.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Database describes a wrapped database instance.
type Database struct {
	db *badger.DB
	ro bool
}

// Open opens a database. Databases must be closed once they're done.
func Open(path string, write bool) (*Database, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(badgerlog.NewDefaultLogger()).
		WithReadOnly(!write).
		WithNumVersionsToKeep(1).
		WithCompactL0OnClose(write)

	b, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "badger")
	}

	return &Database{db: b, ro: !write}, nil
}

// Close closes the database.
func (db *Database) Close() error {
	return db.db.Close()
}

// allow doing 250 rows per transaction.
const putBatchSize = 250

// Put writes the given rows into the database. A row replaces any row stored at
// the same second.
func (db *Database) Put(rows ...Row) error {
	if db.ro {
		return errors.New("database not writable")
	}

	var buf bytes.Buffer

	for len(rows) > 0 {
		batch := rows
		if len(batch) > putBatchSize {
			batch = batch[:putBatchSize]
		}
		rows = rows[len(batch):]

		err := db.db.Update(func(tx *badger.Txn) error {
			for _, row := range batch {
				buf.Reset()

				if err := encodeRowBuf(row, &buf); err != nil {
					return err
				}

				// Copy the value since badger will be holding it.
				value := append([]byte(nil), buf.Bytes()...)

				if err := tx.Set(rowKey(row.time), value); err != nil {
					return errors.Wrap(err, "cannot set in badger")
				}
			}
			return nil
		})
		if err != nil {
			return errors.Wrap(err, "failed to update db")
		}
	}

	return nil
}

// GC deletes all rows older than the given age.
func (db *Database) GC(age time.Duration) error {
	if db.ro {
		return errors.New("database not writable")
	}

	now := convertWithUnixZero(time.Now())
	sec := uint32(age / time.Second)

	if sec > now {
		return nil
	}

	return db.gc(now - sec)
}

// gc deletes all rows strictly before the given unix time.
func (db *Database) gc(before uint32) error {
	var keys [][]byte

	err := db.db.View(func(tx *badger.Txn) error {
		it := tx.NewIterator(badger.IteratorOptions{
			Prefix:         rowsPrefix,
			PrefetchValues: false,
		})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			if rowTime(item.Key()) >= before {
				break
			}
			keys = append(keys, item.KeyCopy(nil))
		}

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to scan")
	}

	wb := db.db.NewWriteBatch()
	defer wb.Cancel()

	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return errors.Wrap(err, "failed to delete")
		}
	}

	if err := wb.Flush(); err != nil {
		return errors.Wrap(err, "failed to flush deletes")
	}

	return nil
}

// Iterator returns a new database iterator with second precision. The iterator
// must be closed after it's done.
func (db *Database) Iterator(opts IteratorOpts) (*Iterator, error) {
	return newIterator(db.db, opts)
}

func encodeRow(row Row) ([]byte, error) {
	var buf bytes.Buffer
	err := encodeRowBuf(row, &buf)
	return buf.Bytes(), err
}

func encodeRowBuf(row Row, buf *bytes.Buffer) error {
	buf.WriteByte(versionBytePrefix)
	buf.WriteByte(byte(CurrentVersion))

	if err := cbor.NewEncoder(buf).Encode(row); err != nil {
		return errors.Wrap(err, "failed to marshal")
	}

	return nil
}

func decodeRow(b []byte, dst *Row) error {
	if len(b) < 2 || b[0] != versionBytePrefix {
		return errors.New("missing version prefix")
	}

	switch version := Version(b[1]); version {
	case Version1:
		return cbor.Unmarshal(b[2:], dst)
	default:
		return fmt.Errorf("unknown version %d", version)
	}
}

func rowKey(unix uint32) []byte {
	k := make([]byte, len(rowsPrefix)+4)
	copy(k, rowsPrefix)
	binary.BigEndian.PutUint32(k[len(rowsPrefix):], unix)
	return k
}

func rowTime(key []byte) uint32 {
	return binary.BigEndian.Uint32(bytes.TrimPrefix(key, rowsPrefix))
}

// convertWithUnixZero converts a time.Time to Unix, or if time.Time is zero,
// then 0 is returned. Times outside the uint32 range are clamped.
func convertWithUnixZero(t time.Time) uint32 {
	if t.IsZero() {
		return 0
	}

	unix := t.Unix()
	switch {
	case unix < 0:
		return 0
	case unix > math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(unix)
	}
}
