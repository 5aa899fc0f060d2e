package archive

import (
	"bytes"
	"log"
	"math"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
)

// IteratorOpts is the options for reading. It describes the range of rows to
// read.
type IteratorOpts struct {
	// From is the time to start reading the rows backwards. The default
	// zero-value means to read from the latest row.
	From time.Time
	// To is the time to stop reading the rows backwards. By default, the
	// zero-value is used, which would read all rows. The To time must ALWAYS
	// be before From.
	To time.Time
}

// Iterator is a backwards row iterator.
type Iterator struct {
	tx *badger.Txn
	it *badger.Iterator

	// current state
	item  *badger.Item
	error error

	// constants
	begin []byte
	to    uint32
	from  uint32
}

// newIterator creates a new iterator. See (*Database).Iterator.
func newIterator(db *badger.DB, opts IteratorOpts) (*Iterator, error) {
	if !opts.To.IsZero() && !opts.From.IsZero() {
		if !opts.From.After(opts.To) {
			return nil, errors.New("opts.From should be after opts.To")
		}
	}

	i := Iterator{
		to:   convertWithUnixZero(opts.To),
		from: convertWithUnixZero(opts.From),
	}

	// If from is 0, then we start at the end of time.
	if i.from == 0 {
		i.begin = rowKey(math.MaxUint32)
	} else {
		i.begin = rowKey(i.from)
	}

	i.tx = db.NewTransaction(false)
	i.it = i.tx.NewIterator(badger.IteratorOptions{
		Prefix:         rowsPrefix,
		PrefetchValues: true,
		PrefetchSize:   100,
		Reverse:        true, // from is later than to
	})

	i.Rewind()

	return &i, nil
}

// Close closes the iterator.
func (i *Iterator) Close() error {
	i.it.Close()
	i.tx.Discard()
	return nil
}

// Err returns the error that stopped the iterator, if any.
func (i *Iterator) Err() error {
	return i.error
}

func (i *Iterator) setItem() {
	if i.it.Valid() {
		i.item = i.it.Item()
	} else {
		i.item = nil
	}
}

func (i *Iterator) itemTime() uint32 {
	return rowTime(i.item.Key())
}

// isValid returns true if the iterator is still within range.
func (i *Iterator) isValid() bool {
	if i.item == nil {
		return false
	}

	return i.to == 0 || i.to <= i.itemTime()
}

// Prev reads the previous row into the given pointer or the last row if the
// iterator has never been used before. If row is nil, then the iterator is
// still moved, but no unmarshaling is done.
//
// False is returned if nothing is read, otherwise true is.
func (i *Iterator) Prev(row *Row) bool {
	if !i.isValid() {
		i.item = nil
		return false
	}

	if row != nil {
		if !i.readRow(row) {
			i.item = nil
			return false
		}
	}

	// Seek for the next call.
	i.it.Next()
	i.setItem()

	return true
}

func (i *Iterator) readRow(row *Row) bool {
	// Unmarshal fail is a fatal error, so we invalidate everything.
	if err := i.item.Value(func(v []byte) error {
		return decodeRow(v, row)
	}); err != nil {
		i.error = errors.Wrapf(err, "row at %d", i.itemTime())
		log.Println("readRow failed:", i.error)
		return false
	}

	row.time = i.itemTime()

	return true
}

// Remaining returns the number of remaining rows to read until either the
// database has nothing left or the requested range has been reached. The cursor
// position stays the same by the time this function returns.
func (i *Iterator) Remaining() int {
	if i.item == nil {
		return 0
	}

	// The iterator reuses the key buffer, so copy it.
	current := i.item.KeyCopy(nil)

	var total int
	for i.Prev(nil) {
		total++
	}

	// Seek back to where we were.
	i.it.Rewind()
	i.it.Seek(current)
	i.setItem()

	if i.item == nil || !bytes.Equal(i.item.Key(), current) {
		log.Panicln("Remaining: cannot seek back to last known key", rowTime(current))
	}

	return total
}

// ReadRemaining reads the rest of the rows in chronological order.
func (i *Iterator) ReadRemaining() []Row {
	total := i.Remaining()
	rows := make([]Row, total)

	for total > 0 && i.Prev(&rows[total-1]) {
		total--
	}

	// A failed read leaves the oldest slots empty.
	return rows[total:]
}

// Rewind resets the cursor back to the initial position.
func (i *Iterator) Rewind() {
	i.it.Rewind()
	i.it.Seek(i.begin)
	i.setItem()
}

// ReadAll is similar to ReadRemaining, except the cursor is rewound to the
// requested position "from" and read again.
func (i *Iterator) ReadAll() []Row {
	i.Rewind()
	return i.ReadRemaining()
}
