// internal/transport/replay/store.go
package replay

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/tamzrod/c12tables/internal/logging"
)

// ErrNoImage is returned when a capture holds no image for a table.
var ErrNoImage = errors.New("replay: no image")

// Store keeps table images under "<capture>/<table id>" keys.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a store at path.
func Open(path string, log logging.Logger) (*Store, error) {
	return open(badger.DefaultOptions(path), log)
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory(log logging.Logger) (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), log)
}

func open(opts badger.Options, log logging.Logger) (*Store, error) {
	db, err := badger.Open(opts.WithLogger(badgerLogger{logging.OrNop(log)}))
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// NewCaptureID returns a fresh capture name.
func NewCaptureID() string { return uuid.NewString() }

func imageKey(capture string, id uint16) []byte {
	return []byte(capture + "/" + strconv.Itoa(int(id)))
}

// Get returns a copy of the stored image.
func (s *Store) Get(capture string, id uint16) (img []byte, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(imageKey(capture, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: capture %q table %d", ErrNoImage, capture, id)
		}
		if err != nil {
			return err
		}
		img, err = item.ValueCopy(nil)
		return err
	})
	return
}

func (s *Store) Put(capture string, id uint16, img []byte) error {
	if capture == "" || strings.Contains(capture, "/") {
		return fmt.Errorf("replay: invalid capture name %q", capture)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(imageKey(capture, id), img)
	})
}

// Tables lists the table ids recorded in a capture, ascending.
func (s *Store) Tables(capture string) ([]uint16, error) {
	var ids []uint16
	pfx := []byte(capture + "/")
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // keys only
		opts.Prefix = pfx
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(pfx); it.ValidForPrefix(pfx); it.Next() {
			n, err := strconv.ParseUint(string(it.Item().Key()[len(pfx):]), 10, 16)
			if err != nil {
				continue
			}
			ids = append(ids, uint16(n))
		}
		return nil
	})
	slices.Sort(ids)
	return ids, err
}

// Captures lists every capture name in the store.
func (s *Store) Captures() ([]string, error) {
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			k := string(it.Item().Key())
			name, _, ok := strings.Cut(k, "/")
			if !ok {
				continue
			}
			if n := len(names); n == 0 || names[n-1] != name {
				names = append(names, name)
			}
		}
		return nil
	})
	return names, err
}

// Drop removes every image of a capture.
func (s *Store) Drop(capture string) error {
	pfx := []byte(capture + "/")
	return s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(pfx); it.ValidForPrefix(pfx); it.Next() {
			if err := txn.Delete(it.Item().KeyCopy(nil)); err != nil {
				return err
			}
		}
		return nil
	})
}

// badgerLogger routes badger's own logging into ours.
type badgerLogger struct{ log logging.Logger }

func (l badgerLogger) Errorf(f string, v ...any)   { l.log.Error(strings.TrimSpace(fmt.Sprintf(f, v...))) }
func (l badgerLogger) Warningf(f string, v ...any) { l.log.Warn(strings.TrimSpace(fmt.Sprintf(f, v...))) }
func (l badgerLogger) Infof(f string, v ...any)    { l.log.Debug(strings.TrimSpace(fmt.Sprintf(f, v...))) }
func (l badgerLogger) Debugf(f string, v ...any)   { l.log.Debug(strings.TrimSpace(fmt.Sprintf(f, v...))) }
