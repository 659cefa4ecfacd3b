// Package badger provides a badger-backed store for the dev server, so
// data written during development survives restarts.
package badger

import (
	"errors"

	badger "github.com/dgraph-io/badger/v4"

	"go.voidsdatastore.net/voids/devserver"
)

// Value encoding: one kind byte followed by the raw data.
const (
	kindText byte = 0
	kindJSON byte = 1
)

// Badger is a devserver.Store backed by an on-disk badger database.
type Badger struct {
	db *badger.DB
}

var _ devserver.Store = &Badger{}

// Open opens or creates a badger database at path.
func Open(path string) (*Badger, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Badger{db: db}, nil
}

func (s *Badger) Close() error {
	return s.db.Close()
}

func (s *Badger) Get(namespace, key string) (devserver.Entry, bool, error) {
	txn := s.db.NewTransaction(false)
	defer txn.Discard()

	item, err := txn.Get(dbKey(namespace, key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return devserver.Entry{}, false, nil
	}
	if err != nil {
		return devserver.Entry{}, false, err
	}

	val, err := item.ValueCopy(nil)
	if err != nil {
		return devserver.Entry{}, false, err
	}
	if len(val) == 0 {
		return devserver.Entry{}, false, errors.New("corrupt entry: missing kind byte")
	}

	return devserver.Entry{Data: val[1:], JSON: val[0] == kindJSON}, true, nil
}

func (s *Badger) Set(namespace, key string, entry devserver.Entry) error {
	txn := s.db.NewTransaction(true)
	defer txn.Discard()

	kind := kindText
	if entry.JSON {
		kind = kindJSON
	}
	val := append([]byte{kind}, entry.Data...)

	if err := txn.Set(dbKey(namespace, key), val); err != nil {
		return err
	}

	return txn.Commit()
}

func (s *Badger) Delete(namespace, key string) error {
	txn := s.db.NewTransaction(true)
	defer txn.Discard()

	err := txn.Delete(dbKey(namespace, key))
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}

	return txn.Commit()
}

func dbKey(namespace, key string) []byte {
	k := make([]byte, 0, len(namespace)+len(key)+1)
	k = append(k, namespace...)
	k = append(k, 0)
	k = append(k, key...)
	return k
}
