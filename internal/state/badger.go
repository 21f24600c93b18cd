// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const badgerPrefix = "page:"

// BadgerStore keeps the registry in an embedded badger database. Keys are
// "page:<name>" with the JSON encoded Page as value.
type BadgerStore struct {
	db *badger.DB
}

func OpenBadgerStore(path string) (*BadgerStore, error) {
	return openBadger(badger.DefaultOptions(path).WithLogger(nil))
}

func openBadger(opts badger.Options) (*BadgerStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open failed: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Exists(_ context.Context, name string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(badgerPrefix + name))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("state: get %s: %w", name, err)
	}
	return true, nil
}

func (s *BadgerStore) Mark(_ context.Context, pages ...Page) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, p := range pages {
			buf, err := json.Marshal(p)
			if err != nil {
				return err
			}
			if err := txn.Set([]byte(badgerPrefix+p.Name), buf); err != nil {
				return fmt.Errorf("state: mark %s: %w", p.Name, err)
			}
		}
		return nil
	})
}

func (s *BadgerStore) Forget(_ context.Context, names ...string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, n := range names {
			if err := txn.Delete([]byte(badgerPrefix + n)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get returns the entry of page name.
func (s *BadgerStore) Get(name string) (Page, bool, error) {
	var p Page
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerPrefix + name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Page{}, false, nil
	}
	if err != nil {
		return Page{}, false, err
	}
	return p, true, nil
}

func (s *BadgerStore) Close() error { return s.db.Close() }
