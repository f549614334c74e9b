// Package badgerdb keeps the destination catalogue in an embedded BadgerDB,
// for deployments that do not run a Redis server.
package badgerdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/backsoul/globetrotter/pkg/models"
	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

const (
	destinationPrefix = "destination:"
	metadataKey       = "meta:destinations"
)

type Store struct {
	db  *badger.DB
	log *slog.Logger
}

// Open opens (or creates) the database directory
func Open(path string, log *slog.Logger) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, fmt.Errorf("opening badger at %s: %w", path, err)
	}
	return NewStore(db, log), nil
}

func NewStore(db *badger.DB, log *slog.Logger) *Store {
	return &Store{db: db, log: log}
}

func destinationKey(id string) []byte {
	return []byte(destinationPrefix + id)
}

// LoadDestinations drops every destination and writes the new catalogue
func (s *Store) LoadDestinations(_ context.Context, data models.DestinationsData) error {
	if err := s.db.DropPrefix([]byte(destinationPrefix)); err != nil {
		return fmt.Errorf("clearing destinations: %w", err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, d := range data.Destinations {
		payload, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("serializing destination %s: %w", d.ID, err)
		}
		if err := wb.Set(destinationKey(d.ID), payload); err != nil {
			return err
		}
	}
	metadata, err := json.Marshal(data.Metadata)
	if err != nil {
		return fmt.Errorf("serializing metadata: %w", err)
	}
	if err := wb.Set([]byte(metadataKey), metadata); err != nil {
		return err
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("loading destinations: %w", err)
	}

	s.log.Info("Destinations loaded into badger", "count", len(data.Destinations))
	return nil
}

// GetDestination returns models.ErrDestinationNotFound for unknown ids
func (s *Store) GetDestination(_ context.Context, id string) (models.Destination, error) {
	var d models.Destination
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		d, err = readDestination(txn, id)
		return err
	})
	return d, err
}

// SampleDestinations scans the key space, draws k ids and reads them in the same transaction
func (s *Store) SampleDestinations(ctx context.Context, k int) ([]models.Destination, error) {
	var destinations []models.Destination
	err := s.db.View(func(txn *badger.Txn) error {
		ids, err := listIDs(ctx, txn)
		if err != nil {
			return err
		}
		if len(ids) < k {
			return fmt.Errorf("%w: wanted %d, found %d", models.ErrNotEnoughDestinations, k, len(ids))
		}

		for _, id := range lo.Samples(ids, k) {
			d, err := readDestination(txn, id)
			if err != nil {
				return err
			}
			destinations = append(destinations, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return destinations, nil
}

// CountDestinations returns the catalogue size
func (s *Store) CountDestinations(ctx context.Context) (int, error) {
	var count int
	err := s.db.View(func(txn *badger.Txn) error {
		ids, err := listIDs(ctx, txn)
		count = len(ids)
		return err
	})
	return count, err
}

// HealthCheck reports a closed database
func (s *Store) HealthCheck(_ context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger health check failed: database closed")
	}
	return nil
}

func (s *Store) Backend() string {
	return "badger"
}

func (s *Store) Close() error {
	return s.db.Close()
}

func listIDs(ctx context.Context, txn *badger.Txn) ([]string, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(destinationPrefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []string
	for it.Rewind(); it.Valid(); it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		key := it.Item().Key()
		ids = append(ids, string(key[len(destinationPrefix):]))
	}
	return ids, nil
}

func readDestination(txn *badger.Txn, id string) (models.Destination, error) {
	var d models.Destination
	item, err := txn.Get(destinationKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return d, fmt.Errorf("%w: %s", models.ErrDestinationNotFound, id)
	}
	if err != nil {
		return d, fmt.Errorf("getting destination %s: %w", id, err)
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &d)
	})
	if err != nil {
		return d, fmt.Errorf("parsing destination %s: %w", id, err)
	}
	return d, nil
}
