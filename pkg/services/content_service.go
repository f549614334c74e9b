//go:generate go run go.uber.org/mock/mockgen -source=content_service.go -destination=../mocks/mock_content_service.go -package=mocks
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/backsoul/globetrotter/pkg/models"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// DestinationStore is implemented by the redis and badger backends
type DestinationStore interface {
	LoadDestinations(ctx context.Context, data models.DestinationsData) error
	GetDestination(ctx context.Context, id string) (models.Destination, error)
	SampleDestinations(ctx context.Context, k int) ([]models.Destination, error)
	CountDestinations(ctx context.Context) (int, error)
	HealthCheck(ctx context.Context) error
	Backend() string
	Close() error
}

// ContentGateway is what the round and answer services need from the catalogue
type ContentGateway interface {
	// SampleDistinct fails with models.ErrNotEnoughDestinations when fewer than k exist.
	SampleDistinct(ctx context.Context, k int) ([]models.Destination, error)
	// GetByID fails with models.ErrDestinationNotFound.
	GetByID(ctx context.Context, id string) (models.Destination, error)
}

var _ ContentGateway = (*ContentService)(nil)

// ContentService wraps a DestinationStore, bounding every call with a timeout
type ContentService struct {
	store   DestinationStore
	timeout time.Duration
	log     *slog.Logger
}

func NewContentService(store DestinationStore, timeout time.Duration, log *slog.Logger) *ContentService {
	return &ContentService{store: store, timeout: timeout, log: log}
}

func (s *ContentService) SampleDistinct(ctx context.Context, k int) ([]models.Destination, error) {
	if k <= 0 {
		return nil, fmt.Errorf("sample size must be positive, got %d", k)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	destinations, err := s.store.SampleDestinations(ctx, k)
	if err != nil {
		return nil, err
	}
	distinct := lo.UniqBy(destinations, func(d models.Destination) string { return d.ID })
	if len(distinct) < k {
		return nil, fmt.Errorf("%w: wanted %d distinct, got %d", models.ErrNotEnoughDestinations, k, len(distinct))
	}
	return distinct[:k], nil
}

func (s *ContentService) GetByID(ctx context.Context, id string) (models.Destination, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.GetDestination(ctx, id)
}

// LoadDestinationsFromFile replaces the catalogue with the content of a seed file
func (s *ContentService) LoadDestinationsFromFile(ctx context.Context, path string) (int, error) {
	s.log.Info("Loading destinations", "file", path)

	payload, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading seed file: %w", err)
	}

	var data models.DestinationsData
	if err := json.Unmarshal(payload, &data); err != nil {
		return 0, fmt.Errorf("parsing seed file: %w", err)
	}
	return s.LoadDestinations(ctx, data)
}

// LoadDestinations normalizes and stores a catalogue.
// Entries without an id get a fresh one; entries without city or country are skipped.
func (s *ContentService) LoadDestinations(ctx context.Context, data models.DestinationsData) (int, error) {
	valid := lo.FilterMap(data.Destinations, func(d models.Destination, i int) (models.Destination, bool) {
		if d.City == "" || d.Country == "" {
			s.log.Warn("Skipping destination without city or country", "index", i)
			return d, false
		}
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		return d, true
	})

	if dup := lo.FindDuplicatesBy(valid, func(d models.Destination) string { return d.ID }); len(dup) > 0 {
		return 0, fmt.Errorf("duplicate destination id %q in catalogue", dup[0].ID)
	}

	data.Destinations = valid
	data.Metadata.Total = len(valid)
	if err := s.store.LoadDestinations(ctx, data); err != nil {
		return 0, err
	}
	return len(valid), nil
}

// SeedIfEmpty loads the seed file only when the store holds no destination
func (s *ContentService) SeedIfEmpty(ctx context.Context, path string) (int, error) {
	count, err := s.store.CountDestinations(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.log.Info("Destination catalogue already populated", "count", count)
		return count, nil
	}
	return s.LoadDestinationsFromFile(ctx, path)
}

func (s *ContentService) Count(ctx context.Context) (int, error) {
	return s.store.CountDestinations(ctx)
}

func (s *ContentService) HealthCheck(ctx context.Context) error {
	return s.store.HealthCheck(ctx)
}

func (s *ContentService) Backend() string {
	return s.store.Backend()
}
