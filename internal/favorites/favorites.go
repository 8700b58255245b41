// Package favorites manages the bounded set of favorite currency codes.
package favorites

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"ratesvc/internal/metrics"
	"ratesvc/internal/model"
	"ratesvc/internal/repository"

	"go.uber.org/zap"
)

// DefaultMax is the favorites capacity.
const DefaultMax = 5

// ErrFull is returned when adding to a full favorites set.
var ErrFull = repository.ErrFavoritesFull

// ErrInvalidCode is returned for codes that are not three letters.
var ErrInvalidCode = errors.New("invalid currency code")

// Manager validates and persists favorites.
type Manager struct {
	store   repository.FavoritesStore
	max     int
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

// NewManager creates a Manager with capacity limit; a non-positive limit means DefaultMax.
func NewManager(store repository.FavoritesStore, limit int, logger *zap.SugaredLogger, m *metrics.Metrics) *Manager {
	if limit <= 0 {
		limit = DefaultMax
	}
	return &Manager{store: store, max: limit, logger: logger, metrics: m}
}

// Max returns the capacity.
func (m *Manager) Max() int { return m.max }

// Snapshot loads the current favorites.
func (m *Manager) Snapshot(ctx context.Context) (Set, error) {
	codes, err := m.store.List(ctx)
	if err != nil {
		return Set{}, err
	}
	m.metrics.SetFavorites(len(codes))
	return NewSet(codes...), nil
}

// List returns the favorite codes sorted alphabetically.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	s, err := m.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.Codes(), nil
}

// Add marks code as favorite. Adding a present code succeeds without change.
func (m *Manager) Add(ctx context.Context, code string) error {
	code, err := normalize(code)
	if err != nil {
		return err
	}
	if err := m.store.Add(ctx, code, m.max); err != nil {
		if errors.Is(err, ErrFull) {
			return fmt.Errorf("%w: at most %d currencies", ErrFull, m.max)
		}
		return err
	}
	m.logger.Infow("Favorite added", "code", code)
	return nil
}

// Remove unmarks code. Removing an absent code succeeds.
func (m *Manager) Remove(ctx context.Context, code string) error {
	code, err := normalize(code)
	if err != nil {
		return err
	}
	if err := m.store.Remove(ctx, code); err != nil {
		return err
	}
	m.logger.Infow("Favorite removed", "code", code)
	return nil
}

// Toggle flips code and reports whether it is a favorite afterwards.
func (m *Manager) Toggle(ctx context.Context, code string) (bool, error) {
	code, err := normalize(code)
	if err != nil {
		return false, err
	}
	s, err := m.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	if s.Contains(code) {
		return false, m.Remove(ctx, code)
	}
	if err := m.Add(ctx, code); err != nil {
		return false, err
	}
	return true, nil
}

// IsFavorite reports whether code is a favorite.
func (m *Manager) IsFavorite(ctx context.Context, code string) (bool, error) {
	s, err := m.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	return s.Contains(code), nil
}

// Remaining returns how many more codes can be added.
func (m *Manager) Remaining(ctx context.Context) (int, error) {
	s, err := m.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return max(0, m.max-s.Len()), nil
}

func normalize(code string) (string, error) {
	if !model.IsValidCode(code) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	return model.NormalizeCode(code), nil
}

// Set is an immutable view of favorite codes.
type Set struct {
	codes map[string]struct{}
}

// NewSet builds a Set from codes.
func NewSet(codes ...string) Set {
	s := Set{codes: make(map[string]struct{}, len(codes))}
	for _, c := range codes {
		s.codes[model.NormalizeCode(c)] = struct{}{}
	}
	return s
}

// Contains reports whether code is in the set.
func (s Set) Contains(code string) bool {
	_, ok := s.codes[model.NormalizeCode(code)]
	return ok
}

// Len returns the number of codes.
func (s Set) Len() int { return len(s.codes) }

// Codes returns the codes sorted alphabetically.
func (s Set) Codes() []string {
	out := make([]string, 0, len(s.codes))
	for c := range s.codes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Sort returns rates with favorites first, each group ordered by code.
func (s Set) Sort(rates []model.CurrencyRate) []model.CurrencyRate {
	out := make([]model.CurrencyRate, len(rates))
	copy(out, rates)
	sort.SliceStable(out, func(i, j int) bool {
		fi, fj := s.Contains(out[i].Code), s.Contains(out[j].Code)
		if fi != fj {
			return fi
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// Split partitions rates into favorites and the rest, keeping input order.
func (s Set) Split(rates []model.CurrencyRate) (favs, rest []model.CurrencyRate) {
	for _, r := range rates {
		if s.Contains(r.Code) {
			favs = append(favs, r)
		} else {
			rest = append(rest, r)
		}
	}
	return favs, rest
}
