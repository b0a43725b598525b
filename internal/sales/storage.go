package sales

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a sale with the given ID is not found.
var ErrNotFound = errors.New("sale not found")

// ErrEmptyID is returned when trying to update a sale with an empty ID.
var ErrEmptyID = errors.New("empty sale ID")

// ErrVersionConflict is returned when a patch carries a version the store has
// already moved past.
var ErrVersionConflict = errors.New("sale version conflict")

// Storage is the persistence gateway the service writes through. Create
// assigns the ID; every method returns the authoritative stored sale.
type Storage interface {
	Create(ctx context.Context, sale *Sale) (*Sale, error)
	Update(ctx context.Context, id string, patch SalePatch) (*Sale, error)
	Read(ctx context.Context, id string) (*Sale, error)
	GetAll(ctx context.Context) ([]*Sale, error)
}

// LocalStorage provides an in-memory implementation for storing sales.
type LocalStorage struct {
	mu  sync.RWMutex
	m   map[string]*Sale
	now func() time.Time
}

// NewLocalStorage instantiates a new LocalStorage for sales with an empty map.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		m:   map[string]*Sale{},
		now: time.Now,
	}
}

// Create stores a copy of sale under a fresh ID with version 1.
func (l *LocalStorage) Create(ctx context.Context, sale *Sale) (*Sale, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stored := sale.Clone()
	stored.ID = uuid.NewString()
	stored.Version = 1
	stored.UpdatedAt = l.now()

	l.mu.Lock()
	l.m[stored.ID] = stored
	l.mu.Unlock()

	return stored.Clone(), nil
}

// Update applies patch to the stored sale.
// Returns ErrNotFound if the sale is missing and ErrVersionConflict if
// patch.Version is set and differs from the stored version.
func (l *LocalStorage) Update(ctx context.Context, id string, patch SalePatch) (*Sale, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrEmptyID
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Version != 0 && patch.Version != s.Version {
		return nil, ErrVersionConflict
	}

	updated := s.Clone()
	patch.Apply(updated)
	updated.Version++
	updated.UpdatedAt = l.now()
	l.m[id] = updated

	return updated.Clone(), nil
}

// Read retrieves a sale from the local storage by ID.
// Returns ErrNotFound if the sale is not found.
func (l *LocalStorage) Read(ctx context.Context, id string) (*Sale, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	s, ok := l.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

// GetAll retrieves all sales from the local storage, in no particular order.
func (l *LocalStorage) GetAll(ctx context.Context) ([]*Sale, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	sales := make([]*Sale, 0, len(l.m))
	for _, s := range l.m {
		sales = append(sales, s.Clone())
	}
	return sales, nil
}
