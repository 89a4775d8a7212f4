package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Skotchmaster/storefront/internal/checkout"
	"github.com/Skotchmaster/storefront/internal/pricing"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

var ErrNoBlobStore = errors.New("cart has no blob store")

// BlobStore is the key-value backend a cart snapshot is written to.
type BlobStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

type snapshot struct {
	Items []LineItem `json:"items"`
}

// Store is one session's cart. Every mutation schedules an asynchronous
// snapshot write; the mutation itself never waits for it.
type Store struct {
	mu      sync.Mutex
	items   []LineItem
	version uint64

	blobs BlobStore
	key   string

	saveMu sync.Mutex
	saved  uint64
	wg     sync.WaitGroup
}

// New returns an empty cart persisted under key. blobs may be nil.
func New(blobs BlobStore, key string) *Store {
	return &Store{blobs: blobs, key: key}
}

// Load reads the cart saved under key. A missing or unreadable blob yields an
// empty cart.
func Load(ctx context.Context, blobs BlobStore, key string) *Store {
	s := New(blobs, key)
	if blobs == nil {
		return s
	}

	l := logging.FromContext(ctx).With("component", "cart", "key", key)

	data, err := blobs.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrBlobNotFound) {
			l.Warn("cart_load_failed", "reason", "read", "error", err)
		}
		return s
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		l.Warn("cart_load_failed", "reason", "decode", "error", err)
		return s
	}

	for _, it := range snap.Items {
		if it.ID == "" {
			continue
		}
		it.Quantity = clamp(it.Quantity)
		s.items = append(s.items, it)
	}
	return s
}

// AddItem merges item into the cart. Quantities outside [1,10] are clamped
// and anything above the cap is dropped without error.
func (s *Store) AddItem(item LineItem, quantity int) {
	quantity = clamp(quantity)

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(item.ID); i >= 0 {
		s.items[i].Quantity = clamp(s.items[i].Quantity + quantity)
	} else {
		if item.ShortName == "" {
			item.ShortName = ShortName(item.Name)
		}
		item.Quantity = quantity
		s.items = append(s.items, item)
	}
	s.changed()
}

func (s *Store) RemoveItem(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.changed()
}

// UpdateQuantity sets the quantity of an existing item, clamped to [1,10].
func (s *Store) UpdateQuantity(id string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.items[i].Quantity = clamp(quantity)
	s.changed()
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.changed()
}

// Items returns a copy in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Totals() pricing.Totals {
	return pricing.ComputeTotals(s.Items())
}

// ItemCount is the sum of quantities, not the number of lines.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(id) >= 0
}

func (s *Store) Quantity(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		return s.items[i].Quantity
	}
	return 0
}

// Save writes the current state synchronously.
func (s *Store) Save(ctx context.Context) error {
	if s.blobs == nil {
		return ErrNoBlobStore
	}

	s.mu.Lock()
	v := s.version
	data, err := s.encode()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.persist(ctx, v, data)
}

// Wait blocks until every scheduled background save has finished.
func (s *Store) Wait() {
	s.wg.Wait()
}

// changed must be called with mu held.
func (s *Store) changed() {
	s.version++
	if s.blobs == nil {
		return
	}

	v := s.version
	data, err := s.encode()
	if err != nil {
		logging.FromContext(context.Background()).Warn("cart_save_failed", "key", s.key, "reason", "encode", "error", err)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.persist(context.Background(), v, data); err != nil {
			logging.FromContext(context.Background()).Warn("cart_save_failed", "key", s.key, "version", v, "error", err)
		}
	}()
}

// persist skips snapshots older than the last one written.
func (s *Store) persist(ctx context.Context, v uint64, data []byte) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if v < s.saved {
		return nil
	}
	if err := s.blobs.Save(ctx, s.key, data); err != nil {
		return fmt.Errorf("save cart %s: %w", s.key, err)
	}
	s.saved = v
	return nil
}

func (s *Store) encode() ([]byte, error) {
	items := s.items
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(snapshot{Items: items})
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func clamp(q int) int {
	if q < checkout.MinQuantity {
		return checkout.MinQuantity
	}
	if q > checkout.MaxQuantity {
		return checkout.MaxQuantity
	}
	return q
}
