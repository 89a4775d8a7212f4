package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/pricing"
)

type memBlobs struct {
	mu      sync.Mutex
	data    map[string][]byte
	saves   int
	loadErr error
	saveErr error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{data: map[string][]byte{}}
}

func (m *memBlobs) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	d, ok := m.data[key]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return d, nil
}

func (m *memBlobs) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.data[key] = data
	return nil
}

func (m *memBlobs) stored(t *testing.T, key string) snapshot {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	var snap snapshot
	require.NoError(t, json.Unmarshal(m.data[key], &snap))
	return snap
}

func headphones() LineItem {
	return LineItem{ID: "xx99-mark-two", Name: "XX99 Mark II Headphones", UnitPrice: decimal.NewFromInt(2999), ImageRef: "/img/xx99.jpg"}
}

func speaker() LineItem {
	return LineItem{ID: "zx9", Name: "ZX9 Speaker", UnitPrice: decimal.NewFromInt(4500)}
}

func TestAddItem_ClampsAndMerges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		adds   []int
		expect int
	}{
		{"default one", []int{1}, 1},
		{"zero becomes one", []int{0}, 1},
		{"negative becomes one", []int{-3}, 1},
		{"over cap on insert", []int{15}, 10},
		{"merge", []int{3, 4}, 7},
		{"merge over cap drops excess", []int{8, 5}, 10},
		{"already at cap", []int{10, 1}, 10},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := New(nil, "")
			for _, q := range tt.adds {
				s.AddItem(headphones(), q)
			}
			require.Len(t, s.Items(), 1)
			assert.Equal(t, tt.expect, s.Quantity("xx99-mark-two"))
		})
	}
}

func TestAddItem_DerivesShortName(t *testing.T) {
	t.Parallel()

	s := New(nil, "")
	s.AddItem(headphones(), 1)
	s.AddItem(LineItem{ID: "custom", Name: "YX1 Wireless Earphones", ShortName: "YX1 custom"}, 1)

	items := s.Items()
	assert.Equal(t, "XX99 MK II", items[0].ShortName)
	assert.Equal(t, "YX1 custom", items[1].ShortName)
}

func TestShortName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "XX99 MK II", ShortName("XX99 MARK II HEADPHONES"))
	assert.Equal(t, "ZX9", ShortName("ZX9 SPEAKER"))
	assert.Equal(t, "YX1", ShortName("YX1 WIRELESS EARPHONES"))
	assert.Equal(t, "XX59", ShortName("XX59 Headphones"))
}

func TestUpdateQuantity(t *testing.T) {
	t.Parallel()

	s := New(nil, "")
	s.AddItem(headphones(), 2)

	s.UpdateQuantity("xx99-mark-two", 0)
	assert.Equal(t, 1, s.Quantity("xx99-mark-two"), "store clamps instead of removing")

	s.UpdateQuantity("xx99-mark-two", 42)
	assert.Equal(t, 10, s.Quantity("xx99-mark-two"))

	s.UpdateQuantity("missing", 3)
	assert.False(t, s.Contains("missing"))
}

func TestUpdateQuantity_SameValueTwice(t *testing.T) {
	t.Parallel()

	blobs := newMemBlobs()
	s := New(blobs, "sess")
	s.AddItem(headphones(), 2)
	s.AddItem(speaker(), 1)

	s.UpdateQuantity("xx99-mark-two", 4)
	s.Wait()
	once := s.Items()
	onceStored := blobs.stored(t, "sess")

	s.UpdateQuantity("xx99-mark-two", 4)
	s.Wait()
	twice := s.Items()
	twiceStored := blobs.stored(t, "sess")

	require.Len(t, twice, len(once))
	require.Len(t, twiceStored.Items, len(onceStored.Items))
	for i := range once {
		assert.Equal(t, once[i].ID, twice[i].ID)
		assert.Equal(t, once[i].Quantity, twice[i].Quantity)
		assert.True(t, once[i].UnitPrice.Equal(twice[i].UnitPrice))

		assert.Equal(t, onceStored.Items[i].ID, twiceStored.Items[i].ID)
		assert.Equal(t, onceStored.Items[i].Quantity, twiceStored.Items[i].Quantity)
	}
	assert.Equal(t, 4, twiceStored.Items[0].Quantity)
	assert.True(t, s.Totals().GrandTotal.Equal(pricing.ComputeTotals(once).GrandTotal))
}

func TestRemoveAndClear(t *testing.T) {
	t.Parallel()

	s := New(nil, "")
	s.AddItem(headphones(), 2)
	s.AddItem(speaker(), 1)

	s.RemoveItem("nope")
	assert.Len(t, s.Items(), 2)

	s.RemoveItem("xx99-mark-two")
	require.Len(t, s.Items(), 1)
	assert.Equal(t, "zx9", s.Items()[0].ID)

	s.Clear()
	assert.Empty(t, s.Items())
	assert.Equal(t, 0, s.ItemCount())
}

func TestDerivedViews(t *testing.T) {
	t.Parallel()

	s := New(nil, "")
	s.AddItem(headphones(), 2)
	s.AddItem(speaker(), 3)

	assert.Equal(t, 5, s.ItemCount())

	tot := s.Totals()
	assert.True(t, decimal.NewFromInt(19498).Equal(tot.Subtotal), tot.Subtotal.String())
	assert.True(t, decimal.RequireFromString("3899.6").Equal(tot.VAT), tot.VAT.String())
	assert.True(t, decimal.RequireFromString("23447.6").Equal(tot.GrandTotal), tot.GrandTotal.String())
}

func TestItems_ReturnsCopy(t *testing.T) {
	t.Parallel()

	s := New(nil, "")
	s.AddItem(headphones(), 1)

	items := s.Items()
	items[0].Quantity = 9
	assert.Equal(t, 1, s.Quantity("xx99-mark-two"))
}

func TestPersistence_RoundTrip(t *testing.T) {
	t.Parallel()

	blobs := newMemBlobs()
	s := New(blobs, "sess-1")
	s.AddItem(headphones(), 2)
	s.AddItem(speaker(), 1)
	s.UpdateQuantity("zx9", 4)
	s.Wait()

	snap := blobs.stored(t, "sess-1")
	require.Len(t, snap.Items, 2)
	assert.Equal(t, 4, snap.Items[1].Quantity)

	loaded := Load(context.Background(), blobs, "sess-1").Items()
	require.Len(t, loaded, 2)
	for i, want := range s.Items() {
		assert.Equal(t, want.ID, loaded[i].ID)
		assert.Equal(t, want.ShortName, loaded[i].ShortName)
		assert.Equal(t, want.Quantity, loaded[i].Quantity)
		assert.True(t, want.UnitPrice.Equal(loaded[i].UnitPrice))
	}
}

func TestSave_Explicit(t *testing.T) {
	t.Parallel()

	blobs := newMemBlobs()
	s := New(blobs, "sess-2")
	s.AddItem(speaker(), 1)
	s.Wait()

	require.NoError(t, s.Save(context.Background()))
	assert.Equal(t, 1, blobs.stored(t, "sess-2").Items[0].Quantity)

	assert.ErrorIs(t, New(nil, "x").Save(context.Background()), ErrNoBlobStore)
}

func TestSave_ErrorDoesNotBlockMutation(t *testing.T) {
	t.Parallel()

	blobs := newMemBlobs()
	blobs.saveErr = errors.New("disk full")

	s := New(blobs, "sess-3")
	s.AddItem(speaker(), 2)
	s.Wait()

	assert.Equal(t, 2, s.Quantity("zx9"))
	assert.Error(t, s.Save(context.Background()))
}

func TestLoad_FailuresYieldEmptyCart(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	missing := Load(ctx, newMemBlobs(), "nobody")
	assert.Empty(t, missing.Items())

	broken := newMemBlobs()
	broken.loadErr = errors.New("connection refused")
	assert.Empty(t, Load(ctx, broken, "sess").Items())

	garbage := newMemBlobs()
	garbage.data["sess"] = []byte(`{"items": [`)
	assert.Empty(t, Load(ctx, garbage, "sess").Items())

	wrongShape := newMemBlobs()
	wrongShape.data["sess"] = []byte(`[1,2,3]`)
	assert.Empty(t, Load(ctx, wrongShape, "sess").Items())
}

func TestLoad_ClampsStoredQuantities(t *testing.T) {
	t.Parallel()

	blobs := newMemBlobs()
	blobs.data["sess"] = []byte(`{"items":[{"id":"a","name":"A","unitPrice":"10","quantity":99},{"id":"","quantity":1}]}`)

	s := Load(context.Background(), blobs, "sess")
	require.Len(t, s.Items(), 1)
	assert.Equal(t, 10, s.Quantity("a"))
}

func TestConcurrentMutations(t *testing.T) {
	t.Parallel()

	blobs := newMemBlobs()
	s := New(blobs, "sess-c")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddItem(speaker(), 1)
		}()
	}
	wg.Wait()
	s.Wait()

	assert.Equal(t, 10, s.Quantity("zx9"))
	assert.Equal(t, 10, blobs.stored(t, "sess-c").Items[0].Quantity)
}
