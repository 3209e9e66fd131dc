// internal/domain/cart/service_test.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeShop models the server side of the cart: it owns the state and
// returns a freshly computed snapshot on every call, like the real API.
type fakeShop struct {
	mu     sync.Mutex
	lines  map[uint]int
	prices map[uint]decimal.Decimal

	fetchErr  error
	mutateErr error

	// When set, mutations block until the channel is closed
	gate chan struct{}
}

func newFakeShop(prices map[uint]decimal.Decimal) *fakeShop {
	return &fakeShop{
		lines:  make(map[uint]int),
		prices: prices,
	}
}

func (f *fakeShop) snapshot() *Snapshot {
	snap := &Snapshot{TotalPrice: decimal.Zero}
	for productID, qty := range f.lines {
		price := f.prices[productID]
		lineTotal := price.Mul(decimal.NewFromInt(int64(qty)))
		snap.Lines = append(snap.Lines, Line{
			ProductID: productID,
			Quantity:  qty,
			UnitPrice: price,
			LineTotal: lineTotal,
		})
		snap.TotalPrice = snap.TotalPrice.Add(lineTotal)
		snap.TotalQuantity += qty
	}
	return snap
}

func (f *fakeShop) FetchCart(ctx context.Context) (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.snapshot(), nil
}

func (f *fakeShop) AddItem(ctx context.Context, productID uint, quantity int, override bool) (*Snapshot, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	if override {
		f.lines[productID] = quantity
	} else {
		f.lines[productID] += quantity
	}
	return f.snapshot(), nil
}

func (f *fakeShop) UpdateQuantity(ctx context.Context, productID uint, quantity int) (*Snapshot, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	f.lines[productID] = quantity
	return f.snapshot(), nil
}

func (f *fakeShop) RemoveItem(ctx context.Context, productID uint) (*Snapshot, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	delete(f.lines, productID)
	return f.snapshot(), nil
}

func (f *fakeShop) ClearCart(ctx context.Context) (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	f.lines = make(map[uint]int)
	return f.snapshot(), nil
}

func testPrices() map[uint]decimal.Decimal {
	return map[uint]decimal.Decimal{
		1: decimal.RequireFromString("10.00"),
		2: decimal.RequireFromString("5.00"),
	}
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestAddItemReplacesSnapshotWholesale(t *testing.T) {
	shop := newFakeShop(testPrices())
	cache := NewCache(shop, testLogger())

	snap, err := cache.AddItem(context.Background(), 1, 2, false)
	require.NoError(t, err)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 2, snap.TotalQuantity)
	assert.True(t, snap.TotalPrice.Equal(decimal.RequireFromString("20.00")))

	snap, err = cache.AddItem(context.Background(), 2, 1, false)
	require.NoError(t, err)
	require.Len(t, snap.Lines, 2)
	assert.Equal(t, 3, snap.TotalQuantity)
	assert.True(t, snap.TotalPrice.Equal(decimal.RequireFromString("25.00")))
}

func TestAddItemOverrideReplacesQuantity(t *testing.T) {
	shop := newFakeShop(testPrices())
	cache := NewCache(shop, testLogger())

	_, err := cache.AddItem(context.Background(), 1, 2, false)
	require.NoError(t, err)

	snap, err := cache.AddItem(context.Background(), 1, 5, true)
	require.NoError(t, err)
	line, ok := snap.Line(1)
	require.True(t, ok)
	assert.Equal(t, 5, line.Quantity)
}

func TestUpdateQuantityRoundTrip(t *testing.T) {
	for q := MinLineQuantity; q <= MaxLineQuantity; q++ {
		t.Run(fmt.Sprintf("quantity_%d", q), func(t *testing.T) {
			shop := newFakeShop(testPrices())
			cache := NewCache(shop, testLogger())

			_, err := cache.AddItem(context.Background(), 1, 1, false)
			require.NoError(t, err)

			_, err = cache.UpdateQuantity(context.Background(), 1, q)
			require.NoError(t, err)

			require.NoError(t, cache.Load(context.Background()))
			snap := cache.Snapshot()
			line, ok := snap.Line(1)
			require.True(t, ok)
			assert.Equal(t, q, line.Quantity)
		})
	}
}

func TestAddThenRemoveRestoresCart(t *testing.T) {
	shop := newFakeShop(testPrices())
	cache := NewCache(shop, testLogger())

	_, err := cache.AddItem(context.Background(), 1, 2, false)
	require.NoError(t, err)
	before := cache.Snapshot()

	_, err = cache.AddItem(context.Background(), 2, 3, false)
	require.NoError(t, err)
	after, err := cache.RemoveItem(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, before.TotalQuantity, after.TotalQuantity)
	assert.True(t, before.TotalPrice.Equal(after.TotalPrice))
	require.Len(t, after.Lines, len(before.Lines))
}

func TestMutationFailureRetainsSnapshot(t *testing.T) {
	shop := newFakeShop(testPrices())
	cache := NewCache(shop, testLogger())

	_, err := cache.AddItem(context.Background(), 1, 2, false)
	require.NoError(t, err)
	before := cache.Snapshot()

	shop.mutateErr = errors.New("boom")
	_, err = cache.UpdateQuantity(context.Background(), 1, 7)
	require.Error(t, err)

	after := cache.Snapshot()
	assert.Equal(t, before.TotalQuantity, after.TotalQuantity)
	line, ok := after.Line(1)
	require.True(t, ok)
	assert.Equal(t, 2, line.Quantity)
}

func TestLoadFailureResetsToEmpty(t *testing.T) {
	shop := newFakeShop(testPrices())
	cache := NewCache(shop, testLogger())

	_, err := cache.AddItem(context.Background(), 1, 2, false)
	require.NoError(t, err)

	shop.fetchErr = errors.New("network down")
	err = cache.Load(context.Background())
	require.Error(t, err)
	snap := cache.Snapshot()
	assert.True(t, snap.IsEmpty())
}

func TestBusyLineRejectsSecondMutation(t *testing.T) {
	shop := newFakeShop(testPrices())
	shop.gate = make(chan struct{})
	cache := NewCache(shop, testLogger())

	firstDone := make(chan error, 1)
	go func() {
		_, err := cache.AddItem(context.Background(), 1, 1, false)
		firstDone <- err
	}()

	// Wait until the first mutation has claimed the busy marker
	for !cache.IsBusy(1) {
	}

	_, err := cache.UpdateQuantity(context.Background(), 1, 3)
	assert.ErrorIs(t, err, ErrLineBusy)

	close(shop.gate)
	require.NoError(t, <-firstDone)
	assert.False(t, cache.IsBusy(1))

	// The line is free again once the in-flight request resolved
	_, err = cache.UpdateQuantity(context.Background(), 1, 3)
	require.NoError(t, err)
}

func TestMutationsOnDistinctLinesProceed(t *testing.T) {
	shop := newFakeShop(testPrices())
	shop.gate = make(chan struct{})
	cache := NewCache(shop, testLogger())

	var wg sync.WaitGroup
	wg.Add(2)
	errs := make(chan error, 2)
	go func() {
		defer wg.Done()
		_, err := cache.AddItem(context.Background(), 1, 1, false)
		errs <- err
	}()
	go func() {
		defer wg.Done()
		_, err := cache.AddItem(context.Background(), 2, 1, false)
		errs <- err
	}()

	for !cache.IsBusy(1) || !cache.IsBusy(2) {
	}
	close(shop.gate)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	snap := cache.Snapshot()
	assert.Equal(t, 2, snap.TotalQuantity)
	assert.Len(t, snap.Lines, 2)
}

func TestClearEmptiesSnapshot(t *testing.T) {
	shop := newFakeShop(testPrices())
	cache := NewCache(shop, testLogger())

	_, err := cache.AddItem(context.Background(), 1, 2, false)
	require.NoError(t, err)

	require.NoError(t, cache.Clear(context.Background()))
	snap := cache.Snapshot()
	assert.True(t, snap.IsEmpty())
	assert.Equal(t, 0, snap.TotalQuantity)
}

func TestResetDropsState(t *testing.T) {
	shop := newFakeShop(testPrices())
	cache := NewCache(shop, testLogger())

	_, err := cache.AddItem(context.Background(), 1, 2, false)
	require.NoError(t, err)

	cache.Reset()
	snap := cache.Snapshot()
	assert.True(t, snap.IsEmpty())
}
