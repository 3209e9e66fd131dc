// internal/domain/order/service_test.go
package order

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAPI struct {
	orders map[uint]Order
	err    error
}

func (s *stubAPI) GetOrder(ctx context.Context, orderID uint) (*Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	o, ok := s.orders[orderID]
	if !ok {
		return nil, errors.New("order not found")
	}
	return &o, nil
}

func (s *stubAPI) ListOrders(ctx context.Context) ([]Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	return out, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func unpaidOrder(id uint) Order {
	return Order{ID: id, Status: StatusUnpaid}
}

func TestGetWithoutMarksPassesThrough(t *testing.T) {
	api := &stubAPI{orders: map[uint]Order{1: unpaidOrder(1)}}
	svc := NewViewService(api, quietLogger())

	view, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, StatusUnpaid, view.Status)
	assert.False(t, view.PaymentPending)
}

func TestOptimisticPaidOverridesUpstreamUnpaid(t *testing.T) {
	api := &stubAPI{orders: map[uint]Order{1: unpaidOrder(1)}}
	svc := NewViewService(api, quietLogger())

	svc.MarkPaidOptimistic(1)

	view, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, view.Status)
	assert.False(t, view.PaymentPending)
}

func TestPaidDisplayIsMonotonicAcrossReloads(t *testing.T) {
	api := &stubAPI{orders: map[uint]Order{1: unpaidOrder(1)}}
	svc := NewViewService(api, quietLogger())

	svc.MarkPaidOptimistic(1)

	// The upstream keeps answering unpaid while its payment webhook lags;
	// the displayed status must never flap back
	for i := 0; i < 3; i++ {
		view, err := svc.Get(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, StatusPaid, view.Status)
	}
}

func TestUpstreamPaidConfirmsTheMark(t *testing.T) {
	api := &stubAPI{orders: map[uint]Order{1: unpaidOrder(1)}}
	svc := NewViewService(api, quietLogger())

	svc.MarkPaidOptimistic(1)
	svc.SetPaymentPending(1)

	// Webhook landed upstream
	api.orders[1] = Order{ID: 1, Status: StatusPaid}

	view, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, view.Status)
	assert.False(t, view.PaymentPending)
}

func TestPaymentPendingShownOnlyWhileUnpaid(t *testing.T) {
	api := &stubAPI{orders: map[uint]Order{1: unpaidOrder(1)}}
	svc := NewViewService(api, quietLogger())

	svc.SetPaymentPending(1)
	view, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, view.PaymentPending)

	svc.MarkPaidOptimistic(1)
	view, err = svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, view.PaymentPending)
}

func TestCancelNoticeNeverChangesStatus(t *testing.T) {
	api := &stubAPI{orders: map[uint]Order{1: unpaidOrder(1)}}
	svc := NewViewService(api, quietLogger())

	svc.SetPaymentPending(1)
	svc.RecordCancelNotice(1)

	view, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, StatusUnpaid, view.Status)
	assert.False(t, view.PaymentPending)
}

func TestCancelNoticeIsOneShot(t *testing.T) {
	svc := NewViewService(&stubAPI{}, quietLogger())

	assert.False(t, svc.ConsumeCancelNotice(1))
	svc.RecordCancelNotice(1)
	assert.True(t, svc.ConsumeCancelNotice(1))
	assert.False(t, svc.ConsumeCancelNotice(1))
}

func TestListAppliesMarksPerOrder(t *testing.T) {
	api := &stubAPI{orders: map[uint]Order{
		1: unpaidOrder(1),
		2: unpaidOrder(2),
	}}
	svc := NewViewService(api, quietLogger())
	svc.MarkPaidOptimistic(2)

	views, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 2)

	byID := make(map[uint]View, len(views))
	for _, v := range views {
		byID[v.ID] = v
	}
	assert.Equal(t, StatusUnpaid, byID[1].Status)
	assert.Equal(t, StatusPaid, byID[2].Status)
}

func TestFetchErrorPropagates(t *testing.T) {
	api := &stubAPI{err: errors.New("upstream down")}
	svc := NewViewService(api, quietLogger())

	_, err := svc.Get(context.Background(), 1)
	require.Error(t, err)
	_, err = svc.List(context.Background())
	require.Error(t, err)
}

func TestResetDropsMarks(t *testing.T) {
	api := &stubAPI{orders: map[uint]Order{1: unpaidOrder(1)}}
	svc := NewViewService(api, quietLogger())

	svc.MarkPaidOptimistic(1)
	svc.RecordCancelNotice(1)
	svc.Reset()

	view, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, StatusUnpaid, view.Status)
	assert.False(t, svc.ConsumeCancelNotice(1))
}
