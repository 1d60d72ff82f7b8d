package reconciler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/weiawesome/framez/internal/config"
	"github.com/weiawesome/framez/internal/service"
	"github.com/weiawesome/framez/internal/store"
)

type mockHotKeys struct {
	mock.Mock
}

func (m *mockHotKeys) RecordAccess(ctx context.Context, kind store.Kind, ids ...string) error {
	return m.Called(ctx, kind, ids).Error(0)
}

func (m *mockHotKeys) TakeTopHotKeys(ctx context.Context, kind store.Kind, n int64) ([]string, error) {
	args := m.Called(ctx, kind, n)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *mockHotKeys) Close() error { return nil }

type mockCounters struct {
	mock.Mock
}

func (m *mockCounters) RepairPost(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockCounters) RepairUser(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func TestReconcile(t *testing.T) {
	hot := &mockHotKeys{}
	hot.On("TakeTopHotKeys", mock.Anything, store.KindPost, int64(2)).Return([]string{"p1", "p2", "p3"}, nil)
	hot.On("TakeTopHotKeys", mock.Anything, store.KindUser, int64(2)).Return([]string{"u1"}, nil)

	counters := &mockCounters{}
	counters.On("RepairPost", mock.Anything, "p1").Return(true, nil)
	counters.On("RepairPost", mock.Anything, "p2").Return(false, service.ErrNotFound)
	counters.On("RepairPost", mock.Anything, "p3").Return(false, errors.New("db down"))
	counters.On("RepairUser", mock.Anything, "u1").Return(false, nil)

	r := New(hot, counters, config.ReconcilerConfig{TopN: 2})
	res := r.Reconcile(context.Background())

	assert.Equal(t, Result{Checked: 4, Repaired: 1, Failed: 1}, res)
	hot.AssertExpectations(t)
	counters.AssertExpectations(t)
}

func TestReconcile_HotKeyFailureSkipsKind(t *testing.T) {
	hot := &mockHotKeys{}
	hot.On("TakeTopHotKeys", mock.Anything, store.KindPost, int64(100)).Return(nil, errors.New("redis down"))
	hot.On("TakeTopHotKeys", mock.Anything, store.KindUser, int64(100)).Return([]string{"u1"}, nil)

	counters := &mockCounters{}
	counters.On("RepairUser", mock.Anything, "u1").Return(true, nil)

	res := New(hot, counters, config.ReconcilerConfig{}).Reconcile(context.Background())
	assert.Equal(t, Result{Checked: 1, Repaired: 1}, res)
	counters.AssertNotCalled(t, "RepairPost", mock.Anything, mock.Anything)
}

func TestStartStop(t *testing.T) {
	hot := &mockHotKeys{}
	hot.On("TakeTopHotKeys", mock.Anything, mock.Anything, mock.Anything).Return([]string{}, nil).Maybe()

	r := New(hot, &mockCounters{}, config.ReconcilerConfig{Interval: 5 * time.Millisecond})
	r.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	r.Stop()

	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}
}
