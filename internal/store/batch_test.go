package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tracker/internal/models"
	"tracker/internal/remote"
)

func TestBatch_CommitWritesAllCollectionsOnce(t *testing.T) {
	ctx := context.Background()
	rs := remote.NewMemoryStore()
	m := newTestManager(t, rs)

	b, err := m.Begin()
	require.NoError(t, err)
	require.NoError(t, Put(b, models.Products, []models.Product{{ID: "p1", Quantity: 10}}))
	require.NoError(t, Put(b, models.Sales, []models.Sale{{ID: "s1", TotalUSD: 40}}))

	// staged writes are visible to the batch only
	inBatch, err := Get[models.Product](b, models.Products)
	require.NoError(t, err)
	assert.Len(t, inBatch, 1)
	live, err := Get[models.Product](m, models.Products)
	require.NoError(t, err)
	assert.Empty(t, live)

	require.NoError(t, b.Commit(ctx))
	assert.Equal(t, 1, rs.Replaces())

	live, err = Get[models.Product](m, models.Products)
	require.NoError(t, err)
	assert.Len(t, live, 1)
	sales, err := Get[models.Sale](m, models.Sales)
	require.NoError(t, err)
	assert.Len(t, sales, 1)
	assert.False(t, m.HasPendingSaves())
	assert.Equal(t, StatusSaved, m.Status())
}

func TestBatch_DiscardLeavesCacheUntouched(t *testing.T) {
	rs := remote.NewMemoryStore()
	m := newTestManager(t, rs)

	b, err := m.Begin()
	require.NoError(t, err)
	require.NoError(t, Put(b, models.Products, []models.Product{{ID: "p1"}}))
	b.Discard()

	live, err := Get[models.Product](m, models.Products)
	require.NoError(t, err)
	assert.Empty(t, live)
	assert.Equal(t, 0, rs.Replaces())

	assert.ErrorIs(t, b.Commit(context.Background()), ErrBatchClosed)
	assert.ErrorIs(t, Put(b, models.Products, []models.Product{}), ErrBatchClosed)
	_, err = Get[models.Product](b, models.Products)
	assert.ErrorIs(t, err, ErrBatchClosed)
}

func TestBatch_EmptyCommitIsNoop(t *testing.T) {
	rs := remote.NewMemoryStore()
	m := newTestManager(t, rs)

	b, err := m.Begin()
	require.NoError(t, err)
	_, err = Get[models.Product](b, models.Products)
	require.NoError(t, err)
	assert.False(t, b.Changed())
	require.NoError(t, b.Commit(context.Background()))
	assert.Equal(t, 0, rs.Replaces())
}

func TestBatch_TransportFailureChangesNothing(t *testing.T) {
	rs := remote.NewMemoryStore()
	m := newTestManager(t, rs)

	b, err := m.Begin()
	require.NoError(t, err)
	require.NoError(t, Put(b, models.Products, []models.Product{{ID: "p1"}}))
	require.NoError(t, Put(b, models.CashTransactions, []models.CashTransaction{{ID: "c1", Amount: 5}}))

	rs.SetFailure(errors.New("connection reset"))
	err = b.Commit(context.Background())
	require.Error(t, err)
	assert.True(t, remote.IsTransport(err))

	for _, c := range []models.Collection{models.Products, models.CashTransactions} {
		records, err := Get[map[string]any](m, c)
		require.NoError(t, err)
		assert.Empty(t, records, c)
	}
	assert.Equal(t, StatusFailed, m.Status())
}

func TestBatch_StaleReadConflicts(t *testing.T) {
	m := newTestManager(t, remote.NewMemoryStore())
	require.NoError(t, Update(m, models.Products, []models.Product{{ID: "p1", Quantity: 5}}, false))

	first, err := m.Begin()
	require.NoError(t, err)
	second, err := m.Begin()
	require.NoError(t, err)

	// both read the same stock and write a decrement
	for _, b := range []*Batch{first, second} {
		products, err := Get[models.Product](b, models.Products)
		require.NoError(t, err)
		products[0].Quantity -= 3
		require.NoError(t, Put(b, models.Products, products))
	}

	require.NoError(t, first.Commit(context.Background()))
	rec := &statusRecorder{}
	m.Subscribe(rec.listen)
	err = second.Commit(context.Background())
	require.Error(t, err)
	assert.True(t, remote.IsConflict(err))

	products, err := Get[models.Product](m, models.Products)
	require.NoError(t, err)
	assert.Equal(t, 2.0, products[0].Quantity)
	assert.Equal(t, []SaveStatus{StatusConflict, StatusIdle}, rec.list())
	assert.Equal(t, StatusIdle, m.Status())
	assert.False(t, m.HasPendingSaves())
}

func TestBatch_StaleConflictKeepsPendingUpdate(t *testing.T) {
	m := newTestManager(t, remote.NewMemoryStore())

	b, err := m.Begin()
	require.NoError(t, err)
	_, err = Get[models.Product](b, models.Products)
	require.NoError(t, err)
	require.NoError(t, Put(b, models.Products, []models.Product{{ID: "p1"}}))

	require.NoError(t, Update(m, models.Products, []models.Product{{ID: "p2"}}, true))
	require.Error(t, b.Commit(context.Background()))

	assert.Equal(t, StatusDirty, m.Status())
	assert.True(t, m.HasPendingSaves())
}

func TestBatch_DisjointBatchesBothCommit(t *testing.T) {
	ctx := context.Background()
	rs := remote.NewMemoryStore()
	m := newTestManager(t, rs)

	first, err := m.Begin()
	require.NoError(t, err)
	second, err := m.Begin()
	require.NoError(t, err)

	require.NoError(t, Put(first, models.Expenses, []models.Expense{{ID: "e1"}}))
	require.NoError(t, Put(second, models.Partners, []models.Partner{{ID: "pa1"}}))

	require.NoError(t, first.Commit(ctx))
	require.NoError(t, second.Commit(ctx))
	assert.Equal(t, 2, rs.Replaces())

	expenses, err := Get[models.Expense](m, models.Expenses)
	require.NoError(t, err)
	assert.Len(t, expenses, 1)
	partners, err := Get[models.Partner](m, models.Partners)
	require.NoError(t, err)
	assert.Len(t, partners, 1)
}

func TestBatch_RemoteConflictThenRetrySucceeds(t *testing.T) {
	ctx := context.Background()
	rs := remote.NewMemoryStore()
	a := newTestManager(t, rs)
	b := newTestManager(t, rs)

	require.NoError(t, Update(b, models.Suppliers, []models.Supplier{{ID: "s1"}}, true))
	require.NoError(t, b.Flush(ctx))

	addProduct := func() error {
		batch, err := a.Begin()
		if err != nil {
			return err
		}
		defer batch.Discard()
		products, err := Get[models.Product](batch, models.Products)
		if err != nil {
			return err
		}
		products = append(products, models.Product{ID: "p1"})
		if err := Put(batch, models.Products, products); err != nil {
			return err
		}
		return batch.Commit(ctx)
	}

	err := addProduct()
	require.Error(t, err)
	assert.True(t, remote.IsConflict(err))

	require.NoError(t, addProduct())

	// the retry is based on the reloaded document, so nothing is lost
	suppliers, err := Get[models.Supplier](a, models.Suppliers)
	require.NoError(t, err)
	assert.Len(t, suppliers, 1)
	products, err := Get[models.Product](a, models.Products)
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, int64(2), a.Metadata().Version)
}

func TestBatch_CarriesPendingUpdates(t *testing.T) {
	rs := remote.NewMemoryStore()
	m := newTestManager(t, rs, WithDebounce(time.Hour))

	require.NoError(t, Update(m, models.Expenses, []models.Expense{{ID: "e1"}}, true))
	b, err := m.Begin()
	require.NoError(t, err)
	require.NoError(t, Put(b, models.Partners, []models.Partner{{ID: "pa1"}}))
	require.NoError(t, b.Commit(context.Background()))

	assert.False(t, m.HasPendingSaves())
	assert.Contains(t, string(rs.Content(testPath)), `"e1"`)
	assert.Contains(t, string(rs.Content(testPath)), `"pa1"`)
}
