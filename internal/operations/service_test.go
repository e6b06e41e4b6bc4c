package operations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tracker/internal/ledger"
	"tracker/internal/models"
	"tracker/internal/remote"
	"tracker/internal/store"
)

const testPath = "inventory.json"

type fixture struct {
	t      *testing.T
	ctx    context.Context
	remote *remote.MemoryStore
	store  *store.Manager
	svc    *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rs := remote.NewMemoryStore()
	return newFixtureOn(t, rs)
}

func newFixtureOn(t *testing.T, rs *remote.MemoryStore) *fixture {
	t.Helper()
	clock := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	now := func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	m := store.New(rs, testPath, store.WithDebounce(0), store.WithClock(now))
	require.NoError(t, m.Load(context.Background()))
	return &fixture{
		t:      t,
		ctx:    context.Background(),
		remote: rs,
		store:  m,
		svc:    NewService(m, WithClock(now)),
	}
}

// ok asserts that the operation succeeded and returns its id.
func (f *fixture) ok(res Result) string {
	f.t.Helper()
	require.True(f.t, res.Success, res.Error)
	require.NotEmpty(f.t, res.ID)
	return res.ID
}

func (f *fixture) failed(res Result) error {
	f.t.Helper()
	require.False(f.t, res.Success)
	require.Error(f.t, res.Err)
	assert.Equal(f.t, res.Err.Error(), res.Error)
	return res.Err
}

func get[T any](f *fixture, c models.Collection) []T {
	f.t.Helper()
	records, err := store.Get[T](f.store, c)
	require.NoError(f.t, err)
	return records
}

func find[T any](f *fixture, c models.Collection, match func(T) bool) T {
	f.t.Helper()
	for _, r := range get[T](f, c) {
		if match(r) {
			return r
		}
	}
	f.t.Fatalf("no matching record in %s", c)
	var zero T
	return zero
}

func (f *fixture) product(id string) models.Product {
	return find(f, models.Products, func(p models.Product) bool { return p.ID == id })
}

func (f *fixture) container(id string) models.Container {
	return find(f, models.Containers, func(c models.Container) bool { return c.ID == id })
}

func (f *fixture) payment(id string) models.Payment {
	return find(f, models.Payments, func(p models.Payment) bool { return p.ID == id })
}

func (f *fixture) cashBalance() float64 {
	return ledger.RecomputeCashLedger(get[models.CashTransaction](f, models.CashTransactions))
}

func TestRun_RecoversPanic(t *testing.T) {
	f := newFixture(t)

	res := f.svc.run(f.ctx, "Explode", func(b *store.Batch) (string, error) {
		require.NoError(t, store.Put(b, models.Products, []models.Product{{ID: "x"}}))
		panic("boom")
	})

	err := f.failed(res)
	assert.Contains(t, err.Error(), "boom")
	assert.Empty(t, get[models.Product](f, models.Products))
	assert.Equal(t, 0, f.remote.Replaces())
}

func TestRun_FailureLeavesDocumentUntouched(t *testing.T) {
	f := newFixture(t)
	f.ok(f.svc.CreatePartner(f.ctx, PartnerInput{Name: "Ana"}))
	before := f.remote.Content(testPath)

	res := f.svc.run(f.ctx, "ThreeWrites", func(b *store.Batch) (string, error) {
		if err := store.Put(b, models.Products, []models.Product{{ID: "p"}}); err != nil {
			return "", err
		}
		if err := store.Put(b, models.Sales, []models.Sale{{ID: "s"}}); err != nil {
			return "", err
		}
		return "", errors.New("second write rejected")
	})

	f.failed(res)
	assert.Equal(t, before, f.remote.Content(testPath))
	assert.Empty(t, get[models.Product](f, models.Products))
	assert.Empty(t, get[models.Sale](f, models.Sales))
	assert.False(t, f.store.HasPendingSaves())
}

func TestRun_TransportFailureReported(t *testing.T) {
	f := newFixture(t)
	f.remote.SetFailure(errors.New("dial tcp: timeout"))

	err := f.failed(f.svc.CreateExpense(f.ctx, ExpenseInput{Category: "rent", AmountUSD: 10, Date: "2024-06-01"}))
	assert.True(t, remote.IsTransport(err))
	assert.Empty(t, get[models.Expense](f, models.Expenses))
	assert.Empty(t, get[models.CashTransaction](f, models.CashTransactions))
}

func TestConcurrentWritersConflictThenRetry(t *testing.T) {
	rs := remote.NewMemoryStore()
	a := newFixtureOn(t, rs)
	b := newFixtureOn(t, rs)

	a.ok(a.svc.CreateExpense(a.ctx, ExpenseInput{Category: "rent", AmountUSD: 100, Date: "2024-06-01"}))

	// b still holds the version it loaded before a's write
	err := b.failed(b.svc.CreateExpense(b.ctx, ExpenseInput{Category: "fuel", AmountUSD: 20, Date: "2024-06-02"}))
	assert.True(t, remote.IsConflict(err))
	assert.Len(t, get[models.Expense](b, models.Expenses), 1, "b reloaded a's document")

	b.ok(b.svc.CreateExpense(b.ctx, ExpenseInput{Category: "fuel", AmountUSD: 20, Date: "2024-06-02"}))
	require.NoError(t, a.store.Load(a.ctx))
	assert.Len(t, get[models.Expense](a, models.Expenses), 2)
	assert.InDelta(t, -120.0, a.cashBalance(), ledger.Epsilon)
}
