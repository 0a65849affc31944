//go:build integration

package repository_test

// Store tests against real Postgres and Redis via testcontainers.
// Run with: go test -tags integration ./internal/repository/... -v

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/calendar"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/clock"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/dto"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/infra"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/model"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/pricing"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/repository"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/sequence"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("pos_test"),
		tcPostgres.WithUsername("pos"),
		tcPostgres.WithPassword("pos"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := infra.NewDatabase(dsn)
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(ctx, db))
	return db
}

func setupRedis(t *testing.T) *infra.RedisCounter {
	t.Helper()
	ctx := context.Background()

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return infra.NewRedisCounter(rdb)
}

type incrementer interface {
	Increment(ctx context.Context, tx *gorm.DB, keys ...string) ([]int64, error)
}

// hammer runs n concurrent increments and returns the sorted results.
func hammer(t *testing.T, store incrementer, key string, n int) []int64 {
	t.Helper()
	out := make([]int64, n)
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(20)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			vs, err := store.Increment(ctx, nil, key)
			if err != nil {
				return err
			}
			out[i] = vs[0]
			return nil
		})
	}
	require.NoError(t, g.Wait())
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

func assertDense(t *testing.T, got []int64) {
	t.Helper()
	for i, v := range got {
		require.EqualValues(t, i+1, v, "values must be 1..n without gaps or repeats")
	}
}

// ── Sequence stores ──────────────────────────────────────────────────────────

func TestCounterRepository_ConcurrentIncrements(t *testing.T) {
	db := setupPostgres(t)
	repo := repository.NewCounterRepository(db)
	ctx := context.Background()

	assertDense(t, hammer(t, repo, "INV-20250828", 100))

	cur, err := repo.Current(ctx, "INV-20250828")
	require.NoError(t, err)
	assert.EqualValues(t, 100, cur)

	// keys are independent
	vs, err := repo.Increment(ctx, nil, "ORD-20250828", "INV-20250828")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 101}, vs)

	cur, err = repo.Current(ctx, "INV-20250829")
	require.NoError(t, err)
	assert.Zero(t, cur)
}

func TestCounterRepository_RollsBackWithCallerTransaction(t *testing.T) {
	db := setupPostgres(t)
	repo := repository.NewCounterRepository(db)
	ctx := context.Background()
	errAbort := errors.New("insert failed")

	err := db.Transaction(func(tx *gorm.DB) error {
		vs, err := repo.Increment(ctx, tx, "INV-20250828", "ORD-20250828")
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 1}, vs)
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	for _, key := range []string{"INV-20250828", "ORD-20250828"} {
		cur, err := repo.Current(ctx, key)
		require.NoError(t, err)
		assert.Zero(t, cur, key)
	}
}

func TestRedisCounter_ConcurrentIncrements(t *testing.T) {
	store := setupRedis(t)
	assertDense(t, hammer(t, store, "INV-20250828", 100))

	vs, err := store.Increment(context.Background(), nil, "ORD-20250828", "INV-20250828")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 101}, vs)
}

func TestOrderService_FailedInsertReleasesNumbers(t *testing.T) {
	db := setupPostgres(t)
	counters := repository.NewCounterRepository(db)
	orders := repository.NewOrderRepository(db)
	ctx := context.Background()
	at := time.Date(2025, 8, 28, 9, 0, 0, 0, time.UTC)

	// an imported row already holds the first invoice number of the day
	require.NoError(t, orders.Create(ctx, nil, newOrder("b1", "INV-20250828-000001", "10", at)))

	settlement := service.NewSettlement(pricing.New(pricing.DefaultPolicy()),
		sequence.NewGenerator(counters, nil), clock.NewFixed(at), time.UTC, decimal.Zero)
	svc := service.NewOrderService(orders, settlement, clock.NewFixed(at), time.UTC)

	_, err := svc.Create(ctx, dto.CreateOrderRequest{
		BranchID:  "b1",
		SalesType: "restaurant",
		OrderType: "DineIn",
		Items:     []dto.CartLineRequest{{ProductID: "p1", Price: decimal.NewFromInt(10), Qty: 1}},
	})
	require.Error(t, err)

	for _, key := range []string{"INV-20250828", "ORD-20250828"} {
		cur, err := counters.Current(ctx, key)
		require.NoError(t, err)
		assert.Zero(t, cur, key)
	}
}

// ── Day close periods ────────────────────────────────────────────────────────

func TestDayCloseRepository_OneOpenPeriodPerBranch(t *testing.T) {
	db := setupPostgres(t)
	repo := repository.NewDayCloseRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	first := &model.DayClosePeriod{BranchID: "b1", StartedAt: now}
	require.NoError(t, repo.CreatePeriod(ctx, first))
	assert.NotEqual(t, uuid.Nil, first.ID)

	err := repo.CreatePeriod(ctx, &model.DayClosePeriod{BranchID: "b1", StartedAt: now})
	assert.ErrorIs(t, err, model.ErrPeriodAlreadyOpen)

	require.NoError(t, repo.CreatePeriod(ctx, &model.DayClosePeriod{BranchID: "b2", StartedAt: now}))

	closedAt := now.Add(time.Hour)
	var won int
	for i := 0; i < 2; i++ {
		ok, err := repo.MarkClosed(ctx, nil, first.ID, closedAt, []byte(`{"order_count":0}`), nil)
		require.NoError(t, err)
		if ok {
			won++
		}
	}
	assert.Equal(t, 1, won, "only one close may win")

	_, err = repo.FindOpen(ctx, "b1")
	assert.ErrorIs(t, err, model.ErrNoOpenPeriod)

	latest, err := repo.FindLatestClosed(ctx, nil, "b1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, latest.ID)
	require.NotNil(t, latest.ClosedAt)
	assert.True(t, latest.ClosedAt.Equal(closedAt))
	assert.JSONEq(t, `{"order_count":0}`, string(latest.Summary))

	// the branch can open again once closed
	require.NoError(t, repo.CreatePeriod(ctx, &model.DayClosePeriod{BranchID: "b1", StartedAt: closedAt}))

	_, err = repo.FindLatestClosed(ctx, nil, "b3")
	assert.ErrorIs(t, err, model.ErrPeriodNotFound)
}

// ── Orders ───────────────────────────────────────────────────────────────────

func newOrder(branch, invoice, total string, at time.Time) *model.Order {
	amount := decimal.RequireFromString(total)
	return &model.Order{
		BranchID:   branch,
		InvoiceNo:  invoice,
		OrderNo:    "ORD" + invoice[3:],
		OrderDate:  calendar.In(at, time.UTC),
		SalesType:  "restaurant",
		OrderType:  "DineIn",
		SubTotal:   amount,
		VATPercent: decimal.Zero,
		VATAmount:  decimal.Zero,
		Total:      amount,
		Status:     "unpaid",
		CreatedAt:  at,
		Items: []model.OrderItem{
			{ProductID: "p1", Price: amount, Qty: 1, Total: amount},
		},
	}
}

func TestOrderRepository_PeriodQueries(t *testing.T) {
	db := setupPostgres(t)
	repo := repository.NewOrderRepository(db)
	ctx := context.Background()
	start := time.Date(2025, 8, 28, 6, 0, 0, 0, time.UTC)
	end := start.Add(12 * time.Hour)

	a := newOrder("b1", "INV-20250828-000001", "600", start.Add(time.Hour))
	b := newOrder("b1", "INV-20250828-000002", "400", start.Add(2*time.Hour))
	c := newOrder("b1", "INV-20250828-000003", "100", start.Add(3*time.Hour))
	late := newOrder("b1", "INV-20250828-000004", "50", end)
	other := newOrder("b2", "INV-20250828-000005", "999", start.Add(time.Hour))
	for _, o := range []*model.Order{a, b, c, late, other} {
		require.NoError(t, repo.Create(ctx, nil, o))
	}

	ok, err := repo.MarkCanceled(ctx, c.ID, "void", start.Add(4*time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.MarkCanceled(ctx, c.ID, "void", start.Add(4*time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)

	notCanceled := false
	count, sum, err := repo.SumTotals(ctx, nil, repository.OrderQuery{
		BranchID: "b1", Canceled: &notCanceled, CreatedFrom: start, CreatedTo: end,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	assert.True(t, sum.Equal(decimal.NewFromInt(1000)), sum.String())

	inPeriod, err := repo.ListInPeriod(ctx, nil, "b1", start, end)
	require.NoError(t, err)
	assert.Len(t, inPeriod, 3)

	periodID := uuid.New()
	ids := make([]uuid.UUID, len(inPeriod))
	for i := range inPeriod {
		ids[i] = inPeriod[i].ID
	}
	n, err := repo.AssignPeriod(ctx, nil, ids, periodID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	// already stamped rows are left alone
	n, err = repo.AssignPeriod(ctx, nil, append(ids, late.ID), uuid.New())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.AssignPeriod(ctx, nil, nil, periodID)
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DayClosePeriodID)
	assert.Equal(t, periodID, *got.DayClosePeriodID)
	assert.Len(t, got.Items, 1)

	list, total, err := repo.List(ctx, repository.OrderQuery{Search: "000002", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, b.ID, list[0].ID)

	require.NoError(t, repo.SoftDelete(ctx, b.ID))
	_, err = repo.FindByID(ctx, b.ID)
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}

func TestOrderRepository_SaveHolds(t *testing.T) {
	db := setupPostgres(t)
	repo := repository.NewOrderRepository(db)
	ctx := context.Background()

	o := newOrder("b1", "INV-20250801-000001", "300", time.Date(2025, 8, 1, 6, 0, 0, 0, time.UTC))
	o.SalesType, o.OrderType = "membership", ""
	o.StartDate, o.EndDate = calendar.MustParse("2025-08-01"), calendar.MustParse("2025-08-10")
	require.NoError(t, repo.Create(ctx, nil, o))

	holds := []model.OrderHoldRange{
		{OrderID: o.ID, Position: 0, FromDate: calendar.MustParse("2025-08-02"), ToDate: calendar.MustParse("2025-08-03")},
		{OrderID: o.ID, Position: 1, FromDate: calendar.MustParse("2025-08-05")},
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.LockByID(ctx, tx, o.ID)
		if err != nil {
			return err
		}
		assert.Empty(t, locked.Holds)
		return repo.SaveHolds(ctx, tx, o.ID, holds, true)
	})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, got.OnHold)
	assert.Equal(t, calendar.MustParse("2025-08-10"), got.EndDate)
	require.Len(t, got.Holds, 2)
	assert.Equal(t, calendar.MustParse("2025-08-03"), got.Holds[0].ToDate)
	assert.True(t, got.Holds[1].ToDate.IsZero())
}
