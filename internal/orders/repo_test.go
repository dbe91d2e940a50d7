package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/YouHyuksoo/HANES-sub001/pkg/db/models"
	"github.com/YouHyuksoo/HANES-sub001/pkg/enums"
	"github.com/YouHyuksoo/HANES-sub001/pkg/pagination"
)

func newRepoDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:orders_repo_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Item{}, &models.Order{}))
	return db
}

func seedRepoItem(t *testing.T, db *gorm.DB) models.Item {
	t.Helper()
	item := models.Item{
		ID:     uuid.New(),
		Code:   "FG-" + uuid.NewString()[:8],
		Name:   "finished goods",
		Type:   enums.ItemTypeFinishedGoods,
		Unit:   "EA",
		Active: true,
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func seedOrder(t *testing.T, db *gorm.DB, repo Repository, item models.Item, orderNo string, status enums.OrderStatus, createdAt time.Time) *models.Order {
	t.Helper()
	order, err := repo.Create(context.Background(), &models.Order{
		OrderNo:  orderNo,
		ItemID:   item.ID,
		PlanQty:  10,
		Status:   status,
		PlanDate: createdAt,
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Update("created_at", createdAt).Error)
	order.CreatedAt = createdAt
	return order
}

func TestRepositoryFindAndExists(t *testing.T) {
	t.Parallel()

	db := newRepoDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	item := seedRepoItem(t, db)

	created := seedOrder(t, db, repo, item, "JO-REPO-1", enums.OrderStatusWaiting, time.Now())

	found, err := repo.FindByOrderNo(ctx, "JO-REPO-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	exists, err := repo.ExistsOrderNo(ctx, "JO-REPO-1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsOrderNo(ctx, "JO-REPO-MISSING")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, IsNotFound(err))
}

func TestRepositoryUpdateFieldsMissingRow(t *testing.T) {
	t.Parallel()

	db := newRepoDB(t)
	repo := NewRepository(db)

	err := repo.UpdateFields(context.Background(), uuid.New(), map[string]any{"status": enums.OrderStatusRunning})
	assert.True(t, IsNotFound(err))
}

func TestRepositoryUpdateFieldsWhereStatusMatchesOnlyAllowedRows(t *testing.T) {
	t.Parallel()

	db := newRepoDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	item := seedRepoItem(t, db)

	order := seedOrder(t, db, repo, item, "JO-REPO-COND", enums.OrderStatusDone, time.Now())

	// a caller holding a stale running snapshot loses on the write
	matched, err := repo.UpdateFieldsWhereStatus(ctx, order.ID,
		[]enums.OrderStatus{enums.OrderStatusRunning, enums.OrderStatusPaused},
		map[string]any{"status": enums.OrderStatusDone, "good_qty": 999})
	require.NoError(t, err)
	assert.False(t, matched)

	var row models.Order
	require.NoError(t, db.First(&row, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusDone, row.Status)
	assert.Nil(t, row.GoodQty, "losing write must not touch the row")

	matched, err = repo.UpdateFieldsWhereStatus(ctx, order.ID,
		[]enums.OrderStatus{enums.OrderStatusDone},
		map[string]any{"status": enums.OrderStatusCanceled})
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestRepositoryDeleteWhereStatusNot(t *testing.T) {
	t.Parallel()

	db := newRepoDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	item := seedRepoItem(t, db)

	running := seedOrder(t, db, repo, item, "JO-REPO-RUN", enums.OrderStatusRunning, time.Now())

	matched, err := repo.DeleteWhereStatusNot(ctx, running.ID, enums.OrderStatusRunning)
	require.NoError(t, err)
	assert.False(t, matched)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", running.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	waiting := seedOrder(t, db, repo, item, "JO-REPO-WAIT", enums.OrderStatusWaiting, time.Now())
	matched, err = repo.DeleteWhereStatusNot(ctx, waiting.ID, enums.OrderStatusRunning)
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestRepositoryListChildren(t *testing.T) {
	t.Parallel()

	db := newRepoDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	item := seedRepoItem(t, db)

	parent := seedOrder(t, db, repo, item, "JO-PARENT", enums.OrderStatusWaiting, time.Now())
	for i := 1; i <= 2; i++ {
		child, err := repo.Create(ctx, &models.Order{
			OrderNo:       fmt.Sprintf("JO-PARENT-%02d", i),
			ItemID:        item.ID,
			ParentOrderID: &parent.ID,
			PlanQty:       5,
			Status:        enums.OrderStatusWaiting,
			PlanDate:      time.Now(),
		})
		require.NoError(t, err)
		require.NotNil(t, child)
	}

	children, err := repo.ListChildren(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "JO-PARENT-01", children[0].OrderNo)
}

func TestRepositoryListCursorPagination(t *testing.T) {
	t.Parallel()

	db := newRepoDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	item := seedRepoItem(t, db)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedOrder(t, db, repo, item, fmt.Sprintf("JO-PAGE-%d", i), enums.OrderStatusWaiting, base.Add(time.Duration(i)*time.Hour))
	}

	first, err := repo.List(ctx, pagination.Params{Limit: 2}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, first.Orders, 2)
	require.NotNil(t, first.NextCursor)
	assert.Equal(t, "JO-PAGE-4", first.Orders[0].OrderNo, "newest first")

	second, err := repo.List(ctx, pagination.Params{Limit: 2, Cursor: *first.NextCursor}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, second.Orders, 2)
	assert.Equal(t, "JO-PAGE-2", second.Orders[0].OrderNo)
	require.NotNil(t, second.NextCursor)

	third, err := repo.List(ctx, pagination.Params{Limit: 2, Cursor: *second.NextCursor}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, third.Orders, 1)
	assert.Nil(t, third.NextCursor)
}

func TestRepositoryListFilters(t *testing.T) {
	t.Parallel()

	db := newRepoDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	item := seedRepoItem(t, db)
	other := seedRepoItem(t, db)

	now := time.Now()
	seedOrder(t, db, repo, item, "JO-F-1", enums.OrderStatusWaiting, now)
	seedOrder(t, db, repo, item, "JO-F-2", enums.OrderStatusRunning, now.Add(time.Minute))
	seedOrder(t, db, repo, other, "JO-F-3", enums.OrderStatusRunning, now.Add(2*time.Minute))

	running := enums.OrderStatusRunning
	page, err := repo.List(ctx, pagination.Params{}, ListFilters{Status: &running})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)

	page, err = repo.List(ctx, pagination.Params{}, ListFilters{Status: &running, ItemID: &item.ID})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, "JO-F-2", page.Orders[0].OrderNo)
}
