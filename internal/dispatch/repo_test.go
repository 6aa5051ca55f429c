package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/loadbridge-backend/pkg/db/models"
	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
	"github.com/angelmondragon/loadbridge-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRequestsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	driverRequests := `
CREATE TABLE IF NOT EXISTS driver_requests (
  id TEXT PRIMARY KEY,
  deal_id TEXT NOT NULL,
  driver_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  requested_price NUMERIC NOT NULL,
  driver_proposed_price NUMERIC,
  final_price NUMERIC,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (deal_id, driver_id)
);`
	require.NoError(t, db.Exec(driverRequests).Error)
	return db
}

func createRequest(t *testing.T, db *gorm.DB, dealID, driverID uuid.UUID, status enums.DriverRequestStatus, created time.Time) *models.DriverRequest {
	t.Helper()

	request := &models.DriverRequest{
		ID:             uuid.New(),
		DealID:         dealID,
		DriverID:       driverID,
		Status:         status,
		RequestedPrice: decimal.NewFromInt(500),
		CreatedAt:      created,
		UpdatedAt:      created,
	}
	require.NoError(t, db.Create(request).Error)
	return request
}

func TestRepositoryResolve_onlyPending(t *testing.T) {
	db := setupRequestsTestDB(t)
	repo := NewRepository(db)

	request := createRequest(t, db, uuid.New(), uuid.New(), enums.DriverRequestStatusPending, time.Now().UTC())

	rows, err := repo.Resolve(context.Background(), request.ID, map[string]any{
		"status":      enums.DriverRequestStatusAccepted,
		"final_price": decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.Resolve(context.Background(), request.ID, map[string]any{
		"status": enums.DriverRequestStatusRejected,
	})
	require.NoError(t, err)
	assert.Zero(t, rows)

	reloaded, err := repo.FindByID(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.DriverRequestStatusAccepted, reloaded.Status)
	require.NotNil(t, reloaded.FinalPrice)
	assert.True(t, reloaded.FinalPrice.Equal(decimal.NewFromInt(500)))
}

func TestRepositoryRejectOtherPending(t *testing.T) {
	db := setupRequestsTestDB(t)
	repo := NewRepository(db)

	dealID := uuid.New()
	now := time.Now().UTC()
	winner := createRequest(t, db, dealID, uuid.New(), enums.DriverRequestStatusAccepted, now)
	loser := createRequest(t, db, dealID, uuid.New(), enums.DriverRequestStatusPending, now)
	resolved := createRequest(t, db, dealID, uuid.New(), enums.DriverRequestStatusRejected, now)
	otherDeal := createRequest(t, db, uuid.New(), uuid.New(), enums.DriverRequestStatusPending, now)

	rows, err := repo.RejectOtherPending(context.Background(), dealID, winner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	reloaded, err := repo.FindByID(context.Background(), loser.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.DriverRequestStatusRejected, reloaded.Status)

	untouchedWinner, err := repo.FindByID(context.Background(), winner.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.DriverRequestStatusAccepted, untouchedWinner.Status)

	untouchedResolved, err := repo.FindByID(context.Background(), resolved.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.DriverRequestStatusRejected, untouchedResolved.Status)

	untouchedOther, err := repo.FindByID(context.Background(), otherDeal.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.DriverRequestStatusPending, untouchedOther.Status)
}

func TestRepositoryCreate_duplicateDriver(t *testing.T) {
	db := setupRequestsTestDB(t)
	repo := NewRepository(db)

	dealID := uuid.New()
	driverID := uuid.New()
	createRequest(t, db, dealID, driverID, enums.DriverRequestStatusRejected, time.Now().UTC())

	_, err := repo.Create(context.Background(), &models.DriverRequest{
		ID:             uuid.New(),
		DealID:         dealID,
		DriverID:       driverID,
		Status:         enums.DriverRequestStatusPending,
		RequestedPrice: decimal.NewFromInt(400),
	})
	require.Error(t, err)
}

func TestRepositoryListDriverInbox_pagination(t *testing.T) {
	db := setupRequestsTestDB(t)
	repo := NewRepository(db)

	driverID := uuid.New()
	now := time.Now().UTC()
	older := createRequest(t, db, uuid.New(), driverID, enums.DriverRequestStatusPending, now.Add(-time.Hour))
	newer := createRequest(t, db, uuid.New(), driverID, enums.DriverRequestStatusPending, now)
	createRequest(t, db, uuid.New(), uuid.New(), enums.DriverRequestStatusPending, now)

	list, err := repo.ListDriverInbox(context.Background(), driverID, pagination.Params{Limit: 1}, nil)
	require.NoError(t, err)
	require.Len(t, list.Requests, 1)
	assert.Equal(t, newer.ID, list.Requests[0].ID)
	assert.NotEmpty(t, list.NextCursor)

	second, err := repo.ListDriverInbox(context.Background(), driverID, pagination.Params{Limit: 1, Cursor: list.NextCursor}, nil)
	require.NoError(t, err)
	require.Len(t, second.Requests, 1)
	assert.Equal(t, older.ID, second.Requests[0].ID)
	assert.Empty(t, second.NextCursor)
}

func TestRepositoryListDriverInbox_statusFilter(t *testing.T) {
	db := setupRequestsTestDB(t)
	repo := NewRepository(db)

	driverID := uuid.New()
	now := time.Now().UTC()
	pending := createRequest(t, db, uuid.New(), driverID, enums.DriverRequestStatusPending, now)
	createRequest(t, db, uuid.New(), driverID, enums.DriverRequestStatusRejected, now.Add(-time.Minute))

	status := enums.DriverRequestStatusPending
	list, err := repo.ListDriverInbox(context.Background(), driverID, pagination.Params{Limit: 10}, &status)
	require.NoError(t, err)
	require.Len(t, list.Requests, 1)
	assert.Equal(t, pending.ID, list.Requests[0].ID)
}
