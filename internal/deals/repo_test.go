package deals

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

func setupDealsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	sellerProfiles := `
CREATE TABLE IF NOT EXISTS seller_profiles (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  business_name TEXT NOT NULL,
  city TEXT NOT NULL,
  address TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	supplierProfiles := `
CREATE TABLE IF NOT EXISTS supplier_profiles (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  company_name TEXT NOT NULL,
  city TEXT NOT NULL,
  address TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	deals := `
CREATE TABLE IF NOT EXISTS deals (
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL,
  supplier_id TEXT NOT NULL,
  driver_id TEXT,
  status TEXT NOT NULL DEFAULT 'dealing',
  delivery_handling TEXT NOT NULL DEFAULT 'system_driver',
  delivery_cost_split INTEGER NOT NULL DEFAULT 50,
  created_by_user_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	dealItems := `
CREATE TABLE IF NOT EXISTS deal_items (
  id TEXT PRIMARY KEY,
  deal_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(sellerProfiles).Error)
	require.NoError(t, db.Exec(supplierProfiles).Error)
	require.NoError(t, db.Exec(deals).Error)
	require.NoError(t, db.Exec(dealItems).Error)
	return db
}

func newSeller(t *testing.T, db *gorm.DB, name, city string) *models.SellerProfile {
	t.Helper()

	seller := &models.SellerProfile{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		BusinessName: name,
		City:         city,
		Address:      "1 Market St",
	}
	require.NoError(t, db.Create(seller).Error)
	return seller
}

func newSupplier(t *testing.T, db *gorm.DB, name, city string) *models.SupplierProfile {
	t.Helper()

	supplier := &models.SupplierProfile{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		CompanyName: name,
		City:        city,
		Address:     "9 Depot Ave",
		IsActive:    true,
	}
	require.NoError(t, db.Create(supplier).Error)
	return supplier
}

func createDeal(t *testing.T, db *gorm.DB, seller *models.SellerProfile, supplier *models.SupplierProfile, status enums.DealStatus, created time.Time, qty int) *models.Deal {
	t.Helper()

	deal := &models.Deal{
		ID:                uuid.New(),
		SellerID:          seller.ID,
		SupplierID:        supplier.ID,
		Status:            status,
		DeliveryHandling:  enums.DeliveryHandlingSystemDriver,
		DeliveryCostSplit: 50,
		CreatedByUserID:   seller.UserID,
		CreatedAt:         created,
		UpdatedAt:         created,
	}
	require.NoError(t, db.Create(deal).Error)

	item := &models.DealItem{
		ID:        uuid.New(),
		DealID:    deal.ID,
		ProductID: uuid.New(),
		Quantity:  qty,
		UnitPrice: decimal.NewFromInt(10),
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, db.Create(item).Error)
	return deal
}

func TestRepositoryListSellerDeals_pagination(t *testing.T) {
	db := setupDealsTestDB(t)
	repo := NewRepository(db)

	seller := newSeller(t, db, "Norte Builds", "Monterrey")
	supplierA := newSupplier(t, db, "Cemex Hub", "Monterrey")
	supplierB := newSupplier(t, db, "Acero MX", "Saltillo")

	now := time.Now().UTC()
	createDeal(t, db, seller, supplierA, enums.DealStatusDealing, now.Add(-time.Hour), 2)
	createDeal(t, db, seller, supplierB, enums.DealStatusAccepted, now, 3)

	list, err := repo.ListSellerDeals(context.Background(), seller.ID, pagination.Params{Limit: 1}, DealFilters{})
	require.NoError(t, err)
	require.Len(t, list.Deals, 1)
	assert.NotEmpty(t, list.NextCursor)
	assert.Equal(t, "Acero MX", list.Deals[0].Supplier.Name)
	assert.Equal(t, "Saltillo", list.Deals[0].Supplier.City)
	assert.Equal(t, 1, list.Deals[0].ItemCount)
	assert.True(t, list.Deals[0].TotalPrice.Equal(decimal.NewFromInt(30)))

	second, err := repo.ListSellerDeals(context.Background(), seller.ID, pagination.Params{Limit: 1, Cursor: list.NextCursor}, DealFilters{})
	require.NoError(t, err)
	require.Len(t, second.Deals, 1)
	assert.Equal(t, "Cemex Hub", second.Deals[0].Supplier.Name)
	assert.Empty(t, second.NextCursor)
}

func TestRepositoryListSupplierDeals_statusFilter(t *testing.T) {
	db := setupDealsTestDB(t)
	repo := NewRepository(db)

	seller := newSeller(t, db, "Obra Sur", "Guadalajara")
	supplier := newSupplier(t, db, "Block Co", "Guadalajara")

	now := time.Now().UTC()
	createDeal(t, db, seller, supplier, enums.DealStatusDealing, now.Add(-time.Minute), 1)
	accepted := createDeal(t, db, seller, supplier, enums.DealStatusAccepted, now, 2)

	status := enums.DealStatusAccepted
	list, err := repo.ListSupplierDeals(context.Background(), supplier.ID, pagination.Params{Limit: 10}, DealFilters{Status: &status})
	require.NoError(t, err)
	require.Len(t, list.Deals, 1)
	assert.Equal(t, accepted.ID, list.Deals[0].ID)
	assert.Equal(t, "Obra Sur", list.Deals[0].Seller.Name)
}

func TestRepositoryTransitionStatus_guardsExpected(t *testing.T) {
	db := setupDealsTestDB(t)
	repo := NewRepository(db)

	seller := newSeller(t, db, "Guard Seller", "Leon")
	supplier := newSupplier(t, db, "Guard Supplier", "Leon")
	deal := createDeal(t, db, seller, supplier, enums.DealStatusDealing, time.Now().UTC(), 1)

	rows, err := repo.TransitionStatus(context.Background(), deal.ID,
		[]enums.DealStatus{enums.DealStatusAccepted},
		map[string]any{"status": enums.DealStatusInDelivery})
	require.NoError(t, err)
	assert.Zero(t, rows)

	rows, err = repo.TransitionStatus(context.Background(), deal.ID,
		[]enums.DealStatus{enums.DealStatusDealing},
		map[string]any{"status": enums.DealStatusAccepted})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	reloaded, err := repo.FindDealByID(context.Background(), deal.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.DealStatusAccepted, reloaded.Status)
}

func TestRepositoryAssignDriver_singleWinner(t *testing.T) {
	db := setupDealsTestDB(t)
	repo := NewRepository(db)

	seller := newSeller(t, db, "Race Seller", "Puebla")
	supplier := newSupplier(t, db, "Race Supplier", "Puebla")
	deal := createDeal(t, db, seller, supplier, enums.DealStatusAssigningDriver, time.Now().UTC(), 1)

	first := uuid.New()
	second := uuid.New()

	rows, err := repo.AssignDriver(context.Background(), deal.ID, first)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.AssignDriver(context.Background(), deal.ID, second)
	require.NoError(t, err)
	assert.Zero(t, rows)

	reloaded, err := repo.FindDealByID(context.Background(), deal.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.DriverID)
	assert.Equal(t, first, *reloaded.DriverID)
}

func TestRepositoryFindDealWithItems(t *testing.T) {
	db := setupDealsTestDB(t)
	repo := NewRepository(db)

	seller := newSeller(t, db, "Items Seller", "Queretaro")
	supplier := newSupplier(t, db, "Items Supplier", "Queretaro")
	deal := createDeal(t, db, seller, supplier, enums.DealStatusDealing, time.Now().UTC(), 4)

	loaded, err := repo.FindDealWithItems(context.Background(), deal.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, 4, loaded.Items[0].Quantity)
}
