package db

import (
	"context"
	"fmt"
	"testing"
	"time"

	e "github.com/gartstein/fleet/internal/fleet/errors"
	"github.com/gartstein/fleet/internal/fleet/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

// SetupTestDB initializes an in-memory SQLite database for testing.
func SetupTestDB(t *testing.T) *Repository {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	repo, err := Open(sqlite.Open(dsn))
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := repo.SQLDB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = repo.Close() })

	return repo
}

func newCompany(name, taxID string) *models.Client {
	return &models.Client{
		ID:      uuid.New(),
		Name:    name,
		Details: models.CompanyDetails{CompanyID: taxID, TradeName: name + " Ltda"},
		Contact: models.Contact{Email: "ops@" + name + ".example"},
		Status:  models.ClientActive,
	}
}

func newVehicle(plate string) *models.Vehicle {
	return &models.Vehicle{
		ID:        uuid.New(),
		Plate:     plate,
		Make:      "Fiat",
		Model:     "Argo",
		ModelYear: 2024,
		Status:    models.VehicleAvailable,
		DailyRate: decimal.NewFromInt(150),
	}
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCreateAndGetClient(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	client := newCompany("acme", "11222333000181")
	require.NoError(t, repo.CreateClient(ctx, client))
	assert.False(t, client.CreatedAt.IsZero(), "CreatedAt should be set on create")

	got, err := repo.GetClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme", got.Name)
	assert.Equal(t, models.ClientCompany, got.Type())
	assert.Equal(t, "11222333000181", got.TaxID())
	details, ok := got.Details.(models.CompanyDetails)
	require.True(t, ok, "company details should round-trip")
	assert.Equal(t, "acme Ltda", details.TradeName)
}

func TestGetClientNotFound(t *testing.T) {
	repo := SetupTestDB(t)

	_, err := repo.GetClient(context.Background(), uuid.New())
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestClientTaxIDUniqueAmongLiveRows(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	first := newCompany("first", "123")
	require.NoError(t, repo.CreateClient(ctx, first))

	dup := newCompany("dup", "123")
	err := repo.CreateClient(ctx, dup)
	assert.ErrorIs(t, err, e.ErrConflict, "the partial unique index should reject a live duplicate")

	require.NoError(t, repo.SoftDeleteClient(ctx, first.ID))
	second := newCompany("second", "123")
	assert.NoError(t, repo.CreateClient(ctx, second), "soft-deleted rows should not block the identifier")

	err = repo.RestoreClient(ctx, first.ID)
	assert.ErrorIs(t, err, e.ErrConflict, "restoring into a taken identifier should violate the index")
}

func TestSoftDeleteAndRestoreClient(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	client := newCompany("acme", "42")
	require.NoError(t, repo.CreateClient(ctx, client))
	require.NoError(t, repo.SoftDeleteClient(ctx, client.ID))

	_, err := repo.GetClient(ctx, client.ID)
	assert.ErrorIs(t, err, e.ErrNotFound)

	deleted, err := repo.GetClientUnscoped(ctx, client.ID)
	require.NoError(t, err)
	assert.NotNil(t, deleted.DeletedAt)

	assert.ErrorIs(t, repo.SoftDeleteClient(ctx, client.ID), e.ErrNotFound, "second delete finds no live row")

	require.NoError(t, repo.RestoreClient(ctx, client.ID))
	restored, err := repo.GetClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Nil(t, restored.DeletedAt)

	assert.ErrorIs(t, repo.RestoreClient(ctx, client.ID), e.ErrNotFound, "restore of a live row matches nothing")
}

func TestUpdateClient(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	client := newCompany("acme", "42")
	require.NoError(t, repo.CreateClient(ctx, client))

	client.Name = "acme renamed"
	client.Status = models.ClientBlocked
	require.NoError(t, repo.UpdateClient(ctx, client))

	got, err := repo.GetClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme renamed", got.Name)
	assert.Equal(t, models.ClientBlocked, got.Status)

	missing := newCompany("ghost", "43")
	assert.ErrorIs(t, repo.UpdateClient(ctx, missing), e.ErrNotFound)
}

func TestListClientsFiltersAndPaginates(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.CreateClient(ctx, newCompany(fmt.Sprintf("company-%d", i), fmt.Sprintf("%d", 100+i))))
	}
	person := &models.Client{
		ID:      uuid.New(),
		Name:    "person",
		Details: models.IndividualDetails{PersonalID: "98765432100"},
		Status:  models.ClientActive,
	}
	require.NoError(t, repo.CreateClient(ctx, person))
	require.NoError(t, repo.SoftDeleteClient(ctx, person.ID))

	companyType := models.ClientCompany
	page, total, err := repo.ListClients(ctx, models.ClientFilter{
		Type: &companyType,
		Page: models.Page{Limit: 2, Offset: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	assert.Equal(t, "company-2", page[0].Name)

	_, total, err = repo.ListClients(ctx, models.ClientFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total, "soft-deleted clients are excluded by default")

	_, total, err = repo.ListClients(ctx, models.ClientFilter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
}

func TestSearchClients(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateClient(ctx, newCompany("Transportes Silva", "11.222.333/0001-81")))
	require.NoError(t, repo.CreateClient(ctx, newCompany("Locadora Norte", "99888777000166")))

	found, err := repo.SearchClients(ctx, "silva", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Transportes Silva", found[0].Name)

	found, err = repo.SearchClients(ctx, "222.333", 10)
	require.NoError(t, err)
	require.Len(t, found, 1, "partial identifiers match regardless of punctuation")
	assert.Equal(t, "11222333000181", found[0].TaxID())

	found, err = repo.SearchClients(ctx, "o", 1)
	require.NoError(t, err)
	assert.Len(t, found, 1, "the limit bounds the result count")
}

func TestClientReferences(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	client := newCompany("acme", "42")
	require.NoError(t, repo.CreateClient(ctx, client))
	driver := &models.Driver{
		ID:              uuid.New(),
		Name:            "Ana",
		TaxID:           "11122233344",
		LicenseNumber:   "L1",
		LicenseCategory: "B",
		LicenseExpiry:   day("2030-01-01"),
		Status:          models.DriverActive,
		ClientID:        &client.ID,
	}
	require.NoError(t, repo.CreateDriver(ctx, driver))
	require.NoError(t, repo.SoftDeleteDriver(ctx, driver.ID))

	rentals, drivers, err := repo.CountClientReferences(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rentals)
	assert.Equal(t, int64(1), drivers, "soft-deleted drivers still reference the client")
}

func TestDriverUniqueness(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	driver := &models.Driver{
		ID:              uuid.New(),
		Name:            "Ana",
		TaxID:           "11122233344",
		LicenseNumber:   "L1",
		LicenseCategory: "B",
		LicenseExpiry:   day("2030-01-01"),
		Status:          models.DriverActive,
	}
	require.NoError(t, repo.CreateDriver(ctx, driver))

	found, err := repo.FindActiveDriverByTaxID(ctx, "11122233344")
	require.NoError(t, err)
	assert.Equal(t, driver.ID, found.ID)

	takenLicense, err := repo.LicenseNumberTaken(ctx, "L1", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, takenLicense)

	takenLicense, err = repo.LicenseNumberTaken(ctx, "L1", driver.ID)
	require.NoError(t, err)
	assert.False(t, takenLicense, "the record itself is excluded")

	require.NoError(t, repo.SoftDeleteDriver(ctx, driver.ID))
	_, err = repo.FindActiveDriverByTaxID(ctx, "11122233344")
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestActiveRentalsForVehicle(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	vehicle := newVehicle("ABC1D23")
	require.NoError(t, repo.CreateVehicle(ctx, vehicle))

	mk := func(start, end string, status models.RentalStatus) *models.Rental {
		r := &models.Rental{
			ID:         uuid.New(),
			ClientID:   uuid.New(),
			DriverID:   uuid.New(),
			VehicleID:  vehicle.ID,
			Period:     models.Period{Start: day(start), End: day(end)},
			DailyRate:  decimal.NewFromInt(150),
			TotalDays:  5,
			TotalValue: decimal.NewFromInt(750),
			Status:     status,
		}
		require.NoError(t, repo.CreateRental(ctx, r))
		return r
	}
	active := mk("2026-01-10", "2026-01-15", models.RentalActive)
	mk("2026-01-01", "2026-01-05", models.RentalCancelled)
	deleted := mk("2026-02-01", "2026-02-05", models.RentalActive)
	require.NoError(t, repo.SoftDeleteRental(ctx, deleted.ID))

	found, err := repo.ActiveRentalsForVehicle(ctx, vehicle.ID, uuid.Nil)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, active.ID, found[0].ID)
	assert.True(t, found[0].TotalValue.Equal(decimal.NewFromInt(750)))
	assert.True(t, found[0].Start.Equal(day("2026-01-10")))

	found, err = repo.ActiveRentalsForVehicle(ctx, vehicle.ID, active.ID)
	require.NoError(t, err)
	assert.Empty(t, found)

	count, err := repo.CountVehicleRentals(ctx, vehicle.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestListRentalsDateRange(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()
	vehicleID := uuid.New()

	for _, p := range [][2]string{{"2026-01-01", "2026-01-05"}, {"2026-01-10", "2026-01-15"}, {"2026-02-01", "2026-02-03"}} {
		require.NoError(t, repo.CreateRental(ctx, &models.Rental{
			ID:        uuid.New(),
			ClientID:  uuid.New(),
			DriverID:  uuid.New(),
			VehicleID: vehicleID,
			Period:    models.Period{Start: day(p[0]), End: day(p[1])},
			Status:    models.RentalActive,
		}))
	}

	from, to := day("2026-01-04"), day("2026-01-12")
	found, total, err := repo.ListRentals(ctx, models.RentalFilter{VehicleID: &vehicleID, From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, found, 2)
}

func TestLockAndSetVehicleState(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	vehicle := newVehicle("XYZ9A87")
	require.NoError(t, repo.CreateVehicle(ctx, vehicle))

	err := repo.WithTransaction(ctx, func(tx *Repository) error {
		locked, err := tx.LockVehicle(ctx, vehicle.ID)
		if err != nil {
			return err
		}
		return tx.SetVehicleState(ctx, locked.ID, 1200, models.VehicleRented)
	})
	require.NoError(t, err)

	got, err := repo.GetVehicle(ctx, vehicle.ID)
	require.NoError(t, err)
	assert.Equal(t, 1200, got.Odometer)
	assert.Equal(t, models.VehicleRented, got.Status)

	assert.ErrorIs(t, repo.SetVehicleState(ctx, uuid.New(), 0, models.VehicleAvailable), e.ErrNotFound)
}

func TestTransactionRollback(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	client := newCompany("acme", "42")
	err := repo.WithTransaction(ctx, func(tx *Repository) error {
		if err := tx.CreateClient(ctx, client); err != nil {
			return err
		}
		return e.ErrConflict
	})
	assert.ErrorIs(t, err, e.ErrConflict)

	_, err = repo.GetClient(ctx, client.ID)
	assert.ErrorIs(t, err, e.ErrNotFound, "the insert should be rolled back")
}

func TestHardDeleteVehicle(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	vehicle := newVehicle("DEL0A00")
	require.NoError(t, repo.CreateVehicle(ctx, vehicle))
	require.NoError(t, repo.SoftDeleteVehicle(ctx, vehicle.ID))
	require.NoError(t, repo.HardDeleteVehicle(ctx, vehicle.ID))

	_, err := repo.GetVehicleUnscoped(ctx, vehicle.ID)
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestAuditEntries(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()
	driverID := uuid.New()

	for i, typ := range []string{"driver_created", "driver_migrated"} {
		require.NoError(t, repo.CreateAuditEntry(ctx, &models.AuditEntry{
			ID:         uuid.New(),
			EventType:  typ,
			Entity:     "driver",
			EntityID:   driverID,
			Payload:    []byte(`{}`),
			OccurredAt: day("2026-01-01").Add(time.Duration(i) * time.Hour),
		}))
	}

	entries, err := repo.ListAuditEntries(ctx, "driver", driverID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "driver_created", entries[0].EventType)
	assert.Equal(t, "driver_migrated", entries[1].EventType)
}
