package handlers

import (
	"context"

	"github.com/gartstein/fleet/internal/fleet/models"
	"github.com/google/uuid"
)

// mockClients is a func-field implementation of ClientController.
type mockClients struct {
	createFunc  func(ctx context.Context, client *models.Client) (*models.Client, error)
	getFunc     func(ctx context.Context, id uuid.UUID) (*models.Client, error)
	listFunc    func(ctx context.Context, filter models.ClientFilter) ([]*models.Client, int64, error)
	searchFunc  func(ctx context.Context, query string, limit int) ([]*models.Client, error)
	updateFunc  func(ctx context.Context, update *models.ClientUpdate) (*models.Client, error)
	deleteFunc  func(ctx context.Context, id uuid.UUID) error
	restoreFunc func(ctx context.Context, id uuid.UUID) (*models.Client, error)
	purgeFunc   func(ctx context.Context, id uuid.UUID) error
}

func (m *mockClients) CreateClient(ctx context.Context, client *models.Client) (*models.Client, error) {
	return m.createFunc(ctx, client)
}

func (m *mockClients) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	return m.getFunc(ctx, id)
}

func (m *mockClients) ListClients(ctx context.Context, filter models.ClientFilter) ([]*models.Client, int64, error) {
	return m.listFunc(ctx, filter)
}

func (m *mockClients) SearchClients(ctx context.Context, query string, limit int) ([]*models.Client, error) {
	return m.searchFunc(ctx, query, limit)
}

func (m *mockClients) UpdateClient(ctx context.Context, update *models.ClientUpdate) (*models.Client, error) {
	return m.updateFunc(ctx, update)
}

func (m *mockClients) SoftDeleteClient(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockClients) RestoreClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	return m.restoreFunc(ctx, id)
}

func (m *mockClients) HardDeleteClient(ctx context.Context, id uuid.UUID) error {
	return m.purgeFunc(ctx, id)
}

// mockDrivers is a func-field implementation of DriverController.
type mockDrivers struct {
	createFunc  func(ctx context.Context, driver *models.Driver) (*models.Driver, error)
	getFunc     func(ctx context.Context, id uuid.UUID) (*models.Driver, error)
	listFunc    func(ctx context.Context, filter models.DriverFilter) ([]*models.Driver, int64, error)
	searchFunc  func(ctx context.Context, query string, limit int) ([]*models.Driver, error)
	updateFunc  func(ctx context.Context, update *models.DriverUpdate) (*models.Driver, error)
	deleteFunc  func(ctx context.Context, id uuid.UUID) error
	restoreFunc func(ctx context.Context, id uuid.UUID) (*models.Driver, error)
	purgeFunc   func(ctx context.Context, id uuid.UUID) error
	migrateFunc func(ctx context.Context, driverID, newClientID uuid.UUID) (*models.MigrationResult, error)
}

func (m *mockDrivers) CreateDriver(ctx context.Context, driver *models.Driver) (*models.Driver, error) {
	return m.createFunc(ctx, driver)
}

func (m *mockDrivers) GetDriver(ctx context.Context, id uuid.UUID) (*models.Driver, error) {
	return m.getFunc(ctx, id)
}

func (m *mockDrivers) ListDrivers(ctx context.Context, filter models.DriverFilter) ([]*models.Driver, int64, error) {
	return m.listFunc(ctx, filter)
}

func (m *mockDrivers) SearchDrivers(ctx context.Context, query string, limit int) ([]*models.Driver, error) {
	return m.searchFunc(ctx, query, limit)
}

func (m *mockDrivers) UpdateDriver(ctx context.Context, update *models.DriverUpdate) (*models.Driver, error) {
	return m.updateFunc(ctx, update)
}

func (m *mockDrivers) SoftDeleteDriver(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockDrivers) RestoreDriver(ctx context.Context, id uuid.UUID) (*models.Driver, error) {
	return m.restoreFunc(ctx, id)
}

func (m *mockDrivers) HardDeleteDriver(ctx context.Context, id uuid.UUID) error {
	return m.purgeFunc(ctx, id)
}

func (m *mockDrivers) MigrateDriver(ctx context.Context, driverID, newClientID uuid.UUID) (*models.MigrationResult, error) {
	return m.migrateFunc(ctx, driverID, newClientID)
}

// mockVehicles is a func-field implementation of VehicleController.
type mockVehicles struct {
	createFunc  func(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error)
	getFunc     func(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	listFunc    func(ctx context.Context, filter models.VehicleFilter) ([]*models.Vehicle, int64, error)
	searchFunc  func(ctx context.Context, query string, limit int) ([]*models.Vehicle, error)
	updateFunc  func(ctx context.Context, update *models.VehicleUpdate) (*models.Vehicle, error)
	deleteFunc  func(ctx context.Context, id uuid.UUID) error
	restoreFunc func(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	purgeFunc   func(ctx context.Context, id uuid.UUID) error
}

func (m *mockVehicles) CreateVehicle(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	return m.createFunc(ctx, vehicle)
}

func (m *mockVehicles) GetVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	return m.getFunc(ctx, id)
}

func (m *mockVehicles) ListVehicles(ctx context.Context, filter models.VehicleFilter) ([]*models.Vehicle, int64, error) {
	return m.listFunc(ctx, filter)
}

func (m *mockVehicles) SearchVehicles(ctx context.Context, query string, limit int) ([]*models.Vehicle, error) {
	return m.searchFunc(ctx, query, limit)
}

func (m *mockVehicles) UpdateVehicle(ctx context.Context, update *models.VehicleUpdate) (*models.Vehicle, error) {
	return m.updateFunc(ctx, update)
}

func (m *mockVehicles) SoftDeleteVehicle(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockVehicles) RestoreVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	return m.restoreFunc(ctx, id)
}

func (m *mockVehicles) HardDeleteVehicle(ctx context.Context, id uuid.UUID) error {
	return m.purgeFunc(ctx, id)
}

// mockRentals is a func-field implementation of RentalController.
type mockRentals struct {
	createFunc       func(ctx context.Context, in *models.NewRental) (*models.Rental, error)
	getFunc          func(ctx context.Context, id uuid.UUID) (*models.Rental, error)
	listFunc         func(ctx context.Context, filter models.RentalFilter) ([]*models.Rental, int64, error)
	updateFunc       func(ctx context.Context, update *models.RentalUpdate) (*models.Rental, error)
	returnFunc       func(ctx context.Context, id uuid.UUID, odometer int, observations *string) (*models.Rental, error)
	cancelFunc       func(ctx context.Context, id uuid.UUID) (*models.Rental, error)
	deleteFunc       func(ctx context.Context, id uuid.UUID) error
	availabilityFunc func(ctx context.Context, vehicleID uuid.UUID, p models.Period) (*models.Availability, error)
}

func (m *mockRentals) CreateRental(ctx context.Context, in *models.NewRental) (*models.Rental, error) {
	return m.createFunc(ctx, in)
}

func (m *mockRentals) GetRental(ctx context.Context, id uuid.UUID) (*models.Rental, error) {
	return m.getFunc(ctx, id)
}

func (m *mockRentals) ListRentals(ctx context.Context, filter models.RentalFilter) ([]*models.Rental, int64, error) {
	return m.listFunc(ctx, filter)
}

func (m *mockRentals) UpdateRental(ctx context.Context, update *models.RentalUpdate) (*models.Rental, error) {
	return m.updateFunc(ctx, update)
}

func (m *mockRentals) ReturnVehicle(ctx context.Context, id uuid.UUID, odometer int, observations *string) (*models.Rental, error) {
	return m.returnFunc(ctx, id, odometer, observations)
}

func (m *mockRentals) CancelRental(ctx context.Context, id uuid.UUID) (*models.Rental, error) {
	return m.cancelFunc(ctx, id)
}

func (m *mockRentals) SoftDeleteRental(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockRentals) CheckAvailability(ctx context.Context, vehicleID uuid.UUID, p models.Period) (*models.Availability, error) {
	return m.availabilityFunc(ctx, vehicleID, p)
}

type mockAudit struct {
	historyFunc func(ctx context.Context, entity string, id uuid.UUID, limit int) ([]*models.AuditEntry, error)
}

func (m *mockAudit) History(ctx context.Context, entity string, id uuid.UUID, limit int) ([]*models.AuditEntry, error) {
	return m.historyFunc(ctx, entity, id, limit)
}
