package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gartstein/fleet/internal/fleet/auth"
	"github.com/gartstein/fleet/internal/fleet/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
)

// ClientController is the client registry used by the REST routes.
type ClientController interface {
	CreateClient(ctx context.Context, client *models.Client) (*models.Client, error)
	GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	ListClients(ctx context.Context, filter models.ClientFilter) ([]*models.Client, int64, error)
	SearchClients(ctx context.Context, query string, limit int) ([]*models.Client, error)
	UpdateClient(ctx context.Context, update *models.ClientUpdate) (*models.Client, error)
	SoftDeleteClient(ctx context.Context, id uuid.UUID) error
	RestoreClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	HardDeleteClient(ctx context.Context, id uuid.UUID) error
}

// DriverController is the driver registry, migration included.
type DriverController interface {
	CreateDriver(ctx context.Context, driver *models.Driver) (*models.Driver, error)
	GetDriver(ctx context.Context, id uuid.UUID) (*models.Driver, error)
	ListDrivers(ctx context.Context, filter models.DriverFilter) ([]*models.Driver, int64, error)
	SearchDrivers(ctx context.Context, query string, limit int) ([]*models.Driver, error)
	UpdateDriver(ctx context.Context, update *models.DriverUpdate) (*models.Driver, error)
	SoftDeleteDriver(ctx context.Context, id uuid.UUID) error
	RestoreDriver(ctx context.Context, id uuid.UUID) (*models.Driver, error)
	HardDeleteDriver(ctx context.Context, id uuid.UUID) error
	MigrateDriver(ctx context.Context, driverID, newClientID uuid.UUID) (*models.MigrationResult, error)
}

// VehicleController is the vehicle registry.
type VehicleController interface {
	CreateVehicle(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error)
	GetVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	ListVehicles(ctx context.Context, filter models.VehicleFilter) ([]*models.Vehicle, int64, error)
	SearchVehicles(ctx context.Context, query string, limit int) ([]*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, update *models.VehicleUpdate) (*models.Vehicle, error)
	SoftDeleteVehicle(ctx context.Context, id uuid.UUID) error
	RestoreVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	HardDeleteVehicle(ctx context.Context, id uuid.UUID) error
}

// RentalController is the rental lifecycle manager.
type RentalController interface {
	CreateRental(ctx context.Context, in *models.NewRental) (*models.Rental, error)
	GetRental(ctx context.Context, id uuid.UUID) (*models.Rental, error)
	ListRentals(ctx context.Context, filter models.RentalFilter) ([]*models.Rental, int64, error)
	UpdateRental(ctx context.Context, update *models.RentalUpdate) (*models.Rental, error)
	ReturnVehicle(ctx context.Context, id uuid.UUID, odometer int, observations *string) (*models.Rental, error)
	CancelRental(ctx context.Context, id uuid.UUID) (*models.Rental, error)
	SoftDeleteRental(ctx context.Context, id uuid.UUID) error
	CheckAvailability(ctx context.Context, vehicleID uuid.UUID, p models.Period) (*models.Availability, error)
}

// AuditController reads the recorded lifecycle history.
type AuditController interface {
	History(ctx context.Context, entity string, id uuid.UUID, limit int) ([]*models.AuditEntry, error)
}

// Services bundles the controllers served by the API.
type Services struct {
	Clients  ClientController
	Drivers  DriverController
	Vehicles VehicleController
	Rentals  RentalController
	Audit    AuditController
}

// API maps REST routes onto the fleet controllers.
type API struct {
	clients  ClientController
	drivers  DriverController
	vehicles VehicleController
	rentals  RentalController
	audit    AuditController
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAPI constructs the REST API over the given services.
func NewAPI(svc Services, logger *zap.Logger) *API {
	return &API{
		clients:  svc.Clients,
		drivers:  svc.Drivers,
		vehicles: svc.Vehicles,
		rentals:  svc.Rentals,
		audit:    svc.Audit,
		validate: validator.New(),
		logger:   logger.Named("http_handler"),
	}
}

type route struct {
	method  string
	pattern string
	handler runtime.HandlerFunc
}

func (a *API) routes() []route {
	return []route{
		{http.MethodGet, "/v1/clients", a.listClients},
		{http.MethodPost, "/v1/clients", a.createClient},
		{http.MethodGet, "/v1/clients/{id}", a.getClient},
		{http.MethodPatch, "/v1/clients/{id}", a.updateClient},
		{http.MethodDelete, "/v1/clients/{id}", a.deleteClient},
		{http.MethodPost, "/v1/clients/{id}/restore", a.restoreClient},
		{http.MethodDelete, "/v1/clients/{id}/purge", a.purgeClient},

		{http.MethodGet, "/v1/drivers", a.listDrivers},
		{http.MethodPost, "/v1/drivers", a.createDriver},
		{http.MethodGet, "/v1/drivers/{id}", a.getDriver},
		{http.MethodPatch, "/v1/drivers/{id}", a.updateDriver},
		{http.MethodDelete, "/v1/drivers/{id}", a.deleteDriver},
		{http.MethodPost, "/v1/drivers/{id}/restore", a.restoreDriver},
		{http.MethodDelete, "/v1/drivers/{id}/purge", a.purgeDriver},
		{http.MethodPost, "/v1/drivers/{id}/migrate", a.migrateDriver},

		{http.MethodGet, "/v1/vehicles", a.listVehicles},
		{http.MethodPost, "/v1/vehicles", a.createVehicle},
		{http.MethodGet, "/v1/vehicles/{id}", a.getVehicle},
		{http.MethodPatch, "/v1/vehicles/{id}", a.updateVehicle},
		{http.MethodDelete, "/v1/vehicles/{id}", a.deleteVehicle},
		{http.MethodPost, "/v1/vehicles/{id}/restore", a.restoreVehicle},
		{http.MethodDelete, "/v1/vehicles/{id}/purge", a.purgeVehicle},
		{http.MethodGet, "/v1/vehicles/{id}/availability", a.vehicleAvailability},

		{http.MethodGet, "/v1/rentals", a.listRentals},
		{http.MethodPost, "/v1/rentals", a.createRental},
		{http.MethodGet, "/v1/rentals/{id}", a.getRental},
		{http.MethodPatch, "/v1/rentals/{id}", a.updateRental},
		{http.MethodDelete, "/v1/rentals/{id}", a.deleteRental},
		{http.MethodPost, "/v1/rentals/{id}/return", a.returnRental},
		{http.MethodPost, "/v1/rentals/{id}/cancel", a.cancelRental},

		{http.MethodGet, "/v1/search/{entity}", a.search},
		{http.MethodGet, "/v1/audit/{entity}/{id}", a.history},
	}
}

// Register installs every route on mux.
func (a *API) Register(mux *runtime.ServeMux) error {
	for _, rt := range a.routes() {
		handler := rt.handler
		if rt.method != http.MethodGet {
			handler = a.logMutation(handler)
		}
		if err := mux.HandlePath(rt.method, rt.pattern, handler); err != nil {
			return err
		}
	}
	return nil
}

// logMutation records the caller of every state-changing request.
func (a *API) logMutation(h runtime.HandlerFunc) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		a.logger.Info("Mutating request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("actor", auth.Subject(r.Context())),
		)
		h(w, r, params)
	}
}

// decode reads a JSON body into dst and validates its struct tags.
func (a *API) decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return invalidPayload(err)
	}
	if err := a.validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func (a *API) respond(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.logger.Error("Failed to write response", zap.Error(err))
	}
}

type listResponse struct {
	Items  interface{} `json:"items"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

type itemsResponse struct {
	Items interface{} `json:"items"`
}

func (a *API) respondList(w http.ResponseWriter, items interface{}, total int64, page models.Page) {
	page = page.Normalize()
	a.respond(w, http.StatusOK, listResponse{Items: items, Total: total, Limit: page.Limit, Offset: page.Offset})
}
