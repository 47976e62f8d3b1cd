package handlers

import (
	"time"

	e "github.com/gartstein/fleet/internal/fleet/errors"
	"github.com/gartstein/fleet/internal/fleet/models"
	"github.com/gartstein/fleet/internal/pkg/utils"
	"github.com/google/uuid"
)

// clientDetails builds the variant payload matching clientType.
func clientDetails(clientType, personalID string, birthDate *time.Time, companyID, tradeName, stateReg string) models.ClientDetails {
	switch models.ClientType(clientType) {
	case models.ClientIndividual:
		return models.IndividualDetails{PersonalID: personalID, BirthDate: birthDate}
	case models.ClientCompany:
		return models.CompanyDetails{CompanyID: companyID, TradeName: tradeName, StateRegistration: stateReg}
	}
	return nil
}

func (req *clientRequest) toModel() *models.Client {
	c := &models.Client{
		Name:    req.Name,
		Details: clientDetails(req.Type, req.PersonalID, req.BirthDate.Ptr(), req.CompanyID, req.TradeName, req.StateRegistration),
		Contact: models.Contact{Email: req.Email, Phone: req.Phone},
		Status:  models.ClientStatus(req.Status),
	}
	if req.Address != nil {
		c.Address = *req.Address
	}
	return c
}

func (p *clientPatch) toUpdate(id uuid.UUID) (*models.ClientUpdate, error) {
	update := &models.ClientUpdate{
		ID:      id,
		Name:    p.Name,
		Email:   p.Email,
		Phone:   p.Phone,
		Address: p.Address,
	}
	if p.Status != nil {
		s := models.ClientStatus(*p.Status)
		update.Status = &s
	}

	touchesDetails := p.PersonalID != nil || p.BirthDate != nil || p.CompanyID != nil ||
		p.TradeName != nil || p.StateRegistration != nil
	if p.Type == nil {
		if touchesDetails {
			return nil, e.Invalid("type is required when changing client details")
		}
		return update, nil
	}
	update.Details = clientDetails(*p.Type, utils.Deref(p.PersonalID, ""), p.BirthDate.Ptr(),
		utils.Deref(p.CompanyID, ""), utils.Deref(p.TradeName, ""), utils.Deref(p.StateRegistration, ""))
	return update, nil
}

type clientResponse struct {
	ID        uuid.UUID            `json:"id"`
	Name      string               `json:"name"`
	Type      models.ClientType    `json:"type"`
	TaxID     string               `json:"tax_id"`
	Details   models.ClientDetails `json:"details"`
	Contact   models.Contact       `json:"contact"`
	Address   models.Address       `json:"address"`
	Status    models.ClientStatus  `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	DeletedAt *time.Time           `json:"deleted_at,omitempty"`
}

func clientToResponse(c *models.Client) *clientResponse {
	return &clientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Type:      c.Type(),
		TaxID:     c.TaxID(),
		Details:   c.Details,
		Contact:   c.Contact,
		Address:   c.Address,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		DeletedAt: c.DeletedAt,
	}
}

func clientsToResponse(clients []*models.Client) []*clientResponse {
	out := make([]*clientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, clientToResponse(c))
	}
	return out
}

func (req *driverRequest) toModel() *models.Driver {
	return &models.Driver{
		Name:            req.Name,
		TaxID:           req.TaxID,
		LicenseNumber:   req.LicenseNumber,
		LicenseCategory: req.LicenseCategory,
		LicenseExpiry:   req.LicenseExpiry.Time,
		Contact:         models.Contact{Email: req.Email, Phone: req.Phone},
		Status:          models.DriverStatus(req.Status),
		ClientID:        req.ClientID,
	}
}

func (p *driverPatch) toUpdate(id uuid.UUID) *models.DriverUpdate {
	update := &models.DriverUpdate{
		ID:              id,
		Name:            p.Name,
		TaxID:           p.TaxID,
		LicenseNumber:   p.LicenseNumber,
		LicenseCategory: p.LicenseCategory,
		LicenseExpiry:   p.LicenseExpiry.Ptr(),
		Email:           p.Email,
		Phone:           p.Phone,
		ClientID:        p.ClientID,
	}
	if p.Status != nil {
		s := models.DriverStatus(*p.Status)
		update.Status = &s
	}
	return update
}

func (req *vehicleRequest) toModel() *models.Vehicle {
	return &models.Vehicle{
		Plate:       req.Plate,
		RegistryID:  req.RegistryID,
		Chassis:     req.Chassis,
		Make:        req.Make,
		Model:       req.Model,
		ModelYear:   req.ModelYear,
		Color:       req.Color,
		Odometer:    req.Odometer,
		Status:      models.VehicleStatus(req.Status),
		DailyRate:   req.DailyRate,
		WeeklyRate:  req.WeeklyRate,
		MonthlyRate: req.MonthlyRate,
	}
}

func (p *vehiclePatch) toUpdate(id uuid.UUID) *models.VehicleUpdate {
	update := &models.VehicleUpdate{
		ID:          id,
		Plate:       p.Plate,
		RegistryID:  p.RegistryID,
		Chassis:     p.Chassis,
		Make:        p.Make,
		Model:       p.Model,
		ModelYear:   p.ModelYear,
		Color:       p.Color,
		Odometer:    p.Odometer,
		DailyRate:   p.DailyRate,
		WeeklyRate:  p.WeeklyRate,
		MonthlyRate: p.MonthlyRate,
	}
	if p.Status != nil {
		s := models.VehicleStatus(*p.Status)
		update.Status = &s
	}
	return update
}

func (req *rentalRequest) toModel() *models.NewRental {
	return &models.NewRental{
		ClientID:  req.ClientID,
		DriverID:  req.DriverID,
		VehicleID: req.VehicleID,
		Period: models.Period{
			Start: req.StartDate.Time,
			End:   req.EndDate.Time,
		},
		DailyRate:    req.DailyRate,
		Discount:     req.Discount,
		Observations: req.Observations,
	}
}

func (p *rentalPatch) toUpdate(id uuid.UUID) *models.RentalUpdate {
	return &models.RentalUpdate{
		ID:           id,
		Start:        p.StartDate.Ptr(),
		End:          p.EndDate.Ptr(),
		DailyRate:    p.DailyRate,
		Discount:     p.Discount,
		Observations: p.Observations,
	}
}
