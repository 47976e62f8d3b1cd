package db

import (
	"time"

	rows "github.com/gartstein/fleet/internal/fleet/db/models"
	"github.com/gartstein/fleet/internal/fleet/models"
	"gorm.io/gorm"
)

func deletedAt(d gorm.DeletedAt) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

func clientToRow(c *models.Client) *rows.Client {
	row := &rows.Client{
		ID:         c.ID,
		Type:       string(c.Type()),
		Name:       c.Name,
		TaxID:      c.TaxID(),
		Email:      c.Contact.Email,
		Phone:      c.Contact.Phone,
		Street:     c.Address.Street,
		Number:     c.Address.Number,
		Complement: c.Address.Complement,
		District:   c.Address.District,
		City:       c.Address.City,
		State:      c.Address.State,
		PostalCode: c.Address.PostalCode,
		Status:     string(c.Status),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	switch d := c.Details.(type) {
	case models.IndividualDetails:
		row.BirthDate = d.BirthDate
	case models.CompanyDetails:
		row.TradeName = d.TradeName
		row.StateRegistration = d.StateRegistration
	}
	return row
}

func clientFromRow(row *rows.Client) *models.Client {
	c := &models.Client{
		ID:   row.ID,
		Name: row.Name,
		Contact: models.Contact{
			Email: row.Email,
			Phone: row.Phone,
		},
		Address: models.Address{
			Street:     row.Street,
			Number:     row.Number,
			Complement: row.Complement,
			District:   row.District,
			City:       row.City,
			State:      row.State,
			PostalCode: row.PostalCode,
		},
		Status:    models.ClientStatus(row.Status),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		DeletedAt: deletedAt(row.DeletedAt),
	}
	switch models.ClientType(row.Type) {
	case models.ClientCompany:
		c.Details = models.CompanyDetails{
			CompanyID:         row.TaxID,
			TradeName:         row.TradeName,
			StateRegistration: row.StateRegistration,
		}
	default:
		c.Details = models.IndividualDetails{
			PersonalID: row.TaxID,
			BirthDate:  row.BirthDate,
		}
	}
	return c
}

func driverToRow(d *models.Driver) *rows.Driver {
	return &rows.Driver{
		ID:              d.ID,
		Name:            d.Name,
		TaxID:           d.TaxID,
		LicenseNumber:   d.LicenseNumber,
		LicenseCategory: d.LicenseCategory,
		LicenseExpiry:   d.LicenseExpiry,
		Email:           d.Contact.Email,
		Phone:           d.Contact.Phone,
		Status:          string(d.Status),
		ClientID:        d.ClientID,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func driverFromRow(row *rows.Driver) *models.Driver {
	return &models.Driver{
		ID:              row.ID,
		Name:            row.Name,
		TaxID:           row.TaxID,
		LicenseNumber:   row.LicenseNumber,
		LicenseCategory: row.LicenseCategory,
		LicenseExpiry:   row.LicenseExpiry,
		Contact: models.Contact{
			Email: row.Email,
			Phone: row.Phone,
		},
		Status:    models.DriverStatus(row.Status),
		ClientID:  row.ClientID,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		DeletedAt: deletedAt(row.DeletedAt),
	}
}

func vehicleToRow(v *models.Vehicle) *rows.Vehicle {
	return &rows.Vehicle{
		ID:          v.ID,
		Plate:       v.Plate,
		RegistryID:  v.RegistryID,
		Chassis:     v.Chassis,
		Make:        v.Make,
		Model:       v.Model,
		ModelYear:   v.ModelYear,
		Color:       v.Color,
		Odometer:    v.Odometer,
		Status:      string(v.Status),
		DailyRate:   v.DailyRate,
		WeeklyRate:  v.WeeklyRate,
		MonthlyRate: v.MonthlyRate,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

func vehicleFromRow(row *rows.Vehicle) *models.Vehicle {
	return &models.Vehicle{
		ID:          row.ID,
		Plate:       row.Plate,
		RegistryID:  row.RegistryID,
		Chassis:     row.Chassis,
		Make:        row.Make,
		Model:       row.Model,
		ModelYear:   row.ModelYear,
		Color:       row.Color,
		Odometer:    row.Odometer,
		Status:      models.VehicleStatus(row.Status),
		DailyRate:   row.DailyRate,
		WeeklyRate:  row.WeeklyRate,
		MonthlyRate: row.MonthlyRate,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		DeletedAt:   deletedAt(row.DeletedAt),
	}
}

func rentalToRow(r *models.Rental) *rows.Rental {
	return &rows.Rental{
		ID:           r.ID,
		ClientID:     r.ClientID,
		DriverID:     r.DriverID,
		VehicleID:    r.VehicleID,
		StartDate:    r.Start,
		EndDate:      r.End,
		ReturnDate:   r.ReturnDate,
		DailyRate:    r.DailyRate,
		TotalDays:    r.TotalDays,
		TotalValue:   r.TotalValue,
		Discount:     r.Discount,
		Status:       string(r.Status),
		Observations: r.Observations,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func rentalFromRow(row *rows.Rental) *models.Rental {
	return &models.Rental{
		ID:        row.ID,
		ClientID:  row.ClientID,
		DriverID:  row.DriverID,
		VehicleID: row.VehicleID,
		Period: models.Period{
			Start: row.StartDate.UTC(),
			End:   row.EndDate.UTC(),
		},
		ReturnDate:   row.ReturnDate,
		DailyRate:    row.DailyRate,
		TotalDays:    row.TotalDays,
		TotalValue:   row.TotalValue,
		Discount:     row.Discount,
		Status:       models.RentalStatus(row.Status),
		Observations: row.Observations,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		DeletedAt:    deletedAt(row.DeletedAt),
	}
}

func auditToRow(a *models.AuditEntry) *rows.AuditEntry {
	return &rows.AuditEntry{
		ID:         a.ID,
		EventType:  a.EventType,
		Entity:     a.Entity,
		EntityID:   a.EntityID,
		Payload:    a.Payload,
		OccurredAt: a.OccurredAt,
		RecordedAt: a.RecordedAt,
	}
}

func auditFromRow(row *rows.AuditEntry) *models.AuditEntry {
	return &models.AuditEntry{
		ID:         row.ID,
		EventType:  row.EventType,
		Entity:     row.Entity,
		EntityID:   row.EntityID,
		Payload:    row.Payload,
		OccurredAt: row.OccurredAt,
		RecordedAt: row.RecordedAt,
	}
}
