package controller

import (
	e "github.com/gartstein/fleet/internal/fleet/errors"
	"github.com/gartstein/fleet/internal/fleet/models"
	"github.com/shopspring/decimal"
)

// RentalQuote is the price breakdown of a rental period.
type RentalQuote struct {
	DailyRate decimal.Decimal
	TotalDays int
	Gross     decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
}

// QuoteRental prices period at rate per started day minus discount.
// Discounts larger than the gross amount are rejected.
func QuoteRental(period models.Period, rate, discount decimal.Decimal) (RentalQuote, error) {
	if err := period.Validate(); err != nil {
		return RentalQuote{}, err
	}
	if rate.IsNegative() {
		return RentalQuote{}, e.Invalid("daily_rate cannot be negative")
	}
	if discount.IsNegative() {
		return RentalQuote{}, e.Invalid("discount cannot be negative")
	}

	days := period.Days()
	gross := rate.Mul(decimal.NewFromInt(int64(days)))
	if discount.GreaterThan(gross) {
		return RentalQuote{}, e.Invalid("discount %s exceeds rental value %s", discount.StringFixed(2), gross.StringFixed(2))
	}

	return RentalQuote{
		DailyRate: rate,
		TotalDays: days,
		Gross:     gross,
		Discount:  discount,
		Total:     gross.Sub(discount),
	}, nil
}

// applyQuote copies the computed amounts onto the rental.
func applyQuote(r *models.Rental, q RentalQuote) {
	r.DailyRate = q.DailyRate
	r.TotalDays = q.TotalDays
	r.Discount = q.Discount
	r.TotalValue = q.Total
}
