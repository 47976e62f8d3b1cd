package handlers

import (
	"net/http"

	"github.com/gartstein/fleet/internal/fleet/models"
)

func (a *API) createRental(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req rentalRequest
	if err := a.decode(r, &req); err != nil {
		a.writeError(w, err)
		return
	}

	created, err := a.rentals.CreateRental(r.Context(), req.toModel())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respond(w, http.StatusCreated, created)
}

func (a *API) getRental(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "rental")
	if err != nil {
		a.writeError(w, err)
		return
	}

	rental, err := a.rentals.GetRental(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respond(w, http.StatusOK, rental)
}

func (a *API) listRentals(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	filter, err := rentalFilter(r)
	if err != nil {
		a.writeError(w, err)
		return
	}

	rentals, total, err := a.rentals.ListRentals(r.Context(), filter)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respondList(w, rentals, total, filter.Page)
}

func rentalFilter(r *http.Request) (models.RentalFilter, error) {
	q := r.URL.Query()
	var (
		filter models.RentalFilter
		err    error
	)
	if filter.Page, err = queryPage(q); err != nil {
		return filter, err
	}
	if filter.IncludeDeleted, err = queryBool(q, "include_deleted"); err != nil {
		return filter, err
	}
	if filter.ClientID, err = queryUUID(q, "client_id"); err != nil {
		return filter, err
	}
	if filter.DriverID, err = queryUUID(q, "driver_id"); err != nil {
		return filter, err
	}
	if filter.VehicleID, err = queryUUID(q, "vehicle_id"); err != nil {
		return filter, err
	}
	if filter.From, err = queryTime(q, "from"); err != nil {
		return filter, err
	}
	if filter.To, err = queryTime(q, "to"); err != nil {
		return filter, err
	}
	filter.Status, err = queryEnum(q, "status", models.RentalStatus.Valid)
	return filter, err
}

func (a *API) updateRental(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "rental")
	if err != nil {
		a.writeError(w, err)
		return
	}
	var patch rentalPatch
	if err := a.decode(r, &patch); err != nil {
		a.writeError(w, err)
		return
	}

	updated, err := a.rentals.UpdateRental(r.Context(), patch.toUpdate(id))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respond(w, http.StatusOK, updated)
}

func (a *API) deleteRental(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "rental")
	if err != nil {
		a.writeError(w, err)
		return
	}
	if err := a.rentals.SoftDeleteRental(r.Context(), id); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) returnRental(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "rental")
	if err != nil {
		a.writeError(w, err)
		return
	}
	var req returnRequest
	if err := a.decode(r, &req); err != nil {
		a.writeError(w, err)
		return
	}

	returned, err := a.rentals.ReturnVehicle(r.Context(), id, *req.Odometer, req.Observations)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respond(w, http.StatusOK, returned)
}

func (a *API) cancelRental(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "rental")
	if err != nil {
		a.writeError(w, err)
		return
	}

	cancelled, err := a.rentals.CancelRental(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respond(w, http.StatusOK, cancelled)
}
