package handlers

import (
	"net/http"

	e "github.com/gartstein/fleet/internal/fleet/errors"
	"github.com/gartstein/fleet/internal/fleet/models"
)

func (a *API) createVehicle(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req vehicleRequest
	if err := a.decode(r, &req); err != nil {
		a.writeError(w, err)
		return
	}

	created, err := a.vehicles.CreateVehicle(r.Context(), req.toModel())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respond(w, http.StatusCreated, created)
}

func (a *API) getVehicle(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "vehicle")
	if err != nil {
		a.writeError(w, err)
		return
	}

	vehicle, err := a.vehicles.GetVehicle(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respond(w, http.StatusOK, vehicle)
}

func (a *API) listVehicles(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	filter, err := vehicleFilter(r)
	if err != nil {
		a.writeError(w, err)
		return
	}

	vehicles, total, err := a.vehicles.ListVehicles(r.Context(), filter)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respondList(w, vehicles, total, filter.Page)
}

func vehicleFilter(r *http.Request) (models.VehicleFilter, error) {
	q := r.URL.Query()
	var (
		filter models.VehicleFilter
		err    error
	)
	if filter.Page, err = queryPage(q); err != nil {
		return filter, err
	}
	if filter.IncludeDeleted, err = queryBool(q, "include_deleted"); err != nil {
		return filter, err
	}
	filter.Status, err = queryEnum(q, "status", models.VehicleStatus.Valid)
	return filter, err
}

func (a *API) updateVehicle(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "vehicle")
	if err != nil {
		a.writeError(w, err)
		return
	}
	var patch vehiclePatch
	if err := a.decode(r, &patch); err != nil {
		a.writeError(w, err)
		return
	}

	updated, err := a.vehicles.UpdateVehicle(r.Context(), patch.toUpdate(id))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respond(w, http.StatusOK, updated)
}

func (a *API) deleteVehicle(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "vehicle")
	if err != nil {
		a.writeError(w, err)
		return
	}
	if err := a.vehicles.SoftDeleteVehicle(r.Context(), id); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) restoreVehicle(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "vehicle")
	if err != nil {
		a.writeError(w, err)
		return
	}
	restored, err := a.vehicles.RestoreVehicle(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respond(w, http.StatusOK, restored)
}

func (a *API) purgeVehicle(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "vehicle")
	if err != nil {
		a.writeError(w, err)
		return
	}
	if err := a.vehicles.HardDeleteVehicle(r.Context(), id); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) vehicleAvailability(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "vehicle")
	if err != nil {
		a.writeError(w, err)
		return
	}
	q := r.URL.Query()
	start, err := queryTime(q, "start")
	if err != nil {
		a.writeError(w, err)
		return
	}
	end, err := queryTime(q, "end")
	if err != nil {
		a.writeError(w, err)
		return
	}
	if start == nil || end == nil {
		a.writeError(w, e.Invalid("start and end are required"))
		return
	}

	availability, err := a.rentals.CheckAvailability(r.Context(), id, models.Period{Start: *start, End: *end})
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respond(w, http.StatusOK, availability)
}
