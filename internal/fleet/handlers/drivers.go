package handlers

import (
	"net/http"

	"github.com/gartstein/fleet/internal/fleet/models"
)

func (a *API) createDriver(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req driverRequest
	if err := a.decode(r, &req); err != nil {
		a.writeError(w, err)
		return
	}

	created, err := a.drivers.CreateDriver(r.Context(), req.toModel())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respond(w, http.StatusCreated, created)
}

func (a *API) getDriver(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "driver")
	if err != nil {
		a.writeError(w, err)
		return
	}

	driver, err := a.drivers.GetDriver(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respond(w, http.StatusOK, driver)
}

func (a *API) listDrivers(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	filter, err := driverFilter(r)
	if err != nil {
		a.writeError(w, err)
		return
	}

	drivers, total, err := a.drivers.ListDrivers(r.Context(), filter)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respondList(w, drivers, total, filter.Page)
}

func driverFilter(r *http.Request) (models.DriverFilter, error) {
	q := r.URL.Query()
	var (
		filter models.DriverFilter
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
	filter.Status, err = queryEnum(q, "status", models.DriverStatus.Valid)
	return filter, err
}

func (a *API) updateDriver(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "driver")
	if err != nil {
		a.writeError(w, err)
		return
	}
	var patch driverPatch
	if err := a.decode(r, &patch); err != nil {
		a.writeError(w, err)
		return
	}

	updated, err := a.drivers.UpdateDriver(r.Context(), patch.toUpdate(id))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respond(w, http.StatusOK, updated)
}

func (a *API) deleteDriver(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "driver")
	if err != nil {
		a.writeError(w, err)
		return
	}
	if err := a.drivers.SoftDeleteDriver(r.Context(), id); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) restoreDriver(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "driver")
	if err != nil {
		a.writeError(w, err)
		return
	}
	restored, err := a.drivers.RestoreDriver(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respond(w, http.StatusOK, restored)
}

func (a *API) purgeDriver(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "driver")
	if err != nil {
		a.writeError(w, err)
		return
	}
	if err := a.drivers.HardDeleteDriver(r.Context(), id); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// migrateDriver moves a driver to another company after the caller has
// acknowledged a migration conflict.
func (a *API) migrateDriver(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "driver")
	if err != nil {
		a.writeError(w, err)
		return
	}
	var req migrateRequest
	if err := a.decode(r, &req); err != nil {
		a.writeError(w, err)
		return
	}

	result, err := a.drivers.MigrateDriver(r.Context(), id, req.ClientID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respond(w, http.StatusOK, result)
}
