package handlers

import (
	"net/http"

	e "github.com/gartstein/fleet/internal/fleet/errors"
	"github.com/google/uuid"
)

// search serves autocomplete lookups for clients, drivers and vehicles.
func (a *API) search(w http.ResponseWriter, r *http.Request, params map[string]string) {
	q := r.URL.Query()
	limit, err := queryInt(q, "limit")
	if err != nil {
		a.writeError(w, err)
		return
	}
	query := q.Get("q")

	var items interface{}
	switch params["entity"] {
	case "clients":
		clients, err := a.clients.SearchClients(r.Context(), query, limit)
		if err != nil {
			a.writeError(w, err)
			return
		}
		items = clientsToResponse(clients)
	case "drivers":
		items, err = a.drivers.SearchDrivers(r.Context(), query, limit)
	case "vehicles":
		items, err = a.vehicles.SearchVehicles(r.Context(), query, limit)
	default:
		err = e.Invalid("cannot search %q", params["entity"])
	}
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respond(w, http.StatusOK, itemsResponse{Items: items})
}

func (a *API) history(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := uuid.Parse(params["id"])
	if err != nil {
		a.writeError(w, e.Invalid("invalid %s ID", params["entity"]))
		return
	}
	limit, err := queryInt(r.URL.Query(), "limit")
	if err != nil {
		a.writeError(w, err)
		return
	}

	entries, err := a.audit.History(r.Context(), params["entity"], id, limit)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respond(w, http.StatusOK, itemsResponse{Items: entries})
}
