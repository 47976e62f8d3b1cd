package handlers

import (
	"net/http"

	"github.com/gartstein/fleet/internal/fleet/models"
)

func (a *API) createClient(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req clientRequest
	if err := a.decode(r, &req); err != nil {
		a.writeError(w, err)
		return
	}

	created, err := a.clients.CreateClient(r.Context(), req.toModel())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respond(w, http.StatusCreated, clientToResponse(created))
}

func (a *API) getClient(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "client")
	if err != nil {
		a.writeError(w, err)
		return
	}

	client, err := a.clients.GetClient(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respond(w, http.StatusOK, clientToResponse(client))
}

func (a *API) listClients(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	filter, err := clientFilter(r)
	if err != nil {
		a.writeError(w, err)
		return
	}

	clients, total, err := a.clients.ListClients(r.Context(), filter)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respondList(w, clientsToResponse(clients), total, filter.Page)
}

func clientFilter(r *http.Request) (models.ClientFilter, error) {
	q := r.URL.Query()
	var (
		filter models.ClientFilter
		err    error
	)
	if filter.Page, err = queryPage(q); err != nil {
		return filter, err
	}
	if filter.IncludeDeleted, err = queryBool(q, "include_deleted"); err != nil {
		return filter, err
	}
	if filter.Type, err = queryEnum(q, "type", models.ClientType.Valid); err != nil {
		return filter, err
	}
	filter.Status, err = queryEnum(q, "status", models.ClientStatus.Valid)
	return filter, err
}

func (a *API) updateClient(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "client")
	if err != nil {
		a.writeError(w, err)
		return
	}
	var patch clientPatch
	if err := a.decode(r, &patch); err != nil {
		a.writeError(w, err)
		return
	}
	update, err := patch.toUpdate(id)
	if err != nil {
		a.writeError(w, err)
		return
	}

	updated, err := a.clients.UpdateClient(r.Context(), update)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respond(w, http.StatusOK, clientToResponse(updated))
}

func (a *API) deleteClient(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "client")
	if err != nil {
		a.writeError(w, err)
		return
	}
	if err := a.clients.SoftDeleteClient(r.Context(), id); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) restoreClient(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "client")
	if err != nil {
		a.writeError(w, err)
		return
	}
	restored, err := a.clients.RestoreClient(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respond(w, http.StatusOK, clientToResponse(restored))
}

func (a *API) purgeClient(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "client")
	if err != nil {
		a.writeError(w, err)
		return
	}
	if err := a.clients.HardDeleteClient(r.Context(), id); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
