package handlers

import (
	"net/url"
	"strconv"
	"time"

	e "github.com/gartstein/fleet/internal/fleet/errors"
	"github.com/gartstein/fleet/internal/fleet/models"
	"github.com/google/uuid"
)

func pathID(params map[string]string, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(params["id"])
	if err != nil {
		return uuid.Nil, e.Invalid("invalid %s ID", entity)
	}
	return id, nil
}

func queryInt(q url.Values, key string) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, e.Invalid("%s must be a non-negative integer", key)
	}
	return n, nil
}

func queryPage(q url.Values) (models.Page, error) {
	limit, err := queryInt(q, "limit")
	if err != nil {
		return models.Page{}, err
	}
	offset, err := queryInt(q, "offset")
	if err != nil {
		return models.Page{}, err
	}
	return models.Page{Limit: limit, Offset: offset}, nil
}

func queryBool(q url.Values, key string) (bool, error) {
	raw := q.Get(key)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, e.Invalid("%s must be a boolean", key)
	}
	return b, nil
}

func queryUUID(q url.Values, key string) (*uuid.UUID, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, e.Invalid("%s must be a UUID", key)
	}
	return &id, nil
}

func queryTime(q url.Values, key string) (*time.Time, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := parseTime(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// queryEnum reads an optional enum value and checks it with valid.
func queryEnum[T ~string](q url.Values, key string, valid func(T) bool) (*T, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	v := T(raw)
	if !valid(v) {
		return nil, e.Invalid("unknown %s %q", key, raw)
	}
	return &v, nil
}
