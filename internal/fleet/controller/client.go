package controller

import (
	"context"

	"github.com/gartstein/fleet/internal/fleet/db"
	e "github.com/gartstein/fleet/internal/fleet/errors"
	"github.com/gartstein/fleet/internal/fleet/events"
	"github.com/gartstein/fleet/internal/fleet/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientService manages renters.
type ClientService struct {
	repo     Repository
	producer EventProducer
	logger   *zap.Logger
}

func NewClientService(repo Repository, producer EventProducer, logger *zap.Logger) *ClientService {
	return &ClientService{
		repo:     repo,
		producer: producer,
		logger:   logger.Named("client_service"),
	}
}

// CreateClient registers a client after validating the fields of its type and
// checking that no live client holds the same tax identifier.
func (s *ClientService) CreateClient(ctx context.Context, client *models.Client) (*models.Client, error) {
	if client.Status == "" {
		client.Status = models.ClientActive
	}
	if err := client.Validate(); err != nil {
		return nil, err
	}

	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		taken, err := tx.ClientTaxIDTaken(ctx, client.TaxID(), uuid.Nil)
		if err != nil {
			return err
		}
		if taken {
			return e.Conflict("client tax_id %s is already registered", client.TaxID())
		}
		client.ID = uuid.New()
		return tx.CreateClient(ctx, client)
	})
	if err != nil {
		return nil, wrap(err, "create client")
	}

	s.logger.Info("Client created",
		zap.String("client_id", client.ID.String()),
		zap.String("type", string(client.Type())),
	)
	s.producer.Produce(events.ClientCreated, client.ID, client)
	return client, nil
}

func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	client, err := s.repo.GetClient(ctx, id)
	if err != nil {
		return nil, resolve(err, "client", id)
	}
	return client, nil
}

func (s *ClientService) ListClients(ctx context.Context, filter models.ClientFilter) ([]*models.Client, int64, error) {
	clients, total, err := s.repo.ListClients(ctx, filter)
	if err != nil {
		return nil, 0, wrap(err, "list clients")
	}
	return clients, total, nil
}

// SearchClients matches live clients by name, email or partial tax identifier.
func (s *ClientService) SearchClients(ctx context.Context, query string, limit int) ([]*models.Client, error) {
	if query == "" {
		return []*models.Client{}, nil
	}
	clients, err := s.repo.SearchClients(ctx, query, models.SearchLimit(limit))
	if err != nil {
		return nil, wrap(err, "search clients")
	}
	return clients, nil
}

// UpdateClient applies a partial update. A changed tax identifier is checked
// against other live clients, and a company with affiliated drivers cannot
// become an individual.
func (s *ClientService) UpdateClient(ctx context.Context, update *models.ClientUpdate) (*models.Client, error) {
	if err := requireID(update.ID, "client"); err != nil {
		return nil, err
	}

	var client *models.Client
	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		current, err := tx.GetClient(ctx, update.ID)
		if err != nil {
			return resolve(err, "client", update.ID)
		}
		wasCompany, oldTaxID := current.IsCompany(), current.TaxID()

		update.Apply(current)
		if err := current.Validate(); err != nil {
			return err
		}

		if current.TaxID() != oldTaxID {
			taken, err := tx.ClientTaxIDTaken(ctx, current.TaxID(), current.ID)
			if err != nil {
				return err
			}
			if taken {
				return e.Conflict("client tax_id %s is already registered", current.TaxID())
			}
		}
		if wasCompany && !current.IsCompany() {
			_, drivers, err := tx.ListDrivers(ctx, models.DriverFilter{ClientID: &current.ID, Page: models.Page{Limit: 1}})
			if err != nil {
				return err
			}
			if drivers > 0 {
				return e.Conflict("client %s has %d affiliated drivers and must remain a %s", current.ID, drivers, models.ClientCompany)
			}
		}

		if err := tx.UpdateClient(ctx, current); err != nil {
			return err
		}
		client = current
		return nil
	})
	if err != nil {
		return nil, wrap(err, "update client")
	}

	s.producer.Produce(events.ClientUpdated, client.ID, client)
	return client, nil
}

// SoftDeleteClient hides a live client from default listings.
func (s *ClientService) SoftDeleteClient(ctx context.Context, id uuid.UUID) error {
	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		if err := tx.SoftDeleteClient(ctx, id); err != nil {
			return resolve(err, "client", id)
		}
		return nil
	})
	if err != nil {
		return wrap(err, "delete client")
	}

	s.producer.Produce(events.ClientDeleted, id, nil)
	return nil
}

// RestoreClient brings back a soft-deleted client if its tax identifier is
// still free among live clients.
func (s *ClientService) RestoreClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client *models.Client
	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		deleted, err := tx.GetClientUnscoped(ctx, id)
		if err != nil {
			return resolve(err, "client", id)
		}
		if deleted.DeletedAt == nil {
			return e.Invalid("client %s is not deleted", id)
		}

		taken, err := tx.ClientTaxIDTaken(ctx, deleted.TaxID(), id)
		if err != nil {
			return err
		}
		if taken {
			return e.Conflict("client tax_id %s is now held by another client", deleted.TaxID())
		}

		if err := tx.RestoreClient(ctx, id); err != nil {
			return err
		}
		deleted.DeletedAt = nil
		client = deleted
		return nil
	})
	if err != nil {
		return nil, wrap(err, "restore client")
	}

	s.producer.Produce(events.ClientRestored, id, client)
	return client, nil
}

// HardDeleteClient irreversibly removes a client that no rental or driver
// references, including soft-deleted ones.
func (s *ClientService) HardDeleteClient(ctx context.Context, id uuid.UUID) error {
	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		if _, err := tx.GetClientUnscoped(ctx, id); err != nil {
			return resolve(err, "client", id)
		}
		rentals, drivers, err := tx.CountClientReferences(ctx, id)
		if err != nil {
			return err
		}
		if rentals > 0 || drivers > 0 {
			return e.Conflict("client %s is referenced by %d rentals and %d drivers", id, rentals, drivers)
		}
		return tx.HardDeleteClient(ctx, id)
	})
	if err != nil {
		return wrap(err, "purge client")
	}

	s.logger.Warn("Client purged", zap.String("client_id", id.String()))
	s.producer.Produce(events.ClientDeleted, id, map[string]bool{"purged": true})
	return nil
}
