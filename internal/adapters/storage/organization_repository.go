package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v3"

	"github.com/jsamuelsen/licensing-mesh/internal/domain"
	"github.com/jsamuelsen/licensing-mesh/internal/ports"
)

// OrganizationRepository implements ports.OrganizationRepository.
type OrganizationRepository struct {
	store *Store
}

var _ ports.OrganizationRepository = (*OrganizationRepository)(nil)

// NewOrganizationRepository returns an organization repository on store.
func NewOrganizationRepository(store *Store) *OrganizationRepository {
	return &OrganizationRepository{store: store}
}

func (r *OrganizationRepository) GetByID(ctx context.Context, organizationID string) (*domain.Organization, error) {
	var rec organizationRecord

	found, err := r.store.get(ctx, organizationKey(organizationID), &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.NewNotFoundError("organization", organizationID)
	}

	org := rec.toDomain()
	return &org, nil
}

func (r *OrganizationRepository) ListAll(ctx context.Context) ([]domain.Organization, error) {
	orgs := make([]domain.Organization, 0)

	err := r.store.scan(ctx, organizationPrefix, func(_, val []byte) error {
		var rec organizationRecord
		if err := json.Unmarshal(val, &rec); err != nil {
			return err
		}
		orgs = append(orgs, rec.toDomain())
		return nil
	})
	if err != nil {
		return nil, err
	}

	return orgs, nil
}

func (r *OrganizationRepository) Save(ctx context.Context, org *domain.Organization) error {
	if org == nil || org.ID == "" {
		return domain.NewValidationError("id", "organization id is required")
	}

	err := r.store.update(ctx, func(txn *badger.Txn) error {
		return setJSON(txn, organizationKey(org.ID), newOrganizationRecord(org))
	})
	if err != nil {
		return fmt.Errorf("saving organization %s: %w", org.ID, err)
	}

	return nil
}
