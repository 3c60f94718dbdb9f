package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v3"

	"github.com/jsamuelsen/licensing-mesh/internal/domain"
	"github.com/jsamuelsen/licensing-mesh/internal/ports"
)

// LicenseRepository implements ports.LicenseRepository.
type LicenseRepository struct {
	store *Store
}

var _ ports.LicenseRepository = (*LicenseRepository)(nil)

// NewLicenseRepository returns a license repository on store.
func NewLicenseRepository(store *Store) *LicenseRepository {
	return &LicenseRepository{store: store}
}

// GetByID returns a domain.NotFoundError when the license does not exist.
func (r *LicenseRepository) GetByID(ctx context.Context, licenseID string) (*domain.License, error) {
	var rec licenseRecord

	found, err := r.store.get(ctx, licenseKey(licenseID), &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.NewNotFoundError("license", licenseID)
	}

	l := rec.toDomain()
	return &l, nil
}

// ListAll returns every license ordered by id.
func (r *LicenseRepository) ListAll(ctx context.Context) ([]domain.License, error) {
	licenses := make([]domain.License, 0)

	err := r.store.scan(ctx, licensePrefix, func(_, val []byte) error {
		var rec licenseRecord
		if err := json.Unmarshal(val, &rec); err != nil {
			return err
		}
		licenses = append(licenses, rec.toDomain())
		return nil
	})
	if err != nil {
		return nil, err
	}

	return licenses, nil
}

// ListByOrganization walks the owner index and loads each license.
func (r *LicenseRepository) ListByOrganization(ctx context.Context, organizationID string) ([]domain.License, error) {
	prefix := licenseOrgPrefixFor(organizationID)

	var ids []string

	err := r.store.scan(ctx, prefix, func(key, _ []byte) error {
		ids = append(ids, strings.TrimPrefix(string(key), prefix))
		return nil
	})
	if err != nil {
		return nil, err
	}

	licenses := make([]domain.License, 0, len(ids))

	for _, id := range ids {
		l, err := r.GetByID(ctx, id)
		if domain.IsNotFound(err) {
			// index entry outlived its record
			continue
		}
		if err != nil {
			return nil, err
		}
		licenses = append(licenses, *l)
	}

	return licenses, nil
}

// Save creates or replaces a license and keeps the owner index in step.
func (r *LicenseRepository) Save(ctx context.Context, license *domain.License) error {
	if license == nil || license.ID == "" {
		return domain.NewValidationError("id", "license id is required")
	}

	err := r.store.update(ctx, func(txn *badger.Txn) error {
		return saveLicense(txn, license)
	})
	if err != nil {
		return fmt.Errorf("saving license %s: %w", license.ID, err)
	}

	return nil
}

func saveLicense(txn *badger.Txn, license *domain.License) error {
	key := licenseKey(license.ID)

	item, err := txn.Get([]byte(key))
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
	case err != nil:
		return err
	default:
		var prev licenseRecord
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &prev) }); err != nil {
			return err
		}
		if prev.OrganizationID != license.OrganizationID {
			if err := txn.Delete([]byte(licenseOrgKey(prev.OrganizationID, prev.ID))); err != nil {
				return err
			}
		}
	}

	if err := setJSON(txn, key, newLicenseRecord(license)); err != nil {
		return err
	}

	return txn.Set([]byte(licenseOrgKey(license.OrganizationID, license.ID)), nil)
}
