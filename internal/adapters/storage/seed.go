package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v3"

	"github.com/jsamuelsen/licensing-mesh/internal/domain"
	"github.com/jsamuelsen/licensing-mesh/internal/platform/config"
)

// Seed writes the configured records in one transaction when the store holds
// neither organizations nor licenses. A store with data is left untouched.
func Seed(ctx context.Context, store *Store, cfg config.SeedConfig) error {
	if !cfg.Enabled {
		return nil
	}

	for _, prefix := range []string{organizationPrefix, licensePrefix} {
		empty, err := store.empty(ctx, prefix)
		if err != nil {
			return fmt.Errorf("checking store: %w", err)
		}
		if !empty {
			store.logger.Debug("store already populated, skipping seed")
			return nil
		}
	}

	err := store.update(ctx, func(txn *badger.Txn) error {
		for _, o := range cfg.Organizations {
			org := domain.Organization{
				ID:           o.ID,
				Name:         o.Name,
				ContactName:  o.ContactName,
				ContactEmail: o.ContactEmail,
				ContactPhone: o.ContactPhone,
			}
			if err := setJSON(txn, organizationKey(org.ID), newOrganizationRecord(&org)); err != nil {
				return err
			}
		}

		for _, l := range cfg.Licenses {
			license := domain.License{
				ID:               l.ID,
				OrganizationID:   l.OrganizationID,
				ProductName:      l.ProductName,
				LicenseType:      l.LicenseType,
				LicenseMax:       l.LicenseMax,
				LicenseAllocated: l.LicenseAllocated,
				Comment:          l.Comment,
			}
			if err := saveLicense(txn, &license); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("seeding store: %w", err)
	}

	store.logger.Info("store seeded",
		slog.Int("organizations", len(cfg.Organizations)),
		slog.Int("licenses", len(cfg.Licenses)),
	)

	return nil
}
