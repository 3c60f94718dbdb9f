package storage

import "github.com/jsamuelsen/licensing-mesh/internal/domain"

// Key prefixes.
const (
	organizationPrefix = "organization:"
	licensePrefix      = "license:"
	licenseOrgPrefix   = "license-org:"
)

func organizationKey(id string) string { return organizationPrefix + id }

func licenseKey(id string) string { return licensePrefix + id }

func licenseOrgPrefixFor(orgID string) string { return licenseOrgPrefix + orgID + ":" }

func licenseOrgKey(orgID, id string) string { return licenseOrgPrefixFor(orgID) + id }

// licenseRecord is the stored form of a license. Enrichment fields are never
// persisted.
type licenseRecord struct {
	ID               string `json:"id"`
	OrganizationID   string `json:"organizationId"`
	ProductName      string `json:"productName"`
	LicenseType      string `json:"licenseType"`
	LicenseMax       int    `json:"licenseMax"`
	LicenseAllocated int    `json:"licenseAllocated"`
	Comment          string `json:"comment,omitempty"`
}

func newLicenseRecord(l *domain.License) licenseRecord {
	return licenseRecord{
		ID:               l.ID,
		OrganizationID:   l.OrganizationID,
		ProductName:      l.ProductName,
		LicenseType:      l.LicenseType,
		LicenseMax:       l.LicenseMax,
		LicenseAllocated: l.LicenseAllocated,
		Comment:          l.Comment,
	}
}

func (r licenseRecord) toDomain() domain.License {
	return domain.License{
		ID:               r.ID,
		OrganizationID:   r.OrganizationID,
		ProductName:      r.ProductName,
		LicenseType:      r.LicenseType,
		LicenseMax:       r.LicenseMax,
		LicenseAllocated: r.LicenseAllocated,
		Comment:          r.Comment,
	}
}

type organizationRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ContactName  string `json:"contactName"`
	ContactEmail string `json:"contactEmail"`
	ContactPhone string `json:"contactPhone"`
}

func newOrganizationRecord(o *domain.Organization) organizationRecord {
	return organizationRecord{
		ID:           o.ID,
		Name:         o.Name,
		ContactName:  o.ContactName,
		ContactEmail: o.ContactEmail,
		ContactPhone: o.ContactPhone,
	}
}

func (r organizationRecord) toDomain() domain.Organization {
	return domain.Organization{
		ID:           r.ID,
		Name:         r.Name,
		ContactName:  r.ContactName,
		ContactEmail: r.ContactEmail,
		ContactPhone: r.ContactPhone,
	}
}
