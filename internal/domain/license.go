package domain

// LicenseFallbackProductName is the product name carried by a degraded
// license when organization enrichment could not be completed.
const LicenseFallbackProductName = "Sorry no licensing information currently available"

// License is a software license issued to an organization.
// It is a value type: enrichment produces a new License and never
// mutates the stored record.
type License struct {
	ID               string
	OrganizationID   string
	ProductName      string
	LicenseType      string
	LicenseMax       int
	LicenseAllocated int
	Comment          string

	// Organization fields copied in by enrichment.
	OrganizationName string
	ContactName      string
	ContactEmail     string
	ContactPhone     string
}

// WithOrganization returns a copy of the license enriched with the
// organization's name and contact details.
func (l License) WithOrganization(org *Organization) License {
	if org == nil {
		return l
	}

	l.OrganizationName = org.Name
	l.ContactName = org.ContactName
	l.ContactEmail = org.ContactEmail
	l.ContactPhone = org.ContactPhone

	return l
}

// WithProductName returns a copy of the license with a different product name.
func (l License) WithProductName(name string) License {
	l.ProductName = name
	return l
}

// Fallback returns the degraded, schema-compatible form of the license.
func (l License) Fallback() License {
	return l.WithProductName(LicenseFallbackProductName)
}
