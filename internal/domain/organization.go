package domain

// Organization owns licenses and carries the contact details used to
// enrich them.
type Organization struct {
	ID           string
	Name         string
	ContactName  string
	ContactEmail string
	ContactPhone string
}
