package domain

import "time"

// Venue is a single restaurant/bar tenant. Venues are never hard
// deleted; Active=false means suspended.
type Venue struct {
	ID            string
	Name          string
	Slug          string
	Active        bool
	AcceptsCash   bool
	AcceptsCard   bool
	AcceptsOnline bool
	CreatedAt     time.Time
}

// Table is an orderable location within a venue. Code is unique per
// venue and is what a scanned QR payload resolves to.
type Table struct {
	ID         string
	VenueID    string
	Code       string
	Name       string
	Zone       *string
	Active     bool
	QRImageRef *string
	CreatedAt  time.Time
}

// MenuItem holds the authoritative price in minor currency units.
// Clients never supply prices; every order line copies Price from here.
type MenuItem struct {
	ID          string
	VenueID     string
	Name        string
	Description string
	Price       int64
	Category    string
	Available   bool
	PrepMinutes int
	SortOrder   int
}

// StaffPrincipal is the identity attached to an authenticated staff
// request. Provisioning happens outside this system; we only read it.
type StaffPrincipal struct {
	ID      string
	VenueID string
	Role    string
	Name    string
}
