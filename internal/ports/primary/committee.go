package primary

import "context"

// CommitteeService defines the primary port for committee roster operations.
type CommitteeService interface {
	// CreateCommittee creates a new committee.
	CreateCommittee(ctx context.Context, req CreateCommitteeRequest) (*Committee, error)

	// AddCountry adds a country to a committee's roster.
	AddCountry(ctx context.Context, req AddCountryRequest) (*Committee, error)

	// GetCommittee retrieves a committee with its roster.
	GetCommittee(ctx context.Context, committeeID string) (*Committee, error)

	// ListCommittees lists every committee without rosters.
	ListCommittees(ctx context.Context) ([]*Committee, error)
}

// CreateCommitteeRequest contains parameters for creating a committee.
type CreateCommitteeRequest struct {
	Name             string
	MinCoalitionSize int
}

// AddCountryRequest contains parameters for adding a roster entry.
type AddCountryRequest struct {
	CommitteeID  string
	Name         string
	Email        string
	HasVetoRight bool
}

// Committee represents a committee at the port boundary.
type Committee struct {
	ID               string
	Name             string
	MinCoalitionSize int
	Countries        []CommitteeCountry
	CreatedAt        string
}

// CommitteeCountry is one roster entry.
type CommitteeCountry struct {
	Name         string
	Email        string
	HasVetoRight bool
}
