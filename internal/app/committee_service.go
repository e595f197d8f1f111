package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/presidium/internal/core/procerr"
	"github.com/example/presidium/internal/ports/primary"
	"github.com/example/presidium/internal/ports/secondary"
)

// CommitteeServiceImpl implements the CommitteeService interface.
type CommitteeServiceImpl struct {
	committeeRepo secondary.CommitteeRepository
	logger        *slog.Logger
}

// NewCommitteeService creates a new CommitteeService with injected dependencies.
func NewCommitteeService(committeeRepo secondary.CommitteeRepository, logger *slog.Logger) *CommitteeServiceImpl {
	return &CommitteeServiceImpl{
		committeeRepo: committeeRepo,
		logger:        orDiscard(logger).With("service", "committee"),
	}
}

// CreateCommittee creates a new committee.
func (s *CommitteeServiceImpl) CreateCommittee(ctx context.Context, req primary.CreateCommitteeRequest) (*primary.Committee, error) {
	if _, err := requireActor(ctx); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, procerr.New(procerr.CodeInvalidArgument, "committee name is required")
	}
	if req.MinCoalitionSize < 0 {
		return nil, procerr.New(procerr.CodeInvalidArgument, "minimum coalition size cannot be negative")
	}

	nextID, err := s.committeeRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate committee ID: %w", err)
	}

	record := &secondary.CommitteeRecord{
		ID:               nextID,
		Name:             name,
		MinCoalitionSize: req.MinCoalitionSize,
	}
	if err := s.committeeRepo.Create(ctx, record); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "committee created", "committee_id", nextID, "name", name)

	return s.GetCommittee(ctx, nextID)
}

// AddCountry adds a country to a committee's roster.
func (s *CommitteeServiceImpl) AddCountry(ctx context.Context, req primary.AddCountryRequest) (*primary.Committee, error) {
	if _, err := requireActor(ctx); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, procerr.New(procerr.CodeInvalidArgument, "country name is required")
	}

	if _, err := s.committeeRepo.GetByID(ctx, req.CommitteeID); err != nil {
		return nil, err
	}

	err := s.committeeRepo.AddCountry(ctx, &secondary.CommitteeCountryRecord{
		CommitteeID:  req.CommitteeID,
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		HasVetoRight: req.HasVetoRight,
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "country added", "committee_id", req.CommitteeID, "country", name, "veto", req.HasVetoRight)

	return s.GetCommittee(ctx, req.CommitteeID)
}

// GetCommittee retrieves a committee with its roster.
func (s *CommitteeServiceImpl) GetCommittee(ctx context.Context, committeeID string) (*primary.Committee, error) {
	record, err := s.committeeRepo.GetByID(ctx, committeeID)
	if err != nil {
		return nil, err
	}
	countries, err := s.committeeRepo.ListCountries(ctx, committeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load committee roster: %w", err)
	}

	committee := s.recordToCommittee(record)
	committee.Countries = make([]primary.CommitteeCountry, len(countries))
	for i, c := range countries {
		committee.Countries[i] = primary.CommitteeCountry{
			Name:         c.Name,
			Email:        c.Email,
			HasVetoRight: c.HasVetoRight,
		}
	}
	return committee, nil
}

// ListCommittees lists every committee without rosters.
func (s *CommitteeServiceImpl) ListCommittees(ctx context.Context) ([]*primary.Committee, error) {
	records, err := s.committeeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list committees: %w", err)
	}

	committees := make([]*primary.Committee, len(records))
	for i, r := range records {
		committees[i] = s.recordToCommittee(r)
	}
	return committees, nil
}

func (s *CommitteeServiceImpl) recordToCommittee(r *secondary.CommitteeRecord) *primary.Committee {
	return &primary.Committee{
		ID:               r.ID,
		Name:             r.Name,
		MinCoalitionSize: r.MinCoalitionSize,
		CreatedAt:        r.CreatedAt,
	}
}

// Ensure CommitteeServiceImpl implements the interface
var _ primary.CommitteeService = (*CommitteeServiceImpl)(nil)
