package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/MNehlan/ParkX/internal/domain"
	"github.com/MNehlan/ParkX/internal/repository"
)

// ChangeBroadcaster pushes record-change notifications to connected live
// clients. The websocket hub implements it.
type ChangeBroadcaster interface {
	BroadcastChange(n domain.ChangeNotification)
}

var ErrFacilityExists = errors.New("a facility already exists for this account")

type FacilityService struct {
	facilityRepo repository.FacilityRepository
	sessionRepo  repository.VehicleSessionRepository
	broadcaster  ChangeBroadcaster
}

func NewFacilityService(facilityRepo repository.FacilityRepository,
	sessionRepo repository.VehicleSessionRepository, broadcaster ChangeBroadcaster) *FacilityService {
	return &FacilityService{
		facilityRepo: facilityRepo,
		sessionRepo:  sessionRepo,
		broadcaster:  broadcaster,
	}
}

// CreateFacility records the owner's one facility. The one-per-owner rule is
// a read-then-create check with no unique constraint behind it; two
// concurrent first submissions can both pass.
func (s *FacilityService) CreateFacility(ctx context.Context, ownerID string, dto domain.FacilityDTO) (*domain.Facility, error) {
	existing, err := s.facilityRepo.FindByOwnerID(ctx, ownerID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking for existing facility: %w", err)
	}
	if existing != nil {
		return nil, ErrFacilityExists
	}

	facility := &domain.Facility{
		OwnerID:       ownerID,
		Name:          dto.Name,
		Type:          dto.Type,
		TotalSlots:    dto.TotalSlots,
		RateFirstHour: dto.RateFirstHour,
		RateExtraHour: dto.RateExtraHour,
	}
	created, err := s.facilityRepo.Create(ctx, facility)
	if err != nil {
		return nil, fmt.Errorf("creating facility: %w", err)
	}
	log.Printf("Facility '%s' created for owner %s", created.Name, ownerID)

	s.broadcaster.BroadcastChange(domain.ChangeNotification{
		Collection: domain.CollectionFacilities,
		Action:     domain.ActionCreated,
		ID:         created.ID,
		FacilityID: created.ID,
		Timestamp:  time.Now().UTC(),
	})
	return created, nil
}

func (s *FacilityService) GetOwnFacility(ctx context.Context, ownerID string) (*domain.Facility, error) {
	return s.facilityRepo.FindByOwnerID(ctx, ownerID)
}

func (s *FacilityService) UpdateFacility(ctx context.Context, ownerID string, dto domain.FacilityDTO) (*domain.Facility, error) {
	facility, err := s.facilityRepo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	facility.Name = dto.Name
	facility.Type = dto.Type
	facility.TotalSlots = dto.TotalSlots
	facility.RateFirstHour = dto.RateFirstHour
	facility.RateExtraHour = dto.RateExtraHour

	updated, err := s.facilityRepo.Update(ctx, facility)
	if err != nil {
		return nil, fmt.Errorf("updating facility: %w", err)
	}

	s.broadcaster.BroadcastChange(domain.ChangeNotification{
		Collection: domain.CollectionFacilities,
		Action:     domain.ActionUpdated,
		ID:         updated.ID,
		FacilityID: updated.ID,
		Timestamp:  time.Now().UTC(),
	})
	return updated, nil
}

// GetOccupancy derives the live slot picture from the facility's open
// sessions. Availability is not clamped when total slots drop below the
// current occupancy.
func (s *FacilityService) GetOccupancy(ctx context.Context, ownerID string) (*domain.Occupancy, error) {
	facility, err := s.facilityRepo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.FindActiveByFacility(ctx, facility.ID)
	if err != nil {
		return nil, fmt.Errorf("loading active sessions: %w", err)
	}
	occ := domain.OccupancyOf(facility.TotalSlots, sessions)
	return &occ, nil
}

// GetAnalytics folds the facility's full session set into the owner
// dashboard figures.
func (s *FacilityService) GetAnalytics(ctx context.Context, ownerID string, now time.Time) (*domain.FacilityAnalytics, error) {
	facility, err := s.facilityRepo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.FindByFacility(ctx, facility.ID)
	if err != nil {
		return nil, fmt.Errorf("loading sessions: %w", err)
	}
	analytics := domain.AnalyzeFacility(facility.TotalSlots, sessions, now)
	return &analytics, nil
}
