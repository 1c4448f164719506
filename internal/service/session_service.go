package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/MNehlan/ParkX/internal/domain"
	"github.com/MNehlan/ParkX/internal/repository"

	"gopkg.in/guregu/null.v4"
)

var ErrVehicleAlreadyParked = errors.New("vehicle already parked")
var ErrSessionAlreadyClosed = errors.New("parking session is already closed")
var ErrSlotOutOfRange = errors.New("slot number is outside the facility's range")
var ErrSlotTaken = errors.New("slot is already occupied")

type SessionService struct {
	facilityRepo repository.FacilityRepository
	sessionRepo  repository.VehicleSessionRepository
	broadcaster  ChangeBroadcaster
	// now is swappable for tests; defaults to time.Now.
	now func() time.Time
}

func NewSessionService(facilityRepo repository.FacilityRepository,
	sessionRepo repository.VehicleSessionRepository, broadcaster ChangeBroadcaster) *SessionService {
	return &SessionService{
		facilityRepo: facilityRepo,
		sessionRepo:  sessionRepo,
		broadcaster:  broadcaster,
		now:          time.Now,
	}
}

// VehicleEntry opens an IN session at the owner's facility. The plate is
// normalized before the duplicate-active check; the slot must lie within
// [1, totalSlots] and not be held by another open session. Entry time is
// server time, never the client's clock. The duplicate check is
// read-then-create, so two concurrent submissions of the same plate can
// both land. A partial unique index on open sessions would close the gap.
func (s *SessionService) VehicleEntry(ctx context.Context, ownerID string, dto domain.VehicleEntryDTO) (*domain.VehicleSession, error) {
	facility, err := s.facilityRepo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	plate := domain.NormalizeVehicleNumber(dto.VehicleNumber)

	existing, err := s.sessionRepo.FindActiveByVehicleNumber(ctx, facility.ID, plate)
	if err != nil && !errors.Is(err, repository.ErrNoActiveSession) {
		return nil, fmt.Errorf("checking for active session: %w", err)
	}
	if existing != nil {
		log.Printf("Vehicle '%s' already has an open session (%s) at facility %s", plate, existing.ID, facility.ID)
		return nil, fmt.Errorf("%w: %s", ErrVehicleAlreadyParked, plate)
	}

	if dto.SlotNumber < 1 || dto.SlotNumber > facility.TotalSlots {
		return nil, fmt.Errorf("%w: slot %d of %d", ErrSlotOutOfRange, dto.SlotNumber, facility.TotalSlots)
	}
	active, err := s.sessionRepo.FindActiveByFacility(ctx, facility.ID)
	if err != nil {
		return nil, fmt.Errorf("loading active sessions: %w", err)
	}
	if domain.SlotBooked(active, int64(dto.SlotNumber)) {
		return nil, fmt.Errorf("%w: slot %d", ErrSlotTaken, dto.SlotNumber)
	}

	session := &domain.VehicleSession{
		FacilityID:    facility.ID,
		VehicleNumber: plate,
		VehicleType:   dto.VehicleType,
		SlotNumber:    null.IntFrom(int64(dto.SlotNumber)),
		EntryTime:     s.now().UTC(),
		Status:        domain.StatusIn,
	}
	if dto.DriverName != "" {
		session.DriverName = null.StringFrom(dto.DriverName)
	}

	created, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("creating parking session: %w", err)
	}
	log.Printf("Vehicle '%s' entered facility %s, slot %d, session %s", plate, facility.ID, dto.SlotNumber, created.ID)

	s.broadcaster.BroadcastChange(domain.ChangeNotification{
		Collection: domain.CollectionSessions,
		Action:     domain.ActionCreated,
		ID:         created.ID,
		FacilityID: facility.ID,
		Timestamp:  s.now().UTC(),
	})
	return created, nil
}

// VehicleExit closes an open session: stamps the exit with server time,
// bills ceil-hours (minimum one) against the facility's current rates, and
// flips the status to OUT. Exit time, duration and fee are fixed together
// and never touched again; the slot frees itself by the status flip.
func (s *SessionService) VehicleExit(ctx context.Context, ownerID, sessionID string) (*domain.VehicleSession, error) {
	facility, err := s.facilityRepo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.FacilityID != facility.ID {
		return nil, repository.ErrNotFound
	}
	if !session.Open() {
		return nil, ErrSessionAlreadyClosed
	}

	exitTime := s.now().UTC()
	if exitTime.Before(session.EntryTime) {
		log.Printf("Exit time %v precedes entry time %v for session %s, using entry time", exitTime, session.EntryTime, session.ID)
		exitTime = session.EntryTime
	}

	hours, fee := facility.Tariff().FeeForStay(session.EntryTime, exitTime)

	session.ExitTime = null.TimeFrom(exitTime)
	session.DurationHours = null.IntFrom(hours)
	session.Fee = null.FloatFrom(fee)
	session.Status = domain.StatusOut

	updated, err := s.sessionRepo.Update(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("closing parking session: %w", err)
	}
	log.Printf("Vehicle '%s' exited facility %s after %d hour(s), fee %.2f", session.VehicleNumber, facility.ID, hours, fee)

	s.broadcaster.BroadcastChange(domain.ChangeNotification{
		Collection: domain.CollectionSessions,
		Action:     domain.ActionUpdated,
		ID:         updated.ID,
		FacilityID: facility.ID,
		Timestamp:  s.now().UTC(),
	})
	return updated, nil
}

func (s *SessionService) GetActiveSessions(ctx context.Context, ownerID string) ([]domain.VehicleSession, error) {
	facility, err := s.facilityRepo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.sessionRepo.FindActiveByFacility(ctx, facility.ID)
}

// HistoryResult is a filtered history view with its headline figures.
type HistoryResult struct {
	Summary  domain.HistorySummary   `json:"summary"`
	Sessions []domain.VehicleSession `json:"sessions"`
}

// GetHistory returns the owner's closed sessions whose exit instant falls in
// the filter's window, with summary figures.
func (s *SessionService) GetHistory(ctx context.Context, ownerID string, filter domain.HistoryFilter) (*HistoryResult, error) {
	facility, err := s.facilityRepo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.FindByFacility(ctx, facility.ID)
	if err != nil {
		return nil, fmt.Errorf("loading sessions: %w", err)
	}
	filtered := filter.FilterSessions(sessions, s.now())
	return &HistoryResult{
		Summary:  domain.SummarizeHistory(filtered),
		Sessions: filtered,
	}, nil
}
