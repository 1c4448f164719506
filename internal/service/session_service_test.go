package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/MNehlan/ParkX/internal/domain"
	"github.com/MNehlan/ParkX/internal/repository"
)

// In-memory doubles for the repositories and the broadcaster. They mirror the
// Postgres implementations' contract: sentinel errors, copies on return.

type fakeFacilityRepo struct {
	facilities map[string]*domain.Facility // keyed by owner id
	deleted    []string
}

func newFakeFacilityRepo() *fakeFacilityRepo {
	return &fakeFacilityRepo{facilities: map[string]*domain.Facility{}}
}

func (r *fakeFacilityRepo) Create(_ context.Context, f *domain.Facility) (*domain.Facility, error) {
	cp := *f
	if cp.ID == "" {
		cp.ID = fmt.Sprintf("fac-%d", len(r.facilities)+1)
	}
	r.facilities[f.OwnerID] = &cp
	return &cp, nil
}

func (r *fakeFacilityRepo) FindByID(_ context.Context, id string) (*domain.Facility, error) {
	for _, f := range r.facilities {
		if f.ID == id {
			cp := *f
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeFacilityRepo) FindByOwnerID(_ context.Context, ownerID string) (*domain.Facility, error) {
	f, ok := r.facilities[ownerID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFacilityRepo) FindAll(_ context.Context) ([]domain.Facility, error) {
	var out []domain.Facility
	for _, f := range r.facilities {
		out = append(out, *f)
	}
	return out, nil
}

func (r *fakeFacilityRepo) Update(_ context.Context, f *domain.Facility) (*domain.Facility, error) {
	cp := *f
	r.facilities[f.OwnerID] = &cp
	return &cp, nil
}

func (r *fakeFacilityRepo) DeleteWithSessions(_ context.Context, id string) error {
	for owner, f := range r.facilities {
		if f.ID == id {
			delete(r.facilities, owner)
			r.deleted = append(r.deleted, id)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeSessionRepo struct {
	sessions map[string]*domain.VehicleSession
	nextID   int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*domain.VehicleSession{}}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *domain.VehicleSession) (*domain.VehicleSession, error) {
	r.nextID++
	cp := *s
	cp.ID = fmt.Sprintf("session-%d", r.nextID)
	r.sessions[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeSessionRepo) FindByID(_ context.Context, id string) (*domain.VehicleSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) FindActiveByVehicleNumber(_ context.Context, facilityID, plate string) (*domain.VehicleSession, error) {
	for _, s := range r.sessions {
		if s.FacilityID == facilityID && s.VehicleNumber == plate && s.Open() {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrNoActiveSession
}

func (r *fakeSessionRepo) FindByFacility(_ context.Context, facilityID string) ([]domain.VehicleSession, error) {
	var out []domain.VehicleSession
	for _, s := range r.sessions {
		if s.FacilityID == facilityID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) FindActiveByFacility(_ context.Context, facilityID string) ([]domain.VehicleSession, error) {
	var out []domain.VehicleSession
	for _, s := range r.sessions {
		if s.FacilityID == facilityID && s.Open() {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) FindAll(_ context.Context) ([]domain.VehicleSession, error) {
	var out []domain.VehicleSession
	for _, s := range r.sessions {
		out = append(out, *s)
	}
	return out, nil
}

func (r *fakeSessionRepo) Update(_ context.Context, s *domain.VehicleSession) (*domain.VehicleSession, error) {
	if _, ok := r.sessions[s.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	r.sessions[s.ID] = &cp
	out := cp
	return &out, nil
}

type fakeBroadcaster struct {
	notifications []domain.ChangeNotification
}

func (b *fakeBroadcaster) BroadcastChange(n domain.ChangeNotification) {
	b.notifications = append(b.notifications, n)
}

func testFacility() *domain.Facility {
	return &domain.Facility{
		ID:            "fac-1",
		OwnerID:       "owner-1",
		Name:          "North Lot",
		Type:          "Mall",
		TotalSlots:    10,
		RateFirstHour: 20,
		RateExtraHour: 10,
	}
}

func newTestSessionService(t *testing.T) (*SessionService, *fakeSessionRepo, *fakeBroadcaster) {
	t.Helper()
	facRepo := newFakeFacilityRepo()
	if _, err := facRepo.Create(context.Background(), testFacility()); err != nil {
		t.Fatal(err)
	}
	sessRepo := newFakeSessionRepo()
	bc := &fakeBroadcaster{}
	svc := NewSessionService(facRepo, sessRepo, bc)
	return svc, sessRepo, bc
}

func entryDTO(plate string, slot int) domain.VehicleEntryDTO {
	return domain.VehicleEntryDTO{
		VehicleNumber: plate,
		VehicleType:   "Car",
		SlotNumber:    slot,
	}
}

func TestVehicleEntry(t *testing.T) {
	svc, _, bc := newTestSessionService(t)
	ctx := context.Background()

	session, err := svc.VehicleEntry(ctx, "owner-1", entryDTO(" ka01ab1234 ", 3))
	if err != nil {
		t.Fatalf("VehicleEntry: %v", err)
	}
	if session.VehicleNumber != "KA01AB1234" {
		t.Errorf("plate = %q, want normalized KA01AB1234", session.VehicleNumber)
	}
	if session.Status != domain.StatusIn {
		t.Errorf("status = %q, want IN", session.Status)
	}
	if session.ExitTime.Valid || session.Fee.Valid || session.DurationHours.Valid {
		t.Error("a fresh session must carry no exit time, fee or duration")
	}
	if len(bc.notifications) != 1 || bc.notifications[0].Action != domain.ActionCreated {
		t.Errorf("expected one created notification, got %+v", bc.notifications)
	}
}

func TestVehicleEntryDuplicateGuard(t *testing.T) {
	svc, _, _ := newTestSessionService(t)
	ctx := context.Background()

	first, err := svc.VehicleEntry(ctx, "owner-1", entryDTO("KA01AB1234", 3))
	if err != nil {
		t.Fatalf("first entry: %v", err)
	}

	// Same plate, differently cased and padded, while still parked.
	if _, err := svc.VehicleEntry(ctx, "owner-1", entryDTO("  ka01ab1234", 4)); !errors.Is(err, ErrVehicleAlreadyParked) {
		t.Fatalf("second entry err = %v, want ErrVehicleAlreadyParked", err)
	}

	// After the exit the plate may enter again.
	if _, err := svc.VehicleExit(ctx, "owner-1", first.ID); err != nil {
		t.Fatalf("exit: %v", err)
	}
	if _, err := svc.VehicleEntry(ctx, "owner-1", entryDTO("KA01AB1234", 4)); err != nil {
		t.Fatalf("re-entry after exit: %v", err)
	}
}

func TestVehicleEntrySlotValidation(t *testing.T) {
	svc, _, _ := newTestSessionService(t)
	ctx := context.Background()

	if _, err := svc.VehicleEntry(ctx, "owner-1", entryDTO("A1", 11)); !errors.Is(err, ErrSlotOutOfRange) {
		t.Errorf("slot 11 of 10 err = %v, want ErrSlotOutOfRange", err)
	}

	if _, err := svc.VehicleEntry(ctx, "owner-1", entryDTO("A1", 5)); err != nil {
		t.Fatalf("entry at slot 5: %v", err)
	}
	if _, err := svc.VehicleEntry(ctx, "owner-1", entryDTO("B2", 5)); !errors.Is(err, ErrSlotTaken) {
		t.Errorf("second vehicle at slot 5 err = %v, want ErrSlotTaken", err)
	}
}

func TestVehicleEntryNoFacility(t *testing.T) {
	svc, _, _ := newTestSessionService(t)
	if _, err := svc.VehicleEntry(context.Background(), "stranger", entryDTO("A1", 1)); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestVehicleExit(t *testing.T) {
	svc, repo, bc := newTestSessionService(t)
	ctx := context.Background()

	entryAt := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return entryAt }
	session, err := svc.VehicleEntry(ctx, "owner-1", entryDTO("KA01AB1234", 3))
	if err != nil {
		t.Fatalf("entry: %v", err)
	}

	// 2h30m later: three billed hours at 20 + 2*10.
	svc.now = func() time.Time { return entryAt.Add(2*time.Hour + 30*time.Minute) }
	closed, err := svc.VehicleExit(ctx, "owner-1", session.ID)
	if err != nil {
		t.Fatalf("exit: %v", err)
	}

	if closed.Status != domain.StatusOut {
		t.Errorf("status = %q, want OUT", closed.Status)
	}
	if !closed.ExitTime.Valid || !closed.ExitTime.Time.Equal(entryAt.Add(2*time.Hour+30*time.Minute)) {
		t.Errorf("exit time = %+v", closed.ExitTime)
	}
	if !closed.DurationHours.Valid || closed.DurationHours.Int64 != 3 {
		t.Errorf("duration = %+v, want 3", closed.DurationHours)
	}
	if !closed.Fee.Valid || closed.Fee.Float64 != 40 {
		t.Errorf("fee = %+v, want 40", closed.Fee)
	}

	// The stored record was flipped too.
	stored, _ := repo.FindByID(ctx, session.ID)
	if stored.Open() {
		t.Error("stored session still reads open after exit")
	}
	if last := bc.notifications[len(bc.notifications)-1]; last.Action != domain.ActionUpdated {
		t.Errorf("last notification = %+v, want updated", last)
	}
}

func TestVehicleExitAlreadyClosed(t *testing.T) {
	svc, _, _ := newTestSessionService(t)
	ctx := context.Background()

	session, err := svc.VehicleEntry(ctx, "owner-1", entryDTO("KA01AB1234", 3))
	if err != nil {
		t.Fatalf("entry: %v", err)
	}
	if _, err := svc.VehicleExit(ctx, "owner-1", session.ID); err != nil {
		t.Fatalf("first exit: %v", err)
	}
	if _, err := svc.VehicleExit(ctx, "owner-1", session.ID); !errors.Is(err, ErrSessionAlreadyClosed) {
		t.Errorf("second exit err = %v, want ErrSessionAlreadyClosed", err)
	}
}

func TestVehicleExitChargesCurrentRates(t *testing.T) {
	facRepo := newFakeFacilityRepo()
	facility := testFacility()
	if _, err := facRepo.Create(context.Background(), facility); err != nil {
		t.Fatal(err)
	}
	svc := NewSessionService(facRepo, newFakeSessionRepo(), &fakeBroadcaster{})
	ctx := context.Background()

	entryAt := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return entryAt }
	session, err := svc.VehicleEntry(ctx, "owner-1", entryDTO("KA01AB1234", 3))
	if err != nil {
		t.Fatalf("entry: %v", err)
	}

	// Rates change mid-stay; the exit bills at the rates in force then.
	facility.RateFirstHour = 40
	facility.RateExtraHour = 20
	if _, err := facRepo.Update(ctx, facility); err != nil {
		t.Fatal(err)
	}

	svc.now = func() time.Time { return entryAt.Add(90 * time.Minute) }
	closed, err := svc.VehicleExit(ctx, "owner-1", session.ID)
	if err != nil {
		t.Fatalf("exit: %v", err)
	}
	if !closed.Fee.Valid || closed.Fee.Float64 != 60 {
		t.Errorf("fee = %+v, want 60 at the updated rates", closed.Fee)
	}
}

func TestVehicleExitForeignSession(t *testing.T) {
	facRepo := newFakeFacilityRepo()
	ctx := context.Background()
	if _, err := facRepo.Create(ctx, testFacility()); err != nil {
		t.Fatal(err)
	}
	other := testFacility()
	other.ID = "fac-2"
	other.OwnerID = "owner-2"
	if _, err := facRepo.Create(ctx, other); err != nil {
		t.Fatal(err)
	}
	svc := NewSessionService(facRepo, newFakeSessionRepo(), &fakeBroadcaster{})

	session, err := svc.VehicleEntry(ctx, "owner-1", entryDTO("KA01AB1234", 3))
	if err != nil {
		t.Fatalf("entry: %v", err)
	}
	if _, err := svc.VehicleExit(ctx, "owner-2", session.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("cross-owner exit err = %v, want ErrNotFound", err)
	}
}

func TestGetHistoryExcludesOpenSessions(t *testing.T) {
	svc, _, _ := newTestSessionService(t)
	ctx := context.Background()

	entryAt := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return entryAt }
	first, err := svc.VehicleEntry(ctx, "owner-1", entryDTO("DONE", 1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.VehicleEntry(ctx, "owner-1", entryDTO("STILL-IN", 2)); err != nil {
		t.Fatal(err)
	}

	svc.now = func() time.Time { return entryAt.Add(2 * time.Hour) }
	if _, err := svc.VehicleExit(ctx, "owner-1", first.ID); err != nil {
		t.Fatal(err)
	}

	result, err := svc.GetHistory(ctx, "owner-1", domain.HistoryFilter{Range: domain.RangeAll})
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(result.Sessions) != 1 || result.Sessions[0].VehicleNumber != "DONE" {
		t.Errorf("history sessions = %+v, want only the closed one", result.Sessions)
	}
	if result.Summary.TotalVehicles != 1 || result.Summary.TotalRevenue != 30 {
		t.Errorf("summary = %+v, want 1 vehicle, revenue 30", result.Summary)
	}
}

func TestGetActiveSessions(t *testing.T) {
	svc, _, _ := newTestSessionService(t)
	ctx := context.Background()

	first, err := svc.VehicleEntry(ctx, "owner-1", entryDTO("A1", 1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.VehicleEntry(ctx, "owner-1", entryDTO("B2", 2)); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.VehicleExit(ctx, "owner-1", first.ID); err != nil {
		t.Fatal(err)
	}

	active, err := svc.GetActiveSessions(ctx, "owner-1")
	if err != nil {
		t.Fatalf("GetActiveSessions: %v", err)
	}
	if len(active) != 1 || active[0].VehicleNumber != "B2" {
		t.Errorf("active = %+v, want only B2", active)
	}
}
