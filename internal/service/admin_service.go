package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/MNehlan/ParkX/internal/domain"
	"github.com/MNehlan/ParkX/internal/repository"
)

var ErrAdminExists = errors.New("admin with this email already exists")

// AdminService serves the cross-facility views. It reads full record sets
// and derives every figure as a fold in the domain package.
type AdminService struct {
	userRepo     repository.UserRepository
	facilityRepo repository.FacilityRepository
	sessionRepo  repository.VehicleSessionRepository
	adminRepo    repository.AdminRepository
	authService  *AuthService
	broadcaster  ChangeBroadcaster
	now          func() time.Time
}

func NewAdminService(userRepo repository.UserRepository, facilityRepo repository.FacilityRepository,
	sessionRepo repository.VehicleSessionRepository, adminRepo repository.AdminRepository,
	authService *AuthService, broadcaster ChangeBroadcaster) *AdminService {
	return &AdminService{
		userRepo:     userRepo,
		facilityRepo: facilityRepo,
		sessionRepo:  sessionRepo,
		adminRepo:    adminRepo,
		authService:  authService,
		broadcaster:  broadcaster,
		now:          time.Now,
	}
}

func (s *AdminService) GetOverview(ctx context.Context) (*domain.AdminOverview, error) {
	facilities, err := s.facilityRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading facilities: %w", err)
	}
	sessions, err := s.sessionRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading sessions: %w", err)
	}
	overview := domain.BuildAdminOverview(facilities, sessions)
	return &overview, nil
}

func (s *AdminService) GetAllFacilities(ctx context.Context) ([]domain.Facility, error) {
	return s.facilityRepo.FindAll(ctx)
}

// DeleteFacility removes a facility together with all of its sessions in one
// transaction; an interrupted delete leaves nothing orphaned.
func (s *AdminService) DeleteFacility(ctx context.Context, facilityID string) error {
	if err := s.facilityRepo.DeleteWithSessions(ctx, facilityID); err != nil {
		return err
	}
	log.Printf("Facility %s and its sessions deleted", facilityID)

	s.broadcaster.BroadcastChange(domain.ChangeNotification{
		Collection: domain.CollectionFacilities,
		Action:     domain.ActionDeleted,
		ID:         facilityID,
		FacilityID: facilityID,
		Timestamp:  s.now().UTC(),
	})
	return nil
}

func (s *AdminService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

// DeleteUser removes the account record. The user's facility, if any, stays
// behind and must be removed through DeleteFacility.
func (s *AdminService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	s.broadcaster.BroadcastChange(domain.ChangeNotification{
		Collection: domain.CollectionUsers,
		Action:     domain.ActionDeleted,
		ID:         userID,
		Timestamp:  s.now().UTC(),
	})
	return nil
}

// GetGlobalHistory filters closed sessions across every facility.
func (s *AdminService) GetGlobalHistory(ctx context.Context, filter domain.HistoryFilter) (*HistoryResult, error) {
	sessions, err := s.sessionRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading sessions: %w", err)
	}
	filtered := filter.FilterSessions(sessions, s.now())
	return &HistoryResult{
		Summary:  domain.SummarizeHistory(filtered),
		Sessions: filtered,
	}, nil
}

// FacilityNames maps facility ids to display names for the global export.
func (s *AdminService) FacilityNames(ctx context.Context) (map[string]string, error) {
	facilities, err := s.facilityRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(facilities))
	for _, f := range facilities {
		names[f.ID] = f.Name
	}
	return names, nil
}

func (s *AdminService) ListAdmins(ctx context.Context) ([]domain.AdminMembership, error) {
	return s.adminRepo.FindAll(ctx)
}

// AddAdmin creates the account if needed and records the membership row.
func (s *AdminService) AddAdmin(ctx context.Context, addedBy string, dto domain.AddAdminDTO) (*domain.AdminMembership, error) {
	email := strings.ToLower(strings.TrimSpace(dto.Email))

	admins, err := s.adminRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing admins: %w", err)
	}
	for _, a := range admins {
		if a.Email == email {
			return nil, ErrAdminExists
		}
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("looking up account: %w", err)
		}
		user, err = s.authService.Register(ctx, domain.RegisterUserDTO{Email: email, Password: dto.Password})
		if err != nil {
			return nil, err
		}
	}

	membership, err := s.adminRepo.Upsert(ctx, &domain.AdminMembership{
		UID:     user.ID,
		Email:   email,
		AddedBy: addedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("recording admin membership: %w", err)
	}
	log.Printf("Admin added: %s (by %s)", email, addedBy)

	s.broadcaster.BroadcastChange(domain.ChangeNotification{
		Collection: domain.CollectionAdmins,
		Action:     domain.ActionCreated,
		ID:         membership.UID,
		Timestamp:  s.now().UTC(),
	})
	return membership, nil
}

func (s *AdminService) RemoveAdmin(ctx context.Context, uid string) error {
	if err := s.adminRepo.Delete(ctx, uid); err != nil {
		return err
	}
	s.broadcaster.BroadcastChange(domain.ChangeNotification{
		Collection: domain.CollectionAdmins,
		Action:     domain.ActionDeleted,
		ID:         uid,
		Timestamp:  s.now().UTC(),
	})
	return nil
}
