package repository

import (
	"context"
	"errors"

	"github.com/MNehlan/ParkX/internal/domain"
)

var ErrNotFound = errors.New("record not found")
var ErrDuplicateEntry = errors.New("record already exists")
var ErrNoActiveSession = errors.New("no active parking session for the given details")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, id string) error
}

type FacilityRepository interface {
	Create(ctx context.Context, facility *domain.Facility) (*domain.Facility, error)
	FindByID(ctx context.Context, id string) (*domain.Facility, error)
	FindByOwnerID(ctx context.Context, ownerID string) (*domain.Facility, error)
	FindAll(ctx context.Context) ([]domain.Facility, error)
	Update(ctx context.Context, facility *domain.Facility) (*domain.Facility, error)
	// DeleteWithSessions removes the facility and every session that
	// references it in a single transaction.
	DeleteWithSessions(ctx context.Context, id string) error
}

type VehicleSessionRepository interface {
	Create(ctx context.Context, session *domain.VehicleSession) (*domain.VehicleSession, error)
	FindByID(ctx context.Context, id string) (*domain.VehicleSession, error)
	// FindActiveByVehicleNumber looks for an IN session of the normalized
	// plate within one facility; the duplicate-entry guard depends on it.
	FindActiveByVehicleNumber(ctx context.Context, facilityID, vehicleNumber string) (*domain.VehicleSession, error)
	FindByFacility(ctx context.Context, facilityID string) ([]domain.VehicleSession, error)
	FindActiveByFacility(ctx context.Context, facilityID string) ([]domain.VehicleSession, error)
	FindAll(ctx context.Context) ([]domain.VehicleSession, error)
	Update(ctx context.Context, session *domain.VehicleSession) (*domain.VehicleSession, error)
}

type AdminRepository interface {
	Upsert(ctx context.Context, membership *domain.AdminMembership) (*domain.AdminMembership, error)
	FindByUID(ctx context.Context, uid string) (*domain.AdminMembership, error)
	FindAll(ctx context.Context) ([]domain.AdminMembership, error)
	Delete(ctx context.Context, uid string) error
}
