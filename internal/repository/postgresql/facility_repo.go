package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MNehlan/ParkX/internal/domain"
	"github.com/MNehlan/ParkX/internal/repository"

	"github.com/google/uuid"
)

type pgFacilityRepository struct {
	db *sql.DB
}

func NewPgFacilityRepository(db *sql.DB) repository.FacilityRepository {
	return &pgFacilityRepository{db: db}
}

func (r *pgFacilityRepository) Create(ctx context.Context, facility *domain.Facility) (*domain.Facility, error) {
	if facility.ID == "" {
		facility.ID = uuid.NewString()
	}
	query := `INSERT INTO facilities (id, owner_id, name, type, total_slots, rate_first_hour, rate_extra_hour, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		facility.ID, facility.OwnerID, facility.Name, facility.Type,
		facility.TotalSlots, facility.RateFirstHour, facility.RateExtraHour,
	).Scan(&facility.CreatedAt, &facility.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("FacilityRepository.Create: %w", err)
	}
	facility.CreatedAt = facility.CreatedAt.In(time.UTC)
	facility.UpdatedAt = facility.UpdatedAt.In(time.UTC)
	return facility, nil
}

func (r *pgFacilityRepository) FindByID(ctx context.Context, id string) (*domain.Facility, error) {
	facility := &domain.Facility{}
	query := `SELECT id, owner_id, name, type, total_slots, rate_first_hour, rate_extra_hour, created_at, updated_at
	           FROM facilities WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&facility.ID, &facility.OwnerID, &facility.Name, &facility.Type,
		&facility.TotalSlots, &facility.RateFirstHour, &facility.RateExtraHour,
		&facility.CreatedAt, &facility.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("FacilityRepository.FindByID: %w", err)
	}
	facility.CreatedAt = facility.CreatedAt.In(time.UTC)
	facility.UpdatedAt = facility.UpdatedAt.In(time.UTC)
	return facility, nil
}

func (r *pgFacilityRepository) FindByOwnerID(ctx context.Context, ownerID string) (*domain.Facility, error) {
	facility := &domain.Facility{}
	query := `SELECT id, owner_id, name, type, total_slots, rate_first_hour, rate_extra_hour, created_at, updated_at
	           FROM facilities WHERE owner_id = $1 ORDER BY created_at LIMIT 1`
	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(
		&facility.ID, &facility.OwnerID, &facility.Name, &facility.Type,
		&facility.TotalSlots, &facility.RateFirstHour, &facility.RateExtraHour,
		&facility.CreatedAt, &facility.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("FacilityRepository.FindByOwnerID: %w", err)
	}
	facility.CreatedAt = facility.CreatedAt.In(time.UTC)
	facility.UpdatedAt = facility.UpdatedAt.In(time.UTC)
	return facility, nil
}

func (r *pgFacilityRepository) FindAll(ctx context.Context) ([]domain.Facility, error) {
	query := `SELECT id, owner_id, name, type, total_slots, rate_first_hour, rate_extra_hour, created_at, updated_at
	           FROM facilities ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("FacilityRepository.FindAll: %w", err)
	}
	defer rows.Close()

	var facilities []domain.Facility
	for rows.Next() {
		var facility domain.Facility
		if err := rows.Scan(
			&facility.ID, &facility.OwnerID, &facility.Name, &facility.Type,
			&facility.TotalSlots, &facility.RateFirstHour, &facility.RateExtraHour,
			&facility.CreatedAt, &facility.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("FacilityRepository.FindAll (scanning row): %w", err)
		}
		facility.CreatedAt = facility.CreatedAt.In(time.UTC)
		facility.UpdatedAt = facility.UpdatedAt.In(time.UTC)
		facilities = append(facilities, facility)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("FacilityRepository.FindAll (rows error): %w", err)
	}
	return facilities, nil
}

func (r *pgFacilityRepository) Update(ctx context.Context, facility *domain.Facility) (*domain.Facility, error) {
	query := `UPDATE facilities SET name = $1, type = $2, total_slots = $3, rate_first_hour = $4,
	               rate_extra_hour = $5, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $6 RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		facility.Name, facility.Type, facility.TotalSlots,
		facility.RateFirstHour, facility.RateExtraHour, facility.ID,
	).Scan(&facility.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("FacilityRepository.Update: %w", err)
	}
	facility.UpdatedAt = facility.UpdatedAt.In(time.UTC)
	return facility, nil
}

// DeleteWithSessions removes the facility and its sessions in one
// transaction so an interrupted delete cannot leave sessions orphaned.
func (r *pgFacilityRepository) DeleteWithSessions(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("FacilityRepository.DeleteWithSessions (begin tx): %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM vehicle_sessions WHERE facility_id = $1`, id); err != nil {
		return fmt.Errorf("FacilityRepository.DeleteWithSessions (deleting sessions): %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM facilities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("FacilityRepository.DeleteWithSessions (deleting facility): %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("FacilityRepository.DeleteWithSessions (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("FacilityRepository.DeleteWithSessions (commit): %w", err)
	}
	return nil
}
