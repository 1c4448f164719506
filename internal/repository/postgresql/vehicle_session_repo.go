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

type pgVehicleSessionRepository struct {
	db *sql.DB
}

func NewPgVehicleSessionRepository(db *sql.DB) repository.VehicleSessionRepository {
	return &pgVehicleSessionRepository{db: db}
}

const sessionColumns = `id, facility_id, vehicle_number, vehicle_type, driver_name, slot_number,
	                 entry_time, exit_time, duration_hours, fee, status, created_at, updated_at`

func (r *pgVehicleSessionRepository) Create(ctx context.Context, session *domain.VehicleSession) (*domain.VehicleSession, error) {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	query := `INSERT INTO vehicle_sessions
	           (id, facility_id, vehicle_number, vehicle_type, driver_name, slot_number, entry_time, status, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING created_at, updated_at`

	var driverNameVal sql.NullString
	if session.DriverName.Valid {
		driverNameVal = sql.NullString{String: session.DriverName.String, Valid: true}
	}
	var slotNumberVal sql.NullInt64
	if session.SlotNumber.Valid {
		slotNumberVal = sql.NullInt64{Int64: session.SlotNumber.Int64, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		session.ID, session.FacilityID, session.VehicleNumber, session.VehicleType,
		driverNameVal, slotNumberVal, session.EntryTime, session.Status,
	).Scan(&session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("VehicleSessionRepository.Create: %w", err)
	}
	session.CreatedAt = session.CreatedAt.In(time.UTC)
	session.UpdatedAt = session.UpdatedAt.In(time.UTC)
	return session, nil
}

func (r *pgVehicleSessionRepository) FindByID(ctx context.Context, id string) (*domain.VehicleSession, error) {
	session := &domain.VehicleSession{}
	query := `SELECT ` + sessionColumns + ` FROM vehicle_sessions WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID, &session.FacilityID, &session.VehicleNumber, &session.VehicleType,
		&session.DriverName, &session.SlotNumber, &session.EntryTime, &session.ExitTime,
		&session.DurationHours, &session.Fee, &session.Status,
		&session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("VehicleSessionRepository.FindByID: %w", err)
	}
	normalizeSessionTimes(session)
	return session, nil
}

func (r *pgVehicleSessionRepository) FindActiveByVehicleNumber(ctx context.Context, facilityID, vehicleNumber string) (*domain.VehicleSession, error) {
	session := &domain.VehicleSession{}
	query := `SELECT ` + sessionColumns + `
	           FROM vehicle_sessions
	           WHERE facility_id = $1 AND vehicle_number = $2 AND status = $3
	           ORDER BY entry_time DESC LIMIT 1`
	err := r.db.QueryRowContext(ctx, query, facilityID, vehicleNumber, domain.StatusIn).Scan(
		&session.ID, &session.FacilityID, &session.VehicleNumber, &session.VehicleType,
		&session.DriverName, &session.SlotNumber, &session.EntryTime, &session.ExitTime,
		&session.DurationHours, &session.Fee, &session.Status,
		&session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNoActiveSession
		}
		return nil, fmt.Errorf("VehicleSessionRepository.FindActiveByVehicleNumber: %w", err)
	}
	normalizeSessionTimes(session)
	return session, nil
}

func (r *pgVehicleSessionRepository) FindByFacility(ctx context.Context, facilityID string) ([]domain.VehicleSession, error) {
	query := `SELECT ` + sessionColumns + `
	           FROM vehicle_sessions WHERE facility_id = $1 ORDER BY entry_time DESC`
	return r.querySessions(ctx, "FindByFacility", query, facilityID)
}

func (r *pgVehicleSessionRepository) FindActiveByFacility(ctx context.Context, facilityID string) ([]domain.VehicleSession, error) {
	query := `SELECT ` + sessionColumns + `
	           FROM vehicle_sessions WHERE facility_id = $1 AND status = $2 ORDER BY entry_time DESC`
	return r.querySessions(ctx, "FindActiveByFacility", query, facilityID, domain.StatusIn)
}

func (r *pgVehicleSessionRepository) FindAll(ctx context.Context) ([]domain.VehicleSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM vehicle_sessions ORDER BY entry_time DESC`
	return r.querySessions(ctx, "FindAll", query)
}

func (r *pgVehicleSessionRepository) Update(ctx context.Context, session *domain.VehicleSession) (*domain.VehicleSession, error) {
	query := `UPDATE vehicle_sessions
	           SET exit_time = $1, duration_hours = $2, fee = $3, status = $4, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $5
	           RETURNING updated_at`

	var exitTimeVal sql.NullTime
	if session.ExitTime.Valid {
		exitTimeVal = sql.NullTime{Time: session.ExitTime.Time, Valid: true}
	}
	var durationVal sql.NullInt64
	if session.DurationHours.Valid {
		durationVal = sql.NullInt64{Int64: session.DurationHours.Int64, Valid: true}
	}
	var feeVal sql.NullFloat64
	if session.Fee.Valid {
		feeVal = sql.NullFloat64{Float64: session.Fee.Float64, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		exitTimeVal, durationVal, feeVal, session.Status, session.ID,
	).Scan(&session.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("VehicleSessionRepository.Update: %w", err)
	}
	session.UpdatedAt = session.UpdatedAt.In(time.UTC)
	return session, nil
}

func (r *pgVehicleSessionRepository) querySessions(ctx context.Context, op, query string, args ...interface{}) ([]domain.VehicleSession, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("VehicleSessionRepository.%s: %w", op, err)
	}
	defer rows.Close()

	var sessions []domain.VehicleSession
	for rows.Next() {
		var session domain.VehicleSession
		if err := rows.Scan(
			&session.ID, &session.FacilityID, &session.VehicleNumber, &session.VehicleType,
			&session.DriverName, &session.SlotNumber, &session.EntryTime, &session.ExitTime,
			&session.DurationHours, &session.Fee, &session.Status,
			&session.CreatedAt, &session.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("VehicleSessionRepository.%s (scanning row): %w", op, err)
		}
		normalizeSessionTimes(&session)
		sessions = append(sessions, session)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("VehicleSessionRepository.%s (rows error): %w", op, err)
	}
	return sessions, nil
}

func normalizeSessionTimes(session *domain.VehicleSession) {
	session.EntryTime = session.EntryTime.In(time.UTC)
	if session.ExitTime.Valid {
		session.ExitTime.Time = session.ExitTime.Time.In(time.UTC)
	}
	session.CreatedAt = session.CreatedAt.In(time.UTC)
	session.UpdatedAt = session.UpdatedAt.In(time.UTC)
}
