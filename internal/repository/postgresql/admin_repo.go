package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MNehlan/ParkX/internal/domain"
	"github.com/MNehlan/ParkX/internal/repository"
)

type pgAdminRepository struct {
	db *sql.DB
}

func NewPgAdminRepository(db *sql.DB) repository.AdminRepository {
	return &pgAdminRepository{db: db}
}

func (r *pgAdminRepository) Upsert(ctx context.Context, membership *domain.AdminMembership) (*domain.AdminMembership, error) {
	query := `INSERT INTO admins (uid, email, added_by, created_at)
	           VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
	           ON CONFLICT (uid) DO UPDATE SET email = EXCLUDED.email
	           RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, membership.UID, membership.Email, membership.AddedBy).
		Scan(&membership.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("AdminRepository.Upsert: %w", err)
	}
	membership.CreatedAt = membership.CreatedAt.In(time.UTC)
	return membership, nil
}

func (r *pgAdminRepository) FindByUID(ctx context.Context, uid string) (*domain.AdminMembership, error) {
	membership := &domain.AdminMembership{}
	query := `SELECT uid, email, added_by, created_at FROM admins WHERE uid = $1`
	err := r.db.QueryRowContext(ctx, query, uid).
		Scan(&membership.UID, &membership.Email, &membership.AddedBy, &membership.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("AdminRepository.FindByUID: %w", err)
	}
	membership.CreatedAt = membership.CreatedAt.In(time.UTC)
	return membership, nil
}

func (r *pgAdminRepository) FindAll(ctx context.Context) ([]domain.AdminMembership, error) {
	query := `SELECT uid, email, added_by, created_at FROM admins ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("AdminRepository.FindAll: %w", err)
	}
	defer rows.Close()

	var memberships []domain.AdminMembership
	for rows.Next() {
		var membership domain.AdminMembership
		if err := rows.Scan(&membership.UID, &membership.Email, &membership.AddedBy, &membership.CreatedAt); err != nil {
			return nil, fmt.Errorf("AdminRepository.FindAll (scanning row): %w", err)
		}
		membership.CreatedAt = membership.CreatedAt.In(time.UTC)
		memberships = append(memberships, membership)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("AdminRepository.FindAll (rows error): %w", err)
	}
	return memberships, nil
}

func (r *pgAdminRepository) Delete(ctx context.Context, uid string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM admins WHERE uid = $1`, uid)
	if err != nil {
		return fmt.Errorf("AdminRepository.Delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("AdminRepository.Delete (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
