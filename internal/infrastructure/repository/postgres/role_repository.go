package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/adhassan/salescast/internal/core/domain"
)

type RoleRepository struct {
	db *sql.DB
}

func NewRoleRepository(db *sql.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO roles (id, name) VALUES ($1,$2)
ON CONFLICT (name) DO NOTHING
`, role.ID, role.Name)
	if err != nil {
		return fmt.Errorf("insert role: %w", err)
	}
	return nil
}

func (r *RoleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name FROM roles WHERE id = $1`, id)

	var role domain.Role
	if err := row.Scan(&role.ID, &role.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrRoleNotFound, "get role", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan role: %w", err)
	}
	return &role, nil
}

func (r *RoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Role, 0)
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		out = append(out, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}
	return out, nil
}

func (r *RoleRepository) Update(ctx context.Context, role *domain.Role) error {
	result, err := r.db.ExecContext(ctx, `UPDATE roles SET name = $2 WHERE id = $1`, role.ID, role.Name)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return oneRowOr(result, domain.ErrRoleNotFound, "update role", role.ID)
}

func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return oneRowOr(result, domain.ErrRoleNotFound, "delete role", id)
}
