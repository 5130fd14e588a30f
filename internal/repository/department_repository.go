package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DepartmentRepository backs the known-department soft check.
type DepartmentRepository interface {
	ListNames(ctx context.Context) ([]string, error)
}

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository constructs repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

func (r *departmentRepository) ListNames(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT name FROM departments WHERE active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
