package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nlavoie/expensed/internal/entity"
)

// PersonRepository reads the personnel store. This service never writes it.
type PersonRepository interface {
	// GetByID returns (nil, nil) when no such person exists.
	GetByID(ctx context.Context, id int64) (*entity.Person, error)
	List(ctx context.Context) ([]*entity.Person, error)
}

type personRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPersonRepository(pool *pgxpool.Pool, logger *slog.Logger) PersonRepository {
	return &personRepository{
		pool:   pool,
		logger: logger,
	}
}

func (r *personRepository) GetByID(ctx context.Context, id int64) (*entity.Person, error) {
	const q = `
		SELECT id, first_name, last_name, COALESCE(department, '')
		FROM employees
		WHERE id = $1`

	var p entity.Person
	err := r.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.FirstName, &p.LastName, &p.Department)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("failed to fetch person", "person_id", id, "error", err)
		return nil, err
	}
	return &p, nil
}

func (r *personRepository) List(ctx context.Context) ([]*entity.Person, error) {
	const q = `
		SELECT id, first_name, last_name, COALESCE(department, '')
		FROM employees
		ORDER BY id`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Error("failed to list people", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Person
	for rows.Next() {
		var p entity.Person
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Department); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
