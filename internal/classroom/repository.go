package classroom

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, cr *Classroom) error
	GetByID(ctx context.Context, id string) (*Classroom, error)
	List(ctx context.Context, filter Filter) ([]*Classroom, int, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, cr *Classroom) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, cr *Classroom) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.classrooms").
		Columns("building_id", "name", "capacity", "type", "resources").
		Values(cr.BuildingID, cr.Name, cr.Capacity, cr.Type, cr.Resources).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create classroom query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).Scan(&cr.ID, &cr.CreatedAt)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Classroom, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"c.id", "c.building_id", "b.name", "c.name", "c.capacity", "c.type", "c.resources", "c.created_at",
	).
		From("public.classrooms c").
		Join("public.buildings b ON c.building_id = b.id").
		Where(squirrel.Eq{"c.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get classroom query failed: %w", err)
	}

	var cr Classroom
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&cr.ID, &cr.BuildingID, &cr.BuildingName, &cr.Name, &cr.Capacity, &cr.Type, &cr.Resources, &cr.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get classroom failed: %w", err)
	}
	return &cr, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Classroom, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"c.id", "c.building_id", "b.name", "c.name", "c.capacity", "c.type", "c.resources", "c.created_at",
		"count(*) OVER() AS total_count",
	).
		From("public.classrooms c").
		Join("public.buildings b ON c.building_id = b.id")

	if filter.BuildingID != "" {
		query = query.Where(squirrel.Eq{"c.building_id": filter.BuildingID})
	}
	if filter.Type != "" {
		query = query.Where(squirrel.Eq{"c.type": filter.Type})
	}
	if filter.MinCapacity > 0 {
		query = query.Where(squirrel.GtOrEq{"c.capacity": filter.MinCapacity})
	}

	orderBy := "c.name"
	if filter.SortBy != "" {
		orderBy = "c." + filter.SortBy
	}
	orderDir := "ASC"
	if filter.SortOrder != "" {
		orderDir = filter.SortOrder
	}
	query = query.OrderBy(orderBy + " " + orderDir)

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list classrooms query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list classrooms failed: %w", err)
	}
	defer rows.Close()

	var classrooms []*Classroom
	var total int
	for rows.Next() {
		var cr Classroom
		if err := rows.Scan(
			&cr.ID, &cr.BuildingID, &cr.BuildingName, &cr.Name, &cr.Capacity, &cr.Type, &cr.Resources, &cr.CreatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan classroom failed: %w", err)
		}
		classrooms = append(classrooms, &cr)
	}

	return classrooms, total, nil
}

func (r *pgxRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM public.classrooms").Scan(&total); err != nil {
		return 0, fmt.Errorf("count classrooms failed: %w", err)
	}
	return total, nil
}

func (r *pgxRepository) Update(ctx context.Context, cr *Classroom) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.classrooms").
		Set("building_id", cr.BuildingID).
		Set("name", cr.Name).
		Set("capacity", cr.Capacity).
		Set("type", cr.Type).
		Set("resources", cr.Resources).
		Where(squirrel.Eq{"id": cr.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update classroom query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update classroom failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.classrooms").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete classroom query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete classroom failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
