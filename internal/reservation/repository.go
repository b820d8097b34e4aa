package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, res *Reservation) error
	GetByID(ctx context.Context, id string) (*Reservation, error)
	List(ctx context.Context, filter Filter) ([]*Reservation, int, error)
	// Update persists res only while the stored status still equals
	// fromStatus, so a transition that landed after the caller's read
	// cannot be silently overwritten. A lost race returns ErrModified.
	Update(ctx context.Context, res *Reservation, fromStatus Status) error
	Delete(ctx context.Context, id string) error
	DeleteByClassroom(ctx context.Context, classroomID string) error

	// HasOverlap reports whether any active (pending or confirmed)
	// reservation for the classroom intersects the half-open interval
	// [start, end). excludeID is used during updates to ignore the
	// reservation itself.
	HasOverlap(ctx context.Context, classroomID string, start, end time.Time, excludeID string) (bool, error)

	// CountOccupiedClassrooms counts distinct classrooms with an active
	// reservation covering the given instant.
	CountOccupiedClassrooms(ctx context.Context, at time.Time) (int, error)
}

var activeStatuses = []string{string(StatusPending), string(StatusConfirmed)}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const reservationColumns = `r.id, r.classroom_id, c.name, b.name, r.user_id, u.name, u.role,
	r.start_time, r.end_time, r.purpose, r.status, r.created_at, r.updated_at`

func reservationSelect(psql squirrel.StatementBuilderType, extra ...string) squirrel.SelectBuilder {
	cols := append([]string{reservationColumns}, extra...)
	return psql.Select(cols...).
		From("public.reservations r").
		Join("public.classrooms c ON r.classroom_id = c.id").
		Join("public.buildings b ON c.building_id = b.id").
		Join("public.users u ON r.user_id = u.id")
}

func (r *pgxRepository) Create(ctx context.Context, res *Reservation) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.reservations").
		Columns("classroom_id", "user_id", "start_time", "end_time", "purpose", "status").
		Values(res.ClassroomID, res.UserID, res.StartTime, res.EndTime, res.Purpose, res.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create reservation query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).
		Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Reservation, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := reservationSelect(psql).
		Where(squirrel.Eq{"r.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get reservation query failed: %w", err)
	}

	var res Reservation
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&res.ID, &res.ClassroomID, &res.ClassroomName, &res.BuildingName,
		&res.UserID, &res.UserName, &res.UserRole,
		&res.StartTime, &res.EndTime, &res.Purpose, &res.Status,
		&res.CreatedAt, &res.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get reservation failed: %w", err)
	}
	return &res, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Reservation, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := reservationSelect(psql, "count(*) OVER() AS total_count")

	if filter.ClassroomID != "" {
		query = query.Where(squirrel.Eq{"r.classroom_id": filter.ClassroomID})
	}
	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"r.user_id": filter.UserID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"r.status": filter.Status})
	}
	if filter.ActiveOnly {
		query = query.Where(squirrel.Eq{"r.status": activeStatuses})
	}

	// Visibility scope, set by the service from the caller's identity.
	switch {
	case filter.ScopeUserID != "" && filter.ScopeOwnerRole != "":
		query = query.Where(squirrel.Or{
			squirrel.Eq{"r.user_id": filter.ScopeUserID},
			squirrel.Eq{"u.role": filter.ScopeOwnerRole},
		})
	case filter.ScopeUserID != "":
		query = query.Where(squirrel.Eq{"r.user_id": filter.ScopeUserID})
	case filter.ScopeOwnerRole != "":
		query = query.Where(squirrel.Eq{"u.role": filter.ScopeOwnerRole})
	}

	// Date range filtering (intersection logic)
	if filter.StartTime != nil {
		query = query.Where(squirrel.GtOrEq{"r.end_time": filter.StartTime})
	}
	if filter.EndTime != nil {
		query = query.Where(squirrel.LtOrEq{"r.start_time": filter.EndTime})
	}
	if filter.UpcomingOnly {
		query = query.Where(squirrel.GtOrEq{"r.start_time": time.Now().UTC()})
	}

	orderBy := "r.start_time"
	if filter.SortBy != "" {
		orderBy = "r." + filter.SortBy
	}
	orderDir := "DESC"
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
		return nil, 0, fmt.Errorf("build list reservations query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reservations failed: %w", err)
	}
	defer rows.Close()

	var reservations []*Reservation
	var total int
	for rows.Next() {
		var res Reservation
		if err := rows.Scan(
			&res.ID, &res.ClassroomID, &res.ClassroomName, &res.BuildingName,
			&res.UserID, &res.UserName, &res.UserRole,
			&res.StartTime, &res.EndTime, &res.Purpose, &res.Status,
			&res.CreatedAt, &res.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan reservation failed: %w", err)
		}
		reservations = append(reservations, &res)
	}

	return reservations, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, res *Reservation, fromStatus Status) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.reservations").
		Set("classroom_id", res.ClassroomID).
		Set("user_id", res.UserID).
		Set("start_time", res.StartTime).
		Set("end_time", res.EndTime).
		Set("purpose", res.Purpose).
		Set("status", res.Status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": res.ID, "status": fromStatus}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update reservation query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update reservation failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		// Zero rows either means the reservation is gone or its status
		// moved on since the caller read it.
		var exists bool
		checkErr := r.pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM public.reservations WHERE id = $1)", res.ID).Scan(&exists)
		if checkErr != nil {
			return fmt.Errorf("check reservation failed: %w", checkErr)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrModified
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.reservations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete reservation query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete reservation failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) DeleteByClassroom(ctx context.Context, classroomID string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.reservations").
		Where(squirrel.Eq{"classroom_id": classroomID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete reservations by classroom query failed: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete reservations by classroom failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) HasOverlap(ctx context.Context, classroomID string, start, end time.Time, excludeID string) (bool, error) {
	// Conflict definition:
	// 1. Same classroom
	// 2. Status is pending or confirmed
	// 3. Half-open intervals intersect: existing.start < end AND existing.end > start
	// 4. Exclude a specific id (for updates)
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	subQuery := psql.Select("1").
		From("public.reservations").
		Where(squirrel.Eq{"classroom_id": classroomID}).
		Where(squirrel.Eq{"status": activeStatuses}).
		Where(squirrel.Lt{"start_time": end}).
		Where(squirrel.Gt{"end_time": start})

	if excludeID != "" {
		subQuery = subQuery.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := subQuery.ToSql()
	if err != nil {
		return false, fmt.Errorf("build check overlap query failed: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlap failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) CountOccupiedClassrooms(ctx context.Context, at time.Time) (int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Select("count(DISTINCT classroom_id)").
		From("public.reservations").
		Where(squirrel.Eq{"status": activeStatuses}).
		Where(squirrel.LtOrEq{"start_time": at}).
		Where(squirrel.Gt{"end_time": at}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count occupied classrooms query failed: %w", err)
	}

	var n int
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count occupied classrooms failed: %w", err)
	}
	return n, nil
}
