package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"pet-tag-registry/internal/domain/codes"
)

type CodesRepo struct {
	db *sql.DB
}

func NewCodesRepo(db *sql.DB) *CodesRepo {
	return &CodesRepo{db: db}
}

func (r *CodesRepo) Create(ctx context.Context, c codes.Code) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO codes (id, code, status, created_at, activated_at)
		VALUES ($1,$2,$3,$4,$5)
	`,
		c.ID,
		c.Code,
		string(c.Status),
		c.CreatedAt,
		toNullTime(c.ActivatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return codes.ErrCodeTaken
		}
		return err
	}
	return nil
}

func (r *CodesRepo) GetByID(ctx context.Context, id string) (codes.CodeWithPet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return codes.CodeWithPet{}, codes.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			c.id, c.code, c.status, c.created_at, c.activated_at,
			p.name, p.tutor_name
		FROM codes c
		LEFT JOIN pets p ON p.code_id = c.id
		WHERE c.id = $1
	`, id)

	it, err := scanCodeWithPet(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return codes.CodeWithPet{}, codes.ErrNotFound
		}
		return codes.CodeWithPet{}, err
	}
	return it, nil
}

func (r *CodesRepo) GetByCode(ctx context.Context, code string) (codes.Code, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return codes.Code{}, codes.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, code, status, created_at, activated_at
		FROM codes
		WHERE code = $1
	`, code)

	var c codes.Code
	var status string
	var activated sql.NullTime
	if err := row.Scan(&c.ID, &c.Code, &status, &c.CreatedAt, &activated); err != nil {
		if err == sql.ErrNoRows {
			return codes.Code{}, codes.ErrNotFound
		}
		return codes.Code{}, err
	}
	c.Status = codes.Status(status)
	c.ActivatedAt = fromNullTime(activated)
	return c, nil
}

func (r *CodesRepo) LastCode(ctx context.Context) (string, error) {
	// ancho fijo: MAX lexicográfico = MAX numérico
	row := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(code), '') FROM codes`)

	var last string
	if err := row.Scan(&last); err != nil {
		return "", err
	}
	return last, nil
}

func (r *CodesRepo) List(ctx context.Context, f codes.ListFilter) ([]codes.CodeWithPet, int, error) {
	where := ""
	args := []any{}
	if f.Status != nil {
		where = "WHERE c.status = $1"
		args = append(args, string(*f.Status))
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM codes c "+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT
			c.id, c.code, c.status, c.created_at, c.activated_at,
			p.name, p.tutor_name
		FROM codes c
		LEFT JOIN pets p ON p.code_id = c.id
		` + where + `
		ORDER BY c.created_at DESC, c.code DESC
	`
	if f.Limit > 0 {
		query += " LIMIT " + placeholder(len(args)+1)
		args = append(args, f.Limit)
	}
	if f.Offset > 0 {
		query += " OFFSET " + placeholder(len(args)+1)
		args = append(args, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]codes.CodeWithPet, 0)
	for rows.Next() {
		it, err := scanCodeWithPet(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, it)
	}

	return out, total, rows.Err()
}

func (r *CodesRepo) CountByStatus(ctx context.Context) (codes.StatusCounts, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'raw'),
			COUNT(*) FILTER (WHERE status = 'active')
		FROM codes
	`)

	var out codes.StatusCounts
	if err := row.Scan(&out.Total, &out.Raw, &out.Active); err != nil {
		return codes.StatusCounts{}, err
	}
	return out, nil
}

func (r *CodesRepo) Delete(ctx context.Context, id string) error {
	// borrado administrativo: el perfil vinculado cae por ON DELETE CASCADE
	res, err := r.db.ExecContext(ctx, `DELETE FROM codes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return codes.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCodeWithPet(row rowScanner) (codes.CodeWithPet, error) {
	var it codes.CodeWithPet
	var status string
	var activated sql.NullTime
	var petName, tutorName sql.NullString

	if err := row.Scan(
		&it.ID,
		&it.Code.Code,
		&status,
		&it.CreatedAt,
		&activated,
		&petName,
		&tutorName,
	); err != nil {
		return codes.CodeWithPet{}, err
	}

	it.Status = codes.Status(status)
	it.ActivatedAt = fromNullTime(activated)
	if tutorName.Valid {
		it.Pet = &codes.PetSummary{
			Name:      petName.String,
			TutorName: tutorName.String,
		}
	}
	return it, nil
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
