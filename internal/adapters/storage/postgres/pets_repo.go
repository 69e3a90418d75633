package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"pet-tag-registry/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

// CreateActivating: una transacción para la transición completa.
// El UPDATE guarda de status='raw' decide el ganador entre dos
// activaciones concurrentes; el unique de pets.code_id es el
// cinturón de la misma invariante (1 perfil por code).
func (r *PetsRepo) CreateActivating(ctx context.Context, code string, p pets.Pet, activatedAt time.Time) (pets.Pet, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return pets.Pet{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var codeID string
	var status string
	err = tx.QueryRowContext(ctx, `
		SELECT id, status FROM codes WHERE code = $1 FOR UPDATE
	`, code).Scan(&codeID, &status)
	if err != nil {
		if err == sql.ErrNoRows {
			return pets.Pet{}, pets.ErrCodeNotFound
		}
		return pets.Pet{}, err
	}
	if status != "raw" {
		return pets.Pet{}, pets.ErrAlreadyActivated
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE codes
		SET status = 'active', activated_at = $2
		WHERE id = $1 AND status = 'raw'
	`, codeID, activatedAt)
	if err != nil {
		return pets.Pet{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return pets.Pet{}, pets.ErrAlreadyActivated
	}

	p.CodeID = codeID
	_, err = tx.ExecContext(ctx, `
		INSERT INTO pets (
			id, code_id, tutor_id,
			tutor_name, tutor_phone, contact_type, secondary_phone,
			name, species, breed, sex,
			birth_date, observations, photo,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		p.ID,
		p.CodeID,
		p.TutorID,
		p.TutorName,
		p.TutorPhone,
		string(p.ContactType),
		p.SecondaryPhone,
		p.Name,
		p.Species,
		p.Breed,
		string(p.Sex),
		toNullTime(p.BirthDate),
		p.Observations,
		toNullString(p.Photo),
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return pets.Pet{}, pets.ErrAlreadyActivated
		}
		return pets.Pet{}, err
	}

	if err := tx.Commit(); err != nil {
		return pets.Pet{}, err
	}
	return p, nil
}

const petColumns = `
	id, code_id, tutor_id,
	tutor_name, tutor_phone, contact_type, secondary_phone,
	name, species, breed, sex,
	birth_date, observations, photo,
	created_at, updated_at
`

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, pets.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT `+petColumns+` FROM pets WHERE id = $1`, id)
	return scanPet(row)
}

func (r *PetsRepo) GetByCodeID(ctx context.Context, codeID string) (pets.Pet, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+petColumns+` FROM pets WHERE code_id = $1`, codeID)
	return scanPet(row)
}

func (r *PetsRepo) ListByTutor(ctx context.Context, tutorID string) ([]pets.PetWithCode, error) {
	tutorID = strings.TrimSpace(tutorID)
	if tutorID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			p.id, p.code_id, p.tutor_id,
			p.tutor_name, p.tutor_phone, p.contact_type, p.secondary_phone,
			p.name, p.species, p.breed, p.sex,
			p.birth_date, p.observations, p.photo,
			p.created_at, p.updated_at,
			c.code
		FROM pets p
		JOIN codes c ON c.id = p.code_id
		WHERE p.tutor_id = $1
		ORDER BY p.created_at DESC
	`, tutorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.PetWithCode, 0)
	for rows.Next() {
		var p pets.Pet
		var contact, sex string
		var bd sql.NullTime
		var photo sql.NullString
		var code string
		if err := rows.Scan(
			&p.ID, &p.CodeID, &p.TutorID,
			&p.TutorName, &p.TutorPhone, &contact, &p.SecondaryPhone,
			&p.Name, &p.Species, &p.Breed, &sex,
			&bd, &p.Observations, &photo,
			&p.CreatedAt, &p.UpdatedAt,
			&code,
		); err != nil {
			return nil, err
		}
		p.ContactType = pets.ContactType(contact)
		p.Sex = pets.Sex(sex)
		p.BirthDate = fromNullTime(bd)
		p.Photo = fromNullString(photo)
		out = append(out, pets.PetWithCode{Pet: p, Code: code})
	}

	return out, rows.Err()
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET
			tutor_name = $2,
			tutor_phone = $3,
			contact_type = $4,
			secondary_phone = $5,
			name = $6,
			species = $7,
			breed = $8,
			sex = $9,
			birth_date = $10,
			observations = $11,
			photo = $12,
			updated_at = $13
		WHERE id = $1
	`,
		p.ID,
		p.TutorName,
		p.TutorPhone,
		string(p.ContactType),
		p.SecondaryPhone,
		p.Name,
		p.Species,
		p.Breed,
		string(p.Sex),
		toNullTime(p.BirthDate),
		p.Observations,
		toNullString(p.Photo),
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func (r *PetsRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pets`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanPet(row *sql.Row) (pets.Pet, error) {
	var p pets.Pet
	var contact, sex string
	var bd sql.NullTime
	var photo sql.NullString

	if err := row.Scan(
		&p.ID, &p.CodeID, &p.TutorID,
		&p.TutorName, &p.TutorPhone, &contact, &p.SecondaryPhone,
		&p.Name, &p.Species, &p.Breed, &sex,
		&bd, &p.Observations, &photo,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return pets.Pet{}, pets.ErrNotFound
		}
		return pets.Pet{}, err
	}

	p.ContactType = pets.ContactType(contact)
	p.Sex = pets.Sex(sex)
	p.BirthDate = fromNullTime(bd)
	p.Photo = fromNullString(photo)
	return p, nil
}
