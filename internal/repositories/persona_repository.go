package repositories

import (
	"database/sql"
	"time"

	"personas/internal/models"
)

type PersonaRepository struct {
	db *sql.DB
}

func NewPersonaRepository(db *sql.DB) *PersonaRepository {
	return &PersonaRepository{db: db}
}

const personaColumns = `id, first_name, last_name, email, phone, birth_date, is_active, notes, created_at`

// Create inserts a new persona, assigning id and created_at
func (r *PersonaRepository) Create(persona *models.Persona) error {
	persona.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO personas (
			first_name, last_name, email, phone, birth_date, is_active, notes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		persona.FirstName, persona.LastName, persona.Email,
		persona.Phone, persona.BirthDate, persona.IsActive, persona.Notes, persona.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	persona.ID = id

	return nil
}

// CreateBatch inserts all personas in a single transaction. The whole
// batch is rolled back if any insert fails.
func (r *PersonaRepository) CreateBatch(personas []*models.Persona) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO personas (
			first_name, last_name, email, phone, birth_date, is_active, notes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, persona := range personas {
		persona.CreatedAt = now
		result, err := stmt.Exec(
			persona.FirstName, persona.LastName, persona.Email,
			persona.Phone, persona.BirthDate, persona.IsActive, persona.Notes, persona.CreatedAt,
		)
		if err != nil {
			tx.Rollback()
			return err
		}
		if id, err := result.LastInsertId(); err == nil {
			persona.ID = id
		}
	}

	return tx.Commit()
}

// GetByID retrieves a persona by ID
func (r *PersonaRepository) GetByID(id int64) (*models.Persona, error) {
	query := `SELECT ` + personaColumns + ` FROM personas WHERE id = ?`

	persona := &models.Persona{}
	err := r.db.QueryRow(query, id).Scan(
		&persona.ID, &persona.FirstName, &persona.LastName, &persona.Email,
		&persona.Phone, &persona.BirthDate, &persona.IsActive, &persona.Notes, &persona.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return persona, nil
}

// ExistsByEmail checks if a persona exists with the given email
func (r *PersonaRepository) ExistsByEmail(email string) (bool, error) {
	query := `SELECT COUNT(*) FROM personas WHERE email = ?`
	var count int
	err := r.db.QueryRow(query, email).Scan(&count)
	return count > 0, err
}

// ExistsByEmailExcluding checks if a persona other than the given id holds the email
func (r *PersonaRepository) ExistsByEmailExcluding(email string, id int64) (bool, error) {
	query := `SELECT COUNT(*) FROM personas WHERE email = ? AND id != ?`
	var count int
	err := r.db.QueryRow(query, email, id).Scan(&count)
	return count > 0, err
}

// List retrieves personas ordered by id with offset/limit pagination
func (r *PersonaRepository) List(offset, limit int) ([]*models.Persona, error) {
	query := `SELECT ` + personaColumns + ` FROM personas ORDER BY id LIMIT ? OFFSET ?`

	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPersonas(rows)
}

// GetAll retrieves every persona ordered by id
func (r *PersonaRepository) GetAll() ([]*models.Persona, error) {
	query := `SELECT ` + personaColumns + ` FROM personas ORDER BY id`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPersonas(rows)
}

// Update writes all mutable fields of an existing persona
func (r *PersonaRepository) Update(persona *models.Persona) error {
	query := `
		UPDATE personas SET
			first_name = ?, last_name = ?, email = ?, phone = ?,
			birth_date = ?, is_active = ?, notes = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		persona.FirstName, persona.LastName, persona.Email, persona.Phone,
		persona.BirthDate, persona.IsActive, persona.Notes, persona.ID,
	)
	return err
}

// Delete deletes a persona by ID
func (r *PersonaRepository) Delete(id int64) error {
	query := `DELETE FROM personas WHERE id = ?`
	_, err := r.db.Exec(query, id)
	return err
}

// DeleteAll purges the personas table and returns the number of rows removed
func (r *PersonaRepository) DeleteAll() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM personas`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// GetEmails retrieves the email of every persona
func (r *PersonaRepository) GetEmails() ([]string, error) {
	rows, err := r.db.Query(`SELECT email FROM personas`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}

	return emails, rows.Err()
}

// GetBirthDates retrieves the birth date of every persona that has one
func (r *PersonaRepository) GetBirthDates() ([]string, error) {
	rows, err := r.db.Query(`SELECT birth_date FROM personas WHERE birth_date IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, err
		}
		dates = append(dates, date)
	}

	return dates, rows.Err()
}

// GetActive retrieves the reduced projection of every active persona
func (r *PersonaRepository) GetActive() ([]*models.ActivePersona, error) {
	query := `SELECT id, email, phone, is_active FROM personas WHERE is_active = 1 ORDER BY id`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var personas []*models.ActivePersona
	for rows.Next() {
		persona := &models.ActivePersona{}
		if err := rows.Scan(&persona.ID, &persona.Email, &persona.Phone, &persona.IsActive); err != nil {
			return nil, err
		}
		personas = append(personas, persona)
	}

	return personas, rows.Err()
}

func scanPersonas(rows *sql.Rows) ([]*models.Persona, error) {
	var personas []*models.Persona
	for rows.Next() {
		persona := &models.Persona{}
		err := rows.Scan(
			&persona.ID, &persona.FirstName, &persona.LastName, &persona.Email,
			&persona.Phone, &persona.BirthDate, &persona.IsActive, &persona.Notes, &persona.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		personas = append(personas, persona)
	}

	return personas, rows.Err()
}
