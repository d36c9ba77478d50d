package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/student"
)

// rosterOrdering: teachers scan the roster alphabetically.
var rosterOrdering = core.DBOrdering{Field: "name", Ascending: true}

type studentRow struct {
	ID        string      `db:"id"`
	OwnerID   string      `db:"owner_id"`
	Name      string      `db:"name"`
	Grade     null.String `db:"grade"`
	Notes     null.String `db:"notes"`
	CreatedAt time.Time   `db:"created_at"`
}

func (r studentRow) domain() student.Student {
	return student.Student{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Name:      r.Name,
		Grade:     r.Grade.String,
		Notes:     r.Notes.String,
		CreatedAt: r.CreatedAt,
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to student.ErrNotFound
func (repo studentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	st.ID = uuid.New().String()
	row := studentRow{
		ID:        st.ID,
		OwnerID:   st.OwnerID,
		Name:      st.Name,
		Grade:     null.NewString(st.Grade, st.Grade != ""),
		Notes:     null.NewString(st.Notes, st.Notes != ""),
		CreatedAt: st.CreatedAt.UTC(),
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO students (id, owner_id, name, grade, notes, created_at)
		VALUES (:id, :owner_id, :name, :grade, :notes, :created_at)`, row)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return st, nil
}

func (repo studentRepository) QueryStudentsByOwner(ctx context.Context, ownerID string) ([]student.Student, error) {
	var rows []studentRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT id, owner_id, name, grade, notes, created_at
		FROM students
		WHERE owner_id = $1
		ORDER BY `+rosterOrdering.String(), ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}

	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.domain())
	}
	return students, nil
}

func (repo studentRepository) GetStudent(ctx context.Context, ownerID, id string) (student.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return student.Student{}, student.ErrNotFound
	}

	var row studentRow
	err := repo.db.GetContext(ctx, &row, `
		SELECT id, owner_id, name, grade, notes, created_at
		FROM students
		WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "finding student by ID")
	}
	return row.domain(), nil
}
