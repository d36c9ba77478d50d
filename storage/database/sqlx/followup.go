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
	"github.com/trezcool/mwalimu/core/followup"
)

// historyOrdering: most recent first, the only ordering the analysis relies on.
var historyOrdering = core.DBOrdering{Field: "created_at", Ascending: false}

type followupRow struct {
	ID              string      `db:"id"`
	StudentID       string      `db:"student_id"`
	Content         string      `db:"content"`
	OriginalRemarks null.String `db:"original_remarks"`
	Category        null.String `db:"category"`
	CreatedAt       time.Time   `db:"created_at"`
}

func (r followupRow) domain() followup.Followup {
	return followup.Followup{
		ID:              r.ID,
		StudentID:       r.StudentID,
		Content:         r.Content,
		OriginalRemarks: r.OriginalRemarks.String,
		Category:        r.Category.String,
		CreatedAt:       r.CreatedAt,
	}
}

type followupRepository struct {
	db *sqlx.DB
}

var _ followup.Repository = (*followupRepository)(nil) // interface compliance check

func NewFollowupRepository(db *sqlx.DB) *followupRepository {
	return &followupRepository{db: db}
}

func (repo followupRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return followup.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo followupRepository) CreateFollowup(ctx context.Context, f followup.Followup) (followup.Followup, error) {
	f.ID = uuid.New().String()
	row := followupRow{
		ID:              f.ID,
		StudentID:       f.StudentID,
		Content:         f.Content,
		OriginalRemarks: null.NewString(f.OriginalRemarks, f.OriginalRemarks != ""),
		Category:        null.NewString(f.Category, f.Category != ""),
		CreatedAt:       f.CreatedAt.UTC(),
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO followups (id, student_id, content, original_remarks, category, created_at)
		VALUES (:id, :student_id, :content, :original_remarks, :category, :created_at)`, row)
	if err != nil {
		return followup.Followup{}, errors.Wrap(err, "inserting follow-up")
	}
	return f, nil
}

func (repo followupRepository) QueryFollowupsByStudent(ctx context.Context, studentID string) ([]followup.Followup, error) {
	var rows []followupRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT id, student_id, content, original_remarks, category, created_at
		FROM followups
		WHERE student_id = $1
		ORDER BY `+historyOrdering.String(), studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying follow-ups")
	}

	followups := make([]followup.Followup, 0, len(rows))
	for _, row := range rows {
		followups = append(followups, row.domain())
	}
	return followups, nil
}

func (repo followupRepository) GetFollowup(ctx context.Context, studentID, id string) (followup.Followup, error) {
	if _, err := uuid.Parse(id); err != nil {
		return followup.Followup{}, followup.ErrNotFound
	}

	var row followupRow
	err := repo.db.GetContext(ctx, &row, `
		SELECT id, student_id, content, original_remarks, category, created_at
		FROM followups
		WHERE id = $1 AND student_id = $2`, id, studentID)
	if err != nil {
		return followup.Followup{}, repo.trapNoRowsErr(err, "finding follow-up by ID")
	}
	return row.domain(), nil
}
