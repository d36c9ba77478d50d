package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/mwalimu/core/followup"
)

type followupRepository struct {
	db *followupTable
}

var _ followup.Repository = (*followupRepository)(nil) // interface compliance check

func NewFollowupRepository(db *DB) *followupRepository {
	return &followupRepository{db: db.followup}
}

func (repo *followupRepository) CreateFollowup(ctx context.Context, f followup.Followup) (followup.Followup, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	f.ID = uuid.New().String()
	repo.db.table[f.ID] = &f
	return f, nil
}

func (repo *followupRepository) QueryFollowupsByStudent(ctx context.Context, studentID string) ([]followup.Followup, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	followups := make([]followup.Followup, 0, len(repo.db.table))
	for _, f := range repo.db.table {
		if f.StudentID == studentID {
			followups = append(followups, *f)
		}
	}
	// most recent first
	sort.Slice(followups, func(i, j int) bool { return followups[i].CreatedAt.After(followups[j].CreatedAt) })
	return followups, nil
}

func (repo *followupRepository) GetFollowup(ctx context.Context, studentID, id string) (followup.Followup, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if f, ok := repo.db.table[id]; ok && f.StudentID == studentID {
		return *f, nil
	}
	return followup.Followup{}, followup.ErrNotFound
}
