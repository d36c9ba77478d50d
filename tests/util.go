package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/mwalimu/core/followup"
	"github.com/trezcool/mwalimu/core/student"
)

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	ownerID, name, grade, notes string,
	createdAt ...time.Time,
) student.Student {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	st, err := repo.CreateStudent(context.Background(), student.Student{
		OwnerID:   ownerID,
		Name:      name,
		Grade:     grade,
		Notes:     notes,
		CreatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return st
}

func CreateFollowup(
	t *testing.T,
	repo followup.Repository,
	studentID, content, remarks, category string,
	createdAt ...time.Time,
) followup.Followup {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	f, err := repo.CreateFollowup(context.Background(), followup.Followup{
		StudentID:       studentID,
		Content:         content,
		OriginalRemarks: remarks,
		Category:        category,
		CreatedAt:       tstamp,
	})
	if err != nil {
		t.Fatalf("CreateFollowup() failed: %v", err)
	}
	return f
}
