package student

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("student not found")

type (
	Repository interface {
		CreateStudent(ctx context.Context, st Student) (Student, error)
		// QueryStudentsByOwner returns the owner's roster sorted by name ascending.
		QueryStudentsByOwner(ctx context.Context, ownerID string) ([]Student, error)
		// GetStudent is owner-scoped: a row belonging to another owner is ErrNotFound.
		GetStudent(ctx context.Context, ownerID, id string) (Student, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ownerID string, ns NewStudent) (Student, error) {
	st := Student{
		OwnerID:   ownerID,
		Name:      ns.Name,
		Grade:     ns.Grade,
		Notes:     ns.Notes,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateStudent(ctx, st)
}

func (svc *Service) QueryByOwner(ctx context.Context, ownerID string) ([]Student, error) {
	return svc.repo.QueryStudentsByOwner(ctx, ownerID)
}

func (svc *Service) GetByID(ctx context.Context, ownerID, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, ownerID, id)
}
