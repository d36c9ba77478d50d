package followup

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core"
)

var ErrNotFound = errors.New("follow-up not found")

type (
	Repository interface {
		CreateFollowup(ctx context.Context, f Followup) (Followup, error)
		// QueryFollowupsByStudent returns history sorted by creation time
		// descending (most recent first).
		QueryFollowupsByStudent(ctx context.Context, studentID string) ([]Followup, error)
		GetFollowup(ctx context.Context, studentID, id string) (Followup, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, mailSvc: mailSvc}
}

func (svc *Service) Create(ctx context.Context, studentID string, nf NewFollowup) (Followup, error) {
	f := Followup{
		StudentID:       studentID,
		Content:         nf.Content,
		OriginalRemarks: nf.OriginalRemarks,
		Category:        nf.Category,
		CreatedAt:       time.Now().UTC(),
	}
	return svc.repo.CreateFollowup(ctx, f)
}

func (svc *Service) QueryByStudent(ctx context.Context, studentID string) ([]Followup, error) {
	return svc.repo.QueryFollowupsByStudent(ctx, studentID)
}

func (svc *Service) GetByID(ctx context.Context, studentID, id string) (Followup, error) {
	return svc.repo.GetFollowup(ctx, studentID, id)
}

// Send emails a saved follow-up to the given recipient.
func (svc *Service) Send(f Followup, studentName, recipient string) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Address: recipient}},
		Subject: "Progress update for " + studentName,
		Body:    f.Content,
	})
}
