package email

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nyashahama/scas-screening-backend/internal/db"
	"github.com/nyashahama/scas-screening-backend/internal/scoring"
	"github.com/nyashahama/scas-screening-backend/internal/screening"
)

const alertTimeout = 30 * time.Second

// Users resolves the student named in an alert.
type Users interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (db.User, error)
}

// AlertObserver mails the counsellor inbox when a submission lands in the
// high band. Delivery happens off the request path; failures are logged.
type AlertObserver struct {
	sender   Sender
	users    Users
	to       string
	maxTotal int
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewAlertObserver returns an observer mailing to. An empty to disables it.
func NewAlertObserver(sender Sender, users Users, to string, maxTotal int, logger *slog.Logger) *AlertObserver {
	return &AlertObserver{sender: sender, users: users, to: to, maxTotal: maxTotal, logger: logger}
}

// SubmissionAccepted implements screening.Observer.
func (a *AlertObserver) SubmissionAccepted(_ context.Context, r screening.Result) {
	if a.to == "" || r.Level != scoring.LevelHigh {
		return
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		// Detached from the request: the response may already be written.
		ctx, cancel := context.WithTimeout(context.Background(), alertTimeout)
		defer cancel()

		p := HighLevelAlertParams{
			To:           a.to,
			SubmissionID: r.SubmissionID.String(),
			Total:        r.Vector.Total,
			MaxTotal:     a.maxTotal,
			ModelLabel:   string(r.Model.Predicted),
			ModelSource:  string(r.Model.Source),
			SubmittedAt:  r.SubmittedAt,
		}
		if u, err := a.users.GetUserByID(ctx, r.UserID); err != nil {
			a.logger.Warn("email: alert user lookup failed", "user_id", r.UserID, "error", err)
		} else {
			p.StudentName = u.Fullname
			p.StudentEmail = u.Email
		}

		if err := a.sender.SendHighLevelAlert(ctx, p); err != nil {
			a.logger.Error("email: high level alert failed",
				"submission_id", r.SubmissionID,
				"error", err,
			)
			return
		}
		a.logger.Info("email: high level alert sent", "submission_id", r.SubmissionID)
	}()
}

// Wait blocks until in-flight alerts finish or ctx is done.
func (a *AlertObserver) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
