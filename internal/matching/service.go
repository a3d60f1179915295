// Package matching implements the match and offer lifecycle between
// professional profiles and company offers.
//
// Every operation takes an already-authenticated Actor. The professional or
// company row behind the actor is resolved from its user id here, so the
// transport layer only has to vouch for (role, user id).
package matching

import (
	"context"
	"io"
	"log/slog"

	"github.com/garnizeh/jobmatch/internal/notify"
	"github.com/garnizeh/jobmatch/pkg/models"
	"github.com/garnizeh/jobmatch/pkg/repository"
)

// Actor identifies the authenticated caller.
type Actor struct {
	Role   models.Role
	UserID int64
}

// Service runs the match engine and offer workflow on top of a Store.
type Service struct {
	store    repository.Store
	notifier notify.Notifier
	logger   *slog.Logger
}

// New returns a Service. A nil notifier drops offer notifications.
func New(store repository.Store, notifier notify.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Service{store: store, notifier: notifier, logger: logger}
}

func (s *Service) professional(ctx context.Context, st repository.Store, op string, actor Actor) (*models.Professional, error) {
	if actor.Role != models.RoleProfessional {
		return nil, newError(op, ErrForbidden, "role %q cannot perform this action", actor.Role)
	}
	p, err := st.GetProfessionalByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, storeError(op, err)
	}
	if p == nil {
		return nil, newError(op, ErrForbidden, "user %d has no professional account", actor.UserID)
	}
	return p, nil
}

func (s *Service) company(ctx context.Context, st repository.Store, op string, actor Actor) (*models.Company, error) {
	if actor.Role != models.RoleCompany {
		return nil, newError(op, ErrForbidden, "role %q cannot perform this action", actor.Role)
	}
	c, err := st.GetCompanyByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, storeError(op, err)
	}
	if c == nil {
		return nil, newError(op, ErrForbidden, "user %d has no company account", actor.UserID)
	}
	return c, nil
}

func getOffer(ctx context.Context, st repository.Store, op string, id int64) (*models.Offer, error) {
	o, err := st.GetOffer(ctx, id)
	if err != nil {
		return nil, storeError(op, err)
	}
	if o == nil {
		return nil, newError(op, ErrNotFound, "offer %d", id)
	}
	return o, nil
}

func getProfile(ctx context.Context, st repository.Store, op string, id int64) (*models.Profile, error) {
	p, err := st.GetProfile(ctx, id)
	if err != nil {
		return nil, storeError(op, err)
	}
	if p == nil {
		return nil, newError(op, ErrNotFound, "profile %d", id)
	}
	return p, nil
}
