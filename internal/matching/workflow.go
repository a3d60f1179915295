package matching

import (
	"context"
	"log/slog"

	"github.com/garnizeh/jobmatch/internal/notify"
	"github.com/garnizeh/jobmatch/pkg/models"
	"github.com/garnizeh/jobmatch/pkg/repository"
)

// OfferSent reports an extended offer and the outcome of its notification.
type OfferSent struct {
	OfferID      int64  `json:"offer_id"`
	ProfileID    int64  `json:"profile_id"`
	MatchID      int64  `json:"match_id"`
	DeliveryCode string `json:"delivery_code,omitempty"`
	NotifyError  string `json:"notify_error,omitempty"`
}

// OfferAccepted identifies the pair that became matched.
type OfferAccepted struct {
	OfferID        int64 `json:"offer_id"`
	ProfileID      int64 `json:"profile_id"`
	ProfessionalID int64 `json:"professional_id"`
	MatchID        int64 `json:"match_id"`
}

// OfferDeclined identifies the offer returned to the pool.
type OfferDeclined struct {
	OfferID   int64 `json:"offer_id"`
	ProfileID int64 `json:"profile_id"`
}

// OfferWithdrawn identifies the offer the company took back.
type OfferWithdrawn struct {
	OfferID   int64 `json:"offer_id"`
	ProfileID int64 `json:"profile_id"`
}

// SendOffer escalates the company's oldest confirmed match with the profile
// into a formal offer. The offer stays active until the professional
// answers. The notification goes out after commit and its failure does not
// undo the offer.
func (s *Service) SendOffer(ctx context.Context, actor Actor, profileID int64) (*OfferSent, error) {
	const op = "SendOffer"

	var (
		out     OfferSent
		details notify.OfferDetails
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		co, err := s.company(ctx, tx, op, actor)
		if err != nil {
			return err
		}
		profile, err := getProfile(ctx, tx, op, profileID)
		if err != nil {
			return err
		}

		// A busy professional is a conflict even when the pair's match was
		// already consumed by an accepted offer.
		pro, err := tx.GetProfessional(ctx, profile.ProfessionalID)
		if err != nil {
			return storeError(op, err)
		}
		if pro == nil {
			return newError(op, ErrNotFound, "professional %d", profile.ProfessionalID)
		}
		if pro.Status == models.ProfessionalBusy {
			return newError(op, ErrConflict, "professional %d is already busy", pro.ID)
		}

		m, err := tx.FindOfferableMatch(ctx, co.ID, profileID)
		if err != nil {
			return storeError(op, err)
		}
		if m == nil {
			return newError(op, ErrNotFound, "no confirmed match between profile %d and company %d", profileID, co.ID)
		}

		offer, err := getOffer(ctx, tx, op, m.OfferID)
		if err != nil {
			return err
		}
		if offer.Status != models.OfferActive {
			return newError(op, ErrConflict, "offer %d is %s", offer.ID, offer.Status)
		}
		if offer.ChosenProfileID != nil && *offer.ChosenProfileID != profileID {
			return newError(op, ErrConflict, "offer %d is already extended to profile %d", offer.ID, *offer.ChosenProfileID)
		}

		ok, err := tx.SetOfferChosenProfile(ctx, offer.ID, profileID)
		if err != nil {
			return storeError(op, err)
		}
		if !ok {
			return newError(op, ErrConflict, "offer %d changed concurrently", offer.ID)
		}
		if m.Status == models.MatchConfirmed {
			ok, err := tx.UpdateMatchStatus(ctx, m.ID, models.MatchConfirmed, models.MatchOffered)
			if err != nil {
				return storeError(op, err)
			}
			if !ok {
				return newError(op, ErrConflict, "match %d changed concurrently", m.ID)
			}
		}

		user, err := tx.GetUserByID(ctx, pro.UserID)
		if err != nil {
			return storeError(op, err)
		}

		out = OfferSent{OfferID: offer.ID, ProfileID: profileID, MatchID: m.ID}
		details = notify.OfferDetails{
			OfferID:          offer.ID,
			ProfessionalName: pro.FullName(),
			CompanyName:      co.Name,
			ContactEmail:     co.ContactEmail,
			ContactPhone:     co.ContactPhone,
			Position:         offer.Title,
			MinSalary:        offer.MinSalary,
			MaxSalary:        offer.MaxSalary,
			Location:         offer.Location,
		}
		if user != nil {
			details.ProfessionalEmail = user.Email
		}
		return nil
	})
	if err != nil {
		return nil, storeError(op, err)
	}

	s.logger.Info("offer sent",
		slog.Int64("offer_id", out.OfferID),
		slog.Int64("profile_id", out.ProfileID),
		slog.Int64("match_id", out.MatchID))

	code, nerr := s.deliver(ctx, details)
	if nerr != nil {
		s.logger.Warn("offer notification failed",
			slog.Int64("offer_id", out.OfferID),
			slog.Any("err", nerr))
		out.NotifyError = nerr.Error()
	}
	out.DeliveryCode = code

	return &out, nil
}

func (s *Service) deliver(ctx context.Context, d notify.OfferDetails) (string, error) {
	msg, err := notify.NewOfferMessage(d)
	if err != nil {
		return "", err
	}
	return s.notifier.Notify(ctx, msg)
}

// AcceptOffer binds the professional to the offer. Professional, profile,
// offer and match move together in one transaction; every write is
// conditional, so a concurrent accept on the same offer or by the same
// professional makes this one fail with ErrConflict and roll back.
func (s *Service) AcceptOffer(ctx context.Context, actor Actor, offerID int64) (*OfferAccepted, error) {
	const op = "AcceptOffer"

	var out OfferAccepted
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		pro, err := s.professional(ctx, tx, op, actor)
		if err != nil {
			return err
		}
		offer, err := getOffer(ctx, tx, op, offerID)
		if err != nil {
			return err
		}
		switch offer.Status {
		case models.OfferMatched:
			return newError(op, ErrConflict, "offer %d is already matched", offerID)
		case models.OfferActive:
		default:
			return newError(op, ErrInvalidState, "offer %d is %s", offerID, offer.Status)
		}

		profile, err := s.chosenProfile(ctx, tx, op, pro, offer)
		if err != nil {
			return err
		}
		if pro.Status == models.ProfessionalBusy {
			return newError(op, ErrConflict, "professional %d is already busy", pro.ID)
		}

		m, err := tx.GetMatch(ctx, profile.ID, offer.ID)
		if err != nil {
			return storeError(op, err)
		}
		if m == nil {
			return newError(op, ErrInvalidState, "offer %d has no match with profile %d", offer.ID, profile.ID)
		}

		steps := []struct {
			what string
			run  func() (bool, error)
		}{
			{"professional status", func() (bool, error) {
				return tx.SetProfessionalStatus(ctx, pro.ID, models.ProfessionalActive, models.ProfessionalBusy)
			}},
			{"profile status", func() (bool, error) { return tx.MarkProfileMatched(ctx, profile.ID, offer.ID) }},
			{"offer status", func() (bool, error) { return tx.MarkOfferMatched(ctx, offer.ID, profile.ID) }},
			{"match status", func() (bool, error) {
				return tx.UpdateMatchStatus(ctx, m.ID, models.MatchOffered, models.MatchMatched)
			}},
		}
		for _, step := range steps {
			ok, err := step.run()
			if err != nil {
				return storeError(op, err)
			}
			if !ok {
				return newError(op, ErrConflict, "%s changed concurrently", step.what)
			}
		}

		out = OfferAccepted{OfferID: offer.ID, ProfileID: profile.ID, ProfessionalID: pro.ID, MatchID: m.ID}
		return nil
	})
	if err != nil {
		return nil, storeError(op, err)
	}

	s.logger.Info("offer accepted",
		slog.Int64("offer_id", out.OfferID),
		slog.Int64("profile_id", out.ProfileID),
		slog.Int64("professional_id", out.ProfessionalID))

	return &out, nil
}

// DeclineOffer returns the offer to the pool. The professional and the
// profile are left as they were.
func (s *Service) DeclineOffer(ctx context.Context, actor Actor, offerID int64) (*OfferDeclined, error) {
	const op = "DeclineOffer"

	var out OfferDeclined
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		pro, err := s.professional(ctx, tx, op, actor)
		if err != nil {
			return err
		}
		offer, err := getOffer(ctx, tx, op, offerID)
		if err != nil {
			return err
		}
		profile, err := s.chosenProfile(ctx, tx, op, pro, offer)
		if err != nil {
			return err
		}
		if offer.Status != models.OfferActive {
			return newError(op, ErrInvalidState, "offer %d is %s", offerID, offer.Status)
		}

		if err := reopen(ctx, tx, op, offer.ID, profile.ID); err != nil {
			return err
		}

		out = OfferDeclined{OfferID: offer.ID, ProfileID: profile.ID}
		return nil
	})
	if err != nil {
		return nil, storeError(op, err)
	}

	s.logger.Info("offer declined", slog.Int64("offer_id", out.OfferID), slog.Int64("profile_id", out.ProfileID))
	return &out, nil
}

// WithdrawOffer lets the company take back an offer the professional has
// not answered yet.
func (s *Service) WithdrawOffer(ctx context.Context, actor Actor, offerID int64) (*OfferWithdrawn, error) {
	const op = "WithdrawOffer"

	var out OfferWithdrawn
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		co, err := s.company(ctx, tx, op, actor)
		if err != nil {
			return err
		}
		offer, err := getOffer(ctx, tx, op, offerID)
		if err != nil {
			return err
		}
		if offer.CompanyID != co.ID {
			return newError(op, ErrForbidden, "offer %d belongs to another company", offerID)
		}
		if offer.Status != models.OfferActive || offer.ChosenProfileID == nil {
			return newError(op, ErrInvalidState, "offer %d has no pending offer to withdraw", offerID)
		}

		if err := reopen(ctx, tx, op, offer.ID, *offer.ChosenProfileID); err != nil {
			return err
		}

		out = OfferWithdrawn{OfferID: offer.ID, ProfileID: *offer.ChosenProfileID}
		return nil
	})
	if err != nil {
		return nil, storeError(op, err)
	}

	s.logger.Info("offer withdrawn", slog.Int64("offer_id", out.OfferID), slog.Int64("profile_id", out.ProfileID))
	return &out, nil
}

// chosenProfile returns the caller's profile the offer is extended to,
// looking across all of the professional's profiles.
func (s *Service) chosenProfile(ctx context.Context, tx repository.Store, op string, pro *models.Professional, offer *models.Offer) (*models.Profile, error) {
	if offer.ChosenProfileID == nil {
		return nil, newError(op, ErrForbidden, "offer %d is not extended to any profile", offer.ID)
	}

	profiles, err := tx.ListProfilesByProfessional(ctx, pro.ID)
	if err != nil {
		return nil, storeError(op, err)
	}
	for i := range profiles {
		if profiles[i].ID == *offer.ChosenProfileID {
			return &profiles[i], nil
		}
	}

	return nil, newError(op, ErrForbidden, "offer %d is not extended to any of your profiles", offer.ID)
}

// reopen clears the offer's chosen profile and moves an offered match back
// to confirmed.
func reopen(ctx context.Context, tx repository.Store, op string, offerID, profileID int64) error {
	ok, err := tx.ClearOfferChosenProfile(ctx, offerID, profileID)
	if err != nil {
		return storeError(op, err)
	}
	if !ok {
		return newError(op, ErrConflict, "offer %d changed concurrently", offerID)
	}

	m, err := tx.GetMatch(ctx, profileID, offerID)
	if err != nil {
		return storeError(op, err)
	}
	if m == nil || m.Status != models.MatchOffered {
		return nil
	}
	if _, err := tx.UpdateMatchStatus(ctx, m.ID, models.MatchOffered, models.MatchConfirmed); err != nil {
		return storeError(op, err)
	}

	return nil
}
