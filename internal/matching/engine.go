package matching

import (
	"context"
	"log/slog"

	"github.com/garnizeh/jobmatch/pkg/models"
	"github.com/garnizeh/jobmatch/pkg/repository"
)

// ProposeMatch records interest in a (profile, offer) pair. A second
// proposal for the same pair, from either side, returns the existing record.
func (s *Service) ProposeMatch(ctx context.Context, actor Actor, profileID, offerID int64) (*models.Match, error) {
	const op = "ProposeMatch"

	var out *models.Match
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, _, err := s.checkPair(ctx, tx, op, actor, profileID, offerID); err != nil {
			return err
		}

		m := &models.Match{ProfileID: profileID, OfferID: offerID, Status: models.MatchProposed, ProposedBy: actor.Role}
		created, err := tx.CreateMatch(ctx, m)
		if err != nil {
			return storeError(op, err)
		}
		if created {
			out = m
			s.logger.Info("match proposed",
				slog.Int64("match_id", m.ID),
				slog.Int64("profile_id", profileID),
				slog.Int64("offer_id", offerID),
				slog.String("by", string(actor.Role)))
			return nil
		}

		existing, err := tx.GetMatch(ctx, profileID, offerID)
		if err != nil {
			return storeError(op, err)
		}
		if existing == nil {
			return newError(op, ErrStore, "match for profile %d and offer %d vanished", profileID, offerID)
		}
		out = existing
		return nil
	})
	if err != nil {
		return nil, storeError(op, err)
	}

	return out, nil
}

// ConfirmMatch is the counterparty's answer to a proposal. The side that
// proposed cannot confirm its own proposal.
func (s *Service) ConfirmMatch(ctx context.Context, actor Actor, profileID, offerID int64) (*models.Match, error) {
	const op = "ConfirmMatch"

	var out *models.Match
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, _, err := s.checkPair(ctx, tx, op, actor, profileID, offerID); err != nil {
			return err
		}

		m, err := tx.GetMatch(ctx, profileID, offerID)
		if err != nil {
			return storeError(op, err)
		}
		if m == nil {
			return newError(op, ErrNotFound, "no match for profile %d and offer %d", profileID, offerID)
		}
		if m.Confirmed {
			out = m
			return nil
		}
		if m.ProposedBy == actor.Role {
			return newError(op, ErrInvalidState, "match %d was proposed by the %s side and awaits the other side", m.ID, actor.Role)
		}

		ok, err := tx.UpdateMatchStatus(ctx, m.ID, models.MatchProposed, models.MatchConfirmed)
		if err != nil {
			return storeError(op, err)
		}
		if !ok {
			return newError(op, ErrConflict, "match %d changed concurrently", m.ID)
		}

		m.Status, m.Confirmed = models.MatchConfirmed, true
		out = m
		s.logger.Info("match confirmed", slog.Int64("match_id", m.ID), slog.String("by", string(actor.Role)))
		return nil
	})
	if err != nil {
		return nil, storeError(op, err)
	}

	return out, nil
}

// ListMatches returns the caller's confirmed matches, oldest first.
// Professionals get an offer snapshot, companies a professional snapshot.
func (s *Service) ListMatches(ctx context.Context, actor Actor) ([]models.MatchSummary, error) {
	const op = "ListMatches"

	var (
		out []models.MatchSummary
		err error
	)
	switch actor.Role {
	case models.RoleProfessional:
		pro, perr := s.professional(ctx, s.store, op, actor)
		if perr != nil {
			return nil, perr
		}
		out, err = s.store.ListConfirmedMatchesByProfessional(ctx, pro.ID)
	case models.RoleCompany:
		co, cerr := s.company(ctx, s.store, op, actor)
		if cerr != nil {
			return nil, cerr
		}
		out, err = s.store.ListConfirmedMatchesByCompany(ctx, co.ID)
	default:
		return nil, newError(op, ErrForbidden, "role %q cannot list matches", actor.Role)
	}
	if err != nil {
		return nil, storeError(op, err)
	}
	if out == nil {
		out = []models.MatchSummary{}
	}

	return out, nil
}

// checkPair validates the actor against a (profile, offer) pair: the offer
// must be active and the actor must own its side of the pair.
func (s *Service) checkPair(ctx context.Context, st repository.Store, op string, actor Actor, profileID, offerID int64) (*models.Profile, *models.Offer, error) {
	if !actor.Role.Valid() {
		return nil, nil, newError(op, ErrForbidden, "role %q cannot propose matches", actor.Role)
	}

	offer, err := getOffer(ctx, st, op, offerID)
	if err != nil {
		return nil, nil, err
	}
	if offer.Status != models.OfferActive {
		return nil, nil, newError(op, ErrInvalidState, "offer %d is %s", offerID, offer.Status)
	}

	profile, err := getProfile(ctx, st, op, profileID)
	if err != nil {
		return nil, nil, err
	}

	switch actor.Role {
	case models.RoleProfessional:
		pro, err := s.professional(ctx, st, op, actor)
		if err != nil {
			return nil, nil, err
		}
		if profile.ProfessionalID != pro.ID {
			return nil, nil, newError(op, ErrForbidden, "profile %d belongs to another professional", profileID)
		}
	case models.RoleCompany:
		co, err := s.company(ctx, st, op, actor)
		if err != nil {
			return nil, nil, err
		}
		if offer.CompanyID != co.ID {
			return nil, nil, newError(op, ErrForbidden, "offer %d belongs to another company", offerID)
		}
	}

	return profile, offer, nil
}
