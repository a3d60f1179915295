package matching

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/garnizeh/jobmatch/pkg/models"
	"github.com/garnizeh/jobmatch/pkg/repository"
)

type ProfileInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	MinSalary   int64  `json:"min_salary"`
	MaxSalary   int64  `json:"max_salary"`
	Location    string `json:"location"`
}

func (in ProfileInput) Validate() error {
	return validateListing(in.Title, in.MinSalary, in.MaxSalary)
}

type OfferInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	MinSalary   int64  `json:"min_salary"`
	MaxSalary   int64  `json:"max_salary"`
	Location    string `json:"location"`
}

func (in OfferInput) Validate() error {
	return validateListing(in.Title, in.MinSalary, in.MaxSalary)
}

func validateListing(title string, minSalary, maxSalary int64) error {
	if strings.TrimSpace(title) == "" {
		return errors.New("title is required")
	}
	if minSalary < 0 || maxSalary < 0 {
		return errors.New("salary cannot be negative")
	}
	if maxSalary < minSalary {
		return errors.New("max_salary must not be lower than min_salary")
	}
	return nil
}

// CreateProfile adds an application for the calling professional. It
// becomes the main application when the professional has no active one.
func (s *Service) CreateProfile(ctx context.Context, actor Actor, in ProfileInput) (*models.Profile, error) {
	const op = "CreateProfile"

	var out *models.Profile
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		pro, err := s.professional(ctx, tx, op, actor)
		if err != nil {
			return err
		}
		siblings, err := tx.ListProfilesByProfessional(ctx, pro.ID)
		if err != nil {
			return storeError(op, err)
		}

		status := models.ProfileActive
		for _, p := range siblings {
			if p.Status == models.ProfileActive {
				status = models.ProfileHidden
				break
			}
		}

		id, err := tx.CreateProfile(ctx, &models.Profile{
			ProfessionalID: pro.ID,
			Title:          strings.TrimSpace(in.Title),
			Description:    in.Description,
			MinSalary:      in.MinSalary,
			MaxSalary:      in.MaxSalary,
			Location:       in.Location,
			Status:         status,
		})
		if err != nil {
			return storeError(op, err)
		}

		out, err = getProfile(ctx, tx, op, id)
		return err
	})
	if err != nil {
		return nil, storeError(op, err)
	}

	s.logger.Info("profile created", slog.Int64("profile_id", out.ID), slog.String("status", string(out.Status)))
	return out, nil
}

// SetMainProfile makes the profile the professional's only active one.
// Matched siblings keep their status.
func (s *Service) SetMainProfile(ctx context.Context, actor Actor, profileID int64) (*models.Profile, error) {
	const op = "SetMainProfile"

	var out *models.Profile
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		pro, err := s.professional(ctx, tx, op, actor)
		if err != nil {
			return err
		}
		profile, err := getProfile(ctx, tx, op, profileID)
		if err != nil {
			return err
		}
		if profile.ProfessionalID != pro.ID {
			return newError(op, ErrForbidden, "profile %d belongs to another professional", profileID)
		}
		if profile.Status == models.ProfileMatched {
			return newError(op, ErrInvalidState, "profile %d is matched", profileID)
		}

		if _, err := tx.HideActiveProfiles(ctx, pro.ID, profileID); err != nil {
			return storeError(op, err)
		}
		ok, err := tx.ActivateProfile(ctx, profileID)
		if err != nil {
			return storeError(op, err)
		}
		if !ok {
			return newError(op, ErrConflict, "profile %d changed concurrently", profileID)
		}

		out, err = getProfile(ctx, tx, op, profileID)
		return err
	})
	if err != nil {
		return nil, storeError(op, err)
	}

	return out, nil
}

func (s *Service) ListProfiles(ctx context.Context, actor Actor) ([]models.Profile, error) {
	const op = "ListProfiles"

	pro, err := s.professional(ctx, s.store, op, actor)
	if err != nil {
		return nil, err
	}
	out, err := s.store.ListProfilesByProfessional(ctx, pro.ID)
	if err != nil {
		return nil, storeError(op, err)
	}
	if out == nil {
		out = []models.Profile{}
	}

	return out, nil
}

func (s *Service) CreateOffer(ctx context.Context, actor Actor, in OfferInput) (*models.Offer, error) {
	const op = "CreateOffer"

	var out *models.Offer
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		co, err := s.company(ctx, tx, op, actor)
		if err != nil {
			return err
		}
		id, err := tx.CreateOffer(ctx, &models.Offer{
			CompanyID:   co.ID,
			Title:       strings.TrimSpace(in.Title),
			Description: in.Description,
			MinSalary:   in.MinSalary,
			MaxSalary:   in.MaxSalary,
			Location:    in.Location,
			Status:      models.OfferActive,
		})
		if err != nil {
			return storeError(op, err)
		}

		out, err = getOffer(ctx, tx, op, id)
		return err
	})
	if err != nil {
		return nil, storeError(op, err)
	}

	s.logger.Info("offer created", slog.Int64("offer_id", out.ID), slog.Int64("company_id", out.CompanyID))
	return out, nil
}

// ArchiveOffer takes an open offer off the market. A pending offer to a
// profile is withdrawn along the way.
func (s *Service) ArchiveOffer(ctx context.Context, actor Actor, offerID int64) (*models.Offer, error) {
	const op = "ArchiveOffer"

	var out *models.Offer
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
		switch offer.Status {
		case models.OfferArchived:
			out = offer
			return nil
		case models.OfferMatched:
			return newError(op, ErrInvalidState, "offer %d is matched", offerID)
		}

		ok, err := tx.ArchiveOffer(ctx, offerID)
		if err != nil {
			return storeError(op, err)
		}
		if !ok {
			return newError(op, ErrConflict, "offer %d changed concurrently", offerID)
		}

		if offer.ChosenProfileID != nil {
			m, err := tx.GetMatch(ctx, *offer.ChosenProfileID, offerID)
			if err != nil {
				return storeError(op, err)
			}
			if m != nil && m.Status == models.MatchOffered {
				if _, err := tx.UpdateMatchStatus(ctx, m.ID, models.MatchOffered, models.MatchConfirmed); err != nil {
					return storeError(op, err)
				}
			}
		}

		out, err = getOffer(ctx, tx, op, offerID)
		return err
	})
	if err != nil {
		return nil, storeError(op, err)
	}

	return out, nil
}

func (s *Service) ListOffers(ctx context.Context, actor Actor) ([]models.Offer, error) {
	const op = "ListOffers"

	co, err := s.company(ctx, s.store, op, actor)
	if err != nil {
		return nil, err
	}
	out, err := s.store.ListOffersByCompany(ctx, co.ID)
	if err != nil {
		return nil, storeError(op, err)
	}
	if out == nil {
		out = []models.Offer{}
	}

	return out, nil
}

// ListActiveOffers is the public pool of open offers.
func (s *Service) ListActiveOffers(ctx context.Context) ([]models.Offer, error) {
	out, err := s.store.ListOffersByStatus(ctx, models.OfferActive)
	if err != nil {
		return nil, storeError("ListActiveOffers", err)
	}
	if out == nil {
		out = []models.Offer{}
	}

	return out, nil
}
