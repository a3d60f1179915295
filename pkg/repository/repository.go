package repository

import (
	"context"

	"github.com/garnizeh/jobmatch/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
//
// Getters return (nil, nil) when the row does not exist. Methods returning a
// bool are conditional updates: false means the guard did not hold and
// nothing was written.

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type ProfessionalRepo interface {
	CreateProfessional(ctx context.Context, p *models.Professional) (int64, error)
	GetProfessional(ctx context.Context, id int64) (*models.Professional, error)
	GetProfessionalByUserID(ctx context.Context, userID int64) (*models.Professional, error)
	ListAllProfessionals(ctx context.Context) ([]models.Professional, error)
	SetProfessionalStatus(ctx context.Context, id int64, from, to models.ProfessionalStatus) (bool, error)
}

type CompanyRepo interface {
	CreateCompany(ctx context.Context, c *models.Company) (int64, error)
	GetCompany(ctx context.Context, id int64) (*models.Company, error)
	GetCompanyByUserID(ctx context.Context, userID int64) (*models.Company, error)
}

type ProfileRepo interface {
	CreateProfile(ctx context.Context, p *models.Profile) (int64, error)
	GetProfile(ctx context.Context, id int64) (*models.Profile, error)
	ListProfilesByProfessional(ctx context.Context, professionalID int64) ([]models.Profile, error)
	ListAllProfiles(ctx context.Context) ([]models.Profile, error)
	// HideActiveProfiles demotes every active profile of the professional
	// except exceptID and returns how many rows changed.
	HideActiveProfiles(ctx context.Context, professionalID, exceptID int64) (int64, error)
	// ActivateProfile promotes a hidden or active profile to active.
	ActivateProfile(ctx context.Context, id int64) (bool, error)
	// MarkProfileMatched sets status=matched and chosen_offer_id unless the
	// profile is already matched.
	MarkProfileMatched(ctx context.Context, id, offerID int64) (bool, error)
}

type OfferRepo interface {
	CreateOffer(ctx context.Context, o *models.Offer) (int64, error)
	GetOffer(ctx context.Context, id int64) (*models.Offer, error)
	ListOffersByCompany(ctx context.Context, companyID int64) ([]models.Offer, error)
	ListOffersByStatus(ctx context.Context, status models.OfferStatus) ([]models.Offer, error)
	ListAllOffers(ctx context.Context) ([]models.Offer, error)
	// SetOfferChosenProfile requires status=active and no chosen profile
	// other than profileID.
	SetOfferChosenProfile(ctx context.Context, offerID, profileID int64) (bool, error)
	// ClearOfferChosenProfile requires status=active and chosen=profileID.
	ClearOfferChosenProfile(ctx context.Context, offerID, profileID int64) (bool, error)
	// MarkOfferMatched requires status=active and chosen=profileID.
	MarkOfferMatched(ctx context.Context, offerID, profileID int64) (bool, error)
	// ArchiveOffer requires status=active and clears the chosen profile.
	ArchiveOffer(ctx context.Context, offerID int64) (bool, error)
}

type MatchRepo interface {
	// CreateMatch inserts the record unless one already exists for the
	// (profile, offer) pair; created reports whether a row was written.
	CreateMatch(ctx context.Context, m *models.Match) (created bool, err error)
	GetMatch(ctx context.Context, profileID, offerID int64) (*models.Match, error)
	// UpdateMatchStatus moves a match from one lifecycle status to another.
	UpdateMatchStatus(ctx context.Context, id int64, from, to models.MatchStatus) (bool, error)
	// FindOfferableMatch returns the company's oldest confirmed or offered
	// match for the profile, preferring matches on active offers.
	FindOfferableMatch(ctx context.Context, companyID, profileID int64) (*models.Match, error)
	ListConfirmedMatchesByProfessional(ctx context.Context, professionalID int64) ([]models.MatchSummary, error)
	ListConfirmedMatchesByCompany(ctx context.Context, companyID int64) ([]models.MatchSummary, error)
}

type TokenRepo interface {
	RevokeToken(ctx context.Context, jti string, expiresAt int64) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Store groups every entity repository behind one transactional boundary.
type Store interface {
	UserRepo
	ProfessionalRepo
	CompanyRepo
	ProfileRepo
	OfferRepo
	MatchRepo

	// WithTx runs fn against a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	// Calling WithTx on a transaction-bound Store reuses the transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}
