package models

// Domain models matching the database schema in db/migrations/0001_init.sql.
// Timestamps are unix milliseconds (UTC).

type Role string

const (
	RoleProfessional Role = "professional"
	RoleCompany      Role = "company"
)

func (r Role) Valid() bool {
	return r == RoleProfessional || r == RoleCompany
}

type User struct {
	ID           int64  `json:"id" db:"id"`
	Email        string `json:"email" db:"email" validate:"required,email"`
	Name         string `json:"name" db:"name" validate:"required"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         Role   `json:"role" db:"role"`
	Updated      int64  `json:"updated" db:"updated"`
}

type ProfessionalStatus string

const (
	ProfessionalActive ProfessionalStatus = "active"
	ProfessionalBusy   ProfessionalStatus = "busy"
)

type Professional struct {
	ID        int64              `json:"id" db:"id"`
	UserID    int64              `json:"user_id" db:"user_id"`
	FirstName string             `json:"first_name" db:"first_name"`
	LastName  string             `json:"last_name" db:"last_name"`
	Phone     string             `json:"phone,omitempty" db:"phone"`
	Status    ProfessionalStatus `json:"status" db:"status"`
	Updated   int64              `json:"updated" db:"updated"`
}

func (p *Professional) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

type Company struct {
	ID           int64  `json:"id" db:"id"`
	UserID       int64  `json:"user_id" db:"user_id"`
	Name         string `json:"name" db:"name"`
	ContactEmail string `json:"contact_email,omitempty" db:"contact_email"`
	ContactPhone string `json:"contact_phone,omitempty" db:"contact_phone"`
	Location     string `json:"location,omitempty" db:"location"`
	Updated      int64  `json:"updated" db:"updated"`
}

type ProfileStatus string

const (
	ProfileActive  ProfileStatus = "active"
	ProfileHidden  ProfileStatus = "hidden"
	ProfileMatched ProfileStatus = "matched"
)

// Profile is a professional's application. At most one profile per
// professional is active (the main application).
type Profile struct {
	ID             int64         `json:"id" db:"id"`
	ProfessionalID int64         `json:"professional_id" db:"professional_id"`
	Title          string        `json:"title" db:"title"`
	Description    string        `json:"description,omitempty" db:"description"`
	MinSalary      int64         `json:"min_salary" db:"min_salary"`
	MaxSalary      int64         `json:"max_salary" db:"max_salary"`
	Location       string        `json:"location,omitempty" db:"location"`
	Status         ProfileStatus `json:"status" db:"status"`
	ChosenOfferID  *int64        `json:"chosen_offer_id,omitempty" db:"chosen_offer_id"`
	Created        int64         `json:"created" db:"created"`
	Updated        int64         `json:"updated" db:"updated"`
}

type OfferStatus string

const (
	OfferActive   OfferStatus = "active"
	OfferMatched  OfferStatus = "matched"
	OfferArchived OfferStatus = "archived"
)

// Offer is a company's job posting.
type Offer struct {
	ID              int64       `json:"id" db:"id"`
	CompanyID       int64       `json:"company_id" db:"company_id"`
	Title           string      `json:"title" db:"title"`
	Description     string      `json:"description,omitempty" db:"description"`
	MinSalary       int64       `json:"min_salary" db:"min_salary"`
	MaxSalary       int64       `json:"max_salary" db:"max_salary"`
	Location        string      `json:"location,omitempty" db:"location"`
	Status          OfferStatus `json:"status" db:"status"`
	ChosenProfileID *int64      `json:"chosen_professional_profile_id,omitempty" db:"chosen_professional_profile_id"`
	Created         int64       `json:"created" db:"created"`
	Updated         int64       `json:"updated" db:"updated"`
}

type MatchStatus string

const (
	MatchProposed  MatchStatus = "proposed"
	MatchConfirmed MatchStatus = "confirmed"
	MatchOffered   MatchStatus = "offered"
	MatchMatched   MatchStatus = "matched"
)

// Match links one profile and one offer. Confirmed mirrors
// Status != MatchProposed and is kept as its own column.
type Match struct {
	ID         int64       `json:"id" db:"id"`
	ProfileID  int64       `json:"profile_id" db:"profile_id"`
	OfferID    int64       `json:"offer_id" db:"offer_id"`
	Confirmed  bool        `json:"confirmed" db:"confirmed"`
	Status     MatchStatus `json:"status" db:"status"`
	ProposedBy Role        `json:"proposed_by" db:"proposed_by"`
	CreatedAt  int64       `json:"created_at" db:"created_at"`
	Updated    int64       `json:"updated" db:"updated"`
}

type OfferSnapshot struct {
	ID        int64       `json:"id"`
	Title     string      `json:"title"`
	MinSalary int64       `json:"min_salary"`
	MaxSalary int64       `json:"max_salary"`
	Status    OfferStatus `json:"status"`
}

type ProfessionalSnapshot struct {
	ID     int64              `json:"id"`
	Name   string             `json:"name"`
	Status ProfessionalStatus `json:"status"`
}

// MatchSummary is a confirmed match joined with the counterparty snapshot:
// Offer for professionals, Professional for companies.
type MatchSummary struct {
	MatchID      int64                 `json:"match_id"`
	ProfileID    int64                 `json:"profile_id"`
	OfferID      int64                 `json:"offer_id"`
	Status       MatchStatus           `json:"status"`
	CreatedAt    int64                 `json:"created_at"`
	Offer        *OfferSnapshot        `json:"offer,omitempty"`
	Professional *ProfessionalSnapshot `json:"professional,omitempty"`
}
