package matching

import (
	"context"
	"fmt"

	"github.com/garnizeh/jobmatch/pkg/models"
)

// Invariant names reported in a Violation.
const (
	InvMatchedOfferHasChosen = "matched-offer-has-chosen-profile"
	InvBusyHasOneMatched     = "busy-professional-has-one-matched-profile"
	InvNoDoubleFill          = "no-double-filled-profile"
	InvOneMainProfile        = "one-active-profile-per-professional"
)

type Violation struct {
	Invariant string `json:"invariant"`
	Entity    string `json:"entity"`
	ID        int64  `json:"id"`
	Detail    string `json:"detail"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s %d: %s", v.Invariant, v.Entity, v.ID, v.Detail)
}

// CheckInvariants scans the whole store and reports every broken
// lifecycle invariant. An empty result means the data is consistent.
func (s *Service) CheckInvariants(ctx context.Context) ([]Violation, error) {
	const op = "CheckInvariants"

	pros, err := s.store.ListAllProfessionals(ctx)
	if err != nil {
		return nil, storeError(op, err)
	}
	profiles, err := s.store.ListAllProfiles(ctx)
	if err != nil {
		return nil, storeError(op, err)
	}
	offers, err := s.store.ListAllOffers(ctx)
	if err != nil {
		return nil, storeError(op, err)
	}

	return checkInvariants(pros, profiles, offers), nil
}

func checkInvariants(pros []models.Professional, profiles []models.Profile, offers []models.Offer) []Violation {
	var out []Violation

	owner := make(map[int64]int64, len(profiles))
	matched := make(map[int64]int)
	active := make(map[int64]int)
	for _, p := range profiles {
		owner[p.ID] = p.ProfessionalID
		switch p.Status {
		case models.ProfileMatched:
			matched[p.ProfessionalID]++
		case models.ProfileActive:
			active[p.ProfessionalID]++
		}
	}

	busy := make(map[int64]bool, len(pros))
	for _, p := range pros {
		busy[p.ID] = p.Status == models.ProfessionalBusy
		if busy[p.ID] && matched[p.ID] != 1 {
			out = append(out, Violation{
				Invariant: InvBusyHasOneMatched,
				Entity:    "professional",
				ID:        p.ID,
				Detail:    fmt.Sprintf("busy with %d matched profiles", matched[p.ID]),
			})
		}
		if active[p.ID] > 1 {
			out = append(out, Violation{
				Invariant: InvOneMainProfile,
				Entity:    "professional",
				ID:        p.ID,
				Detail:    fmt.Sprintf("%d active profiles", active[p.ID]),
			})
		}
	}

	filled := make(map[int64][]int64)
	for _, o := range offers {
		if o.Status != models.OfferMatched {
			continue
		}
		if o.ChosenProfileID == nil {
			out = append(out, Violation{
				Invariant: InvMatchedOfferHasChosen,
				Entity:    "offer",
				ID:        o.ID,
				Detail:    "matched without a chosen profile",
			})
			continue
		}
		filled[*o.ChosenProfileID] = append(filled[*o.ChosenProfileID], o.ID)
	}
	for _, o := range offers {
		if o.Status != models.OfferMatched || o.ChosenProfileID == nil {
			continue
		}
		pid := *o.ChosenProfileID
		ids := filled[pid]
		// report once per profile, on its first offer
		if len(ids) < 2 || ids[0] != o.ID || busy[owner[pid]] {
			continue
		}
		out = append(out, Violation{
			Invariant: InvNoDoubleFill,
			Entity:    "profile",
			ID:        pid,
			Detail:    fmt.Sprintf("matched by offers %v while its professional is not busy", ids),
		})
	}

	return out
}
