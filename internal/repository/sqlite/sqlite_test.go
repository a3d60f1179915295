package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/garnizeh/jobmatch/internal/testutil"
	"github.com/garnizeh/jobmatch/pkg/models"
	"github.com/garnizeh/jobmatch/pkg/repository"
)

func TestUserCRUD(t *testing.T) {
	repo, _ := testutil.OpenRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateUser(ctx, nil); err == nil {
		t.Fatalf("expected error when creating nil user")
	}

	got, err := repo.GetUserByID(ctx, 9999)
	if err != nil || got != nil {
		t.Fatalf("expected (nil, nil) for missing id, got %#v, %v", got, err)
	}
	got, err = repo.GetUserByEmail(ctx, "a@a.com")
	if err != nil || got != nil {
		t.Fatalf("expected (nil, nil) for missing email, got %#v, %v", got, err)
	}

	u := &models.User{Email: "alice@example.com", Name: "Alice", PasswordHash: "hash", Role: models.RoleProfessional}
	id, err := repo.CreateUser(ctx, u)
	if err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}

	byEmail, err := repo.GetUserByEmail(ctx, u.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail error: %v", err)
	}
	if byEmail == nil || byEmail.ID != id || byEmail.Role != models.RoleProfessional {
		t.Fatalf("GetUserByEmail wrong result: %#v", byEmail)
	}

	if _, err := repo.CreateUser(ctx, &models.User{Email: u.Email, Name: "dup", PasswordHash: "h", Role: models.RoleCompany}); err == nil {
		t.Fatalf("expected unique violation for duplicate email")
	}
}

func TestProfessionalStatusCAS(t *testing.T) {
	repo, _ := testutil.OpenRepo(t)
	ctx := context.Background()
	acc := testutil.SeedProfessional(t, repo, "p@example.com", "Pat", "Doe")

	got, err := repo.GetProfessionalByUserID(ctx, acc.User.ID)
	if err != nil || got == nil {
		t.Fatalf("GetProfessionalByUserID: %#v, %v", got, err)
	}
	if got.Status != models.ProfessionalActive || got.FullName() != "Pat Doe" {
		t.Fatalf("unexpected professional: %#v", got)
	}

	ok, err := repo.SetProfessionalStatus(ctx, got.ID, models.ProfessionalActive, models.ProfessionalBusy)
	if err != nil || !ok {
		t.Fatalf("first CAS should succeed: %v %v", ok, err)
	}
	ok, err = repo.SetProfessionalStatus(ctx, got.ID, models.ProfessionalActive, models.ProfessionalBusy)
	if err != nil || ok {
		t.Fatalf("second CAS should not apply: %v %v", ok, err)
	}
}

func TestProfileMainApplication(t *testing.T) {
	repo, _ := testutil.OpenRepo(t)
	ctx := context.Background()
	acc := testutil.SeedProfessional(t, repo, "p@example.com", "Pat", "Doe")

	first := testutil.SeedProfile(t, repo, acc.Professional.ID, "Backend", models.ProfileActive)
	second := testutil.SeedProfile(t, repo, acc.Professional.ID, "Platform", models.ProfileHidden)

	n, err := repo.HideActiveProfiles(ctx, acc.Professional.ID, second)
	if err != nil || n != 1 {
		t.Fatalf("HideActiveProfiles: n=%d err=%v", n, err)
	}
	if ok, err := repo.ActivateProfile(ctx, second); err != nil || !ok {
		t.Fatalf("ActivateProfile: %v %v", ok, err)
	}

	profiles, err := repo.ListProfilesByProfessional(ctx, acc.Professional.ID)
	if err != nil {
		t.Fatalf("ListProfilesByProfessional: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
	for _, p := range profiles {
		want := models.ProfileHidden
		if p.ID == second {
			want = models.ProfileActive
		}
		if p.Status != want {
			t.Fatalf("profile %d: want %s got %s", p.ID, want, p.Status)
		}
	}

	offerOwner := testutil.SeedCompany(t, repo, "c@example.com", "acme")
	offer := testutil.SeedOffer(t, repo, offerOwner.Company.ID, "Go dev")
	if ok, err := repo.MarkProfileMatched(ctx, first, offer); err != nil || !ok {
		t.Fatalf("MarkProfileMatched: %v %v", ok, err)
	}
	if ok, _ := repo.MarkProfileMatched(ctx, first, offer); ok {
		t.Fatalf("MarkProfileMatched must not apply twice")
	}
	if ok, _ := repo.ActivateProfile(ctx, first); ok {
		t.Fatalf("matched profile must not be re-activated")
	}

	p, err := repo.GetProfile(ctx, first)
	if err != nil || p == nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.ChosenOfferID == nil || *p.ChosenOfferID != offer {
		t.Fatalf("expected chosen offer %d, got %v", offer, p.ChosenOfferID)
	}

	missing, err := repo.GetProfile(ctx, 9999)
	if err != nil || missing != nil {
		t.Fatalf("expected (nil, nil) for missing profile, got %#v, %v", missing, err)
	}
}

func TestOfferChosenProfileGuards(t *testing.T) {
	repo, _ := testutil.OpenRepo(t)
	ctx := context.Background()
	pro := testutil.SeedProfessional(t, repo, "p@example.com", "Pat", "Doe")
	co := testutil.SeedCompany(t, repo, "c@example.com", "acme")
	x := testutil.SeedProfile(t, repo, pro.Professional.ID, "Backend", models.ProfileActive)
	y := testutil.SeedProfile(t, repo, pro.Professional.ID, "Platform", models.ProfileHidden)
	offer := testutil.SeedOffer(t, repo, co.Company.ID, "Go dev")

	steps := []struct {
		name string
		run  func() (bool, error)
		want bool
	}{
		{"match without chosen", func() (bool, error) { return repo.MarkOfferMatched(ctx, offer, x) }, false},
		{"choose x", func() (bool, error) { return repo.SetOfferChosenProfile(ctx, offer, x) }, true},
		{"choose x again", func() (bool, error) { return repo.SetOfferChosenProfile(ctx, offer, x) }, true},
		{"choose y while x chosen", func() (bool, error) { return repo.SetOfferChosenProfile(ctx, offer, y) }, false},
		{"clear for y", func() (bool, error) { return repo.ClearOfferChosenProfile(ctx, offer, y) }, false},
		{"match for y", func() (bool, error) { return repo.MarkOfferMatched(ctx, offer, y) }, false},
		{"match for x", func() (bool, error) { return repo.MarkOfferMatched(ctx, offer, x) }, true},
		{"match again", func() (bool, error) { return repo.MarkOfferMatched(ctx, offer, x) }, false},
		{"clear after match", func() (bool, error) { return repo.ClearOfferChosenProfile(ctx, offer, x) }, false},
		{"archive after match", func() (bool, error) { return repo.ArchiveOffer(ctx, offer) }, false},
	}
	for _, s := range steps {
		got, err := s.run()
		if err != nil {
			t.Fatalf("%s: unexpected error %v", s.name, err)
		}
		if got != s.want {
			t.Fatalf("%s: want %v got %v", s.name, s.want, got)
		}
	}

	o, err := repo.GetOffer(ctx, offer)
	if err != nil || o == nil {
		t.Fatalf("GetOffer: %v", err)
	}
	if o.Status != models.OfferMatched || o.ChosenProfileID == nil || *o.ChosenProfileID != x {
		t.Fatalf("unexpected offer state: %#v", o)
	}

	active, err := repo.ListOffersByStatus(ctx, models.OfferActive)
	if err != nil {
		t.Fatalf("ListOffersByStatus: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active offers, got %d", len(active))
	}
}

func TestArchiveOfferClearsChosen(t *testing.T) {
	repo, _ := testutil.OpenRepo(t)
	ctx := context.Background()
	pro := testutil.SeedProfessional(t, repo, "p@example.com", "Pat", "Doe")
	co := testutil.SeedCompany(t, repo, "c@example.com", "acme")
	x := testutil.SeedProfile(t, repo, pro.Professional.ID, "Backend", models.ProfileActive)
	offer := testutil.SeedOffer(t, repo, co.Company.ID, "Go dev")

	if ok, err := repo.SetOfferChosenProfile(ctx, offer, x); err != nil || !ok {
		t.Fatalf("SetOfferChosenProfile: %v %v", ok, err)
	}
	if ok, err := repo.ArchiveOffer(ctx, offer); err != nil || !ok {
		t.Fatalf("ArchiveOffer: %v %v", ok, err)
	}

	o, _ := repo.GetOffer(ctx, offer)
	if o.Status != models.OfferArchived || o.ChosenProfileID != nil {
		t.Fatalf("unexpected archived offer: %#v", o)
	}
}

func TestMatchUniquenessAndListing(t *testing.T) {
	repo, _ := testutil.OpenRepo(t)
	ctx := context.Background()
	pro := testutil.SeedProfessional(t, repo, "p@example.com", "Pat", "Doe")
	co := testutil.SeedCompany(t, repo, "c@example.com", "acme")
	x := testutil.SeedProfile(t, repo, pro.Professional.ID, "Backend", models.ProfileActive)
	o1 := testutil.SeedOffer(t, repo, co.Company.ID, "Go dev")
	o2 := testutil.SeedOffer(t, repo, co.Company.ID, "SRE")

	m := &models.Match{ProfileID: x, OfferID: o1, ProposedBy: models.RoleProfessional}
	created, err := repo.CreateMatch(ctx, m)
	if err != nil || !created || m.ID == 0 {
		t.Fatalf("CreateMatch: created=%v id=%d err=%v", created, m.ID, err)
	}

	dup := &models.Match{ProfileID: x, OfferID: o1, ProposedBy: models.RoleCompany}
	created, err = repo.CreateMatch(ctx, dup)
	if err != nil || created {
		t.Fatalf("duplicate CreateMatch should be a no-op: created=%v err=%v", created, err)
	}

	got, err := repo.GetMatch(ctx, x, o1)
	if err != nil || got == nil {
		t.Fatalf("GetMatch: %v", err)
	}
	if got.ID != m.ID || got.ProposedBy != models.RoleProfessional || got.Confirmed || got.Status != models.MatchProposed {
		t.Fatalf("unexpected match: %#v", got)
	}

	if ok, err := repo.UpdateMatchStatus(ctx, m.ID, models.MatchConfirmed, models.MatchOffered); err != nil || ok {
		t.Fatalf("status CAS from wrong state should not apply: %v %v", ok, err)
	}
	if ok, err := repo.UpdateMatchStatus(ctx, m.ID, models.MatchProposed, models.MatchConfirmed); err != nil || !ok {
		t.Fatalf("confirm: %v %v", ok, err)
	}

	m2 := &models.Match{ProfileID: x, OfferID: o2, ProposedBy: models.RoleCompany}
	if _, err := repo.CreateMatch(ctx, m2); err != nil {
		t.Fatalf("CreateMatch o2: %v", err)
	}

	byPro, err := repo.ListConfirmedMatchesByProfessional(ctx, pro.Professional.ID)
	if err != nil {
		t.Fatalf("ListConfirmedMatchesByProfessional: %v", err)
	}
	if len(byPro) != 1 || byPro[0].OfferID != o1 || byPro[0].Offer == nil || byPro[0].Offer.Title != "Go dev" {
		t.Fatalf("unexpected professional listing: %#v", byPro)
	}

	byCo, err := repo.ListConfirmedMatchesByCompany(ctx, co.Company.ID)
	if err != nil {
		t.Fatalf("ListConfirmedMatchesByCompany: %v", err)
	}
	if len(byCo) != 1 || byCo[0].Professional == nil || byCo[0].Professional.Name != "Pat Doe" {
		t.Fatalf("unexpected company listing: %#v", byCo)
	}

	offerable, err := repo.FindOfferableMatch(ctx, co.Company.ID, x)
	if err != nil || offerable == nil || offerable.OfferID != o1 {
		t.Fatalf("FindOfferableMatch: %#v %v", offerable, err)
	}
}

func TestWithTxRollsBack(t *testing.T) {
	repo, _ := testutil.OpenRepo(t)
	ctx := context.Background()
	pro := testutil.SeedProfessional(t, repo, "p@example.com", "Pat", "Doe")

	boom := errors.New("boom")
	err := repo.WithTx(ctx, func(tx repository.Store) error {
		if ok, err := tx.SetProfessionalStatus(ctx, pro.Professional.ID, models.ProfessionalActive, models.ProfessionalBusy); err != nil || !ok {
			t.Fatalf("status update inside tx: %v %v", ok, err)
		}
		return tx.WithTx(ctx, func(inner repository.Store) error {
			return boom
		})
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, _ := repo.GetProfessional(ctx, pro.Professional.ID)
	if got.Status != models.ProfessionalActive {
		t.Fatalf("rollback should keep professional active, got %s", got.Status)
	}
}

func TestTokenRevocation(t *testing.T) {
	repo, _ := testutil.OpenRepo(t)
	ctx := context.Background()

	revoked, err := repo.IsRevoked(ctx, "abc")
	if err != nil || revoked {
		t.Fatalf("fresh token should not be revoked: %v %v", revoked, err)
	}
	if err := repo.RevokeToken(ctx, "abc", 1000); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	if err := repo.RevokeToken(ctx, "abc", 1000); err != nil {
		t.Fatalf("RevokeToken twice: %v", err)
	}
	if revoked, _ := repo.IsRevoked(ctx, "abc"); !revoked {
		t.Fatalf("expected token to be revoked")
	}

	n, err := repo.PurgeExpiredTokens(ctx, 2000)
	if err != nil || n != 1 {
		t.Fatalf("PurgeExpiredTokens: n=%d err=%v", n, err)
	}
	if revoked, _ := repo.IsRevoked(ctx, "abc"); revoked {
		t.Fatalf("expected purged token to be gone")
	}
}
