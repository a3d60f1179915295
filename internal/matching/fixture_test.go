package matching

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/garnizeh/jobmatch/internal/notify"
	"github.com/garnizeh/jobmatch/internal/repository/sqlite"
	"github.com/garnizeh/jobmatch/internal/testutil"
	"github.com/garnizeh/jobmatch/pkg/models"
)

type recorder struct {
	mu   sync.Mutex
	msgs []notify.Message
	err  error
}

func (r *recorder) Notify(_ context.Context, msg notify.Message) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	if r.err != nil {
		return "", r.err
	}
	return fmt.Sprintf("rec-%d", len(r.msgs)), nil
}

func (r *recorder) sent() []notify.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Message(nil), r.msgs...)
}

// fixture is one company with an active offer and one professional with an
// active profile.
type fixture struct {
	repo    *sqlite.SQLiteRepo
	svc     *Service
	notes   *recorder
	company testutil.Account
	pro     testutil.Account
	profile int64
	offer   int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, _ := testutil.OpenRepo(t)
	notes := &recorder{}

	f := &fixture{
		repo:    repo,
		svc:     New(repo, notes, testutil.Logger()),
		notes:   notes,
		company: testutil.SeedCompany(t, repo, "hr@acme.test", "acme"),
		pro:     testutil.SeedProfessional(t, repo, "pat@example.com", "Pat", "Doe"),
	}
	f.profile = testutil.SeedProfile(t, repo, f.pro.Professional.ID, "Backend engineer", models.ProfileActive)
	f.offer = testutil.SeedOffer(t, repo, f.company.Company.ID, "Go developer")

	return f
}

func (f *fixture) companyActor() Actor { return actorOf(f.company) }
func (f *fixture) proActor() Actor     { return actorOf(f.pro) }

func actorOf(a testutil.Account) Actor {
	return Actor{Role: a.User.Role, UserID: a.User.ID}
}

// confirm walks the pair to CONFIRMED: the professional proposes and the
// company confirms.
func (f *fixture) confirm(t *testing.T, profileID, offerID int64) *models.Match {
	t.Helper()
	ctx := context.Background()
	pro := f.ownerOf(t, profileID)
	_, err := f.svc.ProposeMatch(ctx, pro, profileID, offerID)
	require.NoError(t, err)
	co := f.companyOf(t, offerID)
	m, err := f.svc.ConfirmMatch(ctx, co, profileID, offerID)
	require.NoError(t, err)
	require.True(t, m.Confirmed)
	return m
}

// offered walks the pair to OFFERED.
func (f *fixture) offered(t *testing.T, profileID, offerID int64) *OfferSent {
	t.Helper()
	f.confirm(t, profileID, offerID)
	sent, err := f.svc.SendOffer(context.Background(), f.companyOf(t, offerID), profileID)
	require.NoError(t, err)
	require.Equal(t, offerID, sent.OfferID)
	return sent
}

func (f *fixture) ownerOf(t *testing.T, profileID int64) Actor {
	t.Helper()
	ctx := context.Background()
	p, err := f.repo.GetProfile(ctx, profileID)
	require.NoError(t, err)
	require.NotNil(t, p)
	pro, err := f.repo.GetProfessional(ctx, p.ProfessionalID)
	require.NoError(t, err)
	return Actor{Role: models.RoleProfessional, UserID: pro.UserID}
}

func (f *fixture) companyOf(t *testing.T, offerID int64) Actor {
	t.Helper()
	ctx := context.Background()
	o, err := f.repo.GetOffer(ctx, offerID)
	require.NoError(t, err)
	require.NotNil(t, o)
	c, err := f.repo.GetCompany(ctx, o.CompanyID)
	require.NoError(t, err)
	return Actor{Role: models.RoleCompany, UserID: c.UserID}
}

func (f *fixture) getOffer(t *testing.T, id int64) *models.Offer {
	t.Helper()
	o, err := f.repo.GetOffer(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, o)
	return o
}

func (f *fixture) getProfile(t *testing.T, id int64) *models.Profile {
	t.Helper()
	p, err := f.repo.GetProfile(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func (f *fixture) getProfessional(t *testing.T, id int64) *models.Professional {
	t.Helper()
	p, err := f.repo.GetProfessional(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func (f *fixture) getMatch(t *testing.T, profileID, offerID int64) *models.Match {
	t.Helper()
	m, err := f.repo.GetMatch(context.Background(), profileID, offerID)
	require.NoError(t, err)
	require.NotNil(t, m)
	return m
}

func (f *fixture) requireConsistent(t *testing.T) {
	t.Helper()
	v, err := f.svc.CheckInvariants(context.Background())
	require.NoError(t, err)
	require.Empty(t, v)
}

func requireKind(t *testing.T, err, kind error) {
	t.Helper()
	require.ErrorIs(t, err, kind)
}
