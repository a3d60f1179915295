package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/garnizeh/jobmatch/api"
	"github.com/garnizeh/jobmatch/internal/config"
	"github.com/garnizeh/jobmatch/internal/matching"
	"github.com/garnizeh/jobmatch/internal/notify"
	"github.com/garnizeh/jobmatch/internal/testutil"
	"github.com/garnizeh/jobmatch/pkg/models"
)

type client struct {
	t   *testing.T
	srv *httptest.Server
}

func newServer(t *testing.T) *client {
	t.Helper()
	api.SetLogger(testutil.Logger())

	repo, database := testutil.OpenRepo(t)
	svc := matching.New(repo, notify.LogNotifier{Logger: testutil.Logger()}, testutil.Logger())
	cfg := &config.Config{JWTSecret: testSecret, TokenDuration: time.Hour}

	srv := httptest.NewServer(api.SetupRoutes(cfg, "test", "now", repo, repo, svc, database))
	t.Cleanup(srv.Close)
	return &client{t: t, srv: srv}
}

// do sends body as JSON and decodes the response into out when it is non-nil.
func (c *client) do(method, path, token string, body, out any) int {
	c.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.srv.URL+path, rd)
	if err != nil {
		c.t.Fatalf("request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := c.srv.Client().Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	data, _ := io.ReadAll(res.Body)
	if out != nil && res.StatusCode < 300 {
		if err := json.Unmarshal(data, out); err != nil {
			c.t.Fatalf("%s %s: decode %s: %v", method, path, data, err)
		}
	}
	return res.StatusCode
}

func (c *client) signup(name, email string, role models.Role) string {
	c.t.Helper()
	var ar struct {
		Token string `json:"token"`
	}
	body := map[string]string{"name": name, "email": email, "password": "pw", "role": string(role)}
	if code := c.do(http.MethodPost, "/v1/auth/signup", "", body, &ar); code != http.StatusOK {
		c.t.Fatalf("signup %s: %d", email, code)
	}
	return ar.Token
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func expect(t *testing.T, step string, got, want int) {
	t.Helper()
	if got != want {
		t.Fatalf("%s: status %d, want %d", step, got, want)
	}
}

func TestOfferLifecycleOverHTTP(t *testing.T) {
	c := newServer(t)
	company := c.signup("Acme", "hr@acme.test", models.RoleCompany)
	pro := c.signup("Pat Doe", "pat@example.com", models.RoleProfessional)

	expect(t, "health", c.do(http.MethodGet, "/health", "", nil, nil), http.StatusOK)
	expect(t, "no token", c.do(http.MethodGet, "/v1/profiles", "", nil, nil), http.StatusUnauthorized)

	expect(t, "empty title", c.do(http.MethodPost, "/v1/profiles", pro, map[string]any{"title": " "}, nil), http.StatusBadRequest)
	expect(t, "company profile", c.do(http.MethodPost, "/v1/profiles", company, map[string]any{"title": "Go dev"}, nil), http.StatusForbidden)

	var profile models.Profile
	expect(t, "create profile", c.do(http.MethodPost, "/v1/profiles", pro,
		map[string]any{"title": "Go dev", "min_salary": 4000, "max_salary": 6000}, &profile), http.StatusCreated)
	if profile.Status != models.ProfileActive {
		t.Fatalf("first profile status = %q, want active", profile.Status)
	}

	expect(t, "inverted salary", c.do(http.MethodPost, "/v1/offers", company,
		map[string]any{"title": "Backend", "min_salary": 9000, "max_salary": 1000}, nil), http.StatusBadRequest)

	var offer models.Offer
	expect(t, "create offer", c.do(http.MethodPost, "/v1/offers", company,
		map[string]any{"title": "Backend", "min_salary": 5000, "max_salary": 7000, "location": "Lisbon"}, &offer), http.StatusCreated)

	var active []models.Offer
	expect(t, "active offers", c.do(http.MethodGet, "/v1/offers/active", pro, nil, &active), http.StatusOK)
	if len(active) != 1 || active[0].ID != offer.ID {
		t.Fatalf("active offers = %+v", active)
	}

	pair := map[string]int64{"profile_id": profile.ID, "offer_id": offer.ID}
	expect(t, "send before match", c.do(http.MethodPost, "/v1/offers/send", company, map[string]int64{"profile_id": profile.ID}, nil), http.StatusNotFound)

	var m models.Match
	expect(t, "propose", c.do(http.MethodPost, "/v1/matches", pro, pair, &m), http.StatusOK)
	if m.Status != models.MatchProposed || m.ProposedBy != models.RoleProfessional {
		t.Fatalf("proposed match = %+v", m)
	}
	expect(t, "self confirm", c.do(http.MethodPost, "/v1/matches/confirm", pro, pair, nil), http.StatusUnprocessableEntity)
	expect(t, "confirm", c.do(http.MethodPost, "/v1/matches/confirm", company, pair, &m), http.StatusOK)
	if m.Status != models.MatchConfirmed {
		t.Fatalf("confirmed match = %+v", m)
	}
	expect(t, "missing pair ids", c.do(http.MethodPost, "/v1/matches", pro, map[string]int64{"offer_id": offer.ID}, nil), http.StatusBadRequest)

	var summaries []models.MatchSummary
	expect(t, "list matches", c.do(http.MethodGet, "/v1/matches", pro, nil, &summaries), http.StatusOK)
	if len(summaries) != 1 {
		t.Fatalf("professional matches = %+v", summaries)
	}

	var sent matching.OfferSent
	expect(t, "send", c.do(http.MethodPost, "/v1/offers/send", company, map[string]int64{"profile_id": profile.ID}, &sent), http.StatusOK)
	if sent.OfferID != offer.ID || sent.DeliveryCode != "logged" {
		t.Fatalf("sent = %+v", sent)
	}

	var accepted matching.OfferAccepted
	expect(t, "accept", c.do(http.MethodPost, "/v1/offers/"+itoa(offer.ID)+"/accept", pro, nil, &accepted), http.StatusOK)
	if accepted.ProfileID != profile.ID {
		t.Fatalf("accepted = %+v", accepted)
	}
	expect(t, "accept again", c.do(http.MethodPost, "/v1/offers/"+itoa(offer.ID)+"/accept", pro, nil, nil), http.StatusConflict)
	expect(t, "archive matched", c.do(http.MethodPost, "/v1/offers/"+itoa(offer.ID)+"/archive", company, nil, nil), http.StatusUnprocessableEntity)

	active = nil
	expect(t, "active after accept", c.do(http.MethodGet, "/v1/offers/active", pro, nil, &active), http.StatusOK)
	if len(active) != 0 {
		t.Fatalf("matched offer still listed: %+v", active)
	}

	expect(t, "unknown offer", c.do(http.MethodPost, "/v1/offers/9999/decline", pro, nil, nil), http.StatusNotFound)
	expect(t, "non numeric id", c.do(http.MethodPost, "/v1/offers/abc/accept", pro, nil, nil), http.StatusNotFound)

	expect(t, "signout", c.do(http.MethodPost, "/v1/auth/signout", pro, nil, nil), http.StatusOK)
	expect(t, "after signout", c.do(http.MethodGet, "/v1/profiles", pro, nil, nil), http.StatusUnauthorized)
}

func TestWithdrawOverHTTP(t *testing.T) {
	c := newServer(t)
	company := c.signup("Acme", "hr@acme.test", models.RoleCompany)
	other := c.signup("Globex", "hr@globex.test", models.RoleCompany)
	pro := c.signup("Pat Doe", "pat@example.com", models.RoleProfessional)

	var profile models.Profile
	c.do(http.MethodPost, "/v1/profiles", pro, map[string]any{"title": "Go dev"}, &profile)
	var offer models.Offer
	c.do(http.MethodPost, "/v1/offers", company, map[string]any{"title": "Backend"}, &offer)
	pair := map[string]int64{"profile_id": profile.ID, "offer_id": offer.ID}
	expect(t, "propose", c.do(http.MethodPost, "/v1/matches", company, pair, nil), http.StatusOK)
	expect(t, "confirm", c.do(http.MethodPost, "/v1/matches/confirm", pro, pair, nil), http.StatusOK)
	expect(t, "send", c.do(http.MethodPost, "/v1/offers/send", company, map[string]int64{"profile_id": profile.ID}, nil), http.StatusOK)

	path := "/v1/offers/" + itoa(offer.ID)
	expect(t, "withdraw by other company", c.do(http.MethodPost, path+"/withdraw", other, nil, nil), http.StatusForbidden)
	expect(t, "withdraw", c.do(http.MethodPost, path+"/withdraw", company, nil, nil), http.StatusOK)
	expect(t, "decline after withdraw", c.do(http.MethodPost, path+"/decline", pro, nil, nil), http.StatusForbidden)
	expect(t, "send again", c.do(http.MethodPost, "/v1/offers/send", company, map[string]int64{"profile_id": profile.ID}, nil), http.StatusOK)
	expect(t, "decline", c.do(http.MethodPost, path+"/decline", pro, nil, nil), http.StatusOK)

	var archived models.Offer
	expect(t, "archive", c.do(http.MethodPost, path+"/archive", company, nil, &archived), http.StatusOK)
	if archived.Status != models.OfferArchived {
		t.Fatalf("archived = %+v", archived)
	}
}
