// Package testutil holds fixtures shared by package tests: a migrated
// in-memory database and helpers that seed accounts, profiles and offers.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	dbfs "github.com/garnizeh/jobmatch/db"
	"github.com/garnizeh/jobmatch/internal/db"
	"github.com/garnizeh/jobmatch/internal/repository/sqlite"
	"github.com/garnizeh/jobmatch/pkg/models"
)

var dbSeq atomic.Int64

// Logger discards output; tests that assert on logs build their own.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OpenDB returns a migrated in-memory database private to the test. It is
// closed on cleanup.
func OpenDB(t testing.TB) *db.DB {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbSeq.Add(1))
	d, err := db.New(ctx, dsn, Logger())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return d
}

// OpenRepo is OpenDB plus a repository on top of it.
func OpenRepo(t testing.TB) (*sqlite.SQLiteRepo, *db.DB) {
	t.Helper()
	d := OpenDB(t)
	return sqlite.New(d, Logger()), d
}

// Account is a seeded user together with its professional or company row.
type Account struct {
	User         models.User
	Professional *models.Professional
	Company      *models.Company
}

func SeedProfessional(t testing.TB, repo *sqlite.SQLiteRepo, email, first, last string) Account {
	t.Helper()
	ctx := context.Background()

	u := models.User{Email: email, Name: first + " " + last, PasswordHash: "x", Role: models.RoleProfessional}
	uid, err := repo.CreateUser(ctx, &u)
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	u.ID = uid

	p := models.Professional{UserID: uid, FirstName: first, LastName: last, Status: models.ProfessionalActive}
	pid, err := repo.CreateProfessional(ctx, &p)
	if err != nil {
		t.Fatalf("seed professional %s: %v", email, err)
	}
	p.ID = pid

	return Account{User: u, Professional: &p}
}

func SeedCompany(t testing.TB, repo *sqlite.SQLiteRepo, email, name string) Account {
	t.Helper()
	ctx := context.Background()

	u := models.User{Email: email, Name: name, PasswordHash: "x", Role: models.RoleCompany}
	uid, err := repo.CreateUser(ctx, &u)
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	u.ID = uid

	c := models.Company{UserID: uid, Name: name, ContactEmail: "jobs@" + name + ".test", ContactPhone: "+1 555 0100", Location: "Remote"}
	cid, err := repo.CreateCompany(ctx, &c)
	if err != nil {
		t.Fatalf("seed company %s: %v", email, err)
	}
	c.ID = cid

	return Account{User: u, Company: &c}
}

func SeedProfile(t testing.TB, repo *sqlite.SQLiteRepo, professionalID int64, title string, status models.ProfileStatus) int64 {
	t.Helper()
	id, err := repo.CreateProfile(context.Background(), &models.Profile{
		ProfessionalID: professionalID,
		Title:          title,
		MinSalary:      4000,
		MaxSalary:      6000,
		Location:       "Remote",
		Status:         status,
	})
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return id
}

func SeedOffer(t testing.TB, repo *sqlite.SQLiteRepo, companyID int64, title string) int64 {
	t.Helper()
	id, err := repo.CreateOffer(context.Background(), &models.Offer{
		CompanyID:   companyID,
		Title:       title,
		Description: "Build and run services",
		MinSalary:   5000,
		MaxSalary:   7000,
		Location:    "Lisbon",
		Status:      models.OfferActive,
	})
	if err != nil {
		t.Fatalf("seed offer: %v", err)
	}
	return id
}
