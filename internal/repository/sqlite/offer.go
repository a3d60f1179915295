package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/jobmatch/pkg/models"
)

const offerColumns = `id, company_id, title, description, min_salary, max_salary, location, status, chosen_professional_profile_id, created, updated`

func (r *SQLiteRepo) CreateOffer(ctx context.Context, o *models.Offer) (int64, error) {
	if o == nil {
		return 0, fmt.Errorf("offer is nil")
	}
	if o.Status == "" {
		o.Status = models.OfferActive
	}

	ts := now()
	res, err := r.q.ExecContext(ctx, `INSERT INTO company_offers (company_id, title, description, min_salary, max_salary, location, status, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.CompanyID, o.Title, o.Description, o.MinSalary, o.MaxSalary, o.Location, string(o.Status), ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetOffer(ctx context.Context, id int64) (*models.Offer, error) {
	o, err := scanOffer(r.q.QueryRowContext(ctx, `SELECT `+offerColumns+` FROM company_offers WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return o, err
}

func (r *SQLiteRepo) ListOffersByCompany(ctx context.Context, companyID int64) ([]models.Offer, error) {
	return r.listOffers(ctx, `SELECT `+offerColumns+` FROM company_offers WHERE company_id = ? ORDER BY created, id`, companyID)
}

func (r *SQLiteRepo) ListOffersByStatus(ctx context.Context, status models.OfferStatus) ([]models.Offer, error) {
	return r.listOffers(ctx, `SELECT `+offerColumns+` FROM company_offers WHERE status = ? ORDER BY created, id`, string(status))
}

func (r *SQLiteRepo) ListAllOffers(ctx context.Context) ([]models.Offer, error) {
	return r.listOffers(ctx, `SELECT `+offerColumns+` FROM company_offers ORDER BY id`)
}

func (r *SQLiteRepo) listOffers(ctx context.Context, query string, args ...any) ([]models.Offer, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) SetOfferChosenProfile(ctx context.Context, offerID, profileID int64) (bool, error) {
	res, err := r.q.ExecContext(ctx, `UPDATE company_offers SET chosen_professional_profile_id = ?, updated = ?
		WHERE id = ? AND status = 'active' AND (chosen_professional_profile_id IS NULL OR chosen_professional_profile_id = ?)`,
		profileID, now(), offerID, profileID)
	if err != nil {
		return false, err
	}

	return affected(res)
}

func (r *SQLiteRepo) ClearOfferChosenProfile(ctx context.Context, offerID, profileID int64) (bool, error) {
	res, err := r.q.ExecContext(ctx, `UPDATE company_offers SET chosen_professional_profile_id = NULL, updated = ?
		WHERE id = ? AND status = 'active' AND chosen_professional_profile_id = ?`,
		now(), offerID, profileID)
	if err != nil {
		return false, err
	}

	return affected(res)
}

func (r *SQLiteRepo) MarkOfferMatched(ctx context.Context, offerID, profileID int64) (bool, error) {
	res, err := r.q.ExecContext(ctx, `UPDATE company_offers SET status = 'matched', updated = ?
		WHERE id = ? AND status = 'active' AND chosen_professional_profile_id = ?`,
		now(), offerID, profileID)
	if err != nil {
		return false, err
	}

	return affected(res)
}

func (r *SQLiteRepo) ArchiveOffer(ctx context.Context, offerID int64) (bool, error) {
	res, err := r.q.ExecContext(ctx, `UPDATE company_offers SET status = 'archived', chosen_professional_profile_id = NULL, updated = ?
		WHERE id = ? AND status = 'active'`,
		now(), offerID)
	if err != nil {
		return false, err
	}

	return affected(res)
}

// scanOffer leaves sql.ErrNoRows to the caller.
func scanOffer(row scanner) (*models.Offer, error) {
	var o models.Offer
	var status string
	var chosen sql.NullInt64
	if err := row.Scan(&o.ID, &o.CompanyID, &o.Title, &o.Description, &o.MinSalary, &o.MaxSalary, &o.Location, &status, &chosen, &o.Created, &o.Updated); err != nil {
		return nil, err
	}
	o.Status = models.OfferStatus(status)
	o.ChosenProfileID = nullInt(chosen)

	return &o, nil
}
