package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/jobmatch/pkg/models"
)

const profileColumns = `id, professional_id, title, description, min_salary, max_salary, location, status, chosen_offer_id, created, updated`

func (r *SQLiteRepo) CreateProfile(ctx context.Context, p *models.Profile) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("profile is nil")
	}
	if p.Status == "" {
		p.Status = models.ProfileHidden
	}

	ts := now()
	res, err := r.q.ExecContext(ctx, `INSERT INTO professional_profiles (professional_id, title, description, min_salary, max_salary, location, status, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ProfessionalID, p.Title, p.Description, p.MinSalary, p.MaxSalary, p.Location, string(p.Status), ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetProfile(ctx context.Context, id int64) (*models.Profile, error) {
	p, err := scanProfile(r.q.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM professional_profiles WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *SQLiteRepo) ListProfilesByProfessional(ctx context.Context, professionalID int64) ([]models.Profile, error) {
	return r.listProfiles(ctx, `SELECT `+profileColumns+` FROM professional_profiles WHERE professional_id = ? ORDER BY created, id`, professionalID)
}

func (r *SQLiteRepo) ListAllProfiles(ctx context.Context) ([]models.Profile, error) {
	return r.listProfiles(ctx, `SELECT `+profileColumns+` FROM professional_profiles ORDER BY id`)
}

func (r *SQLiteRepo) listProfiles(ctx context.Context, query string, args ...any) ([]models.Profile, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) HideActiveProfiles(ctx context.Context, professionalID, exceptID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, `UPDATE professional_profiles SET status = 'hidden', updated = ? WHERE professional_id = ? AND status = 'active' AND id != ?`, now(), professionalID, exceptID)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (r *SQLiteRepo) ActivateProfile(ctx context.Context, id int64) (bool, error) {
	res, err := r.q.ExecContext(ctx, `UPDATE professional_profiles SET status = 'active', updated = ? WHERE id = ? AND status != 'matched'`, now(), id)
	if err != nil {
		return false, err
	}

	return affected(res)
}

func (r *SQLiteRepo) MarkProfileMatched(ctx context.Context, id, offerID int64) (bool, error) {
	res, err := r.q.ExecContext(ctx, `UPDATE professional_profiles SET status = 'matched', chosen_offer_id = ?, updated = ? WHERE id = ? AND status != 'matched'`, offerID, now(), id)
	if err != nil {
		return false, err
	}

	return affected(res)
}

// scanProfile leaves sql.ErrNoRows to the caller.
func scanProfile(row scanner) (*models.Profile, error) {
	var p models.Profile
	var status string
	var chosen sql.NullInt64
	if err := row.Scan(&p.ID, &p.ProfessionalID, &p.Title, &p.Description, &p.MinSalary, &p.MaxSalary, &p.Location, &status, &chosen, &p.Created, &p.Updated); err != nil {
		return nil, err
	}
	p.Status = models.ProfileStatus(status)
	p.ChosenOfferID = nullInt(chosen)

	return &p, nil
}
