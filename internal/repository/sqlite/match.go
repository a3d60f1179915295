package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/jobmatch/pkg/models"
)

const matchColumns = `m.id, m.profile_id, m.offer_id, m.confirmed, m.status, m.proposed_by, m.created_at, m.updated`

func (r *SQLiteRepo) CreateMatch(ctx context.Context, m *models.Match) (bool, error) {
	if m == nil {
		return false, fmt.Errorf("match is nil")
	}
	if m.Status == "" {
		m.Status = models.MatchProposed
	}
	m.Confirmed = m.Status != models.MatchProposed

	ts := now()
	res, err := r.q.ExecContext(ctx, `INSERT INTO matches (profile_id, offer_id, confirmed, status, proposed_by, created_at, updated) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(profile_id, offer_id) DO NOTHING`,
		m.ProfileID, m.OfferID, m.Confirmed, string(m.Status), string(m.ProposedBy), ts, ts)
	if err != nil {
		return false, err
	}

	created, err := affected(res)
	if err != nil || !created {
		return false, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return false, err
	}
	m.ID, m.CreatedAt, m.Updated = id, ts, ts

	return true, nil
}

func (r *SQLiteRepo) GetMatch(ctx context.Context, profileID, offerID int64) (*models.Match, error) {
	m, err := scanMatch(r.q.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches m WHERE m.profile_id = ? AND m.offer_id = ?`, profileID, offerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *SQLiteRepo) UpdateMatchStatus(ctx context.Context, id int64, from, to models.MatchStatus) (bool, error) {
	res, err := r.q.ExecContext(ctx, `UPDATE matches SET status = ?, confirmed = ?, updated = ? WHERE id = ? AND status = ?`,
		string(to), to != models.MatchProposed, now(), id, string(from))
	if err != nil {
		return false, err
	}

	return affected(res)
}

func (r *SQLiteRepo) FindOfferableMatch(ctx context.Context, companyID, profileID int64) (*models.Match, error) {
	q := `SELECT ` + matchColumns + `
		FROM matches m JOIN company_offers o ON o.id = m.offer_id
		WHERE m.profile_id = ? AND o.company_id = ? AND m.confirmed = 1 AND m.status IN ('confirmed', 'offered')
		ORDER BY
			CASE WHEN o.status = 'active' AND (o.chosen_professional_profile_id IS NULL OR o.chosen_professional_profile_id = m.profile_id) THEN 0 ELSE 1 END,
			CASE WHEN m.status = 'offered' THEN 0 ELSE 1 END,
			m.created_at, m.id
		LIMIT 1`
	m, err := scanMatch(r.q.QueryRowContext(ctx, q, profileID, companyID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *SQLiteRepo) ListConfirmedMatchesByProfessional(ctx context.Context, professionalID int64) ([]models.MatchSummary, error) {
	q := `SELECT m.id, m.profile_id, m.offer_id, m.status, m.created_at, o.id, o.title, o.min_salary, o.max_salary, o.status
		FROM matches m
		JOIN professional_profiles p ON p.id = m.profile_id
		JOIN company_offers o ON o.id = m.offer_id
		WHERE p.professional_id = ? AND m.confirmed = 1
		ORDER BY m.created_at, m.id`
	rows, err := r.q.QueryContext(ctx, q, professionalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MatchSummary
	for rows.Next() {
		var s models.MatchSummary
		var o models.OfferSnapshot
		var status, offerStatus string
		if err := rows.Scan(&s.MatchID, &s.ProfileID, &s.OfferID, &status, &s.CreatedAt, &o.ID, &o.Title, &o.MinSalary, &o.MaxSalary, &offerStatus); err != nil {
			return nil, err
		}
		s.Status = models.MatchStatus(status)
		o.Status = models.OfferStatus(offerStatus)
		s.Offer = &o
		out = append(out, s)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) ListConfirmedMatchesByCompany(ctx context.Context, companyID int64) ([]models.MatchSummary, error) {
	q := `SELECT m.id, m.profile_id, m.offer_id, m.status, m.created_at, pr.id, pr.first_name, pr.last_name, pr.status
		FROM matches m
		JOIN company_offers o ON o.id = m.offer_id
		JOIN professional_profiles p ON p.id = m.profile_id
		JOIN professionals pr ON pr.id = p.professional_id
		WHERE o.company_id = ? AND m.confirmed = 1
		ORDER BY m.created_at, m.id`
	rows, err := r.q.QueryContext(ctx, q, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MatchSummary
	for rows.Next() {
		var s models.MatchSummary
		var pro models.Professional
		var status, proStatus string
		if err := rows.Scan(&s.MatchID, &s.ProfileID, &s.OfferID, &status, &s.CreatedAt, &pro.ID, &pro.FirstName, &pro.LastName, &proStatus); err != nil {
			return nil, err
		}
		s.Status = models.MatchStatus(status)
		s.Professional = &models.ProfessionalSnapshot{
			ID:     pro.ID,
			Name:   pro.FullName(),
			Status: models.ProfessionalStatus(proStatus),
		}
		out = append(out, s)
	}

	return out, rows.Err()
}

// scanMatch leaves sql.ErrNoRows to the caller.
func scanMatch(row scanner) (*models.Match, error) {
	var m models.Match
	var status, proposedBy string
	if err := row.Scan(&m.ID, &m.ProfileID, &m.OfferID, &m.Confirmed, &status, &proposedBy, &m.CreatedAt, &m.Updated); err != nil {
		return nil, err
	}
	m.Status = models.MatchStatus(status)
	m.ProposedBy = models.Role(proposedBy)

	return &m, nil
}
