package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/jobmatch/pkg/models"
)

const professionalColumns = `id, user_id, first_name, last_name, phone, status, updated`

func (r *SQLiteRepo) CreateProfessional(ctx context.Context, p *models.Professional) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("professional is nil")
	}
	if p.Status == "" {
		p.Status = models.ProfessionalActive
	}

	res, err := r.q.ExecContext(ctx, `INSERT INTO professionals (user_id, first_name, last_name, phone, status, updated) VALUES (?, ?, ?, ?, ?, ?)`, p.UserID, p.FirstName, p.LastName, p.Phone, string(p.Status), now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetProfessional(ctx context.Context, id int64) (*models.Professional, error) {
	return scanProfessional(r.q.QueryRowContext(ctx, `SELECT `+professionalColumns+` FROM professionals WHERE id = ?`, id))
}

func (r *SQLiteRepo) GetProfessionalByUserID(ctx context.Context, userID int64) (*models.Professional, error) {
	return scanProfessional(r.q.QueryRowContext(ctx, `SELECT `+professionalColumns+` FROM professionals WHERE user_id = ?`, userID))
}

func (r *SQLiteRepo) ListAllProfessionals(ctx context.Context) ([]models.Professional, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+professionalColumns+` FROM professionals ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Professional
	for rows.Next() {
		p, err := scanProfessional(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) SetProfessionalStatus(ctx context.Context, id int64, from, to models.ProfessionalStatus) (bool, error) {
	res, err := r.q.ExecContext(ctx, `UPDATE professionals SET status = ?, updated = ? WHERE id = ? AND status = ?`, string(to), now(), id, string(from))
	if err != nil {
		return false, err
	}

	return affected(res)
}

func scanProfessional(row scanner) (*models.Professional, error) {
	var p models.Professional
	var status string
	if err := row.Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.Phone, &status, &p.Updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}
	p.Status = models.ProfessionalStatus(status)

	return &p, nil
}
