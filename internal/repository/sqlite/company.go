package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/jobmatch/pkg/models"
)

const companyColumns = `id, user_id, name, contact_email, contact_phone, location, updated`

func (r *SQLiteRepo) CreateCompany(ctx context.Context, c *models.Company) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("company is nil")
	}

	res, err := r.q.ExecContext(ctx, `INSERT INTO companies (user_id, name, contact_email, contact_phone, location, updated) VALUES (?, ?, ?, ?, ?, ?)`, c.UserID, c.Name, c.ContactEmail, c.ContactPhone, c.Location, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetCompany(ctx context.Context, id int64) (*models.Company, error) {
	return scanCompany(r.q.QueryRowContext(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = ?`, id))
}

func (r *SQLiteRepo) GetCompanyByUserID(ctx context.Context, userID int64) (*models.Company, error) {
	return scanCompany(r.q.QueryRowContext(ctx, `SELECT `+companyColumns+` FROM companies WHERE user_id = ?`, userID))
}

func scanCompany(row scanner) (*models.Company, error) {
	var c models.Company
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.ContactEmail, &c.ContactPhone, &c.Location, &c.Updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return &c, nil
}
