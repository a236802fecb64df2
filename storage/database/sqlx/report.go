package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/educert/backend/core/report"
)

type reportRepository struct {
	db *sqlx.DB
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db *sqlx.DB) *reportRepository {
	return &reportRepository{db: db}
}

func (repo reportRepository) CreateReport(ctx context.Context, rpt report.Report) (report.Report, error) {
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO report (title, generated_date, report_type, format, parameters, administrator_id)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		rpt.Title, rpt.GeneratedDate, rpt.ReportType, rpt.Format, rpt.Parameters, rpt.AdministratorID,
	).Scan(&rpt.ID)
	if err != nil {
		return report.Report{}, errors.Wrap(err, "inserting report")
	}
	return rpt, nil
}

func (repo reportRepository) QueryAllReports(ctx context.Context) ([]report.Report, error) {
	var rpts []report.Report
	err := repo.db.SelectContext(ctx, &rpts, `SELECT * FROM report ORDER BY generated_date DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying reports")
	}
	return rpts, nil
}

func (repo reportRepository) GetReportByID(ctx context.Context, id int) (report.Report, error) {
	var rpt report.Report
	if err := repo.db.GetContext(ctx, &rpt, `SELECT * FROM report WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return report.Report{}, report.ErrNotFound
		}
		return report.Report{}, errors.Wrap(err, "finding report by ID")
	}
	return rpt, nil
}

func (repo reportRepository) DeleteReport(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM report WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting report")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return report.ErrNotFound
	}
	return nil
}
