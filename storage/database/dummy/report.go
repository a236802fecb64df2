package dummydb

import (
	"context"
	"sort"

	"github.com/educert/backend/core/report"
)

var reportPKCount int

type reportRepository struct {
	db *reportTable
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db *DB) *reportRepository {
	return &reportRepository{db: db.report}
}

func (repo *reportRepository) CreateReport(ctx context.Context, rpt report.Report) (report.Report, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	reportPKCount++
	rpt.ID = reportPKCount
	repo.db.table[rpt.ID] = &rpt
	return rpt, nil
}

func (repo *reportRepository) QueryAllReports(ctx context.Context) ([]report.Report, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rpts := make([]report.Report, 0, len(repo.db.table))
	for _, rpt := range repo.db.table {
		rpts = append(rpts, *rpt)
	}
	sort.Slice(rpts, func(i, j int) bool { return rpts[i].GeneratedDate.After(rpts[j].GeneratedDate) })
	return rpts, nil
}

func (repo *reportRepository) GetReportByID(ctx context.Context, id int) (report.Report, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rpt, ok := repo.db.table[id]; ok {
		return *rpt, nil
	}
	return report.Report{}, report.ErrNotFound
}

func (repo *reportRepository) DeleteReport(ctx context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return report.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
