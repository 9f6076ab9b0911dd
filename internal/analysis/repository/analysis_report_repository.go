package repository

import (
	"context"

	"golang-stock-insight/internal/entity"

	"gorm.io/gorm"
)

// AnalysisReportRepository persists generated reports for history queries.
type AnalysisReportRepository interface {
	Create(ctx context.Context, report *entity.AnalysisReport) error
	GetLatest(ctx context.Context, stockCode string) (*entity.AnalysisReport, error)
	ListByStockCode(ctx context.Context, stockCode string, limit int) ([]entity.AnalysisReport, error)
}

type analysisReportRepository struct {
	db *gorm.DB
}

func NewAnalysisReportRepository(db *gorm.DB) AnalysisReportRepository {
	return &analysisReportRepository{db: db}
}

func (r *analysisReportRepository) Create(ctx context.Context, report *entity.AnalysisReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *analysisReportRepository) GetLatest(ctx context.Context, stockCode string) (*entity.AnalysisReport, error) {
	var report entity.AnalysisReport
	err := r.db.WithContext(ctx).
		Where("stock_code = ?", stockCode).
		Order("generated_at DESC").
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *analysisReportRepository) ListByStockCode(ctx context.Context, stockCode string, limit int) ([]entity.AnalysisReport, error) {
	var reports []entity.AnalysisReport
	err := r.db.WithContext(ctx).
		Where("stock_code = ?", stockCode).
		Order("generated_at DESC").
		Limit(limit).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}
