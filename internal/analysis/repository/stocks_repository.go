package repository

import (
	"context"

	"golang-stock-insight/internal/entity"

	"gorm.io/gorm"
)

// StocksRepository reads the instrument catalog.
type StocksRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.Stock, error)
	GetByIndustry(ctx context.Context, industry string, limit int) ([]entity.Stock, error)
}

type stocksRepository struct {
	db *gorm.DB
}

func NewStocksRepository(db *gorm.DB) StocksRepository {
	return &stocksRepository{db: db}
}

func (s *stocksRepository) GetByCode(ctx context.Context, code string) (*entity.Stock, error) {
	var stock entity.Stock
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&stock).Error; err != nil {
		return nil, err
	}
	return &stock, nil
}

func (s *stocksRepository) GetByIndustry(ctx context.Context, industry string, limit int) ([]entity.Stock, error) {
	var stocks []entity.Stock
	err := s.db.WithContext(ctx).
		Where("industry = ?", industry).
		Limit(limit).
		Find(&stocks).Error
	if err != nil {
		return nil, err
	}
	return stocks, nil
}
