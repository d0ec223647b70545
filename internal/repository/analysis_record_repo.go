package repository

import (
	"context"
	"time"

	"github.com/yizhaofeng1/ai-trader/internal/model"
	"github.com/yizhaofeng1/ai-trader/pkg/utils"

	"gorm.io/gorm"
)

type AnalysisRecordRepository interface {
	Create(ctx context.Context, record *model.AnalysisRecord, opts ...utils.DBOption) error
	Update(ctx context.Context, record *model.AnalysisRecord, opts ...utils.DBOption) error
	GetByID(ctx context.Context, id uint, userID uint) (*model.AnalysisRecord, error)
	GetHistory(ctx context.Context, userID uint, limit int) ([]model.AnalysisRecord, error)
	Delete(ctx context.Context, id uint, userID uint) error
	FindOlderThan(ctx context.Context, date time.Time) ([]model.AnalysisRecord, error)
	DeleteOlderThan(ctx context.Context, date time.Time) (int64, error)
}

type analysisRecordRepository struct {
	db *gorm.DB
}

func NewAnalysisRecordRepository(db *gorm.DB) AnalysisRecordRepository {
	return &analysisRecordRepository{db: db}
}

func (r *analysisRecordRepository) Create(ctx context.Context, record *model.AnalysisRecord, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(record).Error
}

func (r *analysisRecordRepository) Update(ctx context.Context, record *model.AnalysisRecord, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Save(record).Error
}

func (r *analysisRecordRepository) GetByID(ctx context.Context, id uint, userID uint) (*model.AnalysisRecord, error) {
	var record model.AnalysisRecord
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&record)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &record, nil
}

func (r *analysisRecordRepository) GetHistory(ctx context.Context, userID uint, limit int) ([]model.AnalysisRecord, error) {
	var records []model.AnalysisRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *analysisRecordRepository) Delete(ctx context.Context, id uint, userID uint) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.AnalysisRecord{}).Error
}

func (r *analysisRecordRepository) FindOlderThan(ctx context.Context, date time.Time) ([]model.AnalysisRecord, error) {
	var records []model.AnalysisRecord
	err := r.db.WithContext(ctx).Where("created_at < ?", date).Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *analysisRecordRepository) DeleteOlderThan(ctx context.Context, date time.Time) (int64, error) {
	db := r.db.WithContext(ctx).Where("created_at < ?", date).Delete(&model.AnalysisRecord{})
	if db.Error != nil {
		return 0, db.Error
	}
	return db.RowsAffected, nil
}
