package repository

import (
	"context"

	"github.com/yizhaofeng1/ai-trader/internal/model"
	"github.com/yizhaofeng1/ai-trader/pkg/utils"

	"gorm.io/gorm"
)

type AccountRepository interface {
	// GetOrCreate returns the user's virtual account, funding a fresh one
	// with the default balance when none exists yet.
	GetOrCreate(ctx context.Context, userID uint, opts ...utils.DBOption) (*model.VirtualAccount, error)
	UpdateBalance(ctx context.Context, accountID uint, balance float64, opts ...utils.DBOption) error
	CreateOrder(ctx context.Context, order *model.PaperOrder, opts ...utils.DBOption) error
	GetOrders(ctx context.Context, userID uint, limit int) ([]model.PaperOrder, error)
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) GetOrCreate(ctx context.Context, userID uint, opts ...utils.DBOption) (*model.VirtualAccount, error) {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	var account model.VirtualAccount
	result := tx.Where("user_id = ?", userID).First(&account)
	if result.Error == nil {
		return &account, nil
	}
	if result.Error != gorm.ErrRecordNotFound {
		return nil, result.Error
	}

	account = model.VirtualAccount{
		UserID:       userID,
		Balance:      model.DefaultVirtualBalance,
		TotalAssets:  model.DefaultVirtualBalance,
		IsSimulation: true,
	}
	if err := tx.Create(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) UpdateBalance(ctx context.Context, accountID uint, balance float64, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Model(&model.VirtualAccount{}).
		Where("id = ?", accountID).
		Update("balance", balance).Error
}

func (r *accountRepository) CreateOrder(ctx context.Context, order *model.PaperOrder, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(order).Error
}

func (r *accountRepository) GetOrders(ctx context.Context, userID uint, limit int) ([]model.PaperOrder, error) {
	var orders []model.PaperOrder
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
