package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/turinglabs/kbchat/chatbot/domain"
	pkgError "github.com/turinglabs/kbchat/pkg/error"
	"gorm.io/gorm"
)

// contextCacheModel is the persistence model for GORM. The domain struct
// stays free of GORM tags.
type contextCacheModel struct {
	ID          string    `gorm:"primaryKey"`
	PromptID    string    `gorm:"column:prompt_id;index"`
	CacheHandle string    `gorm:"column:cache_handle;index"`
	IsActive    bool      `gorm:"column:is_active;not null;default:false;index"`
	ExpireTime  time.Time `gorm:"column:expire_time"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (contextCacheModel) TableName() string {
	return "context_caches"
}

// ContextCacheGormRepository implements domain.IContextCacheRepository using GORM.
type ContextCacheGormRepository struct {
	db *gorm.DB
}

func NewContextCacheGormRepository(db *gorm.DB) *ContextCacheGormRepository {
	return &ContextCacheGormRepository{db: db}
}

// Init initializes the schema using AutoMigrate.
func (r *ContextCacheGormRepository) Init(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&contextCacheModel{})
}

// LatestActive returns the newest active record for the prompt.
func (r *ContextCacheGormRepository) LatestActive(ctx context.Context, promptID string) (domain.ContextCacheRecord, error) {
	var model contextCacheModel
	err := r.db.WithContext(ctx).
		Where("prompt_id = ? AND is_active = ?", promptID, true).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.ContextCacheRecord{}, pkgError.NotFoundError("no active context cache for prompt")
		}
		return domain.ContextCacheRecord{}, err
	}
	return fromContextCacheModel(model), nil
}

// DeactivateByHandle flips is_active off for every record with the handle.
func (r *ContextCacheGormRepository) DeactivateByHandle(ctx context.Context, handle string) error {
	return r.db.WithContext(ctx).
		Model(&contextCacheModel{}).
		Where("cache_handle = ?", handle).
		Update("is_active", false).Error
}

// DeactivateAll flips is_active off store-wide. Run before Insert to keep the
// single-active-record invariant.
func (r *ContextCacheGormRepository) DeactivateAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&contextCacheModel{}).
		Where("is_active = ?", true).
		Update("is_active", false).Error
}

func (r *ContextCacheGormRepository) Insert(ctx context.Context, record domain.ContextCacheRecord) error {
	model := toContextCacheModel(record)
	if model.ID == "" {
		model.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func toContextCacheModel(rec domain.ContextCacheRecord) contextCacheModel {
	return contextCacheModel{
		ID:          rec.ID,
		PromptID:    rec.PromptID,
		CacheHandle: rec.CacheHandle,
		IsActive:    rec.IsActive,
		ExpireTime:  rec.ExpireTime,
		CreatedAt:   rec.CreatedAt,
	}
}

func fromContextCacheModel(m contextCacheModel) domain.ContextCacheRecord {
	return domain.ContextCacheRecord{
		ID:          m.ID,
		PromptID:    m.PromptID,
		CacheHandle: m.CacheHandle,
		IsActive:    m.IsActive,
		ExpireTime:  m.ExpireTime,
		CreatedAt:   m.CreatedAt,
	}
}
