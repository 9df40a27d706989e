package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/turinglabs/kbchat/chatbot/domain"
	pkgError "github.com/turinglabs/kbchat/pkg/error"
	"gorm.io/gorm"
)

type documentModel struct {
	ID         string    `gorm:"primaryKey"`
	Title      string    `gorm:"not null"`
	SourceType string    `gorm:"column:source_type"`
	SourcePath string    `gorm:"column:source_path"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (documentModel) TableName() string {
	return "documents"
}

// DocumentGormRepository stores knowledge-base document metadata.
type DocumentGormRepository struct {
	db *gorm.DB
}

func NewDocumentGormRepository(db *gorm.DB) *DocumentGormRepository {
	return &DocumentGormRepository{db: db}
}

func (r *DocumentGormRepository) Init(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&documentModel{})
}

func (r *DocumentGormRepository) Create(ctx context.Context, doc domain.Document) (domain.Document, error) {
	model := documentModel{
		ID:         doc.ID,
		Title:      doc.Title,
		SourceType: doc.SourceType,
		SourcePath: doc.SourcePath,
	}
	if model.ID == "" {
		model.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.Document{}, err
	}
	return fromDocumentModel(model), nil
}

func (r *DocumentGormRepository) GetByID(ctx context.Context, id string) (domain.Document, error) {
	var model documentModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Document{}, pkgError.NotFoundError("document not found")
		}
		return domain.Document{}, err
	}
	return fromDocumentModel(model), nil
}

func (r *DocumentGormRepository) List(ctx context.Context) ([]domain.Document, error) {
	var models []documentModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Document, len(models))
	for i, m := range models {
		result[i] = fromDocumentModel(m)
	}
	return result, nil
}

func fromDocumentModel(m documentModel) domain.Document {
	return domain.Document{
		ID:         m.ID,
		Title:      m.Title,
		SourceType: m.SourceType,
		SourcePath: m.SourcePath,
		CreatedAt:  m.CreatedAt,
	}
}
