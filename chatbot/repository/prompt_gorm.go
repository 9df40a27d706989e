package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/turinglabs/kbchat/chatbot/domain"
	pkgError "github.com/turinglabs/kbchat/pkg/error"
	"gorm.io/gorm"
)

type promptTemplateModel struct {
	ID              string    `gorm:"primaryKey"`
	Name            string    `gorm:"index"`
	TemplateContent string    `gorm:"column:template_content"`
	Version         int       `gorm:"not null;default:1"`
	IsActive        bool      `gorm:"column:is_active;index"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

func (promptTemplateModel) TableName() string {
	return "prompt_templates"
}

// PromptGormRepository implements domain.IPromptRepository using GORM.
type PromptGormRepository struct {
	db *gorm.DB
}

func NewPromptGormRepository(db *gorm.DB) *PromptGormRepository {
	return &PromptGormRepository{db: db}
}

func (r *PromptGormRepository) Init(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&promptTemplateModel{})
}

// GetActive returns the active template with the highest version, tie-broken
// by most recent creation. Name narrows the selection when non-empty.
func (r *PromptGormRepository) GetActive(ctx context.Context, name string) (domain.PromptTemplate, error) {
	query := r.db.WithContext(ctx).Where("is_active = ?", true)
	if name != "" {
		query = query.Where("name = ?", name)
	}

	var model promptTemplateModel
	err := query.Order("version DESC").Order("created_at DESC").First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.PromptTemplate{}, pkgError.NotFoundError("no active prompt template")
		}
		return domain.PromptTemplate{}, err
	}
	return fromPromptModel(model), nil
}

func (r *PromptGormRepository) GetByID(ctx context.Context, id string) (domain.PromptTemplate, error) {
	var model promptTemplateModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.PromptTemplate{}, pkgError.NotFoundError("prompt template not found")
		}
		return domain.PromptTemplate{}, err
	}
	return fromPromptModel(model), nil
}

// Create inserts a new template version.
func (r *PromptGormRepository) Create(ctx context.Context, prompt domain.PromptTemplate) (domain.PromptTemplate, error) {
	model := toPromptModel(prompt)
	if model.ID == "" {
		model.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.PromptTemplate{}, err
	}
	return fromPromptModel(model), nil
}

func toPromptModel(p domain.PromptTemplate) promptTemplateModel {
	return promptTemplateModel{
		ID:              p.ID,
		Name:            p.Name,
		TemplateContent: p.TemplateContent,
		Version:         p.Version,
		IsActive:        p.IsActive,
		CreatedAt:       p.CreatedAt,
	}
}

func fromPromptModel(m promptTemplateModel) domain.PromptTemplate {
	return domain.PromptTemplate{
		ID:              m.ID,
		Name:            m.Name,
		TemplateContent: m.TemplateContent,
		Version:         m.Version,
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt,
	}
}
