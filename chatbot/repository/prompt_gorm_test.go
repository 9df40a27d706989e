package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turinglabs/kbchat/chatbot/domain"
)

func TestPromptGorm_GetActivePicksHighestVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewPromptGormRepository(newTestDB(t))
	require.NoError(t, repo.Init(ctx))

	now := time.Now().UTC()
	_, err := repo.Create(ctx, domain.PromptTemplate{
		Name: "support", TemplateContent: "v1", Version: 1, IsActive: true, CreatedAt: now.Add(-time.Hour),
	})
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.PromptTemplate{
		Name: "support", TemplateContent: "v3 draft", Version: 3, IsActive: false, CreatedAt: now,
	})
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.PromptTemplate{
		Name: "support", TemplateContent: "v2", Version: 2, IsActive: true, CreatedAt: now,
	})
	require.NoError(t, err)

	prompt, err := repo.GetActive(ctx, "support")
	require.NoError(t, err)
	assert.Equal(t, "v2", prompt.TemplateContent)
	assert.Equal(t, 2, prompt.Version)
}

func TestPromptGorm_GetActiveFiltersByName(t *testing.T) {
	ctx := context.Background()
	repo := NewPromptGormRepository(newTestDB(t))
	require.NoError(t, repo.Init(ctx))

	now := time.Now().UTC()
	_, err := repo.Create(ctx, domain.PromptTemplate{
		Name: "support", TemplateContent: "support prompt", Version: 1, IsActive: true, CreatedAt: now,
	})
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.PromptTemplate{
		Name: "sales", TemplateContent: "sales prompt", Version: 5, IsActive: true, CreatedAt: now,
	})
	require.NoError(t, err)

	prompt, err := repo.GetActive(ctx, "support")
	require.NoError(t, err)
	assert.Equal(t, "support prompt", prompt.TemplateContent)

	// Empty name selects across all names, highest version first.
	prompt, err = repo.GetActive(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "sales prompt", prompt.TemplateContent)
}

func TestPromptGorm_GetActiveNoneFound(t *testing.T) {
	ctx := context.Background()
	repo := NewPromptGormRepository(newTestDB(t))
	require.NoError(t, repo.Init(ctx))

	_, err := repo.GetActive(ctx, "support")
	assert.Error(t, err)
}

func TestPromptGorm_GetByID(t *testing.T) {
	ctx := context.Background()
	repo := NewPromptGormRepository(newTestDB(t))
	require.NoError(t, repo.Init(ctx))

	created, err := repo.Create(ctx, domain.PromptTemplate{
		Name: "support", TemplateContent: "content", Version: 1, IsActive: true, CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.TemplateContent, got.TemplateContent)

	_, err = repo.GetByID(ctx, "missing")
	assert.Error(t, err)
}
