package service

import (
	"errors"
	"testing"

	"momcare-go/internal/model"
	"momcare-go/internal/repository"
	"momcare-go/pkg/tasks"

	"github.com/stretchr/testify/require"
)

func TestRequestGeneration(t *testing.T) {
	db := newTestDB(t)
	var produced []tasks.GenerationTask
	svc := NewGenerationService(repository.NewGenerationRepository(db), func(task tasks.GenerationTask) error {
		produced = append(produced, task)
		return nil
	})

	generation, err := svc.RequestGeneration(7, model.GenerationKindImage, "宝宝满月纪念画", "watercolor")
	require.NoError(t, err)
	require.Equal(t, model.GenerationStatusPending, generation.Status)

	require.Len(t, produced, 1)
	require.Equal(t, generation.ID, produced[0].GenerationID)
	require.Equal(t, model.GenerationKindImage, produced[0].Kind)
	require.Equal(t, uint(7), produced[0].UserID)
}

func TestRequestGenerationValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewGenerationService(repository.NewGenerationRepository(db), func(tasks.GenerationTask) error {
		t.Fatal("校验失败时不应投递任务")
		return nil
	})

	_, err := svc.RequestGeneration(1, "video", "prompt", "")
	require.ErrorIs(t, err, ErrValidation)
	_, err = svc.RequestGeneration(1, model.GenerationKindMusic, "", "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestRequestGenerationProduceFailureMarksFailed(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewGenerationRepository(db)
	svc := NewGenerationService(repo, func(tasks.GenerationTask) error {
		return errors.New("broker unavailable")
	})

	_, err := svc.RequestGeneration(1, model.GenerationKindMusic, "摇篮曲", "lullaby")
	require.Error(t, err)

	generations, err := repo.FindByUserID(1)
	require.NoError(t, err)
	require.Len(t, generations, 1)
	require.Equal(t, model.GenerationStatusFailed, generations[0].Status)
}

func TestGetGenerationOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := NewGenerationService(repository.NewGenerationRepository(db), func(tasks.GenerationTask) error {
		return nil
	})

	generation, err := svc.RequestGeneration(1, model.GenerationKindImage, "prompt", "")
	require.NoError(t, err)

	got, err := svc.GetGeneration(1, generation.ID)
	require.NoError(t, err)
	require.Equal(t, generation.ID, got.ID)

	// 非属主访问以不存在处理
	_, err = svc.GetGeneration(2, generation.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
