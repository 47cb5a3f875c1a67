package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/habitrack/internal/error_values"
	"github.com/limbo/habitrack/internal/repository"
	"github.com/limbo/habitrack/pkg/entity"
)

const (
	defaultEmoji    = "✅"
	defaultCategory = "General"
	defaultColor    = "#3B82F6"
)

type HabitsService struct {
	repo repository.HabitsRepositoryI
}

func NewHabitsService(habitsRepo repository.HabitsRepositoryI) *HabitsService {
	if habitsRepo == nil {
		log.Fatal("provided nil habitsRepo")
	}
	return &HabitsService{
		repo: habitsRepo,
	}
}

func orDefault(value, def string) string {
	if value = strings.TrimSpace(value); value == "" {
		return def
	}
	return value
}

func (hs *HabitsService) CreateHabit(ctx context.Context, uid uuid.UUID, req *CreateHabitRequest) (*entity.Habit, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	habit, err := hs.repo.Create(ctx, &entity.Habit{
		UserID:      uid,
		Name:        req.Name,
		Description: req.Description,
		Emoji:       orDefault(req.Emoji, defaultEmoji),
		Category:    orDefault(req.Category, defaultCategory),
		Color:       orDefault(req.Color, defaultColor),
		IsActive:    true,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, err
		}
		return nil, errors.New("habits repository error: " + err.Error())
	}
	return habit, nil
}

func (hs *HabitsService) GetUserHabits(ctx context.Context, uid uuid.UUID, req *ListHabitsRequest) ([]*entity.Habit, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	habits, err := hs.repo.List(ctx, uid, repository.HabitFilter{
		Active:   req.Active,
		Category: strings.TrimSpace(req.Category),
		Sort:     repository.HabitSort(req.Sort),
		Limit:    req.Limit,
		Offset:   req.Offset,
	})
	if err != nil {
		return nil, errors.New("habits repository error: " + err.Error())
	}
	return habits, nil
}

func (hs *HabitsService) GetHabit(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error) {
	habit, err := hs.repo.GetByID(ctx, habitID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrHabitNotFound) {
			return nil, err
		}
		return nil, errors.New("habits repository error: " + err.Error())
	}
	if habit.UserID != userID {
		return nil, errorvalues.ErrWrongOwner
	}
	return habit, nil
}

func (hs *HabitsService) UpdateHabit(ctx context.Context, habitID, userID uuid.UUID, req *UpdateHabitRequest) (*entity.Habit, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	habit, err := hs.GetHabit(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		habit.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		habit.Description = strings.TrimSpace(*req.Description)
	}
	if req.Emoji != nil {
		habit.Emoji = strings.TrimSpace(*req.Emoji)
	}
	if req.Category != nil {
		habit.Category = strings.TrimSpace(*req.Category)
	}
	if req.Color != nil {
		habit.Color = *req.Color
	}
	if req.IsActive != nil {
		habit.IsActive = *req.IsActive
	}
	updated, err := hs.repo.Update(ctx, habit)
	if err != nil {
		if errors.Is(err, errorvalues.ErrHabitNotFound) {
			return nil, err
		}
		return nil, errors.New("habits repository error: " + err.Error())
	}
	return updated, nil
}

func (hs *HabitsService) DeleteHabit(ctx context.Context, habitID, userID uuid.UUID) error {
	if _, err := hs.GetHabit(ctx, habitID, userID); err != nil {
		return err
	}
	err := hs.repo.Delete(ctx, habitID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrHabitNotFound) {
			return err
		}
		return errors.New("habits repository error: " + err.Error())
	}
	return nil
}

func (hs *HabitsService) GetCategories(ctx context.Context, uid uuid.UUID) ([]string, error) {
	categories, err := hs.repo.Categories(ctx, uid)
	if err != nil {
		return nil, errors.New("habits repository error: " + err.Error())
	}
	return categories, nil
}
