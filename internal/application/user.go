package app

import (
	"context"

	"ppe-inspector/internal/domain/entity"
	"ppe-inspector/internal/domain/port"
)

// UserService ведёт состояние диалога с пользователем бота.
type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.SetState(state)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// BeginCheck ждёт фото стройплощадки
func (s *UserService) BeginCheck(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingPhoto)
}

// Cancel возвращает в главное меню
func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateMainMenu)
}

// BeginProcessing занимает пользователя на время детекции.
// ok=false означает, что предыдущее фото ещё в работе.
func (s *UserService) BeginProcessing(ctx context.Context, userID, chatID int64) (user *entity.User, ok bool, err error) {
	return s.repo.BeginProcessing(ctx, userID, chatID)
}

// FinishProcessing освобождает пользователя после детекции
func (s *UserService) FinishProcessing(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateMainMenu)
}
