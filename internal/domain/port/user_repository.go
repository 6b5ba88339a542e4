package port

import (
	"context"

	"ppe-inspector/internal/domain/entity"
)

// UserRepository хранилище состояния диалога
type UserRepository interface {
	// Get возвращает копию пользователя, создаёт нового если не найден
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Save сохраняет состояние пользователя
	Save(ctx context.Context, user *entity.User) error

	// BeginProcessing атомарно переводит пользователя в обработку.
	// Возвращает false, если предыдущее фото ещё обрабатывается.
	BeginProcessing(ctx context.Context, userID, chatID int64) (*entity.User, bool, error)
}
