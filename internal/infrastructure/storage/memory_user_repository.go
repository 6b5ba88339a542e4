package storage

import (
	"context"
	"sync"

	"ppe-inspector/internal/domain/entity"
	"ppe-inspector/internal/domain/port"
)

// MemoryUserRepository in-memory хранилище состояния диалогов
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[int64]entity.User
}

// NewMemoryUserRepository создаёт пустое хранилище
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[int64]entity.User),
	}
}

// Get возвращает копию пользователя, создаёт нового если не найден
func (r *MemoryUserRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := r.loadLocked(userID, chatID)
	return &user, nil
}

// Save сохраняет состояние пользователя
func (r *MemoryUserRepository) Save(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	r.users[user.ID] = *user
	r.mu.Unlock()

	return nil
}

// BeginProcessing переводит пользователя в StateProcessing, если он не занят.
func (r *MemoryUserRepository) BeginProcessing(ctx context.Context, userID, chatID int64) (*entity.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := r.loadLocked(userID, chatID)
	if user.IsBusy() {
		return &user, false, nil
	}
	user.SetState(entity.StateProcessing)
	r.users[userID] = user

	return &user, true, nil
}

func (r *MemoryUserRepository) loadLocked(userID, chatID int64) entity.User {
	if user, ok := r.users[userID]; ok {
		return user
	}
	user := *entity.NewUser(userID, chatID)
	r.users[userID] = user
	return user
}

// Проверка реализации интерфейса
var _ port.UserRepository = (*MemoryUserRepository)(nil)
