package entity

// UserState состояние диалога с пользователем бота
type UserState string

const (
	StateMainMenu      UserState = "main_menu"      // В главном меню
	StateAwaitingPhoto UserState = "awaiting_photo" // Ждём фото стройплощадки
	StateProcessing    UserState = "processing"     // Идёт детекция
)

// User пользователь бота. Хранит только состояние диалога, не результаты детекции.
type User struct {
	ID     int64     // Telegram User ID
	ChatID int64     // Telegram Chat ID
	State  UserState // Текущее состояние
}

// NewUser создаёт пользователя в главном меню
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// IsBusy сообщает, что предыдущее фото ещё обрабатывается.
func (u *User) IsBusy() bool {
	return u.State == StateProcessing
}
