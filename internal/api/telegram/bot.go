package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	app "ppe-inspector/internal/application"
	"ppe-inspector/internal/infrastructure/reporting"
)

const (
	msgStart = `👋 Привет! Я проверяю соблюдение требований СИЗ на стройплощадке.

📸 Отправьте фото площадки, и я найду рабочих, каски, жилеты и маски.

📋 Команды:
/check — начать проверку
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте фото стройплощадки (JPEG или PNG)
2️⃣ Бот найдёт объекты на изображении
3️⃣ Вы получите фото с рамками и сводку: нарушения красным, остальное зелёным

💡 Рекомендации:
• Снимайте при хорошем освещении
• Рабочие должны быть видны целиком
• Можно отправить файл без сжатия как документ

📋 Команды:
/check — начать проверку
/cancel — отменить операцию`

	msgAwaitingPhoto   = "📸 Отправьте фото стройплощадки для проверки СИЗ."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото стройплощадки."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgBusy            = "⏳ Предыдущее фото ещё обрабатывается, подождите."
	msgNoDetections    = "🔍 Объекты не обнаружены. Попробуйте другое фото."
	msgUnsupported     = "⚠️ Поддерживаются только изображения JPEG и PNG."
	msgTooLarge        = "⚠️ Файл слишком большой."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте позже."

	// maxCaptionLen ограничение Telegram на подпись к фото
	maxCaptionLen = 1024
)

// Bot представляет Telegram-бота
type Bot struct {
	api         *tgbotapi.BotAPI
	users       *app.UserService
	inspections *app.InspectionService
	reporter    *reporting.Reporter
	httpClient  *http.Client
	wg          sync.WaitGroup
}

// NewBot создаёт нового бота
func NewBot(token string, users *app.UserService, inspections *app.InspectionService, reporter *reporting.Reporter) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.WithField("account", api.Self.UserName).Info("telegram bot authorized")

	return &Bot{
		api:         api,
		users:       users,
		inspections: inspections,
		reporter:    reporter,
		httpClient:  &http.Client{},
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}

			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleMessage(ctx, msg)
			}(update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Фото берём в максимальном разрешении
	if len(msg.Photo) > 0 {
		b.handleImage(ctx, msg, msg.Photo[len(msg.Photo)-1].FileID)
		return
	}

	// Файл без сжатия
	if isImageDocument(msg.Document) {
		b.handleImage(ctx, msg, msg.Document.FileID)
		return
	}
	if msg.Document != nil {
		b.sendMessage(msg.Chat.ID, msgUnsupported)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	var (
		err   error
		reply string
	)

	switch msg.Command() {
	case "start":
		_, err = b.users.Cancel(ctx, msg.From.ID, msg.Chat.ID)
		reply = msgStart
	case "help":
		reply = msgHelp
	case "check":
		_, err = b.users.BeginCheck(ctx, msg.From.ID, msg.Chat.ID)
		reply = msgAwaitingPhoto
	case "cancel":
		_, err = b.users.Cancel(ctx, msg.From.ID, msg.Chat.ID)
		reply = msgCancelled
	default:
		reply = msgUnknownCommand
	}

	if err != nil {
		log.WithError(err).WithField("chat_id", msg.Chat.ID).Error("update user state")
	}
	b.sendMessage(msg.Chat.ID, reply)
}

// handleImage скачивает фото, запускает проверку и отправляет результат
func (b *Bot) handleImage(ctx context.Context, msg *tgbotapi.Message, fileID string) {
	chatID := msg.Chat.ID
	logger := log.WithField("chat_id", chatID)

	_, ok, err := b.users.BeginProcessing(ctx, msg.From.ID, chatID)
	if err != nil {
		logger.WithError(err).Error("begin processing")
		b.sendMessage(chatID, msgProcessingError)
		return
	}
	if !ok {
		b.sendMessage(chatID, msgBusy)
		return
	}
	defer func() {
		if _, err := b.users.FinishProcessing(ctx, msg.From.ID, chatID); err != nil {
			logger.WithError(err).Error("finish processing")
		}
	}()

	b.sendMessage(chatID, msgProcessing)

	imageData, err := b.downloadFile(ctx, fileID)
	if errors.Is(err, app.ErrImageTooLarge) {
		b.sendMessage(chatID, msgTooLarge)
		return
	}
	if err != nil {
		logger.WithError(err).Error("download photo")
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	out, err := b.inspections.ProcessPhoto(ctx, imageData)
	if err != nil {
		b.sendMessage(chatID, b.errorMessage(err, chatID))
		return
	}

	logger.WithFields(log.Fields{
		"detections": out.Summary.Total,
		"violations": out.Summary.Violations,
	}).Info("inspection done")

	if out.Summary.NoDetections {
		b.sendMessage(chatID, msgNoDetections)
		return
	}

	b.sendReport(chatID, out.Annotated, app.RenderReport(out.Summary, b.inspections.Compliance()))

	if out.Description != nil && out.Description.Text != "" {
		b.sendMessage(chatID, "🤖 "+out.Description.Text)
	}
}

// sendReport отправляет фото с рамками и отчёт в подписи.
// Если фото не ушло, отчёт отправляется текстом.
func (b *Bot) sendReport(chatID int64, annotated []byte, report string) {
	if annotated == nil {
		b.sendMessage(chatID, report)
		return
	}

	caption, overflow := captionFor(report)
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "ppe-check.jpg", Bytes: annotated})
	photo.Caption = caption
	if _, err := b.api.Send(photo); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("send photo")
		b.sendMessage(chatID, report)
		return
	}
	if overflow {
		b.sendMessage(chatID, report)
	}
}

// errorMessage подбирает текст ошибки для пользователя
func (b *Bot) errorMessage(err error, chatID int64) string {
	switch {
	case errors.Is(err, app.ErrUnsupportedImage):
		return msgUnsupported
	case errors.Is(err, app.ErrImageTooLarge):
		return msgTooLarge
	case errors.Is(err, app.ErrNoImage):
		return msgSendPhoto
	default:
		b.reporter.Report(err, map[string]string{"surface": "telegram", "chat_id": fmt.Sprint(chatID)})
		return msgProcessingError
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	return readLimited(resp.Body, b.inspections.MaxImageBytes())
}

// readLimited читает не больше limit байт, иначе ErrImageTooLarge
func readLimited(r io.Reader, limit int) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(data) > limit {
		return nil, fmt.Errorf("%w: limit %d", app.ErrImageTooLarge, limit)
	}
	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("send message")
	}
}

// isImageDocument проверяет, что документ — JPEG или PNG
func isImageDocument(doc *tgbotapi.Document) bool {
	if doc == nil {
		return false
	}
	switch strings.ToLower(doc.MimeType) {
	case "image/jpeg", "image/jpg", "image/png":
		return true
	}
	return false
}

// captionFor обрезает отчёт до лимита подписи.
// overflow=true, если полный отчёт нужно отправить отдельным сообщением.
func captionFor(report string) (caption string, overflow bool) {
	if utf8.RuneCountInString(report) <= maxCaptionLen {
		return report, false
	}
	runes := []rune(report)
	return string(runes[:maxCaptionLen-1]) + "…", true
}
