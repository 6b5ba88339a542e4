package reporting

import (
	"fmt"

	"github.com/getsentry/raven-go"
	log "github.com/sirupsen/logrus"
)

// Reporter отправляет ошибки инференса в Sentry.
// Без DSN ничего не отправляет, только пишет в лог.
type Reporter struct {
	client *raven.Client
}

// New создаёт репортер. Пустой dsn отключает отправку.
func New(dsn string) (*Reporter, error) {
	if dsn == "" {
		return &Reporter{}, nil
	}
	client, err := raven.New(dsn)
	if err != nil {
		return nil, fmt.Errorf("init sentry: %w", err)
	}
	return &Reporter{client: client}, nil
}

// Enabled сообщает, настроена ли отправка
func (r *Reporter) Enabled() bool {
	return r != nil && r.client != nil
}

// Report отправляет ошибку с тегами
func (r *Reporter) Report(err error, tags map[string]string) {
	if err == nil {
		return
	}
	log.WithError(err).WithField("tags", tags).Error("inspection failed")
	if !r.Enabled() {
		return
	}
	r.client.CaptureError(err, tags)
}

// Close дожидается отправки событий
func (r *Reporter) Close() {
	if !r.Enabled() {
		return
	}
	r.client.Wait()
	r.client.Close()
}
