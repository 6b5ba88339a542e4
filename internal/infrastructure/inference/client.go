package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"

	"ppe-inspector/internal/domain/entity"
	"ppe-inspector/internal/domain/port"
)

// DefaultTimeout время ожидания ответа модели
const DefaultTimeout = 60 * time.Second

// record строка из results.pandas().xyxy[0] модели YOLOv5
type record struct {
	XMin       float64 `json:"xmin"`
	YMin       float64 `json:"ymin"`
	XMax       float64 `json:"xmax"`
	YMax       float64 `json:"ymax"`
	Confidence float64 `json:"confidence"`
	Class      int     `json:"class"`
	Name       string  `json:"name"`
}

// Client адаптер к внешнему сервису с моделью.
// Создаётся один раз при старте и разделяется между запросами.
type Client struct {
	http       *resty.Client
	predictURL string
	healthURL  string
}

// NewClient создаёт клиента для predictURL, например http://localhost:5000/predict.
func NewClient(predictURL string, timeout time.Duration) (*Client, error) {
	parsed, err := url.Parse(predictURL)
	if err != nil {
		return nil, fmt.Errorf("invalid inference URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported inference URL scheme: %q", parsed.Scheme)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	health := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host, Path: "/health"}

	return &Client{
		http:       resty.New().SetTimeout(timeout).SetHeader("Accept", "application/json"),
		predictURL: parsed.String(),
		healthURL:  health.String(),
	}, nil
}

// Detect отправляет изображение в модель и возвращает детекции в порядке ответа.
func (c *Client) Detect(ctx context.Context, imageData []byte) ([]entity.Detection, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", "image.jpg", bytes.NewReader(imageData)).
		Post(c.predictURL)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("inference failed with status %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}

	records, err := decodeRecords(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	detections := make([]entity.Detection, 0, len(records))
	for _, r := range records {
		label := r.Name
		if label == "" {
			label = strconv.Itoa(r.Class)
		}
		detections = append(detections, entity.Detection{
			Label:      label,
			Confidence: r.Confidence,
			Box: entity.BoundingBox{
				XMin: r.XMin,
				YMin: r.YMin,
				XMax: r.XMax,
				YMax: r.YMax,
			},
		})
	}

	return detections, nil
}

// CheckHealth проверяет доступность сервиса модели
func (c *Client) CheckHealth(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get(c.healthURL)
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("ml service unhealthy: %d", resp.StatusCode())
	}
	return nil
}

// decodeRecords понимает и голый массив записей, и обёртку {"detections": [...]}.
func decodeRecords(body []byte) ([]record, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errors.New("empty body")
	}

	if body[0] == '[' {
		var records []record
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var wrapped struct {
		Detections []record `json:"detections"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Detections, nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

var _ port.ObjectDetector = (*Client)(nil)
