package httpapi

import (
	"context"
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	app "ppe-inspector/internal/application"
	"ppe-inspector/internal/domain/entity"
	"ppe-inspector/internal/infrastructure/reporting"
)

//go:embed templates/index.html
var templatesFS embed.FS

const (
	formField       = "file"
	msgUploadPrompt = "Please upload a JPEG or PNG image."
)

// HealthChecker проверка внешней модели
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// Handler HTTP-обработчики загрузки фото
type Handler struct {
	inspections *app.InspectionService
	health      HealthChecker
	reporter    *reporting.Reporter
	maxBytes    int64
}

// NewHandler создаёт обработчик. health и reporter могут быть nil.
func NewHandler(inspections *app.InspectionService, health HealthChecker, reporter *reporting.Reporter, maxBytes int) *Handler {
	if maxBytes <= 0 {
		maxBytes = app.DefaultMaxImageBytes
	}
	return &Handler{
		inspections: inspections,
		health:      health,
		reporter:    reporter,
		maxBytes:    int64(maxBytes),
	}
}

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DetectionView детекция со статусом для ответа
type DetectionView struct {
	entity.Detection
	Status   string          `json:"status"`
	Category entity.Category `json:"category"`
}

// InspectResponse ответ POST /api/v1/inspect
type InspectResponse struct {
	RequestID      string               `json:"request_id"`
	NoDetections   bool                 `json:"no_detections"`
	Message        string               `json:"message"`
	Primary        string               `json:"primary"`
	Counts         map[string]int       `json:"counts"`
	Lines          []entity.SummaryLine `json:"lines"`
	Compliant      int                  `json:"compliant"`
	Violations     int                  `json:"violations"`
	Workers        int                  `json:"workers"`
	Detections     []DetectionView      `json:"detections"`
	AnnotatedImage string               `json:"annotated_image,omitempty"`
	Description    string               `json:"description,omitempty"`
	Report         string               `json:"report"`
}

type pageResult struct {
	ImageURI     template.URL
	NoDetections bool
	Lines        []entity.SummaryLine
	Compliant    int
	Violations   int
	Workers      int
	Primary      string
	Description  string
}

type pageData struct {
	Prompt string
	Error  string
	Result *pageResult
}

// NewRouter собирает gin-роутер со всеми маршрутами.
func NewRouter(h *Handler) (*gin.Engine, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	r := gin.New()
	r.MaxMultipartMemory = h.maxBytes
	r.SetHTMLTemplate(tmpl)
	r.Use(gin.Recovery(), requestIDMiddleware(), loggingMiddleware(), corsMiddleware())

	r.GET("/", h.Index)
	r.POST("/", h.UploadPage)
	r.GET("/health", h.Health)

	v1 := r.Group("/api/v1")
	v1.POST("/inspect", h.Inspect)
	v1.POST("/inspect/image", h.InspectImage)

	return r, nil
}

// Index отдаёт страницу загрузки
func (h *Handler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", pageData{Prompt: msgUploadPrompt})
}

// UploadPage обрабатывает форму и рисует результат на странице.
func (h *Handler) UploadPage(c *gin.Context) {
	photo, err := h.readUpload(c)
	if errors.Is(err, app.ErrNoImage) {
		c.HTML(http.StatusOK, "index.html", pageData{Prompt: msgUploadPrompt})
		return
	}
	if err != nil {
		status, resp := h.mapError(c, err)
		c.HTML(status, "index.html", pageData{Error: resp.Message})
		return
	}

	out, err := h.inspections.ProcessPhoto(c.Request.Context(), photo)
	if err != nil {
		status, resp := h.mapError(c, err)
		c.HTML(status, "index.html", pageData{Error: resp.Message})
		return
	}

	cm := h.inspections.Compliance()
	result := &pageResult{
		NoDetections: out.Summary.NoDetections,
		Lines:        out.Summary.Lines(cm),
		Compliant:    out.Summary.Compliant,
		Violations:   out.Summary.Violations,
		Workers:      out.Summary.Workers,
		Primary:      out.Summary.PrimaryLabel(),
	}
	if out.Annotated != nil {
		result.ImageURI = dataURI("image/jpeg", out.Annotated)
	} else {
		result.ImageURI = dataURI("image/"+out.Format, photo)
	}
	if out.Description != nil {
		result.Description = out.Description.Text
	}

	c.HTML(http.StatusOK, "index.html", pageData{Result: result})
}

// Inspect возвращает сводку в JSON
func (h *Handler) Inspect(c *gin.Context) {
	photo, err := h.readUpload(c)
	if err != nil {
		c.JSON(h.mapError(c, err))
		return
	}

	out, err := h.inspections.ProcessPhoto(c.Request.Context(), photo)
	if err != nil {
		c.JSON(h.mapError(c, err))
		return
	}

	cm := h.inspections.Compliance()
	resp := InspectResponse{
		RequestID:    c.GetString(requestIDKey),
		NoDetections: out.Summary.NoDetections,
		Message:      summaryMessage(out.Summary),
		Primary:      out.Summary.PrimaryLabel(),
		Counts:       out.Summary.Counts,
		Lines:        out.Summary.Lines(cm),
		Compliant:    out.Summary.Compliant,
		Violations:   out.Summary.Violations,
		Workers:      out.Summary.Workers,
		Detections:   make([]DetectionView, 0, len(out.Detections)),
		Report:       app.RenderReport(out.Summary, cm),
	}
	for _, d := range out.Detections {
		resp.Detections = append(resp.Detections, DetectionView{
			Detection: d,
			Status:    cm.Status(d.Label),
			Category:  cm.Category(d.Label),
		})
	}
	if out.Annotated != nil {
		resp.AnnotatedImage = base64.StdEncoding.EncodeToString(out.Annotated)
	}
	if out.Description != nil {
		resp.Description = out.Description.Text
	}

	log.WithFields(log.Fields{
		requestIDKey: resp.RequestID,
		"detections": out.Summary.Total,
		"violations": out.Summary.Violations,
	}).Info("inspection done")

	c.JSON(http.StatusOK, resp)
}

// InspectImage возвращает картинку с подсветкой.
// Если ничего не найдено, отдаёт исходное фото с заголовком X-Detections: 0.
func (h *Handler) InspectImage(c *gin.Context) {
	photo, err := h.readUpload(c)
	if err != nil {
		c.JSON(h.mapError(c, err))
		return
	}

	out, err := h.inspections.ProcessPhoto(c.Request.Context(), photo)
	if err != nil {
		c.JSON(h.mapError(c, err))
		return
	}

	c.Header("X-Detections", fmt.Sprintf("%d", out.Summary.Total))
	c.Header("X-Violations", fmt.Sprintf("%d", out.Summary.Violations))
	c.Header("X-Workers", fmt.Sprintf("%d", out.Summary.Workers))

	if out.Annotated == nil {
		c.Data(http.StatusOK, "image/"+out.Format, photo)
		return
	}
	c.Data(http.StatusOK, "image/jpeg", out.Annotated)
}

// Health проверка здоровья сервиса
func (h *Handler) Health(c *gin.Context) {
	if h.health == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	if err := h.health.CheckHealth(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "inference": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "inference": "ok"})
}

// readUpload читает файл из поля формы "file".
func (h *Handler) readUpload(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)

	header, err := c.FormFile(formField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, app.ErrImageTooLarge
		}
		return nil, app.ErrNoImage
	}
	if header.Size > h.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", app.ErrImageTooLarge, header.Size)
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	return io.ReadAll(io.LimitReader(file, h.maxBytes+1))
}

// mapError переводит ошибку в HTTP-статус и тело ответа.
func (h *Handler) mapError(c *gin.Context, err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, app.ErrNoImage):
		return http.StatusBadRequest, ErrorResponse{Code: "no_image", Message: msgUploadPrompt}
	case errors.Is(err, app.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge, ErrorResponse{Code: "image_too_large", Message: "Image is too large"}
	case errors.Is(err, app.ErrUnsupportedImage):
		return http.StatusUnsupportedMediaType, ErrorResponse{Code: "unsupported_image", Message: "Only JPEG and PNG images are supported"}
	case errors.Is(err, app.ErrInferenceFailed):
		h.reporter.Report(err, map[string]string{"surface": "http", requestIDKey: c.GetString(requestIDKey)})
		return http.StatusBadGateway, ErrorResponse{Code: "inference_failed", Message: "Detection failed, please try again later"}
	case errors.Is(err, app.ErrDetectorNotConfigured):
		return http.StatusServiceUnavailable, ErrorResponse{Code: "detector_unavailable", Message: "Detection is not available"}
	default:
		log.WithError(err).WithField(requestIDKey, c.GetString(requestIDKey)).Error("inspection failed")
		return http.StatusInternalServerError, ErrorResponse{Code: "internal_error", Message: "Internal error"}
	}
}

func summaryMessage(s *entity.Summary) string {
	if s.NoDetections {
		return app.MsgNoDetections
	}
	return fmt.Sprintf("Found %d objects", s.Total)
}

func dataURI(mime string, data []byte) template.URL {
	return template.URL("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data))
}
