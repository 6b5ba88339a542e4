package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"ppe-inspector/config"
	"ppe-inspector/internal/api/httpapi"
	"ppe-inspector/internal/api/telegram"
	app "ppe-inspector/internal/application"
	"ppe-inspector/internal/container"
	"ppe-inspector/internal/domain/port"
	"ppe-inspector/internal/infrastructure/compliance"
	"ppe-inspector/internal/infrastructure/describer"
	"ppe-inspector/internal/infrastructure/inference"
	"ppe-inspector/internal/infrastructure/reporting"
	"ppe-inspector/internal/infrastructure/storage"
	"ppe-inspector/internal/infrastructure/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.SetupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Таблица статусов читается один раз и дальше не меняется
	cm, err := compliance.LoadFile(cfg.ComplianceMapPath)
	if err != nil {
		log.Fatalf("Failed to load compliance map: %v", err)
	}

	// Клиент модели общий для всех запросов
	detector, err := inference.NewClient(cfg.InferenceURL, cfg.InferenceTimeout)
	if err != nil {
		log.Fatalf("Failed to create inference client: %v", err)
	}
	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := detector.CheckHealth(healthCtx); err != nil {
		log.WithError(err).Warn("ML service not available")
	}
	cancel()

	var desc port.ComplianceDescriber
	if cfg.OllamaURL != "" {
		d, err := describer.NewOllamaDescriber(cfg.OllamaURL, cfg.OllamaModel, cm)
		if err != nil {
			log.Fatalf("Failed to create describer: %v", err)
		}
		desc = d
	}

	reporter, err := reporting.New(cfg.SentryDSN)
	if err != nil {
		log.Fatalf("Failed to init error reporting: %v", err)
	}
	defer reporter.Close()

	appContainer := container.New(
		storage.NewMemoryUserRepository(),
		detector,
		vision.NewAnnotator(vision.DefaultJPEGQuality),
		desc,
		cm,
		app.InspectionOptions{MinConfidence: cfg.MinConfidence, MaxImageBytes: cfg.MaxImageBytes},
	)

	var wg sync.WaitGroup

	if cfg.HTTPAddr != "" {
		if log.GetLevel() < log.DebugLevel {
			gin.SetMode(gin.ReleaseMode)
		}
		handler := httpapi.NewHandler(appContainer.InspectionService, detector, reporter, cfg.MaxImageBytes)
		router, err := httpapi.NewRouter(handler)
		if err != nil {
			log.Fatalf("Failed to create router: %v", err)
		}

		srv := &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  60 * time.Second,
			WriteTimeout: cfg.InferenceTimeout + 30*time.Second,
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			log.WithField("addr", srv.Addr).Info("HTTP server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("HTTP server error")
				stop()
			}
		}()

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.WithError(err).Warn("HTTP server shutdown")
			}
		}()
	}

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, appContainer.UserService, appContainer.InspectionService, reporter)
		if err != nil {
			log.Fatalf("Failed to create bot: %v", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info("Bot is running...")
			if err := bot.Run(ctx); err != nil {
				log.WithError(err).Error("Bot error")
			}
		}()
	}

	wg.Wait()
	log.Info("stopped")
}
