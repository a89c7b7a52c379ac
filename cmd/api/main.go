package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sellerhub/backoffice/catalog-service/config"
	"github.com/sellerhub/backoffice/catalog-service/internal/adapters/logger"
	"github.com/sellerhub/backoffice/catalog-service/internal/adapters/messaging"
	"github.com/sellerhub/backoffice/catalog-service/internal/adapters/productapi"
	"github.com/sellerhub/backoffice/catalog-service/internal/adapters/store"
	"github.com/sellerhub/backoffice/catalog-service/internal/api"
	"github.com/sellerhub/backoffice/catalog-service/internal/domain/catalog"
	"github.com/sellerhub/backoffice/catalog-service/internal/export"
	"github.com/sellerhub/backoffice/catalog-service/internal/security"
	"github.com/sellerhub/backoffice/catalog-service/pkg/interfaces"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log, err := logger.NewZapLogger(cfg.LogLevel, cfg.ENV == "production")
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	log.Info("Инициализация сервиса",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName},
		interfaces.LogField{Key: "version", Value: cfg.Version},
		interfaces.LogField{Key: "env", Value: cfg.ENV},
	)

	sessionStore, err := store.NewRedisStore(
		ctx,
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if err != nil {
		log.Fatal("Ошибка инициализации хранилища сессий", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	defer sessionStore.Close()
	log.Info("Хранилище сессий инициализировано")

	messagingClient, err := messaging.NewKafkaMessaging(
		cfg.Kafka.Brokers,
		cfg.Kafka.GroupID,
		log,
	)
	if err != nil {
		log.Fatal("Ошибка инициализации системы обмена сообщениями", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	defer messagingClient.Close()
	log.Info("Система обмена сообщениями инициализирована")

	apiClient := productapi.NewClient(cfg.ProductAPI.BaseURL, cfg.ProductAPI.Timeout, log)
	log.Info("Клиент API продуктов инициализирован",
		interfaces.LogField{Key: "base_url", Value: cfg.ProductAPI.BaseURL})

	sessions := catalog.NewSessions(apiClient, log, cfg.Catalog.PageSize, cfg.ProductAPI.ReloadLimit)

	printer := export.NewPDFPrinter(cfg.Export.ChromePath, cfg.Export.PDFTimeout)
	serializer := export.NewSerializer(log, printer)

	router := api.SetupRouter(api.RouterDeps{
		Sessions:     sessions,
		Serializer:   serializer,
		Client:       apiClient,
		Store:        sessionStore,
		Messaging:    messagingClient,
		Inspector:    security.NewTokenInspector(),
		Logger:       log,
		ActionsTopic: cfg.Kafka.ActionsTopic,
		PresetTTL:    cfg.Session.PresetTTL,
		CORSOrigins:  cfg.Security.CORSAllowOrigins,
		RateLimitRPM: cfg.Security.RateLimitRPM,
	})
	log.Info("Маршрутизатор настроен")

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Сервер запущен", interfaces.LogField{Key: "address", Value: server.Addr})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Ошибка запуска сервера", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}()

	go func() {
		<-quit
		log.Info("Получен сигнал завершения, выполняется graceful shutdown...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Ошибка при graceful shutdown", interfaces.LogField{Key: "error", Value: err.Error()})
		}

		log.Info("HTTP сервер остановлен")

		if err := messagingClient.Close(); err != nil {
			log.Error("Ошибка при закрытии Kafka",
				interfaces.LogField{Key: "error", Value: err.Error()})
		}

		if err := sessionStore.Close(); err != nil {
			log.Error("Ошибка при закрытии Redis",
				interfaces.LogField{Key: "error", Value: err.Error()})
		}

		close(done)
	}()

	<-done
	log.Info("Сервер корректно завершил работу")
}
