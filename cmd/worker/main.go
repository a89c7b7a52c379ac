package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sellerhub/backoffice/catalog-service/config"
	"github.com/sellerhub/backoffice/catalog-service/internal/adapters/logger"
	"github.com/sellerhub/backoffice/catalog-service/internal/adapters/messaging"
	"github.com/sellerhub/backoffice/catalog-service/internal/cache"
	"github.com/sellerhub/backoffice/catalog-service/pkg/interfaces"
)

// Метрики для Prometheus
var (
	actionsReplayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_actions_replayed_total",
		Help: "Общее количество воспроизведенных отложенных действий",
	}, []string{"type", "status"})

	actionReplayDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "worker_action_replay_duration_seconds",
		Help:    "Длительность воспроизведения действия",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})
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
	log.Info("Инициализация воркера воспроизведения",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName + "-worker"},
		interfaces.LogField{Key: "version", Value: cfg.Version},
		interfaces.LogField{Key: "env", Value: cfg.ENV},
	)

	// HTTP сервер для метрик и health-проб
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		log.Info("Запуск HTTP сервера для метрик",
			interfaces.LogField{Key: "addr", Value: addr})

		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error("Ошибка запуска HTTP сервера для метрик",
				interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}()

	messagingClient, err := messaging.NewKafkaMessaging(
		cfg.Kafka.Brokers,
		cfg.Kafka.GroupID+"-worker",
		log,
	)
	if err != nil {
		log.Fatal("Ошибка инициализации системы обмена сообщениями",
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
	defer messagingClient.Close()
	log.Info("Система обмена сообщениями инициализирована")

	unsubscribe, err := messagingClient.Subscribe(ctx, cfg.Kafka.ActionsTopic, replayAction(log))
	if err != nil {
		log.Fatal("Ошибка подписки на тему отложенных действий",
			interfaces.LogField{Key: "topic", Value: cfg.Kafka.ActionsTopic},
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
	log.Info("Подписка оформлена",
		interfaces.LogField{Key: "topic", Value: cfg.Kafka.ActionsTopic})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Получен сигнал завершения, останавливаем воркер...")

	if err := unsubscribe(); err != nil {
		log.Error("Ошибка отмены подписки",
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
	cancel()

	log.Info("Воркер корректно завершил работу")
}

// replayAction возвращает обработчик отложенных действий.
// Пока это журналирование с метриками: действия фиксируются,
// фактическое повторение вызовов API продуктов сюда еще не подключено.
func replayAction(log interfaces.LoggerPort) interfaces.MessageHandler {
	return func(ctx context.Context, msg *interfaces.Message) error {
		start := time.Now()

		var action cache.PendingAction
		if err := json.Unmarshal(msg.Value, &action); err != nil {
			actionsReplayed.WithLabelValues("unknown", "malformed").Inc()
			return fmt.Errorf("ошибка десериализации действия: %w", err)
		}

		log.InfoWithContext(ctx, "Воспроизведение отложенного действия",
			interfaces.LogField{Key: "action_id", Value: action.ID},
			interfaces.LogField{Key: "type", Value: action.Type},
			interfaces.LogField{Key: "seller_id", Value: msg.SellerID},
			interfaces.LogField{Key: "created_at", Value: action.CreatedAt},
		)

		actionsReplayed.WithLabelValues(action.Type, "ok").Inc()
		actionReplayDuration.WithLabelValues(action.Type).Observe(time.Since(start).Seconds())

		return nil
	}
}
