package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/biosecret/tasktracker/auth"
	"github.com/biosecret/tasktracker/config"
	"github.com/biosecret/tasktracker/database"
	"github.com/biosecret/tasktracker/events"
	"github.com/biosecret/tasktracker/handlers"
	"github.com/biosecret/tasktracker/logger"
	"github.com/biosecret/tasktracker/middleware"
	"github.com/biosecret/tasktracker/repository"
	"github.com/biosecret/tasktracker/router"
	"github.com/biosecret/tasktracker/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	shutdownTimeout = 10 * time.Second
	sseKeepAlive    = 15 * time.Second
)

// Deps là các thành phần đã khởi tạo mà ứng dụng Fiber cần
type Deps struct {
	Config *config.Config
	Log    zerolog.Logger
	Users  services.UserRepository
	Tasks  services.TaskRepository
	Broker *events.Broker
	// Publisher nhận mọi task event; mặc định là Broker
	Publisher events.Publisher
}

// NewFiberApp tạo ứng dụng Fiber với middleware và toàn bộ route
func NewFiberApp(d Deps) (*fiber.App, error) {
	if d.Broker == nil {
		d.Broker = events.NewBroker(d.Log)
	}
	if d.Publisher == nil {
		d.Publisher = d.Broker
	}

	codec := auth.NewTokenCodec(d.Config.JWTSecret, d.Config.TokenTTL)
	authSvc, err := services.NewAuthService(d.Users, codec, d.Config.BcryptCost, d.Log)
	if err != nil {
		return nil, err
	}
	taskSvc := services.NewTaskService(d.Tasks, d.Publisher, d.Log)

	// Tạo ứng dụng Fiber
	app := fiber.New(fiber.Config{
		AppName:               "tasktracker",
		ErrorHandler:          handlers.ErrorHandler(d.Log),
		DisableStartupMessage: d.Config.IsProduction(),
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: d.Config.AllowedOrigins(),
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Đính kèm middleware để xử lý lỗi và ghi log
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(d.Log))

	// Thiết lập route cho ứng dụng
	router.SetupRoutes(app, router.Handlers{
		Env:      d.Config.Env,
		Auth:     handlers.NewAuthHandler(authSvc, d.Log),
		Tasks:    handlers.NewTaskHandler(taskSvc, d.Log),
		Events:   handlers.NewEventsHandler(d.Broker, sseKeepAlive, d.Log),
		Verifier: codec,
		Log:      d.Log,
	})

	// Đính kèm Swagger
	config.AddSwaggerRoutes(app)

	return app, nil
}

// openStorage chọn store theo STORAGE; hàm trả về dùng để đóng kết nối
func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (services.UserRepository, services.TaskRepository, func(), error) {
	if cfg.Storage == config.StorageMemory {
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		return repository.NewMemoryUsers(), repository.NewMemoryTasks(), func() {}, nil
	}

	// Khởi động PostgreSQL
	db, err := database.OpenPostgreSQL(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		database.ClosePostgreSQL(db, log)
		return nil, nil, nil, err
	}

	closeFn := func() { database.ClosePostgreSQL(db, log) }
	return repository.NewUserStore(db), repository.NewTaskStore(db), closeFn, nil
}

// connectMQTT bật cầu nối MQTT khi có MQTT_URL. Lỗi kết nối chỉ được ghi log.
func connectMQTT(cfg *config.Config, log zerolog.Logger) *events.MQTTPublisher {
	if cfg.MQTTURL == "" {
		return nil
	}
	client, err := events.ConnectMQTT(cfg.MQTTURL, "tasktracker-"+uuid.NewString()[:8])
	if err != nil {
		log.Error().Err(err).Msg("MQTT bridge disabled")
		return nil
	}
	log.Info().Str("prefix", cfg.MQTTTopicPrefix).Msg("MQTT bridge connected")
	return events.NewMQTTPublisher(client, cfg.MQTTTopicPrefix, log)
}

// SetupAndRunApp khởi động ứng dụng Fiber và chờ tín hiệu dừng
func SetupAndRunApp() error {
	// Load cấu hình từ file .env và biến môi trường
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Env, cfg.LogLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, tasks, closeStore, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	// Đảm bảo kết nối với cơ sở dữ liệu được đóng sau khi ứng dụng kết thúc
	defer closeStore()

	broker := events.NewBroker(log)
	defer broker.Close()

	publishers := events.Fanout{broker}
	if mp := connectMQTT(cfg, log); mp != nil {
		defer mp.Close()
		publishers = append(publishers, mp)
	}

	app, err := NewFiberApp(Deps{
		Config:    cfg,
		Log:       log,
		Users:     users,
		Tasks:     tasks,
		Broker:    broker,
		Publisher: publishers,
	})
	if err != nil {
		return err
	}

	// Lắng nghe trên cổng chỉ định
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("storage", cfg.Storage).Msg("Server starting")
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	// đóng các stream SSE trước để shutdown không phải chờ
	broker.Close()
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
