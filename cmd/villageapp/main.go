package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Apolo151/tourist-village-app-sub004/internal/app/dto"
	bookingapp "github.com/Apolo151/tourist-village-app-sub004/internal/app/services/booking"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/apartment"
	domainbooking "github.com/Apolo151/tourist-village-app-sub004/internal/domain/booking"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/user"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/village"
	"github.com/Apolo151/tourist-village-app-sub004/internal/infra/broker/kafka"
	"github.com/Apolo151/tourist-village-app-sub004/internal/infra/config"
	"github.com/Apolo151/tourist-village-app-sub004/internal/infra/db/mongo"
	ginserver "github.com/Apolo151/tourist-village-app-sub004/internal/infra/http/gin"
	"github.com/Apolo151/tourist-village-app-sub004/internal/infra/obs"
	"github.com/Apolo151/tourist-village-app-sub004/internal/infra/security"
	"github.com/Apolo151/tourist-village-app-sub004/internal/infra/storage/memory"
	"github.com/Apolo151/tourist-village-app-sub004/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	app, cleanup, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if app.store != nil {
		fixturesPath := getenv("INVENTORY_FIXTURES", defaultFixturesPath())
		if err := loadInventoryFixtures(app.store, fixturesPath, logger); err != nil {
			logger.Warn("inventory fixtures load failed", "error", err, "path", fixturesPath)
		}
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	ready    func() error
	// store is non-nil only in memory mode; fixtures seed through it.
	store *memory.Store
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, func(), error) {
	var (
		bookings     domainbooking.Repository
		apartments   apartment.Directory
		users        user.Repository
		villages     village.Directory
		dependencies domainbooking.DependencyCounter
		views        apartment.MultiView
		cleanups     []func()
	)
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	app := application{ready: func() error { return nil }}

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongo.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, cleanup, fmt.Errorf("mongo connect: %w", err)
		}
		cleanups = append(cleanups, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Close(closeCtx); err != nil {
				logger.Warn("mongo close failed", "error", err)
			}
		})
		if err := client.Ping(ctx); err != nil {
			return application{}, cleanup, fmt.Errorf("mongo ping: %w", err)
		}
		bookings = mongo.NewBookingRepository(client)
		apartments = mongo.NewApartmentDirectory(client)
		users = mongo.NewUserRepository(client)
		villages = mongo.NewVillageDirectory(client)
		dependencies = mongo.NewDependencyCounter(client)
		materializer := mongo.NewOccupancyViewMaterializer(client)
		views = append(views, materializer)
		app.ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		if len(cfg.KafkaBrokers) > 0 {
			consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, "occupancy-view-refresher", nil,
				kafka.RefreshHandler{View: materializer})
			if err != nil {
				return application{}, cleanup, fmt.Errorf("kafka consumer: %w", err)
			}
			cleanups = append(cleanups, func() {
				if err := consumer.Close(); err != nil {
					logger.Warn("kafka consumer close failed", "error", err)
				}
			})
			go func() {
				topic := cfg.KafkaTopicPrefix + kafka.RefreshTopic
				if err := consumer.Run(ctx, []string{topic}); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("refresh consumer stopped", "error", err)
				}
			}()
		}
	default:
		store := memory.NewStore()
		bookings = store.Bookings()
		apartments = store.Apartments()
		users = store.Users()
		villages = store.Villages()
		dependencies = store.Dependencies()
		app.store = store
	}

	var events bookingapp.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicPrefix, nil)
		if err != nil {
			return application{}, cleanup, fmt.Errorf("kafka producer: %w", err)
		}
		cleanups = append(cleanups, func() {
			if err := producer.Close(); err != nil {
				logger.Warn("kafka producer close failed", "error", err)
			}
		})
		events = &kafka.BookingEventPublisher{Producer: producer}
		views = append(views, &kafka.RefreshPublisher{Producer: producer})
	}

	var archiver bookingapp.ExportArchiver
	if cfg.S3Endpoint != "" {
		a, err := s3.NewArchiver(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, logger)
		if err != nil {
			return application{}, cleanup, fmt.Errorf("s3 archiver: %w", err)
		}
		archiver = a
	}

	var view apartment.OccupancyView
	if len(views) > 0 {
		view = views
	}

	service := &bookingapp.Service{
		Bookings:     bookings,
		Apartments:   apartments,
		Users:        users,
		Dependencies: dependencies,
		Conflicts:    &bookingapp.ConflictChecker{Bookings: bookings},
		Renters: &bookingapp.RenterResolver{
			Users:       users,
			Hasher:      security.BcryptHasher{},
			EmailDomain: cfg.RenterEmailDomain,
		},
		View:        view,
		Events:      events,
		Archiver:    archiver,
		Logger:      logger,
		ExportLimit: cfg.ExportLimit,
	}
	engine := &bookingapp.OccupancyEngine{
		Bookings:   bookings,
		Apartments: apartments,
		Villages:   villages,
		Logger:     logger,
	}
	assembler := dto.Assembler{
		Apartments: apartments,
		Users:      users,
		Villages:   villages,
	}

	app.handlers = ginserver.Handlers{
		Booking: ginserver.BookingHandler{
			Service:   service,
			Engine:    engine,
			Assembler: assembler,
		},
		Occupancy: ginserver.OccupancyHandler{Engine: engine},
	}
	return app, cleanup, nil
}

type inventoryFixtures struct {
	Villages []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"villages"`
	Users []struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"users"`
	Apartments []struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		VillageID int64  `json:"village_id"`
		Phase     int    `json:"phase"`
		OwnerID   int64  `json:"owner_id"`
	} `json:"apartments"`
}

// loadInventoryFixtures seeds the memory store with villages, owners and
// apartments so a dev instance has an inventory to book against.
func loadInventoryFixtures(store *memory.Store, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("inventory fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("inventory fixtures file empty", "path", path)
		return nil
	}

	var fixtures inventoryFixtures
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	for _, v := range fixtures.Villages {
		store.AddVillage(&village.Village{ID: village.ID(v.ID), Name: v.Name})
	}
	for _, u := range fixtures.Users {
		role, err := user.ParseRole(u.Role)
		if err != nil {
			logger.Error("fixture user invalid", "user_id", u.ID, "error", err)
			continue
		}
		store.AddUser(&user.User{
			ID:    user.ID(u.ID),
			Name:  u.Name,
			Email: user.NormalizeEmail(u.Email),
			Role:  role,
		})
	}
	for _, a := range fixtures.Apartments {
		store.AddApartment(&apartment.Apartment{
			ID:        apartment.ID(a.ID),
			Name:      a.Name,
			VillageID: village.ID(a.VillageID),
			Phase:     a.Phase,
			OwnerID:   user.ID(a.OwnerID),
		})
	}
	logger.Info("inventory fixtures imported",
		"villages", len(fixtures.Villages),
		"users", len(fixtures.Users),
		"apartments", len(fixtures.Apartments))
	return nil
}

func defaultFixturesPath() string {
	return filepath.Join("data", "inventory.json")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
