package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Freeeeeet/faculty_scheduler/internal/app"
	"github.com/Freeeeeet/faculty_scheduler/internal/config"
	"github.com/Freeeeeet/faculty_scheduler/internal/controller"
	"github.com/Freeeeeet/faculty_scheduler/internal/controller/handlers"
	"github.com/Freeeeeet/faculty_scheduler/internal/notification"
	"github.com/Freeeeeet/faculty_scheduler/internal/repository"
	"github.com/Freeeeeet/faculty_scheduler/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Scheduler stopped with error", zap.Error(err))
	}
	logger.Info("Scheduler stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
	if err != nil {
		return fmt.Errorf("create db pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	logger.Info("Connected to database")

	migrator, err := app.NewMigrator(pool, logger)
	if err != nil {
		return err
	}
	if err := migrator.Run(ctx); err != nil {
		migrator.Close()
		return err
	}
	migrator.Close()

	repos := repository.NewRepositories(pool)
	txm := repository.NewPostgresTxManager(pool)

	workdayStart, workdayEnd := cfg.WorkdayWindow()
	settings := service.Settings{
		Location:     cfg.Location(),
		SlotStep:     cfg.SlotStep(),
		WorkdayStart: workdayStart,
		WorkdayEnd:   workdayEnd,
		MaxQueryDays: cfg.MaxQueryDays,
	}

	scheduling := service.NewSchedulingService(repos, txm, settings, logger)
	classes := service.NewClassService(repos, txm, scheduling, settings, logger)
	services := handlers.Services{
		Users:      service.NewUserService(repos.Users, logger),
		Scheduling: scheduling,
		Meetings:   service.NewMeetingService(repos, txm, scheduling, settings, logger),
		Classes:    classes,
		Activities: service.NewActivityService(repos, scheduling, settings, logger),
		Timetable:  service.NewTimetableService(repos, txm, logger),
		Holidays:   service.NewHolidayService(repos, logger),
	}
	cmdHandlers := handlers.NewHandlers(services, cfg.Location(), logger)

	var (
		notifier      notification.Notifier
		botController *controller.BotController
	)
	if cfg.TelegramToken == "" {
		logger.Warn("TELEGRAM_TOKEN is not set, bot disabled and notifications go to the log")
		notifier = notification.NewLogNotifier(logger)
	} else {
		b, err := bot.New(cfg.TelegramToken, bot.WithDefaultHandler(cmdHandlers.HandleUnknown))
		if err != nil {
			return fmt.Errorf("create bot: %w", err)
		}
		notifier = notification.NewTelegramNotifier(b, logger)
		botController = controller.NewBotController(b, cmdHandlers, logger)
		if err := botController.RegisterHandlers(ctx); err != nil {
			return fmt.Errorf("register bot handlers: %w", err)
		}
	}

	dispatcher := notification.NewDispatcher(txm, notifier, cfg.OutboxBatchSize, logger)
	scheduler := app.NewScheduler(classes, dispatcher, app.SchedulerConfig{
		WeeksAhead:         cfg.GenerationWeeksAhead,
		GenerationInterval: cfg.GenerationInterval,
		OutboxInterval:     cfg.OutboxPollInterval,
	}, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logger.Info("Starting faculty scheduler",
		zap.String("environment", cfg.Environment),
		zap.Stringer("timezone", cfg.Location()),
		zap.Bool("bot_enabled", botController != nil),
	)

	if botController != nil {
		botController.Start(ctx)
		return nil
	}

	<-ctx.Done()
	return nil
}
