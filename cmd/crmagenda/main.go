package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crm-agenda/internal/cache"
	"crm-agenda/internal/config"
	"crm-agenda/internal/digest"
	"crm-agenda/internal/repository"
	"crm-agenda/internal/service"
)

const (
	cleanupInterval = time.Hour
	jobTimeout      = 30 * time.Second
	cacheUser       = "default"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	taskRepo := repository.NewTaskRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)

	overlay := cache.NewReadState(cache.NewDisk(cfg.CacheDir), cacheUser, nil)
	feedSvc := service.NewFeedService(taskRepo, apptRepo, overlay, nil)
	cleanupSvc := service.NewCleanupService(taskRepo, apptRepo, nil)

	scheduler := service.NewScheduler(time.Local)

	if _, err := scheduler.ScheduleInterval(cfg.RefreshInterval, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if _, err := feedSvc.Load(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[warn] refresh: %v", err)
		}
	}); err != nil {
		log.Fatalf("schedule refresh: %v", err)
	}

	if _, err := scheduler.ScheduleInterval(cleanupInterval, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		purged, err := cleanupSvc.Sweep(jobCtx)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[warn] cleanup: %v", err)
			return
		}
		if purged > 0 {
			log.Printf("[info] cleanup: purged %d expired items", purged)
		}
	}); err != nil {
		log.Fatalf("schedule cleanup: %v", err)
	}

	if cfg.TelegramToken != "" {
		sender, err := digest.New(cfg.TelegramToken, cfg.DigestChatID, feedSvc, nil)
		if err != nil {
			log.Fatalf("digest: %v", err)
		}
		if _, err := scheduler.ScheduleDaily(cfg.DigestTime, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			if err := sender.SendDaily(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("[warn] digest: %v", err)
			}
		}); err != nil {
			log.Fatalf("schedule digest: %v", err)
		}
	}

	scheduler.Start()
	defer scheduler.Stop()

	log.Println("CRM agenda engine started.")
	<-ctx.Done()
	log.Println("Shutdown complete.")
}
