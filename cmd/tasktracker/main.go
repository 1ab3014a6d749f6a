package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tasktracker/internal/config"
	"tasktracker/internal/repository"
	"tasktracker/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	taskRepo := repository.NewTaskRepository(db)
	recurrenceSvc := service.NewRecurrenceService(taskRepo)

	scheduler := service.NewSchedulerService(time.Local)
	if _, err := scheduler.ScheduleInterval(cfg.ScanInterval, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := recurrenceSvc.Scan(jobCtx); err != nil {
			log.Printf("recurrence scan: %v", err)
		}
	}); err != nil {
		log.Fatalf("schedule recurrence scan: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("Task tracker started.")
	<-ctx.Done()
	log.Println("Shutdown complete.")
}
