package main

import (
	"time"

	"github.com/sugarstop/sugarstop/config"
	"github.com/sugarstop/sugarstop/models"
	"github.com/sugarstop/sugarstop/routes"
	"github.com/sugarstop/sugarstop/services"
	"github.com/sugarstop/sugarstop/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.CheckIn{},
		&models.ChallengeEnrollment{},
		&models.ChallengeTask{},
		&models.Note{},
		&models.Recipe{},
		&models.DailyActivity{},
	)

	clock := services.SystemClock()
	store := services.NewGormStore(db, clock)
	tracker := services.NewTracker(store, clock, utils.Logger)

	// The completion client is optional: with no key configured every
	// AI-backed feature serves its canned fallback text instead.
	var gen services.Generator
	if cfg.AIAPIKey != "" {
		client, err := services.NewLLMClient(services.LLMConfig{
			APIKey:      cfg.AIAPIKey,
			Model:       cfg.AIModel,
			BaseURL:     cfg.AIBaseURL,
			MaxTokens:   cfg.AIMaxTokens,
			Temperature: cfg.AITemperature,
			Timeout:     time.Duration(cfg.AITimeoutSec) * time.Second,
		})
		if err != nil {
			utils.Sugar.Warnf("ai client init failed, serving fallbacks: %v", err)
		} else {
			gen = client
		}
	}

	// Redis backs the shared cache when reachable; otherwise conversation
	// state and recipe caching run in process memory.
	var cache services.Cache = services.NewMemoryCache()
	if rc := utils.GetRedis(); rc != nil {
		cache = services.NewRedisCache(rc)
	}

	motivation := services.NewMotivationService(gen, cfg.PaymentCardNumber, utils.Logger)
	states := services.NewStateService(cache)
	tasks := services.NewTaskService(db, gen, clock, utils.Logger)
	recipes := services.NewRecipeService(db, gen, cache, utils.Logger)

	var notifier services.Notifier = services.NopNotifier{}
	if cfg.NotifyWebhookURL != "" {
		notifier = services.NewWebhookNotifier(cfg.NotifyWebhookURL, cfg.NotifyToken)
	}

	scheduler := services.NewScheduler(db, store, tasks, notifier, clock, services.SchedulerConfig{
		ReminderHour:   cfg.ReminderHour,
		ReminderMinute: cfg.ReminderMinute,
		TaskWeekday:    time.Weekday(cfg.TaskWeekday),
		TaskHour:       cfg.TaskHour,
		TaskMinute:     cfg.TaskMinute,
		Zone:           time.FixedZone("local", cfg.SchedulerZoneMin*60),
	}, utils.Logger)
	scheduler.Start()

	// Prune old activity rows once a day (best-effort)
	utils.StartActivityCleaner(24 * time.Hour)

	r := routes.SetupRouter(routes.Deps{
		DB:         db,
		Tracker:    tracker,
		Motivation: motivation,
		States:     states,
		Tasks:      tasks,
		Recipes:    recipes,
	})

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r, scheduler.Stop); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
