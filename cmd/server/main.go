package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/morphea/morphea-backend/internal/config"
	"github.com/morphea/morphea-backend/internal/database"
	"github.com/morphea/morphea-backend/internal/handler"
	"github.com/morphea/morphea-backend/internal/interpreter"
	"github.com/morphea/morphea-backend/internal/mailer"
	"github.com/morphea/morphea-backend/internal/middleware"
	"github.com/morphea/morphea-backend/internal/queue"
	"github.com/morphea/morphea-backend/internal/repository"
	"github.com/morphea/morphea-backend/internal/router"
	queue_publisher "github.com/morphea/morphea-backend/internal/service"
)

func main() {
	// .env is optional; in production everything comes from the real env.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	subs := repository.NewSubscriptionRepo(db)
	dreams := repository.NewDreamRepo(db)

	interp := interpreter.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel)
	if cfg.OpenAIKey == "" {
		log.Println("warning: OPENAI_API_KEY not set; interpretation requests will fail upstream")
	}

	// The email consumer runs in-process. Without SMTP settings the
	// events stay in the broker until a configured instance drains them.
	if cfg.SMTPHost != "" {
		m := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SenderName, cfg.ArchiveBcc)
		go func() {
			if err := queue.StartDreamConsumer(m); err != nil {
				log.Printf("dream consumer stopped: %v", err)
			}
		}()
	} else {
		log.Println("warning: SMTP_SERVER not set; interpretation emails will not be delivered by this instance")
	}

	e := echo.New()

	// Redis is optional infrastructure: when unreachable both the rate
	// limiter and the response cache turn into pass-throughs. The limiter
	// is handed to the router rather than mounted globally so protected
	// groups can run it after JWTAuth and key buckets per user.
	rdb := config.NewRedisClient()
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	var cache echo.MiddlewareFunc
	if rdb != nil {
		cache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	}

	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	subHandler := handler.NewSubscriptionHandler(users, subs)
	dreamHandler := handler.NewDreamHandler(subs, dreams, interp, queue_publisher.PublishDreamInterpreted)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, limiter)
	router.RegisterAPI(e, subHandler, dreamHandler, cfg.JWTSecret, users, cache, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
