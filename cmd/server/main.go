package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/vamosjogar/sports-meetup-api/internal/config"
	"github.com/vamosjogar/sports-meetup-api/internal/database"
	"github.com/vamosjogar/sports-meetup-api/internal/handler"
	"github.com/vamosjogar/sports-meetup-api/internal/queue"
	"github.com/vamosjogar/sports-meetup-api/internal/repository"
	"github.com/vamosjogar/sports-meetup-api/internal/router"
	"github.com/vamosjogar/sports-meetup-api/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env always wins

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is absent; the API still serves

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	activities := repository.NewActivityRepo(db)
	enrollments := repository.NewEnrollmentRepo(db)

	publisher := service.NewAMQPPublisher(log)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	activityH := handler.NewActivityHandler(activities)
	browseH := handler.NewBrowseHandler(activities, enrollments)
	enrollH := handler.NewEnrollmentHandler(enrollments, activities, publisher, log)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus: true,
		LogMethod: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Err(v.Error).
				Msg("request")
			return nil
		},
	}))

	router.RegisterBase(e)
	router.RegisterAuth(e, authH)
	router.RegisterBrowse(e, browseH, rdb)
	router.RegisterActivities(e, activityH, enrollH, cfg.JWTSecret)

	go func() {
		if err := queue.StartEnrollmentConsumer(log); err != nil {
			log.Warn().Err(err).Msg("enrollment consumer stopped")
		}
	}()

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
