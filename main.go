package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"natours/internal/auth"
	intconfig "natours/internal/config"
	intdb "natours/internal/db"
	router "natours/internal/http"
	"natours/internal/repositories"
	"natours/internal/services"
	"natours/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	log, err := utils.NewLogger(utils.LogConfig{Level: env.LogLevel, Dev: env.LogDev, File: env.LogFile})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if env.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := intconfig.ConnectDB(ctx, env.DatabaseDSN)
	if err != nil {
		cancel()
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()
	err = intdb.EnsureSchema(ctx, db)
	cancel()
	if err != nil {
		log.Fatal("schema setup failed", zap.Error(err))
	}

	tokens, err := auth.NewTokenService([]byte(env.JWTSecret), env.JWTExpiresIn)
	if err != nil {
		log.Fatal("token service", zap.Error(err))
	}

	r, err := router.NewRouter(router.Deps{
		Env: env,
		DB:  db,
		Log: log,
		Auth: services.AuthService{
			Users:  repositories.UserRepository{DB: db},
			Tokens: tokens,
			Hasher: auth.NewHasher(env.BcryptCost),
			Log:    log,
		},
	})
	if err != nil {
		log.Fatal("router setup failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", env.AppAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
		return
	}

	log.Info("server stopped")
}
