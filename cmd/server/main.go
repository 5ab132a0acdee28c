package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jengzang/accel-dashboard-go/internal/api"
	"github.com/jengzang/accel-dashboard-go/internal/config"
	"github.com/jengzang/accel-dashboard-go/internal/healthapi"
	"github.com/jengzang/accel-dashboard-go/internal/middleware"
	"github.com/jengzang/accel-dashboard-go/internal/session"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 加载配置
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := healthapi.NewClient(cfg.APIBaseURL, cfg.APITimeout, cfg.APIRetries)
	sessions := session.NewManager(cfg.SecretKey, cfg.SessionTTL, cfg.SecureCookies())

	limiter := middleware.NewRateLimiter(cfg.LoginRateLimit, time.Minute)
	go limiter.Run(ctx.Done())

	// 初始化路由
	router, err := api.SetupRouter(cfg, api.Deps{
		Auth:     client,
		Source:   client,
		Sessions: sessions,
		Limiter:  limiter,
	})
	if err != nil {
		log.Fatal("Failed to set up router:", err)
	}

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.APITimeout*time.Duration(cfg.APIRetries+1) + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		// 启动服务器
		log.Printf("Server starting on %s (env=%s, api=%s)", cfg.Port, cfg.Env, cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Printf("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
		return
	}
	log.Printf("Server stopped")
}
