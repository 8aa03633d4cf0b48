package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"evdock-sim/handlers"
	"evdock-sim/models"
	"evdock-sim/services"

	"github.com/spf13/cobra"
)

var (
	servePort      string
	serveModelsDir string
	serveIdleTTL   time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "HTTP/WebSocket 서버 실행",
	RunE:  runServe,
}

func init() {
	addServeFlags(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&servePort, "port", "", "listen port (default: $PORT or 3000)")
	cmd.Flags().StringVar(&serveModelsDir, "models", "assets/models", "directory with robot/car/obstacle 3D models")
	cmd.Flags().DurationVar(&serveIdleTTL, "idle-ttl", 30*time.Minute, "remove paused sessions without clients after this long")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := services.LoadServerConfig()
	if servePort != "" {
		cfg.Port = servePort
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB (선택)
	db, err := services.OpenDatabase(cfg)
	if err != nil {
		return fmt.Errorf("DB 초기화 실패: %w", err)
	}

	// 로깅 시스템: LOG_FLUSH_SIZE 개마다 또는 LOG_FLUSH_INTERVAL 마다 일괄 저장
	logBuffer := services.NewLogBuffer(db, cfg.LogFlushSize, cfg.LogFlushInterval)
	logBuffer.Start()
	defer logBuffer.Stop()

	// Redis 스냅샷 캐시 (선택)
	var cache *services.SnapshotCache
	if cfg.RedisAddr != "" {
		client, err := services.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			log.Printf("⚠️ %v - 스냅샷 캐시 없이 실행합니다", err)
		} else {
			defer client.Close()
			cache = services.NewSnapshotCache(client, cfg.SnapshotTTL)
			log.Printf("✅ Redis 스냅샷 캐시 연결: %s (TTL %v)", cfg.RedisAddr, cfg.SnapshotTTL)
		}
	}

	// 해설 LLM (선택)
	var rewriter services.CaptionRewriter
	if llm := services.NewLLMService(cfg.OllamaURL, cfg.OllamaModel); llm != nil {
		rewriter = llm
	}

	simCfg := models.DefaultSimConfig()
	sessions := handlers.NewSessionManager(ctx, handlers.ManagerDeps{
		BaseConfig: simCfg,
		FrameRate:  cfg.FrameRate,
		Logs:       logBuffer,
		Cache:      cache,
		Rewriter:   rewriter,
	})
	defer sessions.Shutdown()

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sessions.CleanupIdle(serveIdleTTL)
			}
		}
	}()

	api := &handlers.API{
		Sessions: sessions,
		Layouts:  services.NewLayoutGenerator(0),
		Models:   services.NewModelLoader(serveModelsDir),
		Cache:    cache,
		Config:   simCfg,
	}
	if db != nil {
		api.Logs = services.NewLogStore(db)
	}

	app := handlers.NewApp(api, cfg.AllowOrigins, true)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + cfg.Port)
	}()

	log.Printf("🚀 서버 시작: http://localhost:%s", cfg.Port)
	log.Printf("📡 WebSocket: ws://localhost:%s/websocket/sim/:id", cfg.Port)
	log.Printf("🧭 세션 API: POST http://localhost:%s/api/sessions", cfg.Port)
	log.Printf("💾 로그 API: GET http://localhost:%s/api/logs/*", cfg.Port)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Println("🛑 종료 신호 수신, 서버를 정리합니다...")
		return app.ShutdownWithTimeout(5 * time.Second)
	}
}
