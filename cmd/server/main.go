package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ignite/email-subscribers/internal/api"
	"github.com/ignite/email-subscribers/internal/config"
	"github.com/ignite/email-subscribers/internal/domain"
	"github.com/ignite/email-subscribers/internal/mailer"
	"github.com/ignite/email-subscribers/internal/pkg/distlock"
	"github.com/ignite/email-subscribers/internal/pkg/logger"
	"github.com/ignite/email-subscribers/internal/repository/postgres"
	"github.com/ignite/email-subscribers/internal/service/activity"
	"github.com/ignite/email-subscribers/internal/service/contact"
	"github.com/ignite/email-subscribers/internal/workflow"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func extractHost(dsn string) string {
	at := strings.Index(dsn, "@")
	if at < 0 {
		return "(unknown)"
	}
	rest := dsn[at+1:]
	slash := strings.Index(rest, "/")
	if slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config/config.yaml"
}

func openDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database url is required (set DATABASE_URL)")
	}
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", extractHost(cfg.URL), err)
	}
	return db, nil
}

// openRedis returns nil when Redis is not configured or unreachable.
func openRedis(ctx context.Context, url string) *redis.Client {
	if url == "" {
		logger.Info("redis not configured, contact admissions run unlocked")
		return nil
	}
	var client *redis.Client
	opts, err := redis.ParseURL(url)
	if err != nil {
		client = redis.NewClient(&redis.Options{Addr: url})
	} else {
		client = redis.NewClient(opts)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis connection failed, contact admissions run unlocked", "error", err.Error())
		client.Close()
		return nil
	}
	logger.Info("redis connected", "addr", client.Options().Addr)
	return client
}

func main() {
	cfg, err := config.LoadFromEnv(configPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.ShouldRedactPII())

	host := cfg.Server.GetHost()
	if err := checkPortAvailable(host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := openDB(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("database connected", "host", extractHost(cfg.Database.URL))

	redisClient := openRedis(ctx, cfg.Redis.URL)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Contacts and list membership. Without Redis admissions run unlocked;
	// the upsert and the ON CONFLICT membership insert are idempotent.
	contactOpts := []contact.Option{
		contact.WithMembershipDefaults(
			domain.MembershipStatus(cfg.Workflows.DefaultListStatus),
			domain.ParseOptinType(cfg.Workflows.DefaultOptinType),
		),
	}
	if redisClient != nil {
		locker := distlock.NewLocker(redisClient, nil, "es:admit:", cfg.Redis.LockTTL())
		contactOpts = append(contactOpts, contact.WithLocks(locker.For))
	}
	contactSvc := contact.NewService(postgres.NewContactRepo(db), contactOpts...)

	// Workflow actions
	types := workflow.NewDefaultDataTypes()
	actions := workflow.NewActionRegistry()
	actions.Register(workflow.ActionAddToList, workflow.AddToListFactory(types, contactSvc.Handler()))

	if cfg.SES.Enabled {
		sesMailer, err := mailer.NewSESMailer(ctx, mailer.Options{
			Region:           cfg.SES.Region,
			AccessKey:        cfg.SES.AccessKey,
			SecretKey:        cfg.SES.SecretKey,
			FromEmail:        cfg.SES.FromEmail,
			FromName:         cfg.SES.FromName,
			ConfigurationSet: cfg.SES.ConfigurationSet,
		})
		if err != nil {
			logger.Error("ses mailer disabled", "error", err.Error())
		} else {
			actions.Register(workflow.ActionSendEmail, workflow.SendEmailFactory(types, sesMailer))
			logger.Info("send_email action enabled", "region", cfg.SES.Region)
		}
	}

	store := workflow.NewStore(db)
	engine := workflow.NewEngine(store, actions)
	activitySvc := activity.NewService(postgres.NewActivityRepo(db))

	handlers := api.NewHandlers(engine, contactSvc, store, activitySvc, types, actions)
	server := api.NewServer(cfg.Server, handlers, api.NewHealthChecker(db, redisClient))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, cfg.Server.Port)
		logger.Info("starting server", "addr", addr, "actions", strings.Join(actions.Names(), ","))
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err.Error())
	}
	logger.Info("server stopped")
}
