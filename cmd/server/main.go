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

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/aidea/website-api/internal/api"
	"github.com/aidea/website-api/internal/config"
	"github.com/aidea/website-api/internal/mailer"
	"github.com/aidea/website-api/internal/pkg/logger"
	"github.com/aidea/website-api/internal/repository/postgres"
	"github.com/aidea/website-api/internal/service/contact"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale/stub processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := net.JoinHostPort(host, fmt.Sprint(port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
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

// withConnectTimeout adds a connect_timeout to a postgres URL that lacks one.
func withConnectTimeout(dsn string) string {
	if strings.Contains(dsn, "connect_timeout") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "connect_timeout=5"
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := withConnectTimeout(cfg.URL)
	log.Printf("DB URL host portion: ...@%s/...", extractHost(dsn))

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(30 * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		// Keep the pool: the store may come up after the server does.
		log.Printf("Warning: database ping failed: %v", err)
	} else {
		log.Println("Connected to database")
	}
	return db, nil
}

func main() {
	log.Println("╔════════════════════════════════════════════════════════════╗")
	log.Println("║  AIDEA Website API (cmd/server/main.go)                    ║")
	log.Println("║  Contact form: Postgres store + transactional email        ║")
	log.Println("╚════════════════════════════════════════════════════════════╝")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	logger.SetRedactPII(cfg.Log.Redact())

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	ctx := context.Background()

	// Contact store. Without it the server still starts and reports
	// server_misconfigured on every submission.
	var db *sql.DB
	var repo contact.Repository
	if cfg.StoreConfigured() {
		db, err = openDatabase(ctx, cfg.Database)
		if err != nil {
			log.Printf("Warning: failed to open database: %v", err)
		} else {
			defer db.Close()
			repo = postgres.NewContactRepo(db)
		}
	} else {
		log.Println("Warning: DATABASE_URL not set — contact submissions will be rejected")
	}

	// Mail transport. Sends are best effort, so a bad mail config only
	// turns every emailStatus flag false.
	var notifier contact.Notifier
	mailProvider := ""
	sender, err := mailer.New(ctx, cfg.Mail)
	if err != nil {
		log.Printf("Warning: mail transport disabled: %v", err)
	} else {
		n, err := mailer.NewNotifier(sender, mailer.NotifierConfig{
			Brand:           cfg.Mail.FromName,
			PublicBaseURL:   cfg.Server.PublicBaseURL,
			AdminRecipients: cfg.Mail.AdminRecipients,
			ReplyTo:         cfg.Mail.ReplyTo,
		})
		if err != nil {
			log.Fatalf("Failed to load email templates: %v", err)
		}
		notifier = n
		mailProvider = cfg.Mail.Provider
		log.Printf("Mail transport: %s (%d admin recipients)", mailProvider, len(cfg.Mail.AdminRecipients))
	}

	svc := contact.NewService(repo, notifier, contact.Options{
		StoreTimeout:          cfg.Database.StoreTimeout(),
		MailTimeout:           cfg.Mail.Timeout(),
		StrictValidation:      cfg.Contact.StrictValidation,
		ParallelNotifications: cfg.Contact.ParallelNotifications,
	})

	server := api.NewServer(cfg.Server, api.Deps{
		Contact:      svc,
		DB:           db,
		MailProvider: mailProvider,
		Identity:     "cmd/server",
	})

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := net.JoinHostPort(host, fmt.Sprint(port))
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Println("All services initialized — server is ready")

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
