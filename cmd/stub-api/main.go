package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/aidea/website-api/internal/api"
	"github.com/aidea/website-api/internal/config"
	"github.com/aidea/website-api/internal/mailer"
	"github.com/aidea/website-api/internal/repository/memory"
	"github.com/aidea/website-api/internal/service/contact"
)

func main() {
	log.Println("╔════════════════════════════════════════════════════════════╗")
	log.Println("║  WARNING: This is a STUB API for local testing ONLY.       ║")
	log.Println("║  Submissions live in memory and emails are only logged.    ║")
	log.Println("║                                                            ║")
	log.Println("║  For the REAL server, run:                                 ║")
	log.Println("║    go run ./cmd/server                                     ║")
	log.Println("╚════════════════════════════════════════════════════════════╝")

	port := 8080
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			port = p
		}
	}

	repo := memory.NewContactRepo()
	repo.RejectDuplicates = os.Getenv("STUB_REJECT_DUPLICATES") == "true"

	notifier, err := mailer.NewNotifier(mailer.NewLogSender(), mailer.NotifierConfig{
		PublicBaseURL:   "http://localhost:3000",
		AdminRecipients: []string{"admin@localhost"},
	})
	if err != nil {
		log.Fatalf("Failed to load email templates: %v", err)
	}

	svc := contact.NewService(repo, notifier, contact.Options{
		StrictValidation: os.Getenv("STUB_STRICT_VALIDATION") == "true",
	})

	server := api.NewServer(config.ServerConfig{
		AllowedOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		ExposeErrorDetails: true,
	}, api.Deps{
		Contact:      svc,
		MailProvider: "log",
		Identity:     "cmd/stub-api",
	})

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("localhost:%d", port)
		log.Printf("Stub API listening on http://%s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Printf("Shutting down stub API (%d submissions received)", len(repo.All()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
