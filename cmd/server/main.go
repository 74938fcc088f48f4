package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"assetwatch/internal/config"
	"assetwatch/internal/handler"
	"assetwatch/internal/loader"
	"assetwatch/internal/mail"
	"assetwatch/internal/probe"
	"assetwatch/internal/repository/sqlite"
	"assetwatch/internal/scanner"
	"assetwatch/internal/scheduler"
	"assetwatch/internal/service"
	"assetwatch/internal/watcher"
)

func main() {
	// Command line flags override the config file
	configPath := flag.String("config", "", "Config file path (default: search standard locations)")
	addr := flag.String("addr", "", "HTTP listen address")
	dbPath := flag.String("db", "", "SQLite database path")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting AssetWatch server...")

	var (
		cfg  *config.Config
		from string
		err  error
	)
	if *configPath != "" {
		cfg, from, err = config.LoadFromPath(*configPath)
	} else {
		cfg, from, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if from != "" {
		log.Printf("Config loaded from %s", from)
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	// Initialize SQLite repository
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer repo.Close()
	log.Printf("Database opened: %s", cfg.Database.Path)

	// Initialize event bus with a log consumer
	eventBus := service.NewEventBus()
	events := make(chan service.Event, 64)
	eventBus.Subscribe(events)
	go func() {
		for ev := range events {
			log.Printf("Event: %s %+v", ev.Type, ev.Payload)
		}
	}()

	// Probe capability is selected once, at startup
	prober := probe.New(probe.Config{
		Timeout: cfg.Scan.ProbeTimeout.Duration(),
		UseNmap: cfg.Scan.UseNmap,
	})
	subnetScanner := scanner.New(prober, cfg.Scan.MaxConcurrent)

	var sender mail.Sender = mail.Disabled{}
	if cfg.SMTP.Host != "" {
		sender = mail.NewSMTPSender(cfg.SMTP)
		log.Printf("Mail delivery via %s", cfg.SMTP.Host)
	}

	// Initialize services
	assetSvc := service.NewAssetService(repo, eventBus)
	scanSvc := service.NewScanService(subnetScanner, repo, eventBus)
	overdueSvc := service.NewOverdueService(repo, sender, eventBus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Seed inventory, and re-import on file change when configured
	if cfg.Inventory.Path != "" {
		importInventory := func() {
			result, err := loader.ImportFile(ctx, repo, cfg.Inventory.Path)
			if err != nil {
				log.Printf("Inventory import failed: %v", err)
				return
			}
			log.Printf("Inventory imported: %d assets created, %d updated, %d custodians created",
				result.AssetsCreated, result.AssetsUpdated, result.CustodiansCreated)
			eventBus.Publish(service.Event{Type: service.EventInventoryReloaded, Payload: result})
		}
		importInventory()

		if cfg.Inventory.Watch {
			go func() {
				w := watcher.New(cfg.Inventory.Path, importInventory)
				if err := w.Watch(ctx); err != nil && err != context.Canceled {
					log.Printf("Inventory watcher stopped: %v", err)
				}
			}()
		}
	}

	// Background jobs
	go scheduler.New("overdue check", cfg.Overdue.Interval.Duration(),
		scheduler.TaskFunc(func(ctx context.Context) error {
			_, err := overdueSvc.Run(ctx)
			return err
		})).Start(ctx)

	if cfg.Scan.Subnet != "" {
		go scheduler.New("subnet scan", cfg.Scan.Interval.Duration(),
			scheduler.TaskFunc(func(ctx context.Context) error {
				_, err := scanSvc.Scan(ctx, cfg.Scan.Subnet)
				return err
			})).Start(ctx)
	}

	// Initialize HTTP handlers
	api := handler.New(assetSvc, scanSvc, overdueSvc, repo)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", api.Health)

	// Asset endpoints
	mux.HandleFunc("GET /api/assets", api.ListAssets)
	mux.HandleFunc("POST /api/assets", api.CreateAsset)
	mux.HandleFunc("GET /api/assets/{id}", api.GetAsset)
	mux.HandleFunc("PUT /api/assets/{id}", api.UpdateAsset)
	mux.HandleFunc("POST /api/assets/{id}/status", api.SetAssetStatus)
	mux.HandleFunc("POST /api/assets/{id}/issue", api.IssueAsset)
	mux.HandleFunc("POST /api/assets/{id}/return", api.ReturnAsset)

	// Custodian endpoints
	mux.HandleFunc("GET /api/custodians", api.ListCustodians)
	mux.HandleFunc("POST /api/custodians", api.CreateCustodian)
	mux.HandleFunc("GET /api/custodians/{id}/notifications", api.ListNotifications)

	// Assignment endpoints
	mux.HandleFunc("GET /api/assignments", api.ListAssignments)

	// Notification endpoints
	mux.HandleFunc("POST /api/notifications/{id}/read", api.MarkNotificationRead)

	// Audit trail
	mux.HandleFunc("GET /api/audit", api.ListAudit)

	// Discovery and jobs
	mux.HandleFunc("POST /api/scan", api.Scan)
	mux.HandleFunc("POST /api/overdue-check", api.OverdueCheck)

	// Apply middleware
	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
	)

	// Create server. The write timeout must cover a synchronous /24
	// scan at the maximum probe timeout.
	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      finalHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
