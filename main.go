package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dcode-github/homlet/cache"
	"github.com/dcode-github/homlet/config"
	"github.com/dcode-github/homlet/controllers"
	"github.com/dcode-github/homlet/locks"
	"github.com/dcode-github/homlet/routes"
	"github.com/dcode-github/homlet/services"
	"github.com/dcode-github/homlet/store"
	"github.com/dcode-github/homlet/utils"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

const agentLockTTL = 10 * time.Second

func openStore(cfg *config.Config) (store.Store, func(), error) {
	if cfg.Store == "memory" {
		log.Println("Using in-memory store")
		return store.NewMemoryStore(), func() {}, nil
	}

	client, err := config.ConnectDB(cfg.MongoURI)
	if err != nil {
		return nil, nil, err
	}
	mongoStore := store.NewMongoStore(client.Database(cfg.DBName))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := mongoStore.EnsureIndexes(ctx); err != nil {
		config.CloseDBConnection(client)
		return nil, nil, err
	}
	return mongoStore, func() { config.CloseDBConnection(client) }, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, closeDB, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}
	defer closeDB()

	var (
		listingCache cache.ListingCache = cache.Nop{}
		locker       locks.Locker       = locks.NewLocalLocker()
	)
	if cfg.RedisAddr != "" {
		redisClient, err := config.ConnectRedis(cfg.RedisAddr, cfg.RedisPass)
		if err != nil {
			log.Fatalf("%v", err)
		}
		defer redisClient.Close()
		listingCache = cache.NewRedisListingCache(redisClient, cfg.ListingCacheTTL)
		locker = locks.NewRedisLocker(redisClient, agentLockTTL)
	} else {
		log.Println("REDIS_ADD not set, listing cache disabled and agent locks are process-local")
	}

	uploads, err := controllers.NewUploadStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("%v", err)
	}

	accounts := services.NewAccounts(db)
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := accounts.EnsureAdmin(seedCtx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Printf("Error creating admin user: %v", err)
	}
	cancelSeed()

	ledger := services.NewLedger(db)
	deps := &controllers.Deps{
		Accounts:   accounts,
		Ledger:     ledger,
		Ratings:    services.NewRatingAggregator(db, ledger, locker),
		Listings:   services.NewListings(db, listingCache, ledger),
		Properties: services.NewProperties(db, listingCache),
		Admin:      services.NewAdmin(db),
		Sessions:   utils.NewSessionSigner(cfg.JWTKey, cfg.SessionTTL),
		Uploads:    uploads,
		DevMode:    cfg.DevMode,
	}

	router := mux.NewRouter()
	routes.Routes(router, deps, db)

	corsOptions := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	handler := corsOptions.Handler(router)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        handler,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
