package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AnshRaj112/serenify-journal/internal/config"
	"github.com/AnshRaj112/serenify-journal/internal/database"
	"github.com/AnshRaj112/serenify-journal/internal/handlers"
	"github.com/AnshRaj112/serenify-journal/internal/identity"
	"github.com/AnshRaj112/serenify-journal/internal/logger"
	"github.com/AnshRaj112/serenify-journal/internal/middleware"
	"github.com/AnshRaj112/serenify-journal/internal/quotes"
	"github.com/AnshRaj112/serenify-journal/internal/routes"
	"github.com/AnshRaj112/serenify-journal/internal/services"
	"github.com/AnshRaj112/serenify-journal/internal/store"
	"github.com/AnshRaj112/serenify-journal/internal/web"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	appLog, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer appLog.Sync()

	if err := cfg.Validate(); err != nil {
		appLog.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{Timeout: 15 * time.Second}

	gateway, tokens := buildGateway(cfg, httpClient, appLog)

	docs, mongoClient := buildStore(cfg, httpClient, tokens, appLog)
	if mongoClient != nil {
		defer database.DisconnectMongo(mongoClient)
	}

	// Redis is optional in development; sessions and the activity feed fall
	// back to process memory.
	var rdb *redis.Client
	var sessionStore services.SessionStore
	if cfg.RedisURI != "" {
		appLog.Infof("Connecting to Redis...")
		rdb, err = database.ConnectRedis(cfg.RedisURI, appLog)
		if err != nil {
			appLog.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		sessionStore = services.NewRedisSessionStore(rdb)
	} else {
		if cfg.IsProduction() {
			appLog.Warnf("⚠️  WARNING: REDIS_URI not set. Sessions are kept in memory and lost on restart.")
		}
		sessionStore = services.NewMemorySessionStore()
	}
	sessions := services.NewSessionManager(sessionStore, cfg.SessionTTL, cfg.CookieSecure)

	hub := services.NewActivityHub(rdb, appLog)
	hub.Start(ctx)

	var uploader services.PhotoUploader
	if cfg.CloudinaryEnabled() {
		cld, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			appLog.Warnf("Warning: Failed to initialize Cloudinary: %v", err)
			appLog.Warnf("Entry photos will not be available")
		} else {
			uploader = cld
			appLog.Infof("✅ Cloudinary service initialized")
		}
	} else {
		appLog.Infof("Cloudinary credentials not found. Entry photos will not be available")
	}

	views, err := web.Parse()
	if err != nil {
		appLog.Fatalf("Failed to parse templates: %v", err)
	}

	h := handlers.New(handlers.Deps{
		Config:   cfg,
		Logger:   appLog,
		Views:    views,
		Gateway:  gateway,
		Store:    docs,
		Sessions: sessions,
		Quotes:   quotes.NewService(appLog, quotes.WithTimeout(cfg.QuoteTimeout)),
		Activity: hub,
		Uploader: uploader,
	})

	opts := routes.Options{
		Config:       cfg,
		Logger:       appLog,
		Sessions:     sessions,
		LoginLimiter: middleware.NewLoginLimiter(),
	}
	if cfg.IsProduction() {
		opts.GlobalLimiter = middleware.NewGlobalLimiter()
		opts.GlobalLimiter.StartCleanup(ctx)
		appLog.Infof("✅ Production security enabled (security headers, per-IP + login rate limiting)")
	}
	opts.LoginLimiter.StartCleanup(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.NewRouter(h, opts),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		appLog.Infof("🚀 Journal running on :%s (store=%s, identity=%s)", cfg.Port, cfg.StoreBackend, cfg.IdentityBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	appLog.Infof("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Errorf("Graceful shutdown failed: %v", err)
	}
}

// buildGateway returns the identity gateway. The self-hosted gateway also
// issues the tokens that the mongo and memory stores verify.
func buildGateway(cfg *config.Config, client *http.Client, log logger.Logger) (identity.Gateway, *identity.Tokens) {
	var tokens *identity.Tokens
	if cfg.JWTSecret != "" {
		tokens = identity.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	}

	switch cfg.IdentityBackend {
	case config.BackendPostgres:
		log.Infof("Connecting to PostgreSQL...")
		db, err := database.ConnectPostgres(cfg.PostgresURI, log)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		return identity.NewPostgres(db, tokens), tokens
	default:
		log.Infof("✅ Using Firebase Authentication")
		return identity.NewFirebase(cfg.FirebaseAPIKey, client), tokens
	}
}

// buildStore returns the document store. Firebase verifies ID tokens itself;
// the other backends check them against the self-hosted token issuer.
func buildStore(cfg *config.Config, client *http.Client, tokens *identity.Tokens, log logger.Logger) (store.Store, *mongo.Client) {
	var verifier store.TokenVerifier
	if tokens != nil {
		verifier = tokens
	}

	switch cfg.StoreBackend {
	case config.BackendMongo:
		if verifier == nil {
			log.Fatalf("JWT_SECRET is required when STORE_BACKEND=mongo")
		}
		log.Infof("Connecting to MongoDB %s...", maskURI(cfg.MongoURI))
		mc, db, err := database.ConnectMongo(cfg.MongoURI, cfg.MongoDatabase, log)
		if err != nil {
			log.Errorf("Failed to connect to MongoDB: %v", err)
			log.Errorf("Check that the cluster is running and your IP is whitelisted")
			os.Exit(1)
		}
		return store.NewMongoStore(db, verifier), mc
	case config.BackendMemory:
		if verifier == nil {
			log.Fatalf("JWT_SECRET is required when STORE_BACKEND=memory")
		}
		log.Warnf("⚠️  Using the in-memory store. Records are lost on restart.")
		return store.NewMemoryStore(verifier), nil
	default:
		log.Infof("✅ Using Firebase Realtime Database")
		return store.NewFirebaseStore(cfg.FirebaseDatabaseURL, client), nil
	}
}

// maskURI hides the password in a connection string before it is logged.
func maskURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
