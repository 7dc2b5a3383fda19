package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/admin"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/alert"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/audit"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/auth"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/config"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/contacts"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/leads"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/logging"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/notify"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/profile"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/router"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/site"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/telemetry"
)

const (
	serviceName    = "compleetkozijnen-api"
	dashboardLimit = 500
	devUserID      = "11111111-1111-1111-1111-111111111111"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet.
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logging.New(cfg.IsDev())
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("api stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTELEndpoint, serviceName)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	// The contact store goes through database/sql for sqlx; everything else
	// uses the pgx pool.
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	catalog, err := site.Load(cfg.SiteContentPath)
	if err != nil {
		return err
	}

	notes := notify.NewList(cfg.NotifyMaxAge)
	go notes.Run(ctx, cfg.NotifyPruneInterval)

	var alerts *alert.Webhook
	if cfg.AlertWebhookURL != "" {
		alerts = alert.NewWebhook(cfg.AlertWebhookURL, log.Named("alert"))
	}

	var limiterStorage fiber.Storage
	if cfg.RedisURL != "" {
		rs, err := router.NewRedisStorage(ctx, cfg.RedisURL, "ratelimit:")
		if err != nil {
			return err
		}
		defer rs.Close()
		limiterStorage = rs
	}

	verifier := auth.NewVerifier([]byte(cfg.JWTSecret), cfg.JWTAudience, cfg.JWTIssuer)
	issuer := auth.NewIssuer([]byte(cfg.JWTSecret), cfg.JWTAudience, cfg.JWTIssuer, cfg.TokenTTL)
	profiles := profile.NewRepository(pool)
	leadRepo := leads.NewRepository(pool)
	contactStore := contacts.NewStore(db)
	auditLog := audit.NewLog(pool)

	r := &router.Router{
		Catalog: catalog,
		LeadHandler: &leads.Handler{
			Store:   leadRepo,
			Catalog: catalog,
			Notes:   notes,
			Alerts:  alerts,
			Log:     log.Named("leads"),
		},
		ContactHandler: &contacts.Handler{
			Store:  contactStore,
			Notes:  notes,
			Alerts: alerts,
			Log:    log.Named("contacts"),
		},
		ProfileHandler: profile.NewHandler(profiles, log.Named("profile")),
		AdminHandler: &admin.Handler{
			Leads:    leadRepo,
			Contacts: contactStore,
			Audit:    auditLog,
			Notes:    notes,
			Log:      log.Named("admin"),
			Limit:    dashboardLimit,
		},
		AuthMW: auth.Middleware(verifier),
		AdminMW: (&admin.Guard{
			Verifier: verifier,
			Profiles: profiles,
			APIKey:   cfg.AdminAPIKey,
			Log:      log.Named("admin"),
		}).RequireAdmin(),
		SubmitMW: router.RateLimitSubmit(cfg.SubmitRateMax, cfg.SubmitRateWindow, limiterStorage),
	}
	if cfg.IdentityMode == config.IdentityLocal {
		r.LocalAuth = &auth.LocalHandler{Users: &auth.PgUserStore{Pool: pool}, Issuer: issuer}
		r.LoginMW = router.RateLimitAuth(limiterStorage)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          router.ErrorHandler,
		DisableStartupMessage: !cfg.IsDev(),
		BodyLimit:             256 * 1024,
	})

	app.Use(requestid.New())
	app.Use(router.CorsMiddleware(cfg.CORSOrigin))
	app.Use(telemetry.Middleware(nil))
	app.Use(logging.RequestLogger(log.Named("http")))

	if cfg.IsDev() {
		app.Get("/dev/token", func(c *fiber.Ctx) error {
			token, err := issuer.Issue(devUserID, "dev@localhost")
			if err != nil {
				return err
			}
			return c.JSON(fiber.Map{"token": token, "user_id": devUserID})
		})
	}

	r.RegisterRoutes(app)

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir, fiber.Static{Compress: true, Index: "index.html"})
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("port", cfg.Port), zap.String("identity_mode", cfg.IdentityMode))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}
