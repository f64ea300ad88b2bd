package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"compliance-engine/core/loader"
	"compliance-engine/core/logger"
	"compliance-engine/core/middleware/auth"
	"compliance-engine/core/middleware/rayid"
	complianceFeature "compliance-engine/feature/compliance"
	"compliance-engine/feature/integrity"
	"compliance-engine/feature/inventory"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "compliance-engine/docs/swagger"
)

// @title Compliance Engine API
// @version 1.0
// @description API for auditing stored objects against compliance rules.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the compliance engine server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer rt.close()
		logg := rt.logger
		zap.ReplaceGlobals(logg)

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             rt.cfg.Server.BodyLimit(),
			JSONEncoder:           json.Marshal,
			JSONDecoder:           json.Unmarshal,
		})

		mgr := loader.NewManager(logg)
		mgr.Register(inventory.NewFeature(rt.repo, logg))
		mgr.Register(complianceFeature.NewFeature(rt.service))
		mgr.Register(integrity.NewFeature(integrity.NewService(rt.client, rt.cfg.Storage.Bucket, rt.cfg.Engine.RulesPrefix, rt.db, logg)))

		// RayID first so every later log line carries it.
		app.Use(rayid.New())
		app.Use(recover.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Get("/swagger/*", swagger.HandlerDefault)
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{})))
		app.Get("/healthz", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok", "rules_synced": rt.catalog.Synced()})
		})

		app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() {
			logg.Info("Starting server", zap.String("port", rt.cfg.Server.Port))
			errCh <- app.Listen(rt.cfg.Server.Address())
		}()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return err
		case <-sig:
		}

		logg.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return app.ShutdownWithContext(ctx)
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
