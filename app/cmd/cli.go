package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tkbglow/glow-api/app/configs"
	"github.com/tkbglow/glow-api/app/db/seeders"
	"github.com/tkbglow/glow-api/app/events"
	"github.com/tkbglow/glow-api/app/models/migrations"
	"github.com/tkbglow/glow-api/app/repositories"
	"github.com/tkbglow/glow-api/app/routes"
	"github.com/tkbglow/glow-api/app/services"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 15 * time.Second

func RunCli() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:   "glow-api",
		Usage:  "TKB Glow storefront API",
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP API (default)",
				Action: serveAction,
			},
			{
				Name:  "migrate",
				Usage: "Run database migration",
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection()
					if err != nil {
						return err
					}
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					log.Println("✅ Migration complete")
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "Insert a sample catalogue, delivery charges and a promo code",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "products", Value: seeders.DefaultProductCount, Usage: "number of fake products"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection()
					if err != nil {
						return err
					}
					if err := seeders.DBSeed(db, int(c.Int("products"))); err != nil {
						return err
					}
					log.Println("✅ Seeding complete")
					return nil
				},
			},
			{
				Name:  "generate-keys",
				Usage: "Generate new session authentication, encryption and CSRF keys",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "env-file", Value: ".env.keys", Usage: "file the keys are written to"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					if err := configs.GenerateAndPrintSessionKeys(c.String("env-file")); err != nil {
						return err
					}
					log.Println("✅ Key generation complete. Please copy the keys to your .env file.")
					return nil
				},
			},
			{
				Name:  "create-admin",
				Usage: "Create a back-office user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Value: "TKB Admin"},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection()
					if err != nil {
						return err
					}
					auth := services.NewAuthService(repositories.NewUserRepository(db), configs.LoadENV.JWTSecret)
					user, err := auth.CreateAdmin(ctx, c.String("name"), c.String("email"), c.String("password"))
					if err != nil {
						return err
					}
					log.Printf("✅ Admin %s created (%s)", user.Email, user.ID)
					return nil
				},
			},
			{
				Name:  "worker",
				Usage: "Consume order events from Kafka and send notifications",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "group", Value: "glow-notifications"},
					&cli.IntFlag{Name: "workers", Value: 4},
				},
				Action: workerAction,
			},
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func listenAddr(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

func serveAction(ctx context.Context, c *cli.Command) error {
	env := configs.LoadENV

	db, err := configs.OpenConnection()
	if err != nil {
		return fmt.Errorf("DB connection failed: %w", err)
	}
	log.Println("✅ Database connected.")

	appCtx, cancel := context.WithCancel(ctx)
	container, err := routes.NewContainer(appCtx, db, env)
	if err != nil {
		cancel()
		return err
	}
	defer func() {
		cancel()
		container.Close()
	}()

	server := &http.Server{
		Addr:              listenAddr(env.Port),
		Handler:           routes.NewRouter(container),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 Server starting on %s", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start the server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Println("✅ Server stopped.")
	return nil
}

func workerAction(ctx context.Context, c *cli.Command) error {
	env := configs.LoadENV
	if len(env.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is not set; without a broker the API handles events in-process")
	}

	db, err := configs.OpenConnection()
	if err != nil {
		return fmt.Errorf("DB connection failed: %w", err)
	}

	mailer := services.NewMailer(services.Config{
		Host:     env.EmailHost,
		Port:     env.EmailPort,
		Username: env.EmailUsername,
		Password: env.EmailPassword,
		From:     env.EmailFrom,
	})
	notifications := services.NewNotificationService(repositories.NewOrderRepository(db), mailer)

	consumer := events.NewConsumer(env.KafkaBrokers, c.String("group"), env.KafkaTopic, int(c.Int("workers")))
	log.Printf("✅ Worker consuming %s as %s", env.KafkaTopic, c.String("group"))
	if err := consumer.Start(ctx, notifications.Handle); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Println("✅ Worker stopped.")
	return nil
}
