package routes

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/securecookie"
	"github.com/redis/go-redis/v9"
	"github.com/tkbglow/glow-api/app/cache"
	"github.com/tkbglow/glow-api/app/configs"
	"github.com/tkbglow/glow-api/app/events"
	"github.com/tkbglow/glow-api/app/handlers"
	"github.com/tkbglow/glow-api/app/models"
	"github.com/tkbglow/glow-api/app/realtime"
	"github.com/tkbglow/glow-api/app/repositories"
	"github.com/tkbglow/glow-api/app/services"
	"github.com/tkbglow/glow-api/app/utils/renderer"
	"github.com/tkbglow/glow-api/app/utils/sessions"
	"github.com/unrolled/render"
	"gorm.io/gorm"
)

const producerBuffer = 1024

// Container holds every long-lived dependency the HTTP server and the
// worker share.
type Container struct {
	Env       configs.ENV
	DB        *gorm.DB
	Cache     cache.Cache
	Render    *render.Render
	Validator *validator.Validate
	Hub       *realtime.Hub
	Publisher events.Publisher
	Sessions  sessions.SessionStore
	CSRFKey   []byte

	Orders repositories.OrderRepository
	Users  repositories.UserRepository

	Auth         *services.AuthService
	Delivery     *services.DeliveryService
	Promos       *services.PromoService
	OrderSvc     *services.OrderService
	Payments     *services.PaymentService
	Checkout     *services.CheckoutService
	Products     *services.ProductService
	Reviews      *services.ReviewService
	Drivers      *services.DriverService
	Analytics    *services.AnalyticsService
	Export       *services.ExportService
	Newsletter   *services.NewsletterService
	Notification *services.NotificationService

	redis    *redis.Client
	producer *events.Producer
}

// NewContainer wires repositories and services. ctx bounds the background
// Kafka producer.
func NewContainer(ctx context.Context, db *gorm.DB, env configs.ENV) (*Container, error) {
	c := &Container{
		Env:       env,
		DB:        db,
		Render:    renderer.New(),
		Validator: validator.New(),
		Hub:       realtime.NewHub(env.AllowedOrigin),
	}

	c.Cache = c.openCache(ctx)

	keys, err := configs.LoadSessionKeysFromEnv()
	if err != nil {
		if env.IsProduction() {
			return nil, fmt.Errorf("session keys: %w", err)
		}
		log.Printf("WARNING: %v. Using throwaway keys; admin sessions will not survive a restart.", err)
		keys = &configs.SessionKeys{
			AuthKey: securecookie.GenerateRandomKey(64),
			EncKey:  securecookie.GenerateRandomKey(32),
			CSRFKey: securecookie.GenerateRandomKey(32),
		}
	}
	c.Sessions = sessions.NewCookieSessionStore(env.IsProduction(), keys.AuthKey, keys.EncKey)
	c.CSRFKey = keys.CSRFKey

	tx := repositories.NewTransactor(db)
	c.Orders = repositories.NewOrderRepository(db)
	c.Users = repositories.NewUserRepository(db)
	products := repositories.NewProductRepository(db)
	drivers := repositories.NewDriverRepository(db)

	mailer := services.NewMailer(services.Config{
		Host:     env.EmailHost,
		Port:     env.EmailPort,
		Username: env.EmailUsername,
		Password: env.EmailPassword,
		From:     env.EmailFrom,
	})
	c.Notification = services.NewNotificationService(c.Orders, mailer)

	if len(env.KafkaBrokers) > 0 {
		c.producer = events.NewProducer(env.KafkaBrokers, env.KafkaTopic, producerBuffer)
		c.producer.Start(ctx)
		c.Publisher = c.producer
		log.Printf("✅ Kafka producer started (%s -> %s)", strings.Join(env.KafkaBrokers, ","), env.KafkaTopic)
	} else {
		c.Publisher = events.NewLocalPublisher(c.Notification.Handle)
		log.Println("INFO: KAFKA_BROKERS not set, order events are handled in-process.")
	}

	returnURL := strings.TrimRight(env.APP_URL, "/") + "/checkout/success"
	gateways := services.Gateways{
		models.ProviderPaystack:    services.NewPaystackClient(env.PAYSTACK_SECRET_KEY, env.PAYSTACK_BASE_URL, returnURL),
		models.ProviderFlutterwave: services.NewFlutterwaveClient(env.FLUTTERWAVE_SECRET_KEY, env.FLUTTERWAVE_BASE_URL, returnURL),
	}

	c.Auth = services.NewAuthService(c.Users, env.JWTSecret)
	c.Delivery = services.NewDeliveryService(repositories.NewDeliveryChargeRepository(db), c.Cache, env.DefaultDeliveryCharge)
	c.Promos = services.NewPromoService(repositories.NewPromoRepository(db))
	c.OrderSvc = services.NewOrderService(tx, c.Orders, products, drivers, mailer, c.Publisher, c.Hub)
	c.Payments = services.NewPaymentService(tx, c.Orders, products, c.Promos, c.OrderSvc, gateways, c.Cache, services.PaymentServiceConfig{
		PaystackSecret:  env.PAYSTACK_SECRET_KEY,
		FlutterwaveHash: env.FLUTTERWAVE_WEBHOOK_HASH,
	})
	c.Checkout = services.NewCheckoutService(tx, c.Orders, products, c.Delivery, c.Promos, c.Payments, c.Cache, c.Publisher, c.Hub)
	c.Products = services.NewProductService(products)
	c.Reviews = services.NewReviewService(repositories.NewReviewRepository(db), products, c.Orders)
	c.Drivers = services.NewDriverService(drivers)
	c.Analytics = services.NewAnalyticsService(c.Orders, products)
	c.Export = services.NewExportService(c.Orders)
	c.Newsletter = services.NewNewsletterService(repositories.NewNewsletterRepository(db), mailer)

	return c, nil
}

func (c *Container) openCache(ctx context.Context) cache.Cache {
	if c.Env.RedisAddr == "" {
		log.Println("INFO: REDIS_ADDR not set, using in-memory cache.")
		return cache.NewMemory()
	}
	rdb := cache.NewRedisClient(c.Env.RedisAddr)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Redis at %s unreachable (%v), using in-memory cache.", c.Env.RedisAddr, err)
		_ = rdb.Close()
		return cache.NewMemory()
	}
	c.redis = rdb
	log.Printf("✅ Redis connected at %s", c.Env.RedisAddr)
	return cache.NewRedisCache(rdb)
}

// HealthChecks backs GET /api/health.
func (c *Container) HealthChecks() map[string]handlers.HealthCheck {
	checks := map[string]handlers.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := c.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if c.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return c.redis.Ping(ctx).Err() }
	}
	return checks
}

// Close flushes the producer and releases connections. The context passed to
// NewContainer must already be cancelled.
func (c *Container) Close() {
	if c.producer != nil {
		c.producer.WaitClosed()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Printf("Container.Close: redis: %v", err)
		}
	}
	if sqlDB, err := c.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
