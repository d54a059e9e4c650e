package main

import (
	"context"
	"log"
	"time"

	"checkout-service/cache"
	"checkout-service/config"
	"checkout-service/controllers"
	"checkout-service/database"
	"checkout-service/events"
	"checkout-service/middleware"
	"checkout-service/repository"
	"checkout-service/routes"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[CheckoutService] ❌ Failed to load config: ", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("[CheckoutService] ❌ Failed to initialize logger: ", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	mongoClient, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal("[CheckoutService] ❌ Failed to connect to MongoDB: ", err)
	}
	defer mongoClient.Disconnect(ctx)

	db := mongoClient.Database(cfg.MongoDatabase)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Fatal("[CheckoutService] ❌ Failed to create indexes: ", err)
	}
	orderRepo := repository.NewMongoOrderRepository(db)

	// Optional collaborators: webhook event dedupe and order events.
	var dedupe services.EventDeduper
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("[CheckoutService] ❌ Invalid REDIS_URL: ", err)
		}
		dedupe = cache.NewEventCache(redis.NewClient(opts), 24*time.Hour)
		logger.Info("Webhook event dedupe cache enabled")
	}

	var publisher events.Publisher
	if cfg.OrderSNSTopicARN != "" {
		snsPublisher, err := events.NewSNSPublisher(ctx)
		if err != nil {
			log.Fatal("[CheckoutService] ❌ Failed to init SNS publisher: ", err)
		}
		publisher = snsPublisher
		logger.Info("Order event publishing enabled", zap.String("topic_arn", cfg.OrderSNSTopicARN))
	}

	stripeSvc := services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookKey, cfg.StripeTimeout)
	checkoutSvc := services.NewCheckoutService(stripeSvc, orderRepo, publisher, dedupe, services.Options{
		Currency:   cfg.Currency,
		SuccessURL: cfg.SuccessURL,
		CancelURL:  cfg.CancelURL,
		TopicArn:   cfg.OrderSNSTopicARN,
	}, logger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RateLimit())

	cc := controllers.NewCheckoutController(checkoutSvc)
	routes.RegisterRoutes(r, cc)

	logger.Info("Checkout service running", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("[CheckoutService] ❌ Server failed: ", err)
	}
}
