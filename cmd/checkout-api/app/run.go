package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/bilal-alaabadi/mahen-b/configs"
	"github.com/bilal-alaabadi/mahen-b/internal/adapter/cache"
	"github.com/bilal-alaabadi/mahen-b/internal/adapter/gateway"
	httpadapter "github.com/bilal-alaabadi/mahen-b/internal/adapter/http"
	"github.com/bilal-alaabadi/mahen-b/internal/adapter/kafka"
	"github.com/bilal-alaabadi/mahen-b/internal/adapter/queue"
	"github.com/bilal-alaabadi/mahen-b/internal/adapter/repo"
	"github.com/bilal-alaabadi/mahen-b/internal/logging"
	"github.com/bilal-alaabadi/mahen-b/internal/usecase"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	log := logging.Init(cfg.App.Name, "./logs/app.log")

	// database
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, nil, err
	}

	// redis, backs the pending-order store
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, err
	}

	orderRepo := repo.NewMySQLOrderRepo(db)
	pending := cache.NewRedisPendingStore(rdb, cfg.Pending.TTL)
	gw := gateway.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.APIKey, cfg.Gateway.RequestTimeout)

	// rabbitmq: order.completed events are best effort, so a broker
	// outage at startup downgrades to no publisher instead of failing
	var (
		events  usecase.EventPublisher
		amqpCon *amqp.Connection
	)
	if cfg.Rabbit.URL != "" {
		amqpCon, err = amqp.Dial(cfg.Rabbit.URL)
		if err != nil {
			log.Warn("rabbitmq unavailable, order.completed events disabled", "error", err)
		} else if ch, err := amqpCon.Channel(); err != nil {
			log.Warn("rabbitmq channel failed, order.completed events disabled", "error", err)
		} else if producer, err := queue.NewRabbitProducer(ch); err != nil {
			log.Warn("rabbitmq setup failed, order.completed events disabled", "error", err)
		} else {
			events = producer
		}
	}

	// kafka: order-status-changed events from fulfilment
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.Topic != "" {
		if err := startKafkaListener(cfg, orderRepo); err != nil {
			log.Warn("kafka unavailable, status-changed consumer disabled", "error", err)
		}
	}

	minor := usecase.MinorUnit{Factor: cfg.Gateway.MinorUnitFactor, Floor: cfg.Gateway.MinorUnitFloor}
	createUC := usecase.NewCreateCheckoutSession(gw, pending, usecase.CheckoutConfig{
		Rates: usecase.ShippingRates{
			Domestic:      cfg.Shipping.DomesticFee,
			Neighbor:      cfg.Shipping.NeighborFee,
			GulfBase:      cfg.Shipping.GulfBaseFee,
			GulfExtraItem: cfg.Shipping.GulfExtraItemFee,
		},
		Minor:           minor,
		DepositAmount:   cfg.Checkout.DepositAmount,
		SuccessURL:      cfg.Gateway.SuccessURL,
		CancelURL:       cfg.Gateway.CancelURL,
		CheckoutBaseURL: cfg.Gateway.CheckoutBaseURL,
		PublishableKey:  cfg.Gateway.PublishableKey,
	})
	confirmUC := usecase.NewConfirmPayment(gw, pending, orderRepo, events, minor, cfg.Gateway.SessionsPageSize)

	ch := httpadapter.NewCheckoutHandler(createUC, confirmUC)
	oh := httpadapter.NewOrderHandler(orderRepo)
	router := httpadapter.NewRouter(ch, oh)

	cleanup := func() {
		_ = db.Close()
		_ = rdb.Close()
		if amqpCon != nil {
			_ = amqpCon.Close()
		}
	}

	return &App{Router: router}, cleanup, nil
}

func startKafkaListener(cfg configs.Config, orderRepo *repo.MySQLOrderRepo) error {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		return err
	}

	h := kafka.NewOrderStatusChangedHandler(orderRepo)
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.Topic}, h.Handle)
	consumer.Logger = logging.New("kafka")

	go func() {
		if err := consumer.Start(context.Background()); err != nil && err != context.Canceled {
			consumer.Logger.Error("kafka consumer stopped", "error", err)
		}
	}()
	return nil
}
