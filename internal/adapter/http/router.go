package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bilal-alaabadi/mahen-b/internal/adapter/http/middleware"
	"github.com/bilal-alaabadi/mahen-b/internal/logging"
)

func NewRouter(ch *CheckoutHandler, oh *OrderHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())

	l := logging.New("http")
	r.Use(middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	orders := r.Group("/api/orders")
	{
		orders.POST("/create-checkout-session", ch.CreateCheckoutSession)
		orders.POST("/confirm-payment", ch.ConfirmPayment)

		orders.GET("", oh.ListCompleted)
		orders.GET("/email/:email", oh.GetByEmail)
		orders.GET("/order/:id", oh.GetByID)
		orders.PATCH("/update-order-status/:id", oh.UpdateStatus)
		orders.DELETE("/delete-order/:id", oh.Delete)
	}

	return r
}
