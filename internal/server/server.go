package server

import (
	"net/http"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/config"
	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type Handlers struct {
	Delivery       *handler.DeliveryHandler
	AdminPayment   *handler.AdminPaymentHandler
	AdminOrder     *handler.AdminOrderHandler
	AdminInventory *handler.AdminInventoryHandler
	Queue          *handler.QueueHandler
}

func New(cfg config.Config, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	h.Delivery.RegisterRoutes(e, cfg)
	h.AdminPayment.RegisterRoutes(e, cfg)
	h.AdminOrder.RegisterRoutes(e, cfg)
	h.AdminInventory.RegisterRoutes(e, cfg)
	h.Queue.RegisterRoutes(e, cfg)

	return e
}
