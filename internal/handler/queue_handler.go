package handler

import (
	"net/http"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/config"
	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/middleware"
	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ジョブキューの手動tick。通常はschedulerが回すが、運用で叩けるようにしておく
type QueueHandler struct {
	uc *usecase.JobQueueUsecase
}

func NewQueueHandler(uc *usecase.JobQueueUsecase) *QueueHandler {
	return &QueueHandler{uc: uc}
}

func (h *QueueHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/internal")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())

	g.POST("/queue/tick", h.tick)
}

func (h *QueueHandler) tick(c echo.Context) error {
	out, err := h.uc.Tick(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
