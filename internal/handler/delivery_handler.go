package handler

import (
	"net/http"
	"strconv"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/config"
	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/middleware"
	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 配送員向けの配送API
type DeliveryHandler struct {
	uc *usecase.DeliveryUsecase
}

func NewDeliveryHandler(uc *usecase.DeliveryUsecase) *DeliveryHandler {
	return &DeliveryHandler{uc: uc}
}

type ClaimRequest struct {
	VehicleID int64 `json:"vehicle_id"`
}

type DeliveryStatusUpdateRequest struct {
	Status string `json:"status"`
}

type CompleteRequest struct {
	Proof string `json:"proof"`
}

func (h *DeliveryHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/deliveries")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.WorkerRoleGuard())

	g.GET("/queue", h.listQueue)
	g.GET("/mine", h.listMine)
	g.POST("/:id/claim", h.claim)
	g.PUT("/:id/status", h.updateStatus)
	g.POST("/:id/complete", h.complete)
}

// 未クレームの配送一覧
func (h *DeliveryHandler) listQueue(c echo.Context) error {
	out, err := h.uc.ListQueued(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 自分がクレーム中の配送一覧
func (h *DeliveryHandler) listMine(c echo.Context) error {
	workerID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListMine(c.Request().Context(), workerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DeliveryHandler) claim(c echo.Context) error {
	deliveryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req ClaimRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	workerID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Claim(
		c.Request().Context(),
		workerID,
		deliveryID,
		usecase.ClaimInput{VehicleID: req.VehicleID},
	)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *DeliveryHandler) updateStatus(c echo.Context) error {
	deliveryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req DeliveryStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	workerID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.UpdateStatus(
		c.Request().Context(),
		workerID,
		deliveryID,
		usecase.UpdateDeliveryStatusInput{Status: req.Status},
	)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *DeliveryHandler) complete(c echo.Context) error {
	deliveryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req CompleteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	workerID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Complete(
		c.Request().Context(),
		workerID,
		deliveryID,
		usecase.CompleteInput{Proof: req.Proof},
	)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
