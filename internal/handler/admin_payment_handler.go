package handler

import (
	"net/http"
	"strconv"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/config"
	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/middleware"
	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminPaymentHandler struct {
	uc *usecase.PaymentUsecase
}

func NewAdminPaymentHandler(uc *usecase.PaymentUsecase) *AdminPaymentHandler {
	return &AdminPaymentHandler{uc: uc}
}

func (h *AdminPaymentHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.AdminRoleGuard())

	admin.POST("/payments/:id/confirm", h.confirm)
}

// 支払い承認。注文確定・請求書・配送作成・ジョブ投入までを1回で行う
func (h *AdminPaymentHandler) confirm(c echo.Context) error {
	transactionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	// ★操作した管理者IDを取得（監査ログ用）
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ConfirmPayment(c.Request().Context(), adminID, transactionID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
