package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/config"
	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/domain/model"
	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/middleware"
	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/repository"
	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 管理者向けの在庫・Unit・監査ログAPI
type AdminInventoryHandler struct {
	inventoryUC *usecase.InventoryUsecase
	syncUC      *usecase.SyncUsecase
	auditUC     *usecase.AuditUsecase
}

func NewAdminInventoryHandler(
	inventoryUC *usecase.InventoryUsecase,
	syncUC *usecase.SyncUsecase,
	auditUC *usecase.AuditUsecase,
) *AdminInventoryHandler {
	return &AdminInventoryHandler{
		inventoryUC: inventoryUC,
		syncUC:      syncUC,
		auditUC:     auditUC,
	}
}

type ReconcileRequest struct {
	NewQuantity int64  `json:"new_quantity"`
	Note        string `json:"note"`
}

type IntakeRequest struct {
	VariantID     int64    `json:"variant_id"`
	SerialNumbers []string `json:"serial_numbers"`
}

type UnitStatusUpdateRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (h *AdminInventoryHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.AdminRoleGuard())

	admin.PUT("/variants/:id/stock", h.reconcile)
	admin.GET("/inventory/conflicts", h.listConflicts)
	admin.POST("/inventory/conflicts/:id/resolve", h.resolveConflict)
	admin.POST("/units/intake", h.intake)
	admin.PUT("/units/:id/status", h.updateUnitStatus)
	admin.GET("/audit-logs", h.listAuditLogs)
}

// 在庫カウンタの手動補正
func (h *AdminInventoryHandler) reconcile(c echo.Context) error {
	variantID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req ReconcileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	// ★操作した管理者IDを取得（監査ログ用）
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.syncUC.ReconcileStock(
		c.Request().Context(),
		adminID,
		variantID,
		usecase.ReconcileStockInput{NewQuantity: req.NewQuantity, Note: req.Note},
	)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminInventoryHandler) listConflicts(c echo.Context) error {
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	out, err := h.syncUC.ListConflicts(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminInventoryHandler) resolveConflict(c echo.Context) error {
	entryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.syncUC.ResolveConflict(c.Request().Context(), adminID, entryID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "resolved"})
}

// 入庫
func (h *AdminInventoryHandler) intake(c echo.Context) error {
	var req IntakeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.inventoryUC.IntakeUnits(
		c.Request().Context(),
		adminID,
		usecase.IntakeUnitsInput{VariantID: req.VariantID, SerialNumbers: req.SerialNumbers},
	)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *AdminInventoryHandler) updateUnitStatus(c echo.Context) error {
	unitID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req UnitStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.inventoryUC.UpdateUnitStatus(
		c.Request().Context(),
		adminID,
		unitID,
		usecase.UpdateUnitStatusInput{Status: req.Status, Reason: req.Reason},
	)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminInventoryHandler) listAuditLogs(c echo.Context) error {
	filter := repository.AuditLogFilter{Limit: 50}

	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		filter.Limit = l
	}
	if v := c.QueryParam("offset"); v != "" {
		o, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
		}
		filter.Offset = o
	}
	if v := c.QueryParam("actor_user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid actor_user_id"})
		}
		filter.ActorUserID = &id
	}
	if v := c.QueryParam("action"); v != "" {
		a := model.AuditAction(v)
		filter.Action = &a
	}
	if v := c.QueryParam("resource_type"); v != "" {
		rt := model.AuditResourceType(v)
		filter.ResourceType = &rt
	}
	if v := c.QueryParam("resource_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid resource_id"})
		}
		filter.ResourceID = &id
	}
	if v := c.QueryParam("from"); v != "" {
		tm, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
		}
		filter.CreatedFrom = &tm
	}
	if v := c.QueryParam("to"); v != "" {
		tm, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
		}
		filter.CreatedTo = &tm
	}

	out, err := h.auditUC.List(c.Request().Context(), filter)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
