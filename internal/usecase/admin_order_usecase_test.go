package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/domain/model"
	repo "github.com/tropictechindo-project/TropicWeb2-sub002/internal/repository"
	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// キャンセルで割当済みUnitがAVAILABLEに戻り、カウンタが再計算される
func TestAdminOrderUsecase_CancelOrder_ReleasesUnits(t *testing.T) {
	tx := new(TxManagerMock)
	orders := new(OrderRepoMock)
	units := new(UnitRepoMock)
	histories := new(UnitHistoryRepoMock)
	variants := new(VariantRepoMock)
	auditLogs := new(AuditLogRepoMock)

	tx.Repos = &TxReposMock{
		orders:        orders,
		units:         units,
		unitHistories: histories,
		variants:      variants,
		auditLogs:     auditLogs,
	}
	tx.On("WithinTx", mock.Anything).Return(nil)

	orders.On("FindByID", mock.Anything, int64(10)).
		Return(model.Order{ID: 10, Status: model.OrderStatusPaid, TotalPrice: 5000}, nil)
	units.On("ListByOrderID", mock.Anything, int64(10)).
		Return([]model.Unit{
			{ID: 31, VariantID: 2, Status: model.UnitStatusRented, AssignedOrderID: int64ptr(10)},
			{ID: 32, VariantID: 2, Status: model.UnitStatusMaintenance},
		}, nil)

	//解放はRESERVED/RENTEDだけ。MAINTENANCEのUnitは触らない
	units.On("UpdateStatusIfCurrent", mock.Anything, int64(31),
		model.UnitStatusRented, model.UnitStatusAvailable, (*int64)(nil)).Return(true, nil)
	histories.On("Create", mock.Anything, mock.MatchedBy(func(h model.UnitHistory) bool {
		return h.UnitID == 31 && h.NewStatus == model.UnitStatusAvailable && h.Reason == "order cancelled"
	})).Return(nil)
	units.On("CountByVariant", mock.Anything, int64(2)).Return(int64(5), int64(0), nil)
	variants.On("UpdateCounters", mock.Anything, int64(2), int64(5), int64(0)).Return(nil)

	orders.On("UpdateStatusFrom", mock.Anything, int64(10),
		model.OrderStatusPaid, model.OrderStatusCancelled).Return(true, nil)
	auditLogs.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionCancelOrder && l.ResourceID == 10
	})).Return(nil)

	uc := usecase.NewAdminOrderUsecase(tx)

	out, err := uc.CancelOrder(context.Background(), 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, string(model.OrderStatusCancelled), out.Status)

	units.AssertExpectations(t)
	orders.AssertExpectations(t)
	auditLogs.AssertExpectations(t)
	units.AssertNotCalled(t, "UpdateStatusIfCurrent", mock.Anything, int64(32),
		mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminOrderUsecase_CancelOrder_AlreadyCancelled(t *testing.T) {
	tx := new(TxManagerMock)
	orders := new(OrderRepoMock)

	tx.Repos = &TxReposMock{orders: orders}
	tx.On("WithinTx", mock.Anything).Return(nil)

	orders.On("FindByID", mock.Anything, int64(10)).
		Return(model.Order{ID: 10, Status: model.OrderStatusCancelled}, nil)

	uc := usecase.NewAdminOrderUsecase(tx)

	_, err := uc.CancelOrder(context.Background(), 1, 10)
	assertStatus(t, err, http.StatusBadRequest)
	assertErrContains(t, err, "already cancelled")
}

func TestAdminOrderUsecase_CancelOrder_CompletedOrder(t *testing.T) {
	tx := new(TxManagerMock)
	orders := new(OrderRepoMock)

	tx.Repos = &TxReposMock{orders: orders}
	tx.On("WithinTx", mock.Anything).Return(nil)

	orders.On("FindByID", mock.Anything, int64(10)).
		Return(model.Order{ID: 10, Status: model.OrderStatusCompleted}, nil)

	uc := usecase.NewAdminOrderUsecase(tx)

	_, err := uc.CancelOrder(context.Background(), 1, 10)
	assertStatus(t, err, http.StatusBadRequest)
	assertErrContains(t, err, "cannot cancel completed order")
}

func TestAdminOrderUsecase_CancelOrder_NotFound(t *testing.T) {
	tx := new(TxManagerMock)
	orders := new(OrderRepoMock)

	tx.Repos = &TxReposMock{orders: orders}
	tx.On("WithinTx", mock.Anything).Return(nil)

	orders.On("FindByID", mock.Anything, int64(10)).
		Return(model.Order{}, repo.ErrNotFound)

	uc := usecase.NewAdminOrderUsecase(tx)

	_, err := uc.CancelOrder(context.Background(), 1, 10)
	assertStatus(t, err, http.StatusNotFound)
}

// 同時更新でステータスが変わっていたら409
func TestAdminOrderUsecase_CancelOrder_LostRace(t *testing.T) {
	tx := new(TxManagerMock)
	orders := new(OrderRepoMock)
	units := new(UnitRepoMock)

	tx.Repos = &TxReposMock{orders: orders, units: units}
	tx.On("WithinTx", mock.Anything).Return(nil)

	orders.On("FindByID", mock.Anything, int64(10)).
		Return(model.Order{ID: 10, Status: model.OrderStatusPending}, nil)
	units.On("ListByOrderID", mock.Anything, int64(10)).Return([]model.Unit{}, nil)
	orders.On("UpdateStatusFrom", mock.Anything, int64(10),
		model.OrderStatusPending, model.OrderStatusCancelled).Return(false, nil)

	uc := usecase.NewAdminOrderUsecase(tx)

	_, err := uc.CancelOrder(context.Background(), 1, 10)
	assertStatus(t, err, http.StatusConflict)
	assertErrContains(t, err, "order state changed")
}
