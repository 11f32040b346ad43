package main

import (
	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/config"
	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/domain/model"
	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/handler"
	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/infra/db"
	infraRepo "github.com/tropictechindo-project/TropicWeb2-sub002/internal/infra/repository"
	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/logger"
	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/notify"
	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/report"
	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/scheduler"
	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/server"
	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	//.envは無ければ環境変数をそのまま使う
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		panic(err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.ProductVariant{},
		&model.Unit{},
		&model.UnitHistory{},
		&model.Order{},
		&model.OrderItem{},
		&model.PaymentTransaction{},
		&model.Invoice{},
		&model.Vehicle{},
		&model.Delivery{},
		&model.DeliveryItem{},
		&model.DeliveryLog{},
		&model.JobQueueEntry{},
		&model.InventorySyncLogEntry{},
		&model.AuditLog{},
	); err != nil {
		panic(err)
	}

	//TxManager（全Repositoryはこの中で作り直される）
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//外部連携
	reporter := report.NewClient(cfg.ReportBaseURL)
	notifier := notify.NewLogNotifier()

	//Usecase生成
	deliveryUC := usecase.NewDeliveryUsecase(txm, reporter)
	paymentUC := usecase.NewPaymentUsecase(txm)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm)
	inventoryUC := usecase.NewInventoryUsecase(txm)
	syncUC := usecase.NewSyncUsecase(txm)
	auditUC := usecase.NewAuditUsecase(txm)
	queueUC := usecase.NewJobQueueUsecase(txm, notifier)

	//Handler生成
	handlers := server.Handlers{
		Delivery:       handler.NewDeliveryHandler(deliveryUC),
		AdminPayment:   handler.NewAdminPaymentHandler(paymentUC),
		AdminOrder:     handler.NewAdminOrderHandler(adminOrderUC),
		AdminInventory: handler.NewAdminInventoryHandler(inventoryUC, syncUC, auditUC),
		Queue:          handler.NewQueueHandler(queueUC),
	}

	//ジョブキューのtickを定期実行
	sched, err := scheduler.New(queueUC, cfg.QueueTickSpec)
	if err != nil {
		panic(err)
	}
	sched.Start()
	defer sched.Stop()

	//Server起動
	e := server.New(cfg, handlers)

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	logger.Get().Info("server starting", zap.String("addr", addr))
	if err := e.Start(addr); err != nil {
		panic(err)
	}
}
