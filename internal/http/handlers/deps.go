package handlers

import (
	"github.com/jmoiron/sqlx"

	"clinicore/internal/repos"
	"clinicore/internal/services"
)

type Deps struct {
	InventoryHandler *InventoryHandler
	SchedulerHandler *SchedulerHandler
	OrderHandler     *OrderHandler
	BillingHandler   *BillingHandler
}

func NewDeps(db *sqlx.DB) *Deps {
	productRepo := repos.NewProductRepo()
	ledgerRepo := repos.NewInventoryRepo()
	scheduleRepo := repos.NewScheduleRepo()
	orderRepo := repos.NewOrderRepo()
	billingRepo := repos.NewBillingRepo()

	invSvc := services.NewInventoryService(db, productRepo, ledgerRepo)
	schedSvc := services.NewSchedulerService(db, scheduleRepo)
	orderSvc := services.NewOrderService(db, orderRepo, productRepo, invSvc)
	billingSvc := services.NewBillingService(db, billingRepo, orderRepo, scheduleRepo)

	return &Deps{
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		SchedulerHandler: &SchedulerHandler{Sched: schedSvc},
		OrderHandler:     &OrderHandler{Orders: orderSvc},
		BillingHandler:   &BillingHandler{Billing: billingSvc},
	}
}
