package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"clinicore/internal/config"
	"clinicore/internal/http/handlers"
	applog "clinicore/internal/log"
	"clinicore/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))

	// ---------- Routes ----------
	deps := handlers.NewDeps(db)
	api := app.Group("/api/v1")

	// Inventory ledger
	api.Get("/products/:id/stock", deps.InventoryHandler.Stock)
	api.Get("/products/:id/history", deps.InventoryHandler.History)
	api.Post("/products/:id/restock", deps.InventoryHandler.Restock)
	api.Post("/products/:id/adjust", deps.InventoryHandler.Adjust)
	api.Get("/inventory/low-stock", deps.InventoryHandler.LowStock)

	// Appointment scheduling
	api.Get("/availability", deps.SchedulerHandler.Availability)
	api.Post("/slots", deps.SchedulerHandler.AddSlot)
	api.Post("/appointments", deps.SchedulerHandler.Book)
	api.Get("/appointments", deps.SchedulerHandler.Upcoming)
	api.Get("/appointments/:id", deps.SchedulerHandler.Get)
	api.Post("/appointments/:id/confirm", deps.SchedulerHandler.Confirm)
	api.Post("/appointments/:id/cancel", deps.SchedulerHandler.Cancel)
	api.Post("/appointments/:id/force-cancel", deps.SchedulerHandler.ForceCancel)
	api.Post("/appointments/:id/complete", deps.SchedulerHandler.Complete)

	// Order fulfillment
	api.Get("/cart", deps.OrderHandler.Cart)
	api.Post("/cart/items", deps.OrderHandler.AddItem)
	api.Delete("/cart/items/:productId", deps.OrderHandler.RemoveItem)
	api.Post("/orders/checkout", deps.OrderHandler.Checkout)
	api.Get("/orders", deps.OrderHandler.List)
	api.Get("/orders/:id", deps.OrderHandler.Get)
	api.Post("/orders/:id/confirm", deps.OrderHandler.Confirm)
	api.Post("/orders/:id/reject", deps.OrderHandler.Reject)

	// Billing ledger
	api.Post("/invoices/appointment", deps.BillingHandler.InvoiceAppointment)
	api.Post("/invoices/order", deps.BillingHandler.InvoiceOrder)
	api.Get("/invoices/:id/payments", deps.BillingHandler.Payments)
	api.Get("/billing/:targetId/total-paid", deps.BillingHandler.TotalPaid)
	api.Get("/billing/orders/:orderId/credit", deps.BillingHandler.Credit)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
