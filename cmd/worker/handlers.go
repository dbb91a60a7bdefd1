package main

import (
	"github.com/hibiken/asynq"

	paymentJob "eurd-payments/internal/domains/payment/job"
	"eurd-payments/internal/shared"
	"eurd-payments/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	confirmOrder      *paymentJob.ConfirmOrderHandler
	reconcileAwaiting *paymentJob.ReconcileAwaitingHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		confirmOrder:      paymentJob.NewConfirmOrderHandler(c.ReconciliationService),
		reconcileAwaiting: paymentJob.NewReconcileAwaitingHandler(c.ReconciliationService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Payment tasks
	mux.HandleFunc(shared.TypeConfirmOrderPayment, h.confirmOrder.ProcessTask)
	mux.HandleFunc(shared.TypeReconcileAwaiting, h.reconcileAwaiting.ProcessTask)
}
