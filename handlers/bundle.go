// File: handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Meeting negotiation endpoints
	CreateRequestHandler gin.HandlerFunc
	InboxHandler         gin.HandlerFunc
	OutboxHandler        gin.HandlerFunc
	GetRequestHandler    gin.HandlerFunc
	RespondHandler       gin.HandlerFunc
	CancelRequestHandler gin.HandlerFunc
}

// NewHandlerBundle wires the interaction handler into a routing bundle.
func NewHandlerBundle(ih *InteractionHandler) *HandlerBundle {
	return &HandlerBundle{
		CreateRequestHandler: ih.CreateRequest,
		InboxHandler:         ih.Inbox,
		OutboxHandler:        ih.Outbox,
		GetRequestHandler:    ih.GetRequest,
		RespondHandler:       ih.Respond,
		CancelRequestHandler: ih.CancelRequest,
	}
}
