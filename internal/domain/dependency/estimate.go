package dependency

import (
	"context"

	"github.com/shopspring/decimal"
)

// EstimateStatus mirrors the CRM estimate lifecycle
type EstimateStatus string

const (
	EstimateDraft     EstimateStatus = "draft"
	EstimateSent      EstimateStatus = "sent"
	EstimateApproved  EstimateStatus = "approved"
	EstimateRejected  EstimateStatus = "rejected"
	EstimateCancelled EstimateStatus = "cancelled"
)

// EstimateReference is one estimate line item that names the material
type EstimateReference struct {
	EstimateID     string
	EstimateNumber string
	EstimateStatus EstimateStatus
	LineItemID     string
	Quantity       decimal.Decimal
}

// IsApproved reports whether the owning estimate is approved
func (r EstimateReference) IsApproved() bool {
	return r.EstimateStatus == EstimateApproved
}

// EstimateRepository reads and edits the CRM estimate tables on behalf of the resolver
type EstimateRepository interface {
	// ListReferences returns every line item referencing the material with its estimate
	ListReferences(ctx context.Context, materialID string) ([]EstimateReference, error)

	// CancelEstimate sets the estimate's status to cancelled
	CancelEstimate(ctx context.Context, estimateID string) error

	// DeleteLineItem removes one line item
	DeleteLineItem(ctx context.Context, lineItemID string) error
}
