package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andrescamacho/warehouse-go/internal/application/common"
	"github.com/andrescamacho/warehouse-go/internal/domain/catalog"
	"github.com/andrescamacho/warehouse-go/internal/domain/delivery"
	"github.com/andrescamacho/warehouse-go/internal/domain/dependency"
	"github.com/andrescamacho/warehouse-go/internal/domain/reservation"
	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
)

// errorBody is the payload of every failed request
type errorBody struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// classify maps an engine error to an HTTP status and a stable error kind.
// ErrDeliverySync is checked first since it wraps the storage error underneath.
func classify(err error) (int, errorBody) {
	var (
		syncErr        *delivery.ErrDeliverySync
		validationErr  *shared.ValidationError
		thresholdsErr  *catalog.ErrInvalidThresholds
		movementErr    *stock.ErrInvalidMovement
		materialNF     *catalog.ErrMaterialNotFound
		levelNF        *stock.ErrStockLevelNotFound
		reservationNF  *reservation.ErrReservationNotFound
		deliveryNF     *delivery.ErrDeliveryNotFound
		notFound       *shared.NotFoundError
		insufficient   *stock.ErrInsufficientStock
		reservedErr    *stock.ErrReservedExceedsCurrent
		inactive       *catalog.ErrMaterialInactive
		released       *reservation.ErrReservationReleased
		mismatch       *reservation.ErrReservationMismatch
		transition     *delivery.ErrInvalidTransition
		overDelivery   *delivery.ErrOverDelivery
		blocked        *dependency.ErrBlockedDeletion
		lockTimeoutErr *shared.LockTimeoutError
	)

	switch {
	case errors.As(err, &syncErr):
		return http.StatusInternalServerError, errorBody{"delivery_sync", gin.H{"delivery_id": syncErr.DeliveryID}}
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity, errorBody{"validation_error", gin.H{"field": validationErr.Field, "message": validationErr.Message}}
	case errors.As(err, &thresholdsErr):
		return http.StatusUnprocessableEntity, errorBody{"invalid_thresholds", gin.H{"min": thresholdsErr.Min, "max": thresholdsErr.Max}}
	case errors.As(err, &movementErr):
		return http.StatusUnprocessableEntity, errorBody{"invalid_movement", gin.H{"field": movementErr.Field, "message": movementErr.Reason}}
	case errors.As(err, &materialNF):
		return http.StatusNotFound, errorBody{"not_found", gin.H{"entity": "material", "id": materialNF.ID}}
	case errors.As(err, &levelNF):
		return http.StatusNotFound, errorBody{"not_found", gin.H{"entity": "stock_level", "material_id": levelNF.MaterialID, "location": levelNF.Location}}
	case errors.As(err, &reservationNF):
		return http.StatusNotFound, errorBody{"not_found", gin.H{"entity": "reservation", "id": reservationNF.ID}}
	case errors.As(err, &deliveryNF):
		return http.StatusNotFound, errorBody{"not_found", gin.H{"entity": "delivery", "id": deliveryNF.ID}}
	case errors.As(err, &notFound):
		return http.StatusNotFound, errorBody{"not_found", gin.H{"entity": notFound.Entity, "id": notFound.ID}}
	case errors.As(err, &insufficient):
		return http.StatusConflict, errorBody{"insufficient_stock", gin.H{
			"material_id": insufficient.MaterialID,
			"location":    insufficient.Location,
			"available":   insufficient.Available,
			"requested":   insufficient.Requested,
		}}
	case errors.As(err, &reservedErr):
		return http.StatusConflict, errorBody{"reserved_exceeds_current", gin.H{"current": reservedErr.Current, "reserved": reservedErr.Reserved}}
	case errors.As(err, &inactive):
		return http.StatusConflict, errorBody{"material_inactive", gin.H{"id": inactive.ID}}
	case errors.As(err, &released):
		return http.StatusConflict, errorBody{"reservation_released", gin.H{"id": released.ID}}
	case errors.As(err, &mismatch):
		return http.StatusConflict, errorBody{"reservation_mismatch", gin.H{"field": mismatch.Field, "expected": mismatch.Expected, "actual": mismatch.Actual}}
	case errors.As(err, &transition):
		return http.StatusConflict, errorBody{"invalid_transition", gin.H{"from": transition.From, "to": transition.To}}
	case errors.As(err, &overDelivery):
		return http.StatusConflict, errorBody{"over_delivery", gin.H{
			"ordered":   overDelivery.Ordered,
			"delivered": overDelivery.Delivered,
			"attempted": overDelivery.Attempted,
		}}
	case errors.As(err, &blocked):
		return http.StatusConflict, errorBody{"blocked_deletion", gin.H{"estimate_refs": blocked.EstimateRefs, "reservations": blocked.ReservationRef}}
	case errors.As(err, &lockTimeoutErr):
		return http.StatusServiceUnavailable, errorBody{"lock_timeout", gin.H{"key": lockTimeoutErr.Key}}
	case errors.Is(err, shared.ErrLockBackendUnavailable):
		return http.StatusServiceUnavailable, errorBody{Error: "lock_backend_unavailable"}
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal"}
	}
}

func writeError(c *gin.Context, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		common.LoggerFromContext(c.Request.Context()).Error("request failed",
			"path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{"bad_request", err.Error()})
}
