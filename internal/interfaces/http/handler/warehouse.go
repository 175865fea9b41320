package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appwarehouse "github.com/plant/backend/internal/application/warehouse"
	"github.com/plant/backend/internal/domain/shared"
	"github.com/plant/backend/internal/infrastructure/logger"
	"github.com/plant/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// WarehouseHandler handles the inventory bin endpoints
type WarehouseHandler struct {
	BaseHandler
	service               *appwarehouse.WarehouseService
	idempotency           shared.IdempotencyStore
	idempotencyTTL        time.Duration
	defaultDeliveryAmount int
}

// NewWarehouseHandler creates a new WarehouseHandler
func NewWarehouseHandler(
	service *appwarehouse.WarehouseService,
	idempotency shared.IdempotencyStore,
	idempotencyTTL time.Duration,
	defaultDeliveryAmount int,
) *WarehouseHandler {
	return &WarehouseHandler{
		service:               service,
		idempotency:           idempotency,
		idempotencyTTL:        idempotencyTTL,
		defaultDeliveryAmount: defaultDeliveryAmount,
	}
}

// CreateItemRequest represents a request to register an incoming lot
type CreateItemRequest struct {
	ProductName string `json:"product_name" binding:"max=200"`
	ProductCode string `json:"product_code" binding:"required,min=1,max=100"`
	Quantity    int    `json:"quantity" binding:"min=0"`
	Location    string `json:"location" binding:"omitempty,binaddress"`
	InDate      string `json:"in_date" binding:"omitempty,datetime=2006-01-02"`
	Note        string `json:"note" binding:"max=500"`
	Category    string `json:"category" binding:"max=100"`
	ProductType string `json:"product_type" binding:"max=100"`
	Limit       int    `json:"limit" binding:"min=0"`
}

// DeliverRequest carries the amount to ship out of a bin
type DeliverRequest struct {
	Amount *int `json:"amount" binding:"omitempty,min=1"`
}

// UpdateLimitsRequest carries a batch of per-bin capacity updates
type UpdateLimitsRequest struct {
	Limits []appwarehouse.LimitEntry `json:"limits" binding:"required,min=1"`
}

// ListItemsQuery binds the bin-list query parameters
type ListItemsQuery struct {
	Search      string `form:"search"`
	ProductType string `form:"product_type"`
	Category    string `form:"category"`
	Status      string `form:"status" binding:"omitempty,oneof=READY DONE"`
	RegDays     *int   `form:"reg_days" binding:"omitempty,min=1"`
	From        string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To          string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (q ListItemsQuery) toAppQuery() appwarehouse.ListQuery {
	query := appwarehouse.ListQuery{
		Search:      q.Search,
		ProductType: q.ProductType,
		Category:    q.Category,
		Status:      q.Status,
		RegDays:     q.RegDays,
		Page:        q.Page,
		PageSize:    q.PageSize,
	}
	if q.From != "" {
		from, _ := time.Parse(dateLayout, q.From)
		query.From = &from
	}
	if q.To != "" {
		// inclusive upper bound, end of day
		to, _ := time.Parse(dateLayout, q.To)
		to = to.Add(24*time.Hour - time.Nanosecond)
		query.To = &to
	}
	return query
}

// Create registers an incoming lot, splitting it across bins by capacity.
// A repeated Idempotency-Key header within the retention window is rejected
// with 409 so retried requests cannot double-book stock. A key whose create
// failed is released again, so error responses stay retryable.
func (h *WarehouseHandler) Create(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	idemKey := c.GetHeader("Idempotency-Key")
	marked := false
	if idemKey != "" && h.idempotency != nil {
		isNew, err := h.idempotency.MarkProcessed(c.Request.Context(), idemKey, h.idempotencyTTL)
		if err != nil {
			logger.GetGinLogger(c).Error("idempotency check failed", zap.Error(err))
			h.InternalError(c, "Failed to verify idempotency key")
			return
		}
		if !isNew {
			h.Conflict(c, dto.ErrCodeDuplicateRequest, "Request with this Idempotency-Key was already processed")
			return
		}
		marked = true
	}

	inDate := time.Now()
	if req.InDate != "" {
		inDate, _ = time.Parse(dateLayout, req.InDate)
	}

	result, err := h.service.CreateLot(c.Request.Context(), appwarehouse.CreateLotRequest{
		ProductName: req.ProductName,
		ProductCode: req.ProductCode,
		Quantity:    req.Quantity,
		Location:    req.Location,
		InDate:      inDate,
		Note:        req.Note,
		Category:    req.Category,
		ProductType: req.ProductType,
		Limit:       req.Limit,
	})
	if err != nil {
		if marked {
			if rerr := h.idempotency.Release(c.Request.Context(), idemKey); rerr != nil {
				logger.GetGinLogger(c).Warn("failed to release idempotency key", zap.Error(rerr))
			}
		}
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// List returns bins matching the filters with pagination meta
func (h *WarehouseHandler) List(c *gin.Context) {
	var query ListItemsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items, total, err := h.service.List(c.Request.Context(), query.toAppQuery())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// Get returns a single bin by ID
func (h *WarehouseHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bin ID")
		return
	}

	item, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// Deliver ships an amount out of a bin. When the body omits the amount, the
// configured default is used. A bin that reaches zero flips to DONE and gets
// its out-date stamped.
func (h *WarehouseHandler) Deliver(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bin ID")
		return
	}

	var req DeliverRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	amount := h.defaultDeliveryAmount
	if req.Amount != nil {
		amount = *req.Amount
	}

	item, err := h.service.Deliver(c.Request.Context(), id, amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// UpdateLimit sets the capacity limit of a single bin via the limit query
// parameter
func (h *WarehouseHandler) UpdateLimit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bin ID")
		return
	}

	var query struct {
		Limit int `form:"limit" binding:"required,min=1"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.service.UpdateLimit(c.Request.Context(), id, query.Limit); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"ok": true})
}

// UpdateLimits applies a batch of capacity updates. Invalid or missing
// entries are skipped; the response reports how many were applied.
func (h *WarehouseHandler) UpdateLimits(c *gin.Context) {
	var req UpdateLimitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	updated, err := h.service.UpdateLimitsBatch(c.Request.Context(), req.Limits)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"ok": true, "updated": updated})
}

// Delete removes a bin
func (h *WarehouseHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bin ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Export streams the filtered bins as an xlsx workbook
func (h *WarehouseHandler) Export(c *gin.Context) {
	var query ListItemsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	data, err := h.service.ExportBins(c.Request.Context(), query.toAppQuery())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("inventory-%s.xlsx", time.Now().Format(dateLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
