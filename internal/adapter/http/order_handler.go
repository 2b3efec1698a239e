package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/YelzhanWeb/qrdine/internal/adapter/logger"
	"github.com/YelzhanWeb/qrdine/internal/domain"
	"github.com/YelzhanWeb/qrdine/internal/interfaces"
)

type OrderHandler struct {
	orders interfaces.OrderService
	status interfaces.StatusService
	lookup interfaces.LookupService
	auth   *Authenticator
	logger logger.Logger
}

func NewOrderHandler(
	orders interfaces.OrderService,
	status interfaces.StatusService,
	lookup interfaces.LookupService,
	auth *Authenticator,
	lgr logger.Logger,
) *OrderHandler {
	return &OrderHandler{orders: orders, status: status, lookup: lookup, auth: auth, logger: lgr}
}

type CreateOrderRequest struct {
	VenueID       string             `json:"venue_id"`
	TableID       string             `json:"table_id"`
	Items         []OrderItemRequest `json:"items"`
	Customer      *CustomerRequest   `json:"customer,omitempty"`
	PaymentMethod string             `json:"payment_method"`
}

// OrderItemRequest deliberately has no price field: the request cannot
// influence pricing.
type OrderItemRequest struct {
	MenuItemID   string `json:"menu_item_id"`
	Quantity     int    `json:"quantity"`
	Instructions string `json:"instructions,omitempty"`
}

type CustomerRequest struct {
	Name      string   `json:"name,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Email     string   `json:"email,omitempty"`
	PushToken string   `json:"push_token,omitempty"`
	Channels  []string `json:"channels,omitempty"`
}

type CreateOrderResponse struct {
	OrderID                     string `json:"order_id"`
	OrderNumber                 string `json:"order_number"`
	TotalAmount                 int64  `json:"total_amount"`
	EstimatedPreparationMinutes int    `json:"estimated_preparation_minutes"`
	TrackingURL                 string `json:"tracking_url"`
}

type UpdateStatusRequest struct {
	Status             string `json:"status"`
	CancellationReason string `json:"cancellation_reason,omitempty"`
}

type UpdateStatusResponse struct {
	Success   bool          `json:"success"`
	NewStatus domain.Status `json:"new_status"`
}

// CreateOrder handles POST /orders.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		return
	}

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if validationErrors := validateCreateOrderRequest(req); len(validationErrors) > 0 {
		h.logger.Debug("validation_failed", "Order request rejected", "", map[string]interface{}{
			"errors": validationErrors,
		})
		writeValidationErrors(w, validationErrors)
		return
	}

	cmd := interfaces.CreateOrderCommand{
		VenueID:       strings.TrimSpace(req.VenueID),
		TableID:       strings.TrimSpace(req.TableID),
		PaymentMethod: req.PaymentMethod,
		Items:         convertItems(req.Items),
	}
	if req.Customer != nil {
		cmd.Customer = &domain.CustomerContact{
			Name:      strings.TrimSpace(req.Customer.Name),
			Phone:     strings.TrimSpace(req.Customer.Phone),
			Email:     strings.TrimSpace(req.Customer.Email),
			PushToken: req.Customer.PushToken,
			Channels:  req.Customer.Channels,
		}
	}

	result, err := h.orders.CreateOrder(r.Context(), cmd)
	if err != nil {
		h.logger.Error("order_creation_failed", "Failed to create order", "", nil, err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateOrderResponse{
		OrderID:                     result.OrderID,
		OrderNumber:                 result.OrderNumber,
		TotalAmount:                 result.TotalAmount,
		EstimatedPreparationMinutes: result.EstimatedMinutes,
		TrackingURL:                 result.TrackingURL,
	})
}

// HandleOrders routes GET /orders/{number} and
// PATCH /orders/{id}/status.
func (h *OrderHandler) HandleOrders(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid path"})
		return
	}

	switch {
	case len(parts) == 2 && r.Method == http.MethodGet:
		h.getOrder(w, r, parts[1])
	case len(parts) == 3 && parts[2] == "status" && r.Method == http.MethodPatch:
		h.updateStatus(w, r, parts[1])
	default:
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found"})
	}
}

func (h *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request, number string) {
	view, err := h.lookup.GetOrderByNumber(r.Context(), number)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *OrderHandler) updateStatus(w http.ResponseWriter, r *http.Request, orderID string) {
	principal, err := h.auth.Principal(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		writeValidationErrors(w, []ValidationError{{Field: "status", Message: "status is required"}})
		return
	}

	result, err := h.status.UpdateStatus(r.Context(), interfaces.UpdateStatusCommand{
		OrderID:            orderID,
		Target:             domain.Status(req.Status),
		CancellationReason: req.CancellationReason,
		Principal:          principal,
	})
	if err != nil {
		h.logger.Error("status_update_failed", "Failed to update order status", orderID, map[string]interface{}{
			"target": req.Status,
		}, err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UpdateStatusResponse{Success: true, NewStatus: result.NewStatus})
}

func validateCreateOrderRequest(req CreateOrderRequest) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(req.VenueID) == "" {
		errors = append(errors, ValidationError{Field: "venue_id", Message: "venue id is required"})
	}
	if strings.TrimSpace(req.TableID) == "" {
		errors = append(errors, ValidationError{Field: "table_id", Message: "table id is required"})
	}

	if !domain.PaymentMethod(req.PaymentMethod).Valid() {
		errors = append(errors, ValidationError{
			Field:   "payment_method",
			Message: "payment method must be one of: cash, card, online",
		})
	}

	if len(req.Items) < 1 {
		errors = append(errors, ValidationError{Field: "items", Message: "order must contain at least 1 item"})
	} else if len(req.Items) > 50 {
		errors = append(errors, ValidationError{Field: "items", Message: "order must not contain more than 50 items"})
	}

	for i, item := range req.Items {
		itemPrefix := fmt.Sprintf("items[%d]", i)

		if strings.TrimSpace(item.MenuItemID) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("%s.menu_item_id", itemPrefix),
				Message: "menu item id is required",
			})
		}
		if item.Quantity < 1 {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("%s.quantity", itemPrefix),
				Message: "item quantity must be at least 1",
			})
		} else if item.Quantity > 50 {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("%s.quantity", itemPrefix),
				Message: "item quantity must not exceed 50",
			})
		}
	}

	return errors
}

func convertItems(items []OrderItemRequest) []interfaces.OrderLineCommand {
	result := make([]interfaces.OrderLineCommand, len(items))
	for i, item := range items {
		result[i] = interfaces.OrderLineCommand{
			MenuItemID:   strings.TrimSpace(item.MenuItemID),
			Quantity:     item.Quantity,
			Instructions: item.Instructions,
		}
	}
	return result
}
