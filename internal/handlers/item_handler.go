package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"valetdesk/internal/services"
	"valetdesk/internal/status"
)

const (
	routeItems = "/items"
	routeItem  = "/items/{id}"
)

type ItemHandler struct {
	itemService *services.ItemService
}

func NewItemHandler(itemService *services.ItemService) *ItemHandler {
	return &ItemHandler{
		itemService: itemService,
	}
}

// ListItems - Get all parking tickets
func (h *ItemHandler) ListItems(e *core.RequestEvent) error {
	items, err := h.itemService.ListItems(e.Request.Context())
	if err != nil {
		return h.fail(e, err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    items,
		"count":   len(items),
	})
}

// GetItem - Get a specific parking ticket by id
func (h *ItemHandler) GetItem(e *core.RequestEvent) error {
	item, err := h.itemService.GetItem(e.Request.Context(), e.Request.PathValue("id"))
	if err != nil {
		return h.fail(e, err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    item,
	})
}

// CreateItem - Create a new parking ticket
func (h *ItemHandler) CreateItem(e *core.RequestEvent) error {
	var raw map[string]any
	if err := e.BindBody(&raw); err != nil {
		slog.Warn("Invalid create item body", "error", err)
		return h.respondError(e, http.StatusBadRequest, "Invalid request body")
	}
	// An empty body, null and {} all carry no ticket data.
	if len(raw) == 0 {
		return h.respondError(e, http.StatusBadRequest, "No data provided")
	}

	req, err := decodeCreateInput(raw)
	if err != nil {
		slog.Warn("Invalid create item body", "error", err)
		return h.respondError(e, http.StatusBadRequest, "Invalid request body")
	}

	item, err := h.itemService.CreateItem(e.Request.Context(), req)
	if err != nil {
		return h.fail(e, err)
	}

	return e.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"message": "Parking ticket created successfully",
		"data":    item,
	})
}

// UpdateItemStatus - Change the status of a parking ticket
func (h *ItemHandler) UpdateItemStatus(e *core.RequestEvent) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := e.BindBody(&req); err != nil {
		slog.Warn("Invalid update item body", "error", err)
		return h.respondError(e, http.StatusBadRequest, "Invalid request body")
	}

	item, err := h.itemService.UpdateItemStatus(e.Request.Context(), e.Request.PathValue("id"), req.Status)
	if err != nil {
		return h.fail(e, err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Parking ticket updated successfully",
		"data":    item,
	})
}

// DeleteItem - Remove a parking ticket
func (h *ItemHandler) DeleteItem(e *core.RequestEvent) error {
	if err := h.itemService.DeleteItem(e.Request.Context(), e.Request.PathValue("id")); err != nil {
		return h.fail(e, err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Parking ticket deleted successfully",
	})
}

func (h *ItemHandler) fail(e *core.RequestEvent, err error) error {
	var validationErr *status.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return h.respondError(e, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, status.ErrItemNotFound):
		return h.respondError(e, http.StatusNotFound, "Item not found")
	default:
		slog.Error("Item request failed", "method", e.Request.Method, "path", e.Request.URL.Path, "error", err)
		return h.respondError(e, http.StatusInternalServerError, err.Error())
	}
}

func decodeCreateInput(raw map[string]any) (services.CreateItemInput, error) {
	var input services.CreateItemInput
	body, err := json.Marshal(raw)
	if err != nil {
		return input, err
	}
	err = json.Unmarshal(body, &input)
	return input, err
}

func (h *ItemHandler) respondError(e *core.RequestEvent, code int, message string) error {
	return e.JSON(code, map[string]any{
		"success": false,
		"error":   message,
	})
}
