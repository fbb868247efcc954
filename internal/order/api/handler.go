package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-orders/internal/auth"
	"ms-orders/internal/logger"
	"ms-orders/internal/models"
	"ms-orders/internal/order"
	"ms-orders/internal/order/receipt"
	"ms-orders/internal/utils"
)

const maxUploadBytes = 5 << 20 // 5 MB, matching the storefront's upload cap

type Handler struct {
	OrderService *order.OrderService
	Receipts     *receipt.Generator
	Logger       *logger.Logger
}

func writeJSON(w http.ResponseWriter, status int, resp utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// CreateOrder accepts the storefront's multipart submission: form attributes
// plus an optional logo file. Validation problems are the only errors it
// reports; storage trouble is absorbed by the service's tier fallback.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
			return
		}
	}

	sub := submissionFromForm(r)

	if file, _, err := r.FormFile("logo"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("could not read logo upload", err.Error()))
			return
		}
		sub.Logo = data
	}

	created, err := h.OrderService.Submit(sub)
	if err != nil {
		var vErr *order.ValidationError
		if errors.As(err, &vErr) {
			writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("order rejected", vErr.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("could not place order", err.Error()))
		return
	}

	writeJSON(w, http.StatusCreated, utils.SuccessResponse("order received", created))
}

func submissionFromForm(r *http.Request) order.Submission {
	sub := order.Submission{
		StoreName:         r.FormValue("storeName"),
		BusinessType:      r.FormValue("businessType"),
		Province:          r.FormValue("province"),
		City:              r.FormValue("city"),
		Address:           r.FormValue("address"),
		PhoneNumber:       r.FormValue("phoneNumber"),
		Whatsapp:          r.FormValue("whatsapp"),
		Telegram:          r.FormValue("telegram"),
		FavoriteColor:     r.FormValue("favoriteColor"),
		PreferredFont:     r.FormValue("preferredFont"),
		BrandSlogan:       r.FormValue("brandSlogan"),
		Categories:        r.FormValue("categories"),
		EstimatedProducts: r.FormValue("estimatedProducts"),
		ProductDisplay:    r.FormValue("productDisplayType"),
		SpecialFeatures:   r.FormValue("specialFeatures"),
		PricingPlan:       r.FormValue("pricingPlan"),
		AdditionalNotes:   r.FormValue("additionalNotes"),
	}

	// The client sends the module selection either as repeated fields or as
	// one JSON-encoded array.
	modules := r.Form["additionalModules"]
	if len(modules) == 1 {
		var decoded []string
		if err := json.Unmarshal([]byte(modules[0]), &decoded); err == nil {
			sub.AdditionalModules = decoded
			return sub
		}
	}
	sub.AdditionalModules = modules
	return sub
}

// ListOrders returns every visible order, newest first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.OrderService.GetOrders()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("could not list orders", err.Error()))
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse(fmt.Sprintf("%d orders found", len(orders)), orders))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	found, err := h.OrderService.GetOrder(orderID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("order not found", orderID))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("order found", found))
}

// UpdateStatus applies a status change. Unknown statuses are rejected;
// transitions that skip the usual lifecycle are applied but logged, as an
// administrative escape hatch.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	var req struct {
		Status models.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}
	if !models.KnownStatus(req.Status) {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("unknown status", string(req.Status)))
		return
	}

	if current, err := h.OrderService.GetOrder(orderID); err == nil {
		if !models.ValidTransition(current.Status, req.Status) {
			h.Logger.LogSecurity("STATUS_OVERRIDE", fmt.Sprintf(
				"%s forced %s from %s to %s", auth.Subject(r.Context()), orderID, current.Status, req.Status))
		}
	}

	result, err := h.OrderService.UpdateStatus(orderID, req.Status)
	if err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			writeJSON(w, http.StatusNotFound, utils.ErrorResponse("order not found", orderID))
			return
		}
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("could not update status", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("order status updated", result))
}

// Receipt renders the order's tracking QR as a PNG.
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	found, err := h.OrderService.GetOrder(orderID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("order not found", orderID))
		return
	}

	png, err := h.Receipts.OrderQR(*found)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("could not render receipt", err.Error()))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, utils.SuccessResponse("ok", nil))
}
