package httppresentation

import (
	"errors"
	"net/http"

	"github.com/PtahaWebDez/Flower-crm/internal/application/allocation"
	"github.com/PtahaWebDez/Flower-crm/internal/domain/inventory"
	"github.com/PtahaWebDez/Flower-crm/internal/domain/order"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	st := h.svc.Snapshot(r.Context())
	resp := stateResponse{
		Orders:   make([]orderDTO, 0, len(st.Orders)),
		Stock:    st.Stock,
		Products: st.Products,
		Statuses: order.Statuses,
	}
	for _, o := range st.Orders {
		resp.Orders = append(resp.Orders, toOrderDTO(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tentative := make([]allocation.Tentative, 0, len(req.Tentative))
	for _, it := range req.Tentative {
		item := it.batchItem()
		tentative = append(tentative, allocation.Tentative{Name: item.Name, Composition: item.Composition})
	}
	verdict := h.svc.CheckAvailability(r.Context(), req.Product, tentative)
	writeJSON(w, http.StatusOK, toCheckResponse(verdict))
}

func (h *Handler) handleBook(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	o, err := h.svc.BookSingle(r.Context(), req.Product)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderDTO(o))
}

func (h *Handler) handleBookBatch(w http.ResponseWriter, r *http.Request) {
	var req bookBatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	items := make([]allocation.BatchItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = it.batchItem()
	}
	o, err := h.svc.BookBatch(r.Context(), items)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderDTO(o))
}

func (h *Handler) handlePrepareReplacement(w http.ResponseWriter, r *http.Request) {
	var req prepareReplacementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	extras := make([]inventory.Line, len(req.Extras))
	for i, e := range req.Extras {
		extras[i] = inventory.Line{Component: e.Component, Quantity: e.Quantity}
	}
	item, err := h.svc.PrepareReplacement(r.Context(), req.Product, extras)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemDTO{Name: item.Name, Mode: item.Mode, Composition: item.Composition})
}

func (h *Handler) handleEditNumber(w http.ResponseWriter, r *http.Request) {
	ctx, idx, err := h.orderIndex(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req numberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.respondOrder(w, func() (*order.Order, error) {
		return h.svc.EditOrderNumber(ctx, idx, req.Number)
	})
}

func (h *Handler) handleEditName(w http.ResponseWriter, r *http.Request) {
	ctx, idx, err := h.orderIndex(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.respondOrder(w, func() (*order.Order, error) {
		return h.svc.EditOrderName(ctx, idx, req.Bouquet, req.Name)
	})
}

func (h *Handler) handleEditQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, idx, err := h.orderIndex(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req quantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.respondOrder(w, func() (*order.Order, error) {
		return h.svc.EditOrderQuantity(ctx, idx, req.Bouquet, req.Component, req.Quantity)
	})
}

func (h *Handler) handleEditComposition(w http.ResponseWriter, r *http.Request) {
	ctx, idx, err := h.orderIndex(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req compositionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := h.svc.EditOrderComposition(ctx, idx, req.Bouquet, req.Text)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, compositionResponse{
		Order:   toOrderDTO(res.Order),
		Skipped: lineErrorsDTO(res.Skipped),
	})
}

func (h *Handler) handleEditStatus(w http.ResponseWriter, r *http.Request) {
	ctx, idx, err := h.orderIndex(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.respondOrder(w, func() (*order.Order, error) {
		return h.svc.EditOrderStatus(ctx, idx, req.Status)
	})
}

func (h *Handler) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, idx, err := h.orderIndex(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.respondOrder(w, func() (*order.Order, error) {
		return h.svc.DeleteOrder(ctx, idx)
	})
}

func (h *Handler) handleSetStock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Quantity == nil {
		writeError(w, http.StatusBadRequest, errors.New("quantity is required"))
		return
	}

	stock, err := h.svc.SetStock(r.Context(), chi.URLParam(r, "component"), *req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stockResponse{Stock: stock})
}

func (h *Handler) respondOrder(w http.ResponseWriter, call func() (*order.Order, error)) {
	o, err := call()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(o))
}
