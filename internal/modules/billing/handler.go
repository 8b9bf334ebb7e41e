package billing

import (
	"encoding/json"
	"net/http"

	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/apperror"
	"github.com/go-chi/chi/v5"
)

// Handler exposes bill HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/bills", func(r chi.Router) {
		r.Post("/", h.createBill)                      // POST   /api/bills
		r.Get("/today", h.listToday)                   // GET    /api/bills/today
		r.Get("/date/{date}", h.listByDate)            // GET    /api/bills/date/{date}
		r.Get("/history/past30days", h.listPast30Days) // GET    /api/bills/history/past30days
		r.Get("/{billId}", h.getBill)                  // GET    /api/bills/{billId}
		r.Delete("/{billId}", h.deleteBill)            // DELETE /api/bills/{billId}
	})
}

func (h *Handler) createBill(w http.ResponseWriter, r *http.Request) {
	var req CreateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	b, err := h.service.CreateBill(r.Context(), req)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, b)
}

func (h *Handler) listToday(w http.ResponseWriter, r *http.Request) {
	bills, err := h.service.ListToday(r.Context())
	writeList(w, bills, err)
}

func (h *Handler) listByDate(w http.ResponseWriter, r *http.Request) {
	bills, err := h.service.ListByDate(r.Context(), chi.URLParam(r, "date"))
	writeList(w, bills, err)
}

func (h *Handler) listPast30Days(w http.ResponseWriter, r *http.Request) {
	bills, err := h.service.ListPast30Days(r.Context())
	writeList(w, bills, err)
}

func (h *Handler) getBill(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetBill(r.Context(), chi.URLParam(r, "billId"))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, b)
}

func (h *Handler) deleteBill(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteBill(r.Context(), chi.URLParam(r, "billId")); err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": "Bill deleted successfully"})
}

func writeList(w http.ResponseWriter, bills []*Bill, err error) {
	if err != nil {
		fail(w, err)
		return
	}
	if bills == nil {
		bills = []*Bill{}
	}
	respond(w, http.StatusOK, bills)
}

func fail(w http.ResponseWriter, err error) {
	respond(w, apperror.HTTPStatus(err), map[string]string{"message": apperror.PublicMessage(err)})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
