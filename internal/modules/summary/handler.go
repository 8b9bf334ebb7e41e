package summary

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/apperror"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/clock"
	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler exposes day-end and summary endpoints.
type Handler struct {
	service Service
	cal     *clock.Calendar
	clock   clock.Clock
}

func NewHandler(service Service, cal *clock.Calendar, clk clock.Clock) *Handler {
	return &Handler{service: service, cal: cal, clock: clk}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/day", func(r chi.Router) {
		r.Get("/current", h.currentDay) // GET  /api/day/current
		r.Post("/end", h.endDay)        // POST /api/day/end
	})
	r.Route("/summary", func(r chi.Router) {
		r.Get("/daily/{date}", h.getDaily)                // GET  /api/summary/daily/{date}
		r.Post("/monthly/create", h.createMonthly)        // POST /api/summary/monthly/create
		r.Get("/monthly", h.listMonthly)                  // GET  /api/summary/monthly
		r.Get("/monthly/{month}", h.getMonthly)           // GET  /api/summary/monthly/{month}
		r.Get("/monthly/{month}/export", h.exportMonthly) // GET  /api/summary/monthly/{month}/export
		r.Get("/available-dates", h.availableDates)       // GET  /api/summary/available-dates
	})
}

func (h *Handler) currentDay(w http.ResponseWriter, r *http.Request) {
	day, err := h.service.CurrentDay(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, day)
}

// endDay closes today in the shop's timezone.
func (h *Handler) endDay(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.CloseDay(r.Context(), h.cal.DayID(h.clock.Now()))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, summary)
}

func (h *Handler) getDaily(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetDaily(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, summary)
}

func (h *Handler) createMonthly(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.RollingMonth(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, summary)
}

func (h *Handler) listMonthly(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.ListMonthly(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	if summaries == nil {
		summaries = []*MonthlySummary{}
	}
	respond(w, http.StatusOK, summaries)
}

func (h *Handler) getMonthly(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetMonthly(r.Context(), chi.URLParam(r, "month"))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, summary)
}

func (h *Handler) exportMonthly(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	data, err := h.service.ExportMonthly(r.Context(), month)
	if err != nil {
		fail(w, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=summary-%s.xlsx", month))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) availableDates(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.service.AvailableDates())
}

func fail(w http.ResponseWriter, err error) {
	respond(w, apperror.HTTPStatus(err), map[string]string{"message": apperror.PublicMessage(err)})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
