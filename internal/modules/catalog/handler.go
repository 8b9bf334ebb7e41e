package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/apperror"
	"github.com/go-chi/chi/v5"
)

// Handler exposes catalog read endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Get("/search", h.searchProducts)
		r.Get("/next-id", h.nextProductID)
		r.Get("/category/{categoryId}", h.listByCategory)
		r.Get("/{id}/variants", h.listVariants)
		r.Get("/{id}", h.getProduct)
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, r.URL.Query().Get("categoryId"))
}

func (h *Handler) listByCategory(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, chi.URLParam(r, "categoryId"))
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, categoryID string) {
	products, err := h.service.ListProducts(r.Context(), categoryID)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, nonNil(products))
}

func (h *Handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.SearchProducts(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, nonNil(products))
}

func (h *Handler) nextProductID(w http.ResponseWriter, r *http.Request) {
	id, err := h.service.NextProductID(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"productId": id})
}

func (h *Handler) listVariants(w http.ResponseWriter, r *http.Request) {
	variants, err := h.service.ListVariants(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, variants)
}

// getProduct answers a single object when exactly one variant matches, which
// keeps older clients that predate variants working.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("variant"))
	if err != nil {
		fail(w, err)
		return
	}
	if len(products) == 1 {
		respond(w, http.StatusOK, products[0])
		return
	}
	respond(w, http.StatusOK, products)
}

func nonNil(p []*Product) []*Product {
	if p == nil {
		return []*Product{}
	}
	return p
}

func fail(w http.ResponseWriter, err error) {
	respond(w, apperror.HTTPStatus(err), map[string]string{"message": apperror.PublicMessage(err)})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
