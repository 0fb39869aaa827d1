package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"sweets-app-go/internal/transport/httpserver/handler"
	"sweets-app-go/internal/transport/httpserver/middleware"
)

func NewRouter(handlers *handler.Handlers, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.NewCORS(allowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		r.Get("/products", handlers.ListProducts)
		r.Post("/products", handlers.CreateProduct)
		r.Delete("/products/{id}", handlers.DeleteProduct)

		r.Get("/events", handlers.ListSavedEvents)
		r.Delete("/events/{id}", handlers.DeleteSaved)
		r.Post("/events/{id}/edit", handlers.LoadForEditing)

		r.Get("/events/draft", handlers.GetDraft)
		r.Get("/events/draft/summary", handlers.DraftSummary)
		r.Patch("/events/draft", handlers.UpdateDraftField)
		r.Post("/events/draft/finalize", handlers.FinalizeDraft)
		r.Post("/events/draft/reset", handlers.ResetDraft)
		r.Put("/events/draft/products/{product_id}", handlers.UpdateDraftProduct)
		r.Post("/events/draft/products/{product_id}/increment", handlers.IncrementSale)
		r.Post("/events/draft/products/{product_id}/decrement", handlers.DecrementSale)
	})

	return r
}
