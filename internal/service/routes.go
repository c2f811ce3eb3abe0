package service

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olchaban/receipts/internal/auth"
	"github.com/olchaban/receipts/internal/middleware"
)

// Routes assembles the full HTTP handler: middleware chain, auth
// endpoints, receipt endpoints and the metrics page.
//
// The single-receipt text view is deliberately outside the
// authenticated group; anyone holding a receipt id may fetch its text.
func Routes(authSvc *AuthService, receipts *ReceiptService, tokens *auth.JWTManager) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Metrics)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Hello, World!"})
	})
	r.Method(http.MethodGet, "/metrics", middleware.MetricsHandler())

	r.Route("/users", func(r chi.Router) {
		r.Post("/register", authSvc.Register)
		r.Post("/login", authSvc.Login)
		r.Post("/refresh", authSvc.Refresh)
	})

	r.Route("/receipts", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(tokens))
			r.Post("/", receipts.Create)
			r.Get("/", receipts.List)
		})
		r.Get("/{id}", receipts.PublicText)
	})

	return r
}
