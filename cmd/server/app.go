package main

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/sahasajib/invo/internal/auth"
	"github.com/sahasajib/invo/internal/handlers"
	"github.com/sahasajib/invo/internal/services"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux *http.ServeMux
	db  *gorm.DB
}

// NewApp creates a new application with all routes configured.
func NewApp(db *gorm.DB, svc *services.InvoiceService) *App {
	app := &App{mux: http.NewServeMux(), db: db}

	ah := handlers.NewAuthHandler(db)
	ih := handlers.NewInvoiceHandler(db, svc)

	// Public routes
	app.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/invoices", http.StatusSeeOther)
	})
	app.mux.HandleFunc("GET /login", ah.Login)
	app.mux.HandleFunc("POST /login", ah.Login)
	app.mux.HandleFunc("GET /signup", ah.Signup)
	app.mux.HandleFunc("POST /signup", ah.Signup)
	app.mux.HandleFunc("GET /logout", ah.Logout)
	app.mux.HandleFunc("POST /logout", ah.Logout)

	// Invoice routes (require a logged-in user)
	app.mux.Handle("GET /invoices", requireAuth(http.HandlerFunc(ih.List)))
	app.mux.Handle("GET /invoices/new", requireAuth(http.HandlerFunc(ih.New)))
	app.mux.Handle("POST /invoices", requireAuth(http.HandlerFunc(ih.Create)))
	app.mux.Handle("POST /invoices/{id}/pay", requireAuth(http.HandlerFunc(ih.Pay)))
	app.mux.Handle("POST /invoices/{id}/delete", requireAuth(http.HandlerFunc(ih.Delete)))
	app.mux.Handle("POST /invoices/{id}/email", requireAuth(http.HandlerFunc(ih.SendEmail)))

	// Static files
	app.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	auth.Middleware(a.mux).ServeHTTP(w, r)
}

// requireAuth wraps a handler to require authentication.
func requireAuth(next http.Handler) http.Handler {
	return auth.RequireAuth(next)
}
