package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ecomstack/backend/internal/auth"
	"github.com/ecomstack/backend/internal/cart"
	"github.com/ecomstack/backend/internal/catalog"
	"github.com/ecomstack/backend/internal/middleware"
	"github.com/ecomstack/backend/internal/upload"
)

// backend is what every store driver provides.
type backend interface {
	catalog.ProductStore
	auth.UserStore
	cart.Store
}

type routerDeps struct {
	store          backend
	files          upload.FileStore
	tokens         *auth.Tokens
	log            *slog.Logger
	publicBaseURL  string
	maxUploadBytes int64
	allowedOrigins []string
}

func newRouter(d routerDeps) http.Handler {
	catalogHandler := catalog.NewHandler(d.store, d.log)
	authHandler := auth.NewHandler(d.store, d.tokens, d.log)
	cartHandler := cart.NewHandler(d.store, d.log)
	uploadHandler := upload.NewHandler(d.files, d.publicBaseURL, d.maxUploadBytes, d.log)
	requireAuth := middleware.RequireAuth(d.tokens, d.log)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", middleware.TokenHeader},
		MaxAge:         300,
	}))

	// Liveness
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("E-commerce API is running"))
	})

	// Images
	r.Post("/upload", uploadHandler.Upload)
	r.Get(upload.ImagePath+"/{name}", uploadHandler.Serve)

	// Catalog (public)
	r.Post("/addproduct", catalogHandler.Add)
	r.Post("/removeproduct", catalogHandler.Remove)
	r.Get("/allproducts", catalogHandler.All)
	r.Get("/newcollections", catalogHandler.NewCollections)
	r.Get("/popularinwomen", catalogHandler.PopularInWomen)

	// Accounts
	r.Post("/signup", authHandler.Signup)
	r.Post("/login", authHandler.Login)
	r.With(requireAuth).Post("/logout", authHandler.Logout)

	// Cart (protected)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/addtocart", cartHandler.Add)
		r.Post("/removefromcart", cartHandler.Remove)
		r.Post("/getcart", cartHandler.Get)
	})

	return r
}
