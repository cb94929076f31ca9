package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/AndresIzquierdoBrito/AppCacheAPI/internal/account"
	"github.com/AndresIzquierdoBrito/AppCacheAPI/internal/auth"
	"github.com/AndresIzquierdoBrito/AppCacheAPI/internal/config"
	"github.com/AndresIzquierdoBrito/AppCacheAPI/internal/http/handler"
	mw "github.com/AndresIzquierdoBrito/AppCacheAPI/internal/http/middleware"
	"github.com/AndresIzquierdoBrito/AppCacheAPI/internal/idea"
)

func NewRouter(cfg config.Config, gdb *gorm.DB, sessions *auth.Sessions, google *auth.GoogleClient, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(mw.RequestLogger(logger))

	if cfg.FrontendOrigin != "" {
		r.Use(mw.CORS(cfg.FrontendOrigin))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	accountSvc := &account.Service{DB: gdb}
	ah := &handler.AccountHandler{Svc: accountSvc, Sessions: sessions}
	gh := &handler.GoogleHandler{
		Client:         google,
		Svc:            accountSvc,
		Sessions:       sessions,
		FrontendOrigin: cfg.FrontendOrigin,
	}

	r.Route("/account", func(r chi.Router) {
		r.Post("/register", ah.Register)
		r.Post("/login", ah.Login)
		r.Get("/login-google", gh.Login)
		r.Get("/signin-google", gh.Callback)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(sessions))
			r.Post("/logout", ah.Logout)
			r.Get("/me", ah.Me)
		})
	})

	store := &idea.Store{DB: gdb}
	ih := &handler.IdeaHandler{Store: store}
	rh := &handler.IdeaReadHandler{Store: store}

	r.Route("/ideas", func(r chi.Router) {
		r.Use(auth.RequireAuth(sessions))

		r.Get("/", rh.List)
		r.Post("/", ih.Create)

		r.Get("/from-category/{categoryID}", rh.ListFromCategory)

		r.Put("/reorder", ih.Reorder)
		r.Put("/order/{categoryID}", ih.SetCategoryOrder)

		r.Get("/{id}", rh.Get)
		r.Put("/{id}", ih.Update)
		r.Delete("/{id}", ih.Delete)
	})

	return r
}
