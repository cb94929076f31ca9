package handler

import (
	"errors"
	"net/http"

	"github.com/AndresIzquierdoBrito/AppCacheAPI/internal/account"
	"github.com/AndresIzquierdoBrito/AppCacheAPI/internal/auth"
)

// GoogleHandler drives the browser through the OAuth code flow and turns
// the returned identity into a local session.
type GoogleHandler struct {
	Client         *auth.GoogleClient
	Svc            *account.Service
	Sessions       *auth.Sessions
	FrontendOrigin string
}

func (h *GoogleHandler) Login(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.Client.LoginURL(), http.StatusFound)
}

func (h *GoogleHandler) Callback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}

	ident, err := h.Client.Exchange(r.Context(), state, code)
	if err != nil {
		http.Error(w, "authentication failed", http.StatusBadRequest)
		return
	}

	u, err := h.Svc.CompleteExternalLogin(r.Context(), ident)
	if err != nil {
		if errors.Is(err, account.ErrNoEmail) {
			http.Error(w, "no email claim", http.StatusBadRequest)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	if err := h.Sessions.Issue(w, account.Principal(u)); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	if h.FrontendOrigin != "" {
		http.Redirect(w, r, h.FrontendOrigin, http.StatusFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}
