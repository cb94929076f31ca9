package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/AndresIzquierdoBrito/AppCacheAPI/internal/auth"
	"github.com/AndresIzquierdoBrito/AppCacheAPI/internal/idea"
)

type IdeaHandler struct {
	Store *idea.Store
}

type createIdeaReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *IdeaHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createIdeaReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		http.Error(w, "title required", http.StatusBadRequest)
		return
	}

	e, err := h.Store.Create(r.Context(), uid, req.Title, req.Description)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", fmt.Sprintf("/ideas/%d", e.IdeaID))
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(e)
}

type updateIdeaReq struct {
	IdeaID      uint64 `json:"ideaId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *IdeaHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateIdeaReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.IdeaID != id {
		http.Error(w, "id mismatch", http.StatusBadRequest)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		http.Error(w, "title required", http.StatusBadRequest)
		return
	}

	if err := h.Store.Update(r.Context(), uid, id, req.Title, req.Description); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *IdeaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.Store.Delete(r.Context(), uid, id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *IdeaHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var pairs []idea.OrderPair
	if err := json.NewDecoder(r.Body).Decode(&pairs); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	if err := h.Store.Reorder(r.Context(), uid, pairs); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *IdeaHandler) SetCategoryOrder(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	categoryID, err := pathID(r, "categoryID")
	if err != nil {
		http.Error(w, "invalid category id", http.StatusBadRequest)
		return
	}

	var ideaIDs []uint64
	if err := json.NewDecoder(r.Body).Decode(&ideaIDs); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	if err := h.Store.SetCategoryOrder(r.Context(), uid, categoryID, ideaIDs); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
