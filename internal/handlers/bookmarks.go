package handlers

import (
	"context"
	"net/http"

	"github.com/benvon/card-collection/internal/bookmarks"
	logpkg "github.com/benvon/card-collection/internal/logger"
	"github.com/benvon/card-collection/internal/request"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// BookmarkHandler manages a visitor's bookmarked cards
type BookmarkHandler struct {
	store  bookmarks.Store
	logger *zap.Logger
}

// NewBookmarkHandler creates a new bookmark handler
func NewBookmarkHandler(store bookmarks.Store, logger *zap.Logger) *BookmarkHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookmarkHandler{store: store, logger: logger}
}

// RegisterRoutes registers bookmark routes on the given router
// The router should already have the /bookmarks prefix
func (h *BookmarkHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListBookmarks).Methods("GET")
	r.HandleFunc("/{cardId}", h.AddBookmark).Methods("PUT")
	r.HandleFunc("/{cardId}", h.RemoveBookmark).Methods("DELETE")
}

// BookmarksResponse lists a visitor's bookmarked card ids
type BookmarksResponse struct {
	CardIDs []string `json:"card_ids"`
}

func (h *BookmarkHandler) visitor(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := request.VisitorID(r)
	if !ok {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "A valid "+request.VisitorIDHeader+" header is required")
	}
	return id, ok
}

// ListBookmarks returns the visitor's bookmarks
func (h *BookmarkHandler) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	visitorID, ok := h.visitor(w, r)
	if !ok {
		return
	}
	ids, err := h.store.List(r.Context(), visitorID)
	if err != nil {
		respondError(w, h.logger, err, "failed_to_list_bookmarks")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	respondJSON(w, http.StatusOK, BookmarksResponse{CardIDs: ids})
}

// AddBookmark bookmarks a card; repeating it is harmless
func (h *BookmarkHandler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, h.store.Add, "bookmark_added", "failed_to_add_bookmark")
}

// RemoveBookmark removes a bookmark; removing a missing one is harmless
func (h *BookmarkHandler) RemoveBookmark(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, h.store.Remove, "bookmark_removed", "failed_to_remove_bookmark")
}

func (h *BookmarkHandler) change(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, visitorID, cardID string) error, event, failure string) {
	visitorID, ok := h.visitor(w, r)
	if !ok {
		return
	}
	cardID := mux.Vars(r)["cardId"]
	if err := apply(r.Context(), visitorID, cardID); err != nil {
		respondError(w, h.logger, err, failure)
		return
	}
	h.logger.Debug(event,
		zap.String("visitor_id", logpkg.SanitizeID(visitorID)),
		zap.String("card_id", logpkg.SanitizeID(cardID)),
	)

	ids, err := h.store.List(r.Context(), visitorID)
	if err != nil {
		respondError(w, h.logger, err, "failed_to_list_bookmarks")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	respondJSON(w, http.StatusOK, BookmarksResponse{CardIDs: ids})
}
