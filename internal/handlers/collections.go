package handlers

import (
	"net/http"
	"time"

	"github.com/benvon/card-collection/internal/bookmarks"
	"github.com/benvon/card-collection/internal/collection"
	"github.com/benvon/card-collection/internal/dates"
	"github.com/benvon/card-collection/internal/eventtiming"
	"github.com/benvon/card-collection/internal/filterer"
	logpkg "github.com/benvon/card-collection/internal/logger"
	"github.com/benvon/card-collection/internal/models"
	"github.com/benvon/card-collection/internal/request"
	"github.com/benvon/card-collection/internal/tagmatch"
	"github.com/benvon/card-collection/internal/telemetry"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CollectionHandler serves a collection's cards and sessions
type CollectionHandler struct {
	store     collection.Store
	bookmarks bookmarks.Store
	matcher   *tagmatch.Matcher
	clock     dates.Clock
	logger    *zap.Logger
}

// CollectionHandlerOption configures a CollectionHandler
type CollectionHandlerOption func(*CollectionHandler)

// WithCollectionClock sets the clock used for date filtering and session timing
func WithCollectionClock(clock dates.Clock) CollectionHandlerOption {
	return func(h *CollectionHandler) {
		h.clock = dates.OrSystem(clock)
	}
}

// WithCollectionTagMatcher sets the featured/gated tag patterns
func WithCollectionTagMatcher(m *tagmatch.Matcher) CollectionHandlerOption {
	return func(h *CollectionHandler) {
		h.matcher = m
	}
}

// NewCollectionHandler creates a new collection handler
func NewCollectionHandler(store collection.Store, bookmarkStore bookmarks.Store, logger *zap.Logger, opts ...CollectionHandlerOption) *CollectionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &CollectionHandler{
		store:     store,
		bookmarks: bookmarkStore,
		clock:     dates.SystemClock{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers collection routes on the given router
// The router should already have the /collections prefix
func (h *CollectionHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListCollections).Methods("GET")
	r.HandleFunc("/{id}", h.GetCollection).Methods("GET")
	r.HandleFunc("/{id}/cards", h.ListCards).Methods("GET")
	r.HandleFunc("/{id}/sessions", h.ListSessions).Methods("GET")
}

// CollectionSummary describes a collection without its cards
type CollectionSummary struct {
	ID            string               `json:"id"`
	Title         string               `json:"title,omitempty"`
	FilterGroups  []models.FilterGroup `json:"filter_groups"`
	FilterLogic   models.FilterType    `json:"filter_logic"`
	DefaultSort   models.SortOption    `json:"default_sort"`
	SearchFields  []string             `json:"search_fields"`
	ShowBookmarks bool                 `json:"show_bookmarks"`
	CardCount     int                  `json:"card_count"`
}

// CardsResponse is the result of a cards request
type CardsResponse struct {
	CollectionID string         `json:"collection_id"`
	Cards        []*models.Card `json:"cards"`
	Total        int            `json:"total"`
	Sort         string         `json:"sort"`
	DataErrors   []string       `json:"data_errors,omitempty"`
}

// SessionsResponse is the result of a sessions request
type SessionsResponse struct {
	CollectionID     string         `json:"collection_id"`
	Now              time.Time      `json:"now"`
	Visible          []*models.Card `json:"visible"`
	Live             []*models.Card `json:"live"`
	Upcoming         []*models.Card `json:"upcoming"`
	Past             []*models.Card `json:"past"`
	Fallback         bool           `json:"fallback"`
	NextTransitionMs *int64         `json:"next_transition_ms"`
	NextTransitionAt *time.Time     `json:"next_transition_at,omitempty"`
	DataErrors       []string       `json:"data_errors,omitempty"`
}

// ListCollections lists collection ids
func (h *CollectionHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	ids, err := h.store.List(r.Context())
	if err != nil {
		respondError(w, h.logger, err, "failed_to_list_collections")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	respondJSON(w, http.StatusOK, ids)
}

// GetCollection returns a collection's display settings
func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, h.logger, err, "failed_to_get_collection")
		return
	}
	groups := c.FilterGroups
	if groups == nil {
		groups = []models.FilterGroup{}
	}
	respondJSON(w, http.StatusOK, CollectionSummary{
		ID:            c.ID,
		Title:         c.Title,
		FilterGroups:  groups,
		FilterLogic:   c.FilterLogic,
		DefaultSort:   c.DefaultSort,
		SearchFields:  c.SearchFields,
		ShowBookmarks: c.ShowBookmarks,
		CardCount:     len(c.Cards),
	})
}

// ListCards runs the collection's cards through the filter pipeline
func (h *CollectionHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	q, err := ParseCardsQuery(r.URL.Query())
	if err != nil {
		respondError(w, h.logger, err, "failed_to_parse_cards_query")
		return
	}

	c, err := h.store.Get(ctx, id)
	if err != nil {
		respondError(w, h.logger, err, "failed_to_get_collection")
		return
	}

	var bookmarked []string
	if q.Bookmarked && c.ShowBookmarks {
		visitorID, ok := request.VisitorID(r)
		if !ok {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "A valid "+request.VisitorIDHeader+" header is required for bookmarked=true")
			return
		}
		bookmarked, err = h.bookmarks.List(ctx, visitorID)
		if err != nil {
			respondError(w, h.logger, err, "failed_to_list_bookmarks")
			return
		}
	}

	sort := q.Sort
	if sort == "" {
		sort = c.DefaultSort
	}

	_, span := telemetry.StartSpan(ctx, "cards.pipeline",
		attribute.String("collection.id", c.ID),
		attribute.Int("cards.input", len(c.Cards)),
		attribute.String("cards.sort", string(sort)),
	)
	f, err := filterer.Apply(c, filterer.Request{
		Filters:        q.Filters,
		Panels:         q.Panels,
		Logic:          q.Logic,
		Sort:           sort,
		Query:          q.Query,
		Fields:         q.Fields,
		Registered:     q.Registered,
		BookmarkedOnly: q.Bookmarked,
		Bookmarks:      bookmarked,
		Limit:          q.Limit,
	},
		filterer.WithClock(h.clock),
		filterer.WithLogger(h.logger),
		filterer.WithTagMatcher(h.matcher),
	)
	telemetry.EndSpan(span, err)
	if err != nil {
		respondError(w, h.logger, err, "failed_to_filter_cards")
		return
	}

	cards := f.FilteredCards()
	h.logger.Debug("cards_listed",
		zap.String("collection_id", logpkg.SanitizeID(c.ID)),
		zap.Int("input", len(c.Cards)),
		zap.Int("output", len(cards)),
		zap.Int("data_errors", len(f.DataErrors())),
	)

	respondJSON(w, http.StatusOK, CardsResponse{
		CollectionID: c.ID,
		Cards:        cards,
		Total:        len(cards),
		Sort:         string(sort),
		DataErrors:   errorStrings(f.DataErrors()),
	})
}

// ListSessions reports which sessions are live, upcoming and past, and when that next changes
func (h *CollectionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	fallback := r.URL.Query().Get("fallback")
	if fallback != "" && fallback != "nearest" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "fallback must be 'nearest'")
		return
	}

	c, err := h.store.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, h.logger, err, "failed_to_get_collection")
		return
	}

	scheduler := eventtiming.NewScheduler(
		eventtiming.WithClock(h.clock),
		eventtiming.WithLogger(h.logger),
	)
	_, span := telemetry.StartSpan(ctx, "sessions.compute", attribute.String("collection.id", c.ID))
	timing := scheduler.Compute(eventtiming.Sessions(c.Cards))
	span.SetAttributes(
		attribute.Int("sessions.live", len(timing.Live)),
		attribute.Int("sessions.upcoming", len(timing.Upcoming)),
	)
	telemetry.EndSpan(span, nil)

	resp := SessionsResponse{
		CollectionID: c.ID,
		Now:          timing.Now,
		Visible:      timing.VisibleSessions,
		Live:         nonNilCards(timing.Live),
		Upcoming:     nonNilCards(timing.UpcomingByStart()),
		Past:         nonNilCards(timing.Past),
		DataErrors:   errorStrings(timing.DataErrors),
	}
	if len(resp.Visible) == 0 && fallback == "nearest" {
		if nearest := timing.NearestUpcoming(); nearest != nil {
			resp.Visible = []*models.Card{nearest}
			resp.Fallback = true
		}
	}
	if ms, ok := timing.NextTransitionMs(); ok {
		resp.NextTransitionMs = &ms
	}
	if at, ok := timing.NextTransitionAt(); ok {
		resp.NextTransitionAt = &at
	}

	respondJSON(w, http.StatusOK, resp)
}

func nonNilCards(cards []*models.Card) []*models.Card {
	if cards == nil {
		return []*models.Card{}
	}
	return cards
}
