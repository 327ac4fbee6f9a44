// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"stayscout/internal/app"
	"stayscout/internal/domain"
)

// FallbackLister exposes recent fallback events for inspection.
type FallbackLister interface {
	RecentFallbacks(ctx context.Context, limit int) ([]domain.FallbackEvent, error)
}

type Handlers struct {
	S         *app.Session
	Fallbacks FallbackLister
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Kind   string `json:"kind,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		r.Post("/search", h.search)
		r.Get("/hotels/{id}", h.getHotel)
		r.Get("/places", h.places)
		r.Post("/suggestions", h.suggestLater)
		r.Get("/suggestions", h.suggestions)
		r.Get("/images", h.images)

		r.Get("/state", h.state)
		r.Patch("/state/search-params", h.patchParams)
		r.Put("/selected", h.selectHotel)
		r.Delete("/results", h.clearResults)

		r.Get("/favorites", h.favorites)
		r.Post("/favorites", h.addFavorite)
		r.Delete("/favorites/{id}", h.removeFavorite)
		r.Put("/favorites/{id}/toggle", h.toggleFavorite)

		r.Get("/fallbacks", h.fallbacks)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemKind(w, status, title, "", detail)
}

func writeProblemKind(w http.ResponseWriter, status int, title string, kind domain.ErrorKind, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	p := problem{Type: "about:blank", Title: title, Status: status, Kind: string(kind), Detail: detail}
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeDomainError maps a domain error to an HTTP status.
func writeDomainError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	status := http.StatusBadGateway
	switch {
	case domain.IsValidation(err), kind == domain.KindBadRequest:
		status = http.StatusBadRequest
	case kind == domain.KindRateLimited:
		status = http.StatusTooManyRequests
	case kind == domain.KindUnexpected:
		status = http.StatusInternalServerError
	}
	writeProblemKind(w, status, http.StatusText(status), kind, domain.UserMessage(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// decode reads a JSON body into dst; an empty body leaves dst untouched
// when allowEmpty is set.
func decode(r *http.Request, dst any, allowEmpty bool) error {
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst)
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	return err
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

/********** search **********/

type searchRequest struct {
	domain.SearchParams
	Filters *app.Filters  `json:"filters,omitempty"`
	Sort    app.SortOrder `json:"sort,omitempty"`
}

type searchResponse struct {
	State  app.OutcomeState `json:"state"`
	Source app.Source       `json:"source"`
	Total  int              `json:"total"`
	Hotels []domain.Hotel   `json:"hotels"`
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decode(r, &req, false); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	if !req.Sort.Valid() {
		writeProblem(w, http.StatusBadRequest, "Invalid sort", "sort must be one of recommended, price_low, price_high, rating")
		return
	}

	out, err := h.S.Search(r.Context(), req.SearchParams)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	hotels := out.Hotels
	if req.Filters != nil {
		hotels = app.FilterHotels(hotels, *req.Filters)
	}
	hotels = app.SortHotels(hotels, req.Sort)
	writeJSON(w, http.StatusOK, searchResponse{State: out.State, Source: out.Source, Total: len(out.Hotels), Hotels: hotels})
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	d, src, err := h.S.Service().Details(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	etag, body := calcETagAndBody(d)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("X-Data-Source", string(src))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getHotel body")
	}
}

/********** suggestions & images **********/

func (h *Handlers) places(w http.ResponseWriter, r *http.Request) {
	out, err := h.S.Service().Suggest(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) suggestLater(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Q string `json:"q"`
	}
	if err := decode(r, &req, false); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	h.S.SuggestLater(req.Q)
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) suggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.S.Store().Snapshot().LocationSuggestions)
}

func (h *Handlers) images(w http.ResponseWriter, r *http.Request) {
	out, err := h.S.Service().DestinationImages(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

/********** state **********/

func (h *Handlers) state(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.S.Store().Snapshot())
}

func (h *Handlers) patchParams(w http.ResponseWriter, r *http.Request) {
	var patch domain.SearchParamsPatch
	if err := decode(r, &patch, false); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.S.Store().SetSearchParams(patch))
}

// findHotel looks id up in the current results, then in favorites.
func (h *Handlers) findHotel(id string) (domain.Hotel, bool) {
	snap := h.S.Store().Snapshot()
	for _, list := range [][]domain.Hotel{snap.SearchResults, snap.Favorites} {
		for _, ht := range list {
			if ht.ID == id {
				return ht, true
			}
		}
	}
	return domain.Hotel{}, false
}

func (h *Handlers) selectHotel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decode(r, &req, true); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		h.S.Store().SetSelectedHotel(nil)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	ht, ok := h.findHotel(req.ID)
	if !ok {
		writeProblem(w, http.StatusNotFound, "Not Found", "hotel is not in the current results or favorites")
		return
	}
	h.S.Store().SetSelectedHotel(&ht)
	writeJSON(w, http.StatusOK, ht)
}

func (h *Handlers) clearResults(w http.ResponseWriter, r *http.Request) {
	h.S.Store().ClearSearchResults()
	w.WriteHeader(http.StatusNoContent)
}

/********** favorites **********/

func (h *Handlers) favorites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.S.Store().Favorites())
}

func (h *Handlers) addFavorite(w http.ResponseWriter, r *http.Request) {
	var ht domain.Hotel
	if err := decode(r, &ht, false); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	if strings.TrimSpace(ht.ID) == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid hotel", "id is required")
		return
	}
	h.S.Store().AddToFavorites(ht)
	writeJSON(w, http.StatusCreated, ht)
}

func (h *Handlers) removeFavorite(w http.ResponseWriter, r *http.Request) {
	h.S.Store().RemoveFromFavorites(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// toggleFavorite accepts an optional hotel body; without one the hotel is
// taken from the current results.
func (h *Handlers) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var ht domain.Hotel
	if err := decode(r, &ht, true); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	if ht.ID == "" {
		found, ok := h.findHotel(id)
		if !ok {
			writeProblem(w, http.StatusNotFound, "Not Found", "hotel is not in the current results or favorites")
			return
		}
		ht = found
	} else if ht.ID != id {
		writeProblem(w, http.StatusBadRequest, "Invalid hotel", "body id does not match path id")
		return
	}
	on := h.S.Store().ToggleFavorite(ht)
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "favorite": on})
}

/********** fallbacks **********/

func (h *Handlers) fallbacks(w http.ResponseWriter, r *http.Request) {
	if h.Fallbacks == nil {
		writeJSON(w, http.StatusOK, []domain.FallbackEvent{})
		return
	}
	limit := 20
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 100 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 100")
			return
		}
		limit = l
	}
	out, err := h.Fallbacks.RecentFallbacks(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("list fallbacks failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "could not list fallbacks")
		return
	}
	writeJSON(w, http.StatusOK, out)
}
