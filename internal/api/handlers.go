package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Sternrassler/neo-orbit-api/pkg/catalog"
	"github.com/Sternrassler/neo-orbit-api/pkg/orbit"
	"github.com/Sternrassler/neo-orbit-api/pkg/pagination"
	"github.com/rs/zerolog"
)

// handleAsteroides serves the local CSV catalog when it has rows and the
// default NeoWs page otherwise.
func (s *Server) handleAsteroides(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	records, err := catalog.LoadCSV(s.catalogPath)
	if err != nil {
		logger.Warn().Err(err).Msg("CSV catalog unreadable, falling back to NeoWs")
		records = nil
	}
	if len(records) > 0 {
		logger.Debug().Int("rows", len(records)).Msg("Serving CSV catalog")
		writeJSON(w, r, http.StatusOK, orbit.NewPage(records))
		return
	}

	s.aggregate(w, r, pagination.DefaultRequest())
}

// handleNeos handles GET /api/neos?page=&size=&pages=&sleep_ms=
func (s *Server) handleNeos(w http.ResponseWriter, r *http.Request) {
	req, err := parsePaging(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// The response could never be written once pacing alone outlasts the
	// write timeout.
	if pacing := req.PacingTime(); s.writeTimeout > 0 && pacing >= s.writeTimeout {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf(
			"pacing of %s (pages-1 x sleep_ms) must be shorter than the server write timeout of %s",
			pacing, s.writeTimeout))
		return
	}

	s.aggregate(w, r, req)
}

// aggregate runs one aggregation and writes its page. The upstream work is
// detached from the client connection: a disconnect does not abort it.
func (s *Server) aggregate(w http.ResponseWriter, r *http.Request, req pagination.Request) {
	ctx := context.WithoutCancel(r.Context())

	page, err := s.aggregator.Collect(ctx, req)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidRequest) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("NeoWs aggregation failed")
		writeError(w, r, http.StatusBadGateway, fmt.Sprintf("upstream request failed: %v", err))
		return
	}

	writeJSON(w, r, http.StatusOK, page)
}

// parsePaging reads the optional integer paging parameters.
func parsePaging(q url.Values) (pagination.Request, error) {
	req := pagination.DefaultRequest()

	params := []struct {
		name string
		dst  *int
	}{
		{"page", &req.Page},
		{"size", &req.Size},
		{"pages", &req.Pages},
		{"sleep_ms", &req.SleepMS},
	}
	for _, p := range params {
		vals, ok := q[p.name]
		if !ok || len(vals) == 0 {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(vals[0]))
		if err != nil {
			return req, errors.New("page, size, pages and sleep_ms must be integers")
		}
		*p.dst = n
	}

	if err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}

// handleEarth handles GET /api/earth
func (s *Server) handleEarth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, orbit.Earth())
}

// handleSeed handles GET /api/seed
func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, orbit.NewPage(orbit.SeedRecords()))
}

// handleSendGeneral accepts any JSON document and echoes it back.
func (s *Server) handleSendGeneral(w http.ResponseWriter, r *http.Request) {
	body, ok := readJSONBody(w, r)
	if !ok {
		return
	}

	zerolog.Ctx(r.Context()).Info().RawJSON("payload", body).Msg("General payload received")
	writeJSON(w, r, http.StatusOK, EchoResponse{Status: "OK", Received: body})
}

// asteroidPayload holds the fields the front-end sends for one asteroid.
// Their shapes are not fixed, so they stay untyped.
type asteroidPayload struct {
	Nombre    any `json:"nombre"`
	Posicion  any `json:"posicion"`
	Velocidad any `json:"velocidad"`
}

// handleSendAsteroides accepts a JSON object describing an asteroid and
// echoes it back.
func (s *Server) handleSendAsteroides(w http.ResponseWriter, r *http.Request) {
	body, ok := readJSONBody(w, r)
	if !ok {
		return
	}

	var payload asteroidPayload
	if trimmed := bytes.TrimSpace(body); trimmed[0] != '{' {
		writeError(w, r, http.StatusBadRequest, "body must be a JSON object")
		return
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, r, http.StatusBadRequest, "body must be a JSON object")
		return
	}

	zerolog.Ctx(r.Context()).Info().
		Interface("nombre", payload.Nombre).
		Interface("posicion", payload.Posicion).
		Interface("velocidad", payload.Velocidad).
		Msg("Asteroid payload received")

	writeJSON(w, r, http.StatusOK, EchoResponse{Status: "OK", Received: body})
}

// readJSONBody reads a size-limited request body and checks it is valid JSON.
// It writes the error response itself and reports false on failure.
func readJSONBody(w http.ResponseWriter, r *http.Request) (json.RawMessage, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		writeError(w, r, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}

	if len(bytes.TrimSpace(body)) == 0 || !json.Valid(body) {
		writeError(w, r, http.StatusBadRequest, "body must be valid JSON")
		return nil, false
	}

	return body, true
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}
