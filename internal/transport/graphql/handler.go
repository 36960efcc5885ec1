package graphqltransport

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/graphql-go/graphql"

	"issuetracker/internal/auth"
	"issuetracker/internal/service"
	"issuetracker/web"
)

type Handler struct {
	service service.Service
	tokens  *auth.TokenManager
	schema  graphql.Schema
}

func NewHandler(svc service.Service, tokens *auth.TokenManager) (*Handler, error) {
	schema, err := newSchema(svc)
	if err != nil {
		return nil, err
	}
	return &Handler{
		service: svc,
		tokens:  tokens,
		schema:  schema,
	}, nil
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Route("/graphql", func(r chi.Router) {
		r.Use(h.authenticate)
		r.Post("/", h.GraphQL)
	})

	r.Get("/health", h.Health)

	r.Handle("/*", web.Handler())

	return r
}

type graphQLRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

func (h *Handler) GraphQL(w http.ResponseWriter, r *http.Request) {
	var req graphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"errors": []map[string]any{{"message": "invalid request body"}},
		})
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        r.Context(),
	})

	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Health(r.Context()); err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]string{"status": "unhealthy"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// authenticate decodes an optional bearer token into the request context.
// A missing, expired or otherwise unusable token is not an error: the caller
// simply stays anonymous and `me` resolves to null.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			claims, err := h.tokens.Verify(strings.TrimPrefix(header, "Bearer "))
			if err == nil {
				if user, err := h.service.GetUser(r.Context(), claims.ID); err == nil {
					r = r.WithContext(withCurrentUser(r.Context(), user))
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
