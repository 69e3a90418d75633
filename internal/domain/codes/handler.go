package codes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-tag-registry/internal/middleware"
	"pet-tag-registry/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

// PetCounter expone el total de mascotas para el panel admin.
// Interfaz chica para no importar el módulo pets desde acá.
type PetCounter interface {
	Count(ctx context.Context) (int, error)
}

func RegisterRoutes(r chi.Router, svc *Service, petCount PetCounter) {
	r.Route("/admin/codes", func(ar chi.Router) {
		ar.Post("/generate", generateHandler(svc))
		ar.Get("/", listHandler(svc))
		ar.Get("/{codeID}", getHandler(svc))
		ar.Delete("/{codeID}", deleteHandler(svc))
	})

	r.Get("/admin/stats", statsHandler(svc, petCount))
}

type generateRequest struct {
	Count int `json:"count"`
}

type codeResponse struct {
	ID          string     `json:"id"`
	Code        string     `json:"code"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
}

type codeWithPetResponse struct {
	codeResponse
	Pet *petSummaryResponse `json:"pet,omitempty"`
}

type petSummaryResponse struct {
	Name      string `json:"name"`
	TutorName string `json:"tutor_name"`
}

type paginationResponse struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func generateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}

		// count ausente => 1, igual que el endpoint original
		req := generateRequest{Count: 1}
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		generated, err := svc.Generate(r.Context(), req.Count)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidCount):
				http.Error(w, "count must be between 1 and 100", http.StatusBadRequest)
			case errors.Is(err, ErrCodeTaken):
				http.Error(w, "code collision, retry", http.StatusConflict)
			case errors.Is(err, ErrBadLastCode), errors.Is(err, ErrCodeSpaceFull):
				// datos corruptos o espacio agotado: no es culpa del caller
				http.Error(w, err.Error(), http.StatusInternalServerError)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		out := make([]codeResponse, 0, len(generated))
		for _, c := range generated {
			out = append(out, toCodeResponse(c))
		}
		writeJSON(w, http.StatusCreated, map[string]any{"codes": out})
	}
}

func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}

		var status *Status
		if f := strings.TrimSpace(r.URL.Query().Get("filter")); f != "" && f != "all" {
			st, ok := ParseStatus(f)
			if !ok {
				http.Error(w, "filter must be all, raw or active", http.StatusBadRequest)
				return
			}
			status = &st
		}

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		items, pg, err := svc.List(r.Context(), status, page, limit)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]codeWithPetResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toCodeWithPetResponse(it))
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"codes": out,
			"pagination": paginationResponse{
				Page:       pg.Page,
				Limit:      pg.Limit,
				Total:      pg.Total,
				TotalPages: pg.TotalPages,
			},
		})
	}
}

func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}

		it, err := svc.GetByID(r.Context(), chi.URLParam(r, "codeID"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "code not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toCodeWithPetResponse(it))
	}
}

func deleteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "codeID")); err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "code not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func statsHandler(svc *Service, petCount PetCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}

		counts, err := svc.Stats(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		pets, err := petCount.Count(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]int{
			"total_codes":  counts.Total,
			"raw_codes":    counts.Raw,
			"active_codes": counts.Active,
			"total_pets":   pets,
		})
	}
}

// requireAdmin corta con 401/403 según falte auth o falte rol.
func requireAdmin(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return auth.Claims{}, false
	}
	if claims.Role != auth.RoleAdmin {
		http.Error(w, "forbidden", http.StatusForbidden)
		return auth.Claims{}, false
	}
	return claims, true
}

func toCodeResponse(c Code) codeResponse {
	return codeResponse{
		ID:          c.ID,
		Code:        c.Code,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
		ActivatedAt: c.ActivatedAt,
	}
}

func toCodeWithPetResponse(it CodeWithPet) codeWithPetResponse {
	out := codeWithPetResponse{codeResponse: toCodeResponse(it.Code)}
	if it.Pet != nil {
		out.Pet = &petSummaryResponse{
			Name:      it.Pet.Name,
			TutorName: it.Pet.TutorName,
		}
	}
	return out
}

// writeJSON duplicado a propósito entre handlers de módulos distintos;
// extraer un helper común recién cuando haga falta de verdad.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
