package pets

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pet-tag-registry/internal/domain/codes"
	"pet-tag-registry/internal/middleware"
	"pet-tag-registry/internal/ports/photos"

	"github.com/go-chi/chi/v5"
)

const maxPhotoBytes = 5 << 20 // 5MB

// extensión por content-type permitido; lo que no esté acá se rechaza
var photoExtByType = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

func RegisterRoutes(r chi.Router, svc *Service, photoStore photos.Store) {
	// Activación: requiere sesión, es la única forma de crear un perfil.
	r.Post("/activate", activateHandler(svc))

	// Vista pública por code (el finder que escanea la chapita).
	r.Get("/pets/{code}", publicViewHandler(svc))

	// Panel del tutor.
	r.Route("/tutor/pets", func(tr chi.Router) {
		tr.Get("/", listMyPetsHandler(svc))
		tr.Get("/{petID}", getMyPetHandler(svc))
		tr.Patch("/{petID}", updatePetHandler(svc))
		tr.Post("/{petID}/photo", uploadPhotoHandler(svc, photoStore))
		tr.Delete("/{petID}/photo", removePhotoHandler(svc, photoStore))
	})
}

type activateRequest struct {
	Code string `json:"code"`

	TutorName      string `json:"tutor_name"`
	TutorPhone     string `json:"tutor_phone"`
	ContactType    string `json:"contact_type"`
	SecondaryPhone string `json:"secondary_phone"`

	Name         string `json:"name"`
	Species      string `json:"species"`
	Breed        string `json:"breed"`
	Sex          string `json:"sex"`
	BirthDate    string `json:"birth_date"` // YYYY-MM-DD opcional
	Observations string `json:"observations"`
}

type petResponse struct {
	ID      string `json:"id"`
	CodeID  string `json:"code_id"`
	TutorID string `json:"tutor_id"`

	TutorName      string      `json:"tutor_name"`
	TutorPhone     string      `json:"tutor_phone"`
	ContactType    ContactType `json:"contact_type"`
	SecondaryPhone string      `json:"secondary_phone,omitempty"`

	Name         string     `json:"name,omitempty"`
	Species      string     `json:"species,omitempty"`
	Breed        string     `json:"breed,omitempty"`
	Sex          Sex        `json:"sex,omitempty"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	Observations string     `json:"observations,omitempty"`
	Photo        *string    `json:"photo,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type petWithCodeResponse struct {
	petResponse
	Code string `json:"code"`
}

type publicViewResponse struct {
	Status  codes.Status `json:"status"`
	Pet     *petResponse `json:"pet,omitempty"`
	IsOwner bool         `json:"is_owner"`
}

type updatePetRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name         *string `json:"name"`
	Species      *string `json:"species"`
	Breed        *string `json:"breed"`
	Sex          *string `json:"sex"`
	Observations *string `json:"observations"`

	TutorName      *string `json:"tutor_name"`
	TutorPhone     *string `json:"tutor_phone"`
	ContactType    *string `json:"contact_type"`
	SecondaryPhone *string `json:"secondary_phone"`

	// birth_date y photo admiten null explícito (= limpiar), que no es
	// lo mismo que no enviarlos; se detectan aparte sobre el raw map.
}

func activateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req activateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var bd *time.Time
		if strings.TrimSpace(req.BirthDate) != "" {
			t, err := time.Parse("2006-01-02", req.BirthDate)
			if err != nil {
				http.Error(w, "birth_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			bd = &t
		}

		p, err := svc.Activate(r.Context(), claims.UserID, ActivateInput{
			Code:           req.Code,
			TutorName:      req.TutorName,
			TutorPhone:     req.TutorPhone,
			ContactType:    req.ContactType,
			SecondaryPhone: req.SecondaryPhone,
			Name:           req.Name,
			Species:        req.Species,
			Breed:          req.Breed,
			Sex:            req.Sex,
			BirthDate:      bd,
			Observations:   req.Observations,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, "code, tutor_name and tutor_phone are required", http.StatusBadRequest)
			case errors.Is(err, ErrCodeNotFound):
				http.Error(w, "code not found", http.StatusNotFound)
			case errors.Is(err, ErrAlreadyActivated):
				// mensaje claro, no un error crudo de storage: el tutor
				// tiene que entender que esa chapita ya está registrada
				http.Error(w, "code is already registered", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

func publicViewHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		claims, _ := middleware.GetClaims(r.Context())

		view, err := svc.PublicView(r.Context(), code, claims.UserID)
		if err != nil {
			if errors.Is(err, ErrCodeNotFound) {
				// "no registrado", no un error genérico
				http.Error(w, "code not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if view.Status == codes.StatusRaw {
			if strings.TrimSpace(claims.UserID) == "" {
				// anónimo sobre code sin activar: a iniciar sesión,
				// llevando el destino para retomar después
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error": "authentication required",
					"next":  "/activate/" + code,
				})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"status":   codes.StatusRaw,
				"activate": "/activate/" + code,
			})
			return
		}

		resp := publicViewResponse{
			Status:  view.Status,
			IsOwner: view.IsOwner,
		}
		if view.Pet != nil {
			pr := toPetResponse(*view.Pet)
			resp.Pet = &pr
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func listMyPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByTutor(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]petWithCodeResponse, 0, len(items))
		for _, it := range items {
			out = append(out, petWithCodeResponse{
				petResponse: toPetResponse(it.Pet),
				Code:        it.Code,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"pets": out})
	}
}

func getMyPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.GetOwned(r.Context(), chi.URLParam(r, "petID"), claims.UserID)
		if err != nil {
			writeOwnedError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// Para soportar birth_date/photo: null hay que detectar presencia
		// del campo. Estrategia: decodificar a map primero.
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var req updatePetRequest
		{
			// Re-marshal y decode al struct para reutilizar tags
			// (simple y suficiente para estos tamaños de body)
			b, _ := json.Marshal(raw)
			if err := json.Unmarshal(b, &req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		bd, ok := optionalStringField(raw, "birth_date")
		if !ok {
			http.Error(w, "birth_date must be YYYY-MM-DD or null", http.StatusBadRequest)
			return
		}
		photo, ok := optionalStringField(raw, "photo")
		if !ok {
			http.Error(w, "photo must be a string or null", http.StatusBadRequest)
			return
		}

		updated, err := svc.UpdateProfile(r.Context(), chi.URLParam(r, "petID"), claims.UserID, UpdateInput{
			Name:           req.Name,
			Species:        req.Species,
			Breed:          req.Breed,
			Sex:            req.Sex,
			Observations:   req.Observations,
			TutorName:      req.TutorName,
			TutorPhone:     req.TutorPhone,
			ContactType:    req.ContactType,
			SecondaryPhone: req.SecondaryPhone,
			BirthDate:      bd,
			Photo:          photo,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				writeOwnedError(w, err)
			}
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(updated))
	}
}

func uploadPhotoHandler(svc *Service, store photos.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")
		current, err := svc.GetOwned(r.Context(), petID, claims.UserID)
		if err != nil {
			writeOwnedError(w, err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes+4096)
		if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
			http.Error(w, "file too large, maximum size is 5MB", http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("photo")
		if err != nil {
			http.Error(w, "no file uploaded", http.StatusBadRequest)
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		ext, allowed := photoExtByType[contentType]
		if !allowed {
			http.Error(w, "invalid file type, only JPEG, PNG, WebP and GIF are allowed", http.StatusBadRequest)
			return
		}

		key := fmt.Sprintf("%s-%d.%s", petID, time.Now().UnixMilli(), ext)
		url, err := store.Save(r.Context(), key, contentType, file)
		if err != nil {
			http.Error(w, "failed to store photo", http.StatusInternalServerError)
			return
		}

		updated, err := svc.SetPhoto(r.Context(), petID, claims.UserID, url)
		if err != nil {
			writeOwnedError(w, err)
			return
		}

		// borrar el blob anterior recién cuando la referencia nueva quedó
		if current.Photo != nil && *current.Photo != url {
			_ = store.Remove(r.Context(), *current.Photo)
		}

		writeJSON(w, http.StatusOK, map[string]any{"photo": updated.Photo})
	}
}

func removePhotoHandler(svc *Service, store photos.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")
		current, err := svc.GetOwned(r.Context(), petID, claims.UserID)
		if err != nil {
			writeOwnedError(w, err)
			return
		}

		if _, err := svc.RemovePhoto(r.Context(), petID, claims.UserID); err != nil {
			writeOwnedError(w, err)
			return
		}

		if current.Photo != nil {
			_ = store.Remove(r.Context(), *current.Photo)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// optionalStringField detecta presencia y distingue null de string.
// ok=false cuando el valor presente no es ni null ni string.
func optionalStringField(raw map[string]json.RawMessage, key string) (OptionalString, bool) {
	v, exists := raw[key]
	if !exists {
		return OptionalString{}, true
	}
	if string(v) == "null" {
		return OptionalString{Present: true, Value: nil}, true
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return OptionalString{}, false
	}
	return OptionalString{Present: true, Value: &s}, true
}

func writeOwnedError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "pet not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:             p.ID,
		CodeID:         p.CodeID,
		TutorID:        p.TutorID,
		TutorName:      p.TutorName,
		TutorPhone:     p.TutorPhone,
		ContactType:    p.ContactType,
		SecondaryPhone: p.SecondaryPhone,
		Name:           p.Name,
		Species:        p.Species,
		Breed:          p.Breed,
		Sex:            p.Sex,
		BirthDate:      p.BirthDate,
		Observations:   p.Observations,
		Photo:          p.Photo,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// writeJSON duplicado intencionalmente en handlers de distintos módulos
// para no crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
