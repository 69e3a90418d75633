package export

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pet-tag-registry/internal/domain/codes"
	"pet-tag-registry/internal/middleware"
	"pet-tag-registry/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// Export masivo y descarga individual, solo admin.
	r.Get("/admin/codes/export", exportHandler(svc))
	r.Get("/admin/codes/download", downloadHandler(svc))

	// Imagen pública de la chapita (la embeben las páginas de perfil).
	r.Get("/qrcode/{code}", publicTagHandler(svc))
}

func exportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		filterParam := strings.TrimSpace(r.URL.Query().Get("filter"))
		if filterParam == "" {
			filterParam = "all"
		}
		var status *codes.Status
		if filterParam != "all" {
			st, ok := codes.ParseStatus(filterParam)
			if !ok {
				http.Error(w, "filter must be all, raw or active", http.StatusBadRequest)
				return
			}
			status = &st
		}

		format := strings.TrimSpace(r.URL.Query().Get("format"))
		if format == "" {
			format = "csv"
		}

		switch format {
		case "csv":
			data, err := svc.CSV(r.Context(), status)
			if err != nil {
				http.Error(w, "failed to export", http.StatusInternalServerError)
				return
			}
			serveAttachment(w, data, "text/csv",
				fmt.Sprintf("pet-tags-%s-%d.csv", filterParam, time.Now().Unix()))

		case "zip":
			data, err := svc.Archive(r.Context(), status)
			if err != nil {
				http.Error(w, "failed to export", http.StatusInternalServerError)
				return
			}
			serveAttachment(w, data, "application/zip",
				fmt.Sprintf("pet-tags-%s-%d.zip", filterParam, time.Now().Unix()))

		default:
			http.Error(w, "format must be csv or zip", http.StatusBadRequest)
		}
	}
}

func downloadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		code := strings.TrimSpace(r.URL.Query().Get("code"))
		if code == "" {
			http.Error(w, "code is required", http.StatusBadRequest)
			return
		}

		img, err := svc.TagPNG(r.Context(), code)
		if err != nil {
			if errors.Is(err, ErrCodeNotFound) {
				http.Error(w, "code not found", http.StatusNotFound)
				return
			}
			http.Error(w, "failed to render tag", http.StatusInternalServerError)
			return
		}

		serveAttachment(w, img, "image/png", fmt.Sprintf("pet-tag-%s.png", code))
	}
}

func publicTagHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		img, err := svc.TagPNG(r.Context(), code)
		if err != nil {
			if errors.Is(err, ErrCodeNotFound) {
				http.Error(w, "code not found", http.StatusNotFound)
				return
			}
			http.Error(w, "failed to render tag", http.StatusInternalServerError)
			return
		}

		// la imagen es pura función del code: cacheable para siempre
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		_, _ = w.Write(img)
	}
}

func serveAttachment(w http.ResponseWriter, data []byte, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(data)
}

func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	if claims.Role != auth.RoleAdmin {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}
