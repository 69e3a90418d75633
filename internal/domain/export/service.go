// Package export arma los artefactos de impresión: CSV plano, zip con
// un PNG por código más manifest, y la descarga de una chapita suelta.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"pet-tag-registry/internal/domain/codes"
	"pet-tag-registry/internal/platform/qrimg"

	"github.com/klauspost/compress/zip"
)

var ErrCodeNotFound = errors.New("code not found")

// RenderFunc renderiza la imagen de una chapita. Inyectable para
// no acoplar los tests al encoder real.
type RenderFunc func(code, baseURL string) ([]byte, error)

type Service struct {
	repo    codes.Repository
	render  RenderFunc
	baseURL string
}

func NewService(repo codes.Repository, baseURL string) *Service {
	return &Service{
		repo:    repo,
		render:  qrimg.RenderPNG,
		baseURL: baseURL,
	}
}

// listAll trae todos los códigos que cumplen el filtro, created_at
// desc, mismo orden que el listado admin.
func (s *Service) listAll(ctx context.Context, status *codes.Status) ([]codes.CodeWithPet, error) {
	items, _, err := s.repo.List(ctx, codes.ListFilter{Status: status})
	return items, err
}

// CSV genera el export tabular: una fila de cabecera más una por
// código. encoding/csv se encarga del quoting cuando el valor trae
// comas o comillas.
func (s *Service) CSV(ctx context.Context, status *codes.Status) ([]byte, error) {
	items, err := s.listAll(ctx, status)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Code", "Status", "URL", "Created At", "Activated At", "Pet Name", "Tutor Name"}); err != nil {
		return nil, err
	}
	for _, it := range items {
		row := s.manifestRow(it.Code)
		petName, tutorName := "", ""
		if it.Pet != nil {
			petName = it.Pet.Name
			tutorName = it.Pet.TutorName
		}
		if err := w.Write(append(row, petName, tutorName)); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// Archive genera el zip para la imprenta: {code}.png por cada código
// más un manifest.csv con los metadatos.
func (s *Service) Archive(ctx context.Context, status *codes.Status) ([]byte, error) {
	items, err := s.listAll(ctx, status)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, it := range items {
		img, err := s.render(it.Code.Code, s.baseURL)
		if err != nil {
			return nil, fmt.Errorf("render tag %s: %w", it.Code.Code, err)
		}
		f, err := zw.Create(it.Code.Code + ".png")
		if err != nil {
			return nil, err
		}
		if _, err := f.Write(img); err != nil {
			return nil, err
		}
	}

	var manifest bytes.Buffer
	mw := csv.NewWriter(&manifest)
	if err := mw.Write([]string{"Code", "Status", "URL", "Created At", "Activated At"}); err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := mw.Write(s.manifestRow(it.Code)); err != nil {
			return nil, err
		}
	}
	mw.Flush()
	if err := mw.Error(); err != nil {
		return nil, err
	}

	mf, err := zw.Create("manifest.csv")
	if err != nil {
		return nil, err
	}
	if _, err := mf.Write(manifest.Bytes()); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TagPNG renderiza la chapita de un código existente. Verifica
// existencia primero: no regalamos QRs de códigos que no emitimos.
func (s *Service) TagPNG(ctx context.Context, code string) ([]byte, error) {
	if _, err := s.repo.GetByCode(ctx, strings.TrimSpace(code)); err != nil {
		if errors.Is(err, codes.ErrNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	return s.render(code, s.baseURL)
}

func (s *Service) manifestRow(c codes.Code) []string {
	activated := ""
	if c.ActivatedAt != nil {
		activated = c.ActivatedAt.UTC().Format("2006-01-02")
	}
	return []string{
		c.Code,
		string(c.Status),
		qrimg.ProfileURL(s.baseURL, c.Code),
		c.CreatedAt.UTC().Format("2006-01-02"),
		activated,
	}
}
