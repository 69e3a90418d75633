package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-tag-registry/internal/domain/codes"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("pet not found")
	ErrCodeNotFound = errors.New("code not found")
	ErrForbidden    = errors.New("forbidden")

	// ErrAlreadyActivated es terminal: la activación es irreversible,
	// reintentar no tiene sentido.
	ErrAlreadyActivated = errors.New("code is already activated")
)

// CodeLookup evita que la vista pública dependa del módulo codes entero.
type CodeLookup interface {
	GetByCode(ctx context.Context, code string) (codes.Code, error)
}

type Service struct {
	repo      Repository
	codeByStr CodeLookup
	now       func() time.Time
}

func NewService(repo Repository, codeByStr CodeLookup) *Service {
	return &Service{
		repo:      repo,
		codeByStr: codeByStr,
		now:       time.Now,
	}
}

type ActivateInput struct {
	Code string

	TutorName      string
	TutorPhone     string
	ContactType    string
	SecondaryPhone string

	Name         string
	Species      string
	Breed        string
	Sex          string
	BirthDate    *time.Time
	Observations string
}

// Activate registra la mascota contra un código raw. El chequeo
// raw/active definitivo lo hace el repo dentro de la misma operación
// atómica: acá solo validamos input.
func (s *Service) Activate(ctx context.Context, tutorID string, in ActivateInput) (Pet, error) {
	if strings.TrimSpace(tutorID) == "" {
		return Pet{}, ErrInvalidInput
	}
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return Pet{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.TutorName) == "" || strings.TrimSpace(in.TutorPhone) == "" {
		return Pet{}, ErrInvalidInput
	}

	contact := ContactWhatsApp
	if strings.TrimSpace(in.ContactType) != "" {
		ct, ok := parseContactType(in.ContactType)
		if !ok {
			return Pet{}, ErrInvalidInput
		}
		contact = ct
	}

	sex := SexUnknown
	if strings.TrimSpace(in.Sex) != "" {
		sx, ok := parseSex(in.Sex)
		if !ok {
			return Pet{}, ErrInvalidInput
		}
		sex = sx
	}

	now := s.now()
	p := Pet{
		ID:      uuid.NewString(),
		TutorID: tutorID,

		TutorName:      strings.TrimSpace(in.TutorName),
		TutorPhone:     strings.TrimSpace(in.TutorPhone),
		ContactType:    contact,
		SecondaryPhone: strings.TrimSpace(in.SecondaryPhone),

		Name:         strings.TrimSpace(in.Name),
		Species:      strings.TrimSpace(in.Species),
		Breed:        strings.TrimSpace(in.Breed),
		Sex:          sex,
		BirthDate:    in.BirthDate,
		Observations: strings.TrimSpace(in.Observations),

		CreatedAt: now,
		UpdatedAt: now,
	}

	return s.repo.CreateActivating(ctx, code, p, now)
}

// View es lo que ve quien escanea la chapita.
type View struct {
	Status  codes.Status
	Pet     *Pet
	IsOwner bool
}

// PublicView resuelve un code escaneado. requesterID vacío = anónimo.
// IsOwner es solo para presentación (mostrar o no el botón de editar);
// la autorización real de escritura se rechequea en UpdateProfile.
func (s *Service) PublicView(ctx context.Context, code, requesterID string) (View, error) {
	c, err := s.codeByStr.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, codes.ErrNotFound) {
			return View{}, ErrCodeNotFound
		}
		return View{}, err
	}

	if c.Status == codes.StatusRaw {
		return View{Status: codes.StatusRaw}, nil
	}

	p, err := s.repo.GetByCodeID(ctx, c.ID)
	if err != nil {
		return View{}, err
	}

	return View{
		Status:  codes.StatusActive,
		Pet:     &p,
		IsOwner: requesterID != "" && requesterID == p.TutorID,
	}, nil
}

// GetOwned devuelve el perfil solo si requesterID es el tutor.
func (s *Service) GetOwned(ctx context.Context, petID, requesterID string) (Pet, error) {
	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}
	if p.TutorID != requesterID {
		return Pet{}, ErrForbidden
	}
	return p, nil
}

func (s *Service) ListByTutor(ctx context.Context, tutorID string) ([]PetWithCode, error) {
	return s.repo.ListByTutor(ctx, tutorID)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// OptionalString distingue tres casos en un PATCH:
// ausente (Present=false, no tocar), null (Present y Value nil,
// limpiar) y valor (Present y Value no-nil).
type OptionalString struct {
	Present bool
	Value   *string
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name         *string
	Species      *string
	Breed        *string
	Sex          *string
	Observations *string

	TutorName      *string
	TutorPhone     *string
	ContactType    *string
	SecondaryPhone *string

	// Nullables: ausente preserva, null limpia. Para la foto esta
	// distinción importa de verdad (un PUT sin foto no debe borrarla).
	BirthDate OptionalString // YYYY-MM-DD o null
	Photo     OptionalString
}

func (s *Service) UpdateProfile(ctx context.Context, petID, requesterID string, in UpdateInput) (Pet, error) {
	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}
	if p.TutorID != requesterID {
		return Pet{}, ErrForbidden
	}

	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Species != nil {
		p.Species = strings.TrimSpace(*in.Species)
	}
	if in.Breed != nil {
		p.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Sex != nil {
		sx, ok := parseSex(*in.Sex)
		if !ok {
			return Pet{}, ErrInvalidInput
		}
		p.Sex = sx
	}
	if in.Observations != nil {
		p.Observations = strings.TrimSpace(*in.Observations)
	}

	if in.TutorName != nil {
		v := strings.TrimSpace(*in.TutorName)
		if v == "" {
			return Pet{}, ErrInvalidInput
		}
		p.TutorName = v
	}
	if in.TutorPhone != nil {
		v := strings.TrimSpace(*in.TutorPhone)
		if v == "" {
			return Pet{}, ErrInvalidInput
		}
		p.TutorPhone = v
	}
	if in.ContactType != nil {
		ct, ok := parseContactType(*in.ContactType)
		if !ok {
			return Pet{}, ErrInvalidInput
		}
		p.ContactType = ct
	}
	if in.SecondaryPhone != nil {
		p.SecondaryPhone = strings.TrimSpace(*in.SecondaryPhone)
	}

	if in.BirthDate.Present {
		if in.BirthDate.Value == nil {
			p.BirthDate = nil
		} else {
			t, err := time.Parse("2006-01-02", *in.BirthDate.Value)
			if err != nil {
				return Pet{}, ErrInvalidInput
			}
			p.BirthDate = &t
		}
	}

	if in.Photo.Present {
		if in.Photo.Value == nil {
			p.Photo = nil
		} else {
			v := strings.TrimSpace(*in.Photo.Value)
			p.Photo = &v
		}
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// SetPhoto guarda la referencia al blob subido. Devuelve el perfil
// actualizado; la referencia anterior la maneja el caller (borrar el
// blob viejo es asunto del handler, no del dominio).
func (s *Service) SetPhoto(ctx context.Context, petID, requesterID, photoURL string) (Pet, error) {
	return s.UpdateProfile(ctx, petID, requesterID, UpdateInput{
		Photo: OptionalString{Present: true, Value: &photoURL},
	})
}

func (s *Service) RemovePhoto(ctx context.Context, petID, requesterID string) (Pet, error) {
	return s.UpdateProfile(ctx, petID, requesterID, UpdateInput{
		Photo: OptionalString{Present: true, Value: nil},
	})
}

func parseContactType(s string) (ContactType, bool) {
	switch ContactType(strings.ToLower(strings.TrimSpace(s))) {
	case ContactWhatsApp:
		return ContactWhatsApp, true
	case ContactPhone:
		return ContactPhone, true
	default:
		return "", false
	}
}

func parseSex(s string) (Sex, bool) {
	switch Sex(strings.ToLower(strings.TrimSpace(s))) {
	case SexMale:
		return SexMale, true
	case SexFemale:
		return SexFemale, true
	case SexUnknown:
		return SexUnknown, true
	default:
		return "", false
	}
}
