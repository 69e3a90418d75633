package router

import (
	"database/sql"
	"net/http"
	"os"

	"pet-tag-registry/internal/adapters/photos/local"
	mem "pet-tag-registry/internal/adapters/storage/memory"
	pg "pet-tag-registry/internal/adapters/storage/postgres"
	"pet-tag-registry/internal/domain/codes"
	"pet-tag-registry/internal/domain/export"
	"pet-tag-registry/internal/domain/pets"
	"pet-tag-registry/internal/domain/users"
	"pet-tag-registry/internal/middleware"
	"pet-tag-registry/internal/ports/auth"
	"pet-tag-registry/internal/ports/photos"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev: headers de debug)
	TokenIssuer  auth.TokenIssuer  // puede ser nil (modo dev: login deshabilitado)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: blob store de fotos. Default: disco local.
	PhotoStore photos.Store
	PhotosDir  string

	// BaseURL pública impresa en las chapitas.
	BaseURL string
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if opts.BaseURL == "" {
		opts.BaseURL = "http://localhost:8080"
	}

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	var (
		codeRepo codes.Repository
		petRepo  pets.Repository
		userRepo users.Repository
	)
	if db != nil {
		codeRepo = pg.NewCodesRepo(db)
		petRepo = pg.NewPetsRepo(db)
		userRepo = pg.NewUsersRepo(db)
	} else {
		st := mem.NewStore()
		codeRepo = mem.NewCodeRepo(st)
		petRepo = mem.NewPetRepo(st)
		userRepo = mem.NewUserRepo(st)
	}

	photoStore := opts.PhotoStore
	if photoStore == nil {
		dir := opts.PhotosDir
		if dir == "" {
			dir = "public/uploads/pets"
		}
		photoStore = local.New(dir, "/uploads/pets")
		// las fotos locales se sirven como estático
		r.Handle("/uploads/pets/*", http.StripPrefix("/uploads/pets/",
			http.FileServer(http.Dir(dir))))
	}

	// Services por módulo
	codesSvc := codes.NewService(codeRepo)
	petsSvc := pets.NewService(petRepo, codeRepo)
	usersSvc := users.NewService(userRepo, opts.TokenIssuer)
	exportSvc := export.NewService(codeRepo, opts.BaseURL)

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc)
	codes.RegisterRoutes(r, codesSvc, petsSvc)
	pets.RegisterRoutes(r, petsSvc, photoStore)
	export.RegisterRoutes(r, exportSvc)

	return r
}
