package router

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// do arma un request contra el router en modo dev: userID/role van por
// los headers de debug en lugar de un token firmado.
func do(t *testing.T, h http.Handler, method, path string, body any, userID, role string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-Debug-User-ID", userID)
		if role != "" {
			req.Header.Set("X-Debug-Role", role)
		}
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(into); err != nil {
		t.Fatalf("decoding response %q: %v", w.Body.String(), err)
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(Options{
		BaseURL:   "https://tags.example.com",
		PhotosDir: t.TempDir(),
	})
}

func generateCodes(t *testing.T, h http.Handler, count int) []string {
	t.Helper()

	w := do(t, h, http.MethodPost, "/admin/codes/generate", map[string]int{"count": count}, "admin-1", "admin")
	if w.Code != http.StatusCreated {
		t.Fatalf("generate: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Codes []struct {
			ID     string `json:"id"`
			Code   string `json:"code"`
			Status string `json:"status"`
		} `json:"codes"`
	}
	decode(t, w, &resp)
	if len(resp.Codes) != count {
		t.Fatalf("expected %d codes, got %d", count, len(resp.Codes))
	}

	out := make([]string, 0, count)
	for _, c := range resp.Codes {
		if c.Status != "raw" {
			t.Fatalf("fresh code must be raw, got %s", c.Status)
		}
		out = append(out, c.Code)
	}
	return out
}

func activate(t *testing.T, h http.Handler, code, tutorID string) string {
	t.Helper()

	w := do(t, h, http.MethodPost, "/activate", map[string]string{
		"code":        code,
		"tutor_name":  "Jane",
		"tutor_phone": "+5511999999999",
		"name":        "Milo",
		"species":     "dog",
	}, tutorID, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("activate: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		ID string `json:"id"`
	}
	decode(t, w, &resp)
	return resp.ID
}

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(t)

	w := do(t, h, http.MethodGet, "/health", nil, "", "")
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("expected 200 ok, got %d %q", w.Code, w.Body.String())
	}
}

func TestRouter_AdminRoutesRequireAdminRole(t *testing.T) {
	h := newTestRouter(t)

	paths := []struct{ method, path string }{
		{http.MethodPost, "/admin/codes/generate"},
		{http.MethodGet, "/admin/codes/"},
		{http.MethodGet, "/admin/stats"},
		{http.MethodGet, "/admin/codes/export"},
	}
	for _, p := range paths {
		if w := do(t, h, p.method, p.path, nil, "", ""); w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s anonymous: expected 401, got %d", p.method, p.path, w.Code)
		}
		if w := do(t, h, p.method, p.path, nil, "tutor-1", ""); w.Code != http.StatusForbidden {
			t.Fatalf("%s %s as tutor: expected 403, got %d", p.method, p.path, w.Code)
		}
	}
}

func TestRouter_ActivationFlow(t *testing.T) {
	h := newTestRouter(t)

	codes := generateCodes(t, h, 2)
	code := codes[0]

	// code crudo, visitante anónimo: 401 con destino para retomar
	w := do(t, h, http.MethodGet, "/pets/"+code, nil, "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("raw+anonymous: expected 401, got %d", w.Code)
	}
	var rawAnon struct {
		Next string `json:"next"`
	}
	decode(t, w, &rawAnon)
	if rawAnon.Next != "/activate/"+code {
		t.Fatalf("expected next=/activate/%s, got %q", code, rawAnon.Next)
	}

	// code crudo, tutor logueado: invitación a activar
	w = do(t, h, http.MethodGet, "/pets/"+code, nil, "tutor-1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("raw+authed: expected 200, got %d", w.Code)
	}
	var rawAuthed struct {
		Status   string `json:"status"`
		Activate string `json:"activate"`
	}
	decode(t, w, &rawAuthed)
	if rawAuthed.Status != "raw" || rawAuthed.Activate != "/activate/"+code {
		t.Fatalf("unexpected raw view %+v", rawAuthed)
	}

	activate(t, h, code, "tutor-1")

	// segunda activación del mismo code: conflicto claro
	w = do(t, h, http.MethodPost, "/activate", map[string]string{
		"code":        code,
		"tutor_name":  "John",
		"tutor_phone": "+5511888888888",
	}, "tutor-2", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("re-activate: expected 409, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "already registered") {
		t.Fatalf("unexpected conflict body %q", w.Body.String())
	}

	// perfil activo: anónimo lo ve, sin flag de owner
	w = do(t, h, http.MethodGet, "/pets/"+code, nil, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("active+anonymous: expected 200, got %d", w.Code)
	}
	var view struct {
		Status  string `json:"status"`
		IsOwner bool   `json:"is_owner"`
		Pet     *struct {
			Name      string `json:"name"`
			TutorName string `json:"tutor_name"`
		} `json:"pet"`
	}
	decode(t, w, &view)
	if view.Status != "active" || view.Pet == nil || view.Pet.Name != "Milo" {
		t.Fatalf("unexpected public view %+v", view)
	}
	if view.IsOwner {
		t.Fatalf("anonymous must not be owner")
	}

	// el dueño ve lo mismo con is_owner
	w = do(t, h, http.MethodGet, "/pets/"+code, nil, "tutor-1", "")
	decode(t, w, &view)
	if !view.IsOwner {
		t.Fatalf("owner must see is_owner=true")
	}

	// code inexistente
	if w := do(t, h, http.MethodGet, "/pets/99998", nil, "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing code: expected 404, got %d", w.Code)
	}
}

func TestRouter_TutorPanel(t *testing.T) {
	h := newTestRouter(t)

	codes := generateCodes(t, h, 1)
	petID := activate(t, h, codes[0], "tutor-1")

	// listado del tutor trae el code junto al perfil
	w := do(t, h, http.MethodGet, "/tutor/pets/", nil, "tutor-1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	var list struct {
		Pets []struct {
			ID   string `json:"id"`
			Code string `json:"code"`
		} `json:"pets"`
	}
	decode(t, w, &list)
	if len(list.Pets) != 1 || list.Pets[0].ID != petID || list.Pets[0].Code != codes[0] {
		t.Fatalf("unexpected listing %+v", list.Pets)
	}

	// otro tutor no puede editar
	w = do(t, h, http.MethodPatch, "/tutor/pets/"+petID, map[string]string{"name": "Hacked"}, "tutor-2", "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("patch by stranger: expected 403, got %d", w.Code)
	}

	// el dueño sí
	w = do(t, h, http.MethodPatch, "/tutor/pets/"+petID, map[string]any{
		"name":       "Milo II",
		"birth_date": "2020-05-10",
	}, "tutor-1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("patch by owner: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var updated struct {
		Name      string `json:"name"`
		BirthDate string `json:"birth_date"`
	}
	decode(t, w, &updated)
	if updated.Name != "Milo II" || !strings.HasPrefix(updated.BirthDate, "2020-05-10") {
		t.Fatalf("unexpected patch result %+v", updated)
	}

	// birth_date: null limpia
	req := httptest.NewRequest(http.MethodPatch, "/tutor/pets/"+petID, strings.NewReader(`{"birth_date": null}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Debug-User-ID", "tutor-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch null: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var cleared struct {
		BirthDate *string `json:"birth_date"`
	}
	decode(t, rec, &cleared)
	if cleared.BirthDate != nil {
		t.Fatalf("birth_date: null must clear it, got %v", *cleared.BirthDate)
	}
}

func TestRouter_PhotoUpload(t *testing.T) {
	h := newTestRouter(t)

	codes := generateCodes(t, h, 1)
	petID := activate(t, h, codes[0], "tutor-1")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="photo"; filename="milo.png"`},
		"Content-Type":        {"image/png"},
	})
	if err != nil {
		t.Fatalf("creating part: %v", err)
	}
	if _, err := fw.Write([]byte("fake-png-bytes")); err != nil {
		t.Fatalf("writing part: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/tutor/pets/"+petID+"/photo", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Debug-User-ID", "tutor-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var up struct {
		Photo *string `json:"photo"`
	}
	decode(t, rec, &up)
	if up.Photo == nil || !strings.HasPrefix(*up.Photo, "/uploads/pets/"+petID+"-") {
		t.Fatalf("unexpected photo ref %v", up.Photo)
	}

	// borrar la foto
	w := do(t, h, http.MethodDelete, "/tutor/pets/"+petID+"/photo", nil, "tutor-1", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete photo: expected 204, got %d", w.Code)
	}
}

func TestRouter_AdminStatsAndExport(t *testing.T) {
	h := newTestRouter(t)

	codes := generateCodes(t, h, 3)
	activate(t, h, codes[1], "tutor-1")

	w := do(t, h, http.MethodGet, "/admin/stats", nil, "admin-1", "admin")
	if w.Code != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d", w.Code)
	}
	var stats map[string]int
	decode(t, w, &stats)
	if stats["total_codes"] != 3 || stats["raw_codes"] != 2 || stats["active_codes"] != 1 || stats["total_pets"] != 1 {
		t.Fatalf("unexpected stats %v", stats)
	}

	w = do(t, h, http.MethodGet, "/admin/codes/export?format=csv&filter=active", nil, "admin-1", "admin")
	if w.Code != http.StatusOK {
		t.Fatalf("export: expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("expected text/csv, got %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "pet-tags-active-") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], codes[1]+",active,") {
		t.Fatalf("unexpected csv %q", w.Body.String())
	}
	if !strings.Contains(lines[1], "https://tags.example.com/pet/"+codes[1]) {
		t.Fatalf("csv row missing profile URL: %q", lines[1])
	}

	w = do(t, h, http.MethodGet, "/admin/codes/export?format=zip", nil, "admin-1", "admin")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/zip" {
		t.Fatalf("zip export: got %d %q", w.Code, w.Header().Get("Content-Type"))
	}

	w = do(t, h, http.MethodGet, "/admin/codes/download?code="+codes[0], nil, "admin-1", "admin")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("download: got %d %q", w.Code, w.Header().Get("Content-Type"))
	}
}

func TestRouter_PublicTagImage(t *testing.T) {
	h := newTestRouter(t)

	codes := generateCodes(t, h, 1)

	w := do(t, h, http.MethodGet, "/qrcode/"+codes[0], nil, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %q", ct)
	}
	if cc := w.Header().Get("Cache-Control"); !strings.Contains(cc, "immutable") {
		t.Fatalf("expected immutable cache header, got %q", cc)
	}

	if w := do(t, h, http.MethodGet, "/qrcode/99998", nil, "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown code: expected 404, got %d", w.Code)
	}
}

func TestRouter_AuthEndpoints(t *testing.T) {
	h := newTestRouter(t)

	w := do(t, h, http.MethodPost, "/auth/register", map[string]string{
		"email":    "jane@example.com",
		"password": "supersecret",
		"name":     "Jane",
	}, "", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// mismo email de nuevo
	w = do(t, h, http.MethodPost, "/auth/register", map[string]string{
		"email":    "jane@example.com",
		"password": "supersecret",
	}, "", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", w.Code)
	}
}
