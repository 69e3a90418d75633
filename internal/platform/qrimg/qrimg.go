// Package qrimg renderiza la chapita escaneable. Es una función pura
// sobre (code, baseURL): mismo input, mismos bytes. Por eso la imagen
// no se persiste nunca, se regenera on-demand.
package qrimg

import (
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	// TagSize es la resolución cuadrada fija del PNG.
	TagSize = 1024
)

// ProfileURL es la URL canónica que va impresa en cada chapita.
// La forma {baseUrl}/pet/{code} no puede cambiar: hay chapitas
// físicas ya impresas con ella.
func ProfileURL(baseURL, code string) string {
	return strings.TrimRight(baseURL, "/") + "/pet/" + code
}

// RenderPNG genera el PNG del QR: corrección de errores alta (H),
// negro sobre blanco. Determinista byte a byte.
func RenderPNG(code, baseURL string) ([]byte, error) {
	return qrcode.Encode(ProfileURL(baseURL, code), qrcode.High, TagSize)
}
