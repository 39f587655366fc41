package icon

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
)

const (
	MimePNG = "image/png"
	MimeICO = "image/x-icon"
)

var (
	ErrUnsupportedType = errors.New("Formato de ícone não suportado. Use PNG, JPG, GIF, WEBP ou ICO")
	ErrScriptable      = errors.New("Arquivos HTML, SVG ou XML não são permitidos")
	ErrTooLarge        = errors.New("Arquivo excede o tamanho máximo permitido")
	ErrEmpty           = errors.New("Arquivo vazio")
)

var allowedExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".ico":  true,
}

var allowedMime = map[string]bool{
	"image/png":    true,
	"image/jpeg":   true,
	"image/gif":    true,
	"image/webp":   true,
	"image/x-icon": true,
	// some ico files sniff as the vnd type
	"image/vnd.microsoft.icon": true,
}

// Sniff checks the extension of filename and the first bytes of the file
// against the icon whitelist and returns the detected mime type.
func Sniff(filename string, head []byte) (string, error) {
	if len(head) == 0 {
		return "", ErrEmpty
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", ErrUnsupportedType
	}

	detected := http.DetectContentType(head)
	if i := strings.IndexByte(detected, ';'); i >= 0 {
		detected = detected[:i]
	}

	switch {
	case strings.HasPrefix(detected, "text/html"), strings.HasPrefix(detected, "application/xhtml"):
		return "", ErrScriptable
	case strings.HasPrefix(detected, "text/xml"), strings.HasPrefix(detected, "application/xml"), detected == "image/svg+xml":
		return "", ErrScriptable
	}

	if detected == "image/vnd.microsoft.icon" {
		detected = MimeICO
	}
	if !allowedMime[detected] {
		return "", ErrUnsupportedType
	}
	return detected, nil
}
