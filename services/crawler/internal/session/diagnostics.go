package session

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Uploader envia artefatos de debug para fora da máquina (object storage).
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// Shooter é o que sabe tirar screenshot.
type Shooter interface {
	Screenshot(ctx context.Context) ([]byte, error)
}

// Diagnostics grava screenshots e dumps de HTML em Dir. É best-effort: erros
// são logados e engolidos, nunca propagados.
type Diagnostics struct {
	Dir      string
	Uploader Uploader
	now      func() time.Time
}

func NewDiagnostics(dir string, up Uploader) *Diagnostics {
	return &Diagnostics{Dir: dir, Uploader: up, now: time.Now}
}

// Screenshot grava <name>-<ts>.png.
func (d *Diagnostics) Screenshot(ctx context.Context, s Shooter, name string) string {
	if d == nil || s == nil {
		return ""
	}
	data, err := s.Screenshot(ctx)
	if err != nil {
		log.Printf("[Debug] falha ao capturar screenshot %s: %v", name, err)
		return ""
	}
	return d.write(ctx, name, "png", "image/png", data)
}

// HTML grava <name>-<ts>.html com o documento completo.
func (d *Diagnostics) HTML(ctx context.Context, name, html string) string {
	if d == nil {
		return ""
	}
	return d.write(ctx, name, "html", "text/html; charset=utf-8", []byte(html))
}

func (d *Diagnostics) write(ctx context.Context, name, ext, contentType string, data []byte) string {
	now := time.Now
	if d.now != nil {
		now = d.now
	}
	file := fmt.Sprintf("%s-%d.%s", name, now().UnixMilli(), ext)

	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		log.Printf("[Debug] falha criando %s: %v", d.Dir, err)
		return ""
	}
	path := filepath.Join(d.Dir, file)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("[Debug] falha gravando %s: %v", path, err)
		return ""
	}
	log.Printf("[Debug] artefato salvo em %s", path)

	if d.Uploader != nil {
		if err := d.Uploader.Upload(ctx, "debug/"+file, data, contentType); err != nil {
			log.Printf("[Debug] upload de %s falhou: %v", file, err)
		}
	}
	return path
}
