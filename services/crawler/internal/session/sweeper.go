package session

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const sweepInterval = 15 * time.Minute

// StartDebugSweeper remove periodicamente screenshots e dumps de HTML mais
// velhos que ttl. Bloqueia até ctx terminar.
func StartDebugSweeper(ctx context.Context, dir string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	log.Println("[GC] Iniciando Debug Sweeper...")
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		sweepDebugArtifacts(dir, ttl)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// sweepDebugArtifacts fica separado do loop pra facilitar teste
func sweepDebugArtifacts(dir string, ttl time.Duration) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[GC] Erro lendo diretório %s: %v", dir, err)
		}
		return 0
	}

	removed := 0
	now := time.Now()

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".png") && !strings.HasSuffix(name, ".html") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) <= ttl {
			continue
		}
		full := filepath.Join(dir, name)
		if err := os.Remove(full); err != nil {
			log.Printf("[GC] Erro removendo %s: %v", full, err)
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Printf("[GC] 🧹 Sweeper removeu %d artefatos de debug de %s", removed, dir)
	}
	return removed
}
