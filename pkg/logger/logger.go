package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Setup duplica a saída do pacote log para stdout e para um arquivo diário
// em dir (crawler-YYYY-MM-DD.log). O Closer retornado fecha o arquivo.
func Setup(dir string) (io.Closer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("criando diretório de logs: %w", err)
	}

	path := filepath.Join(dir, FileName(time.Now()))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("abrindo arquivo de log: %w", err)
	}

	log.SetOutput(io.MultiWriter(os.Stdout, f))
	log.SetFlags(log.LstdFlags)
	return f, nil
}

// FileName retorna o nome do arquivo de log do dia de t.
func FileName(t time.Time) string {
	return fmt.Sprintf("crawler-%s.log", t.Format("2006-01-02"))
}
