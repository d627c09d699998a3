package logger

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSetupWritesDailyFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	closer, err := Setup(dir)
	if err != nil {
		t.Fatalf("Setup falhou: %v", err)
	}
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
	})

	log.Printf("[Test] linha de teste")
	closer.Close()

	data, err := os.ReadFile(filepath.Join(dir, FileName(time.Now())))
	if err != nil {
		t.Fatalf("arquivo de log não encontrado: %v", err)
	}
	if !strings.Contains(string(data), "[Test] linha de teste") {
		t.Errorf("log não contém a linha escrita: %q", string(data))
	}
}

func TestFileName(t *testing.T) {
	got := FileName(time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC))
	if got != "crawler-2024-03-09.log" {
		t.Errorf("FileName() = %q", got)
	}
}
