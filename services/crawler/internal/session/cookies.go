package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-rod/rod/lib/proto"
)

// CookieStore persiste cookies por host.
type CookieStore interface {
	Load(host string) ([]*proto.NetworkCookie, error)
	Save(host string, cookies []*proto.NetworkCookie) error
}

// FileCookieStore grava um JSON por host em Dir (ex.: cookies/tiktok.com.json).
type FileCookieStore struct {
	Dir string
}

func NewFileCookieStore(dir string) *FileCookieStore {
	return &FileCookieStore{Dir: dir}
}

func (s *FileCookieStore) path(host string) string {
	return filepath.Join(s.Dir, host+".json")
}

// Load devolve nil sem erro quando ainda não há cookies para o host.
func (s *FileCookieStore) Load(host string) ([]*proto.NetworkCookie, error) {
	data, err := os.ReadFile(s.path(host))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lendo cookies de %s: %w", host, err)
	}

	var cookies []*proto.NetworkCookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("decodificando cookies de %s: %w", host, err)
	}
	return cookies, nil
}

// Save sobrescreve o arquivo do host.
func (s *FileCookieStore) Save(host string, cookies []*proto.NetworkCookie) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("criando diretório de cookies: %w", err)
	}
	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return fmt.Errorf("codificando cookies: %w", err)
	}
	if err := os.WriteFile(s.path(host), data, 0o600); err != nil {
		return fmt.Errorf("gravando cookies de %s: %w", host, err)
	}
	log.Printf("[Cookies] %d cookies salvos para %s", len(cookies), host)
	return nil
}

// HostKey devolve o host de rawURL sem "www." (chave dos cookies).
func HostKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
