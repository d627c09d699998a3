// Package session cuida do browser, dos cookies e da navegação resiliente
// (login wall, captcha, retries com screenshot de diagnóstico).
package session

import (
	"fmt"
	"log"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/loviiin/argus-crawler/pkg/config"
)

// NewBrowser cria uma instância de browser Rod com estado persistente.
// O UserDataDir mantém cookies e localStorage entre execuções, o que reduz
// login walls e captchas repetidos.
func NewBrowser(cfg config.BrowserConfig) (*rod.Browser, error) {
	bin := cfg.Bin
	if bin == "" {
		bin, _ = launcher.LookPath()
	}

	l := launcher.New().
		Bin(bin).
		UserDataDir(cfg.UserDataDir).
		Leakless(false).
		Set("disable-blink-features", "AutomationControlled").
		Set("window-size", "1920,1080").
		Set("disable-dev-shm-usage").
		Set("disable-gpu"). // Evita problemas de GPU em containers
		Set("no-sandbox").  // Necessário em containers Linux
		Delete("enable-automation")

	if cfg.Headless {
		l = l.Set("headless", "new") // Para produção (Evasão Anti-Bot)
	} else {
		l = l.Headless(false) // Para desenvolvimento/VNC (Permite ver a tela)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("erro ao iniciar browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("erro conectando ao browser: %w", err)
	}

	if cfg.DebugPort != "" {
		// Monitor para debug remoto
		go browser.ServeMonitor(cfg.DebugPort)
		log.Printf("[Browser] monitor em %s", cfg.DebugPort)
	}

	log.Printf("[Browser] iniciado (headless=%v, perfil=%s)", cfg.Headless, cfg.UserDataDir)
	return browser, nil
}

// NewPage abre uma aba stealth com user agent, idioma e viewport fixos.
func NewPage(browser *rod.Browser, cfg config.BrowserConfig) (*rod.Page, error) {
	page, err := stealth.Page(browser)
	if err != nil {
		return nil, fmt.Errorf("erro criando pagina stealth: %w", err)
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      cfg.UserAgent,
		AcceptLanguage: cfg.Language,
	}); err != nil {
		page.Close()
		return nil, fmt.Errorf("erro aplicando user agent: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  1920,
		Height: 1080,
	}); err != nil {
		page.Close()
		return nil, fmt.Errorf("erro aplicando viewport: %w", err)
	}
	return page, nil
}
