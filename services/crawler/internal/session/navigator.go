package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/loviiin/argus-crawler/pkg/captcha"
	"github.com/loviiin/argus-crawler/pkg/config"
	"github.com/loviiin/argus-crawler/pkg/retry"
)

var (
	ErrLoginTimeout   = errors.New("tempo esgotado aguardando login")
	ErrLoginRequired  = errors.New("login wall persistiu após o login")
	ErrCaptchaTimeout = errors.New("tempo esgotado aguardando resolução do captcha")
	ErrContentCheck   = errors.New("página carregou mas não parece o site (acesso negado?)")
)

const captchaPoll = 3 * time.Second

// NavConfig são os limites de navegação.
type NavConfig struct {
	MaxRetries        int
	RetryBase         time.Duration
	RetryStep         time.Duration
	Settle            time.Duration
	LoginPolls        int
	LoginPollInterval time.Duration
	CaptchaWait       time.Duration
}

// NavConfigFrom monta NavConfig a partir do config do projeto.
func NavConfigFrom(cfg *config.Config) NavConfig {
	return NavConfig{
		MaxRetries:        cfg.Crawl.MaxRetries,
		RetryBase:         cfg.Session.RetryBase,
		RetryStep:         cfg.Session.RetryStep,
		Settle:            cfg.Session.Settle,
		LoginPolls:        cfg.Session.LoginPolls,
		LoginPollInterval: cfg.Session.LoginPollInterval,
		CaptchaWait:       cfg.Session.CaptchaWait,
	}
}

// Navigator navega com cookies por host, detecção de login wall e captcha, e
// retry com backoff linear.
type Navigator struct {
	page    Page
	cookies CookieStore
	diag    *Diagnostics
	cfg     NavConfig

	// Sleep pode ser trocado em testes.
	Sleep func(ctx context.Context, d time.Duration) error

	loaded map[string]bool
}

func NewNavigator(page Page, cookies CookieStore, diag *Diagnostics, cfg NavConfig) *Navigator {
	return &Navigator{
		page:    page,
		cookies: cookies,
		diag:    diag,
		cfg:     cfg,
		Sleep:   retry.Sleep,
		loaded:  make(map[string]bool),
	}
}

// Navigate devolve false (nunca erro) quando os retries acabam ou a espera
// por login/captcha estoura. Quem chama deve pular o alvo.
func (n *Navigator) Navigate(ctx context.Context, targetURL string) bool {
	if err := n.navigate(ctx, targetURL); err != nil {
		log.Printf("[Nav] ❌ falha navegando para %s: %v", targetURL, err)
		return false
	}
	log.Printf("[Nav] ✅ navegou para %s", targetURL)
	return true
}

func (n *Navigator) navigate(ctx context.Context, targetURL string) error {
	host := HostKey(targetURL)
	if host != "" && !n.loaded[host] {
		n.loaded[host] = true
		n.applyCookies(ctx, host)
	}

	loginHandled := false
	rc := retry.Config{
		MaxAttempts: n.cfg.MaxRetries,
		Base:        n.cfg.RetryBase,
		Step:        n.cfg.RetryStep,
		Name:        "navigate " + targetURL,
	}
	// retry.Do usa o próprio sleep; os testes trocam n.Sleep, então o backoff
	// é aplicado aqui e o Config do retry fica sem espera.
	wait := rc
	rc.Base, rc.Step = 0, 0

	_, err := retry.Do(ctx, rc, func(attempt int) (struct{}, error) {
		if attempt > 1 {
			if err := n.Sleep(ctx, wait.Wait(attempt-1)); err != nil {
				return struct{}{}, retry.Permanent(err)
			}
		}
		err := n.attempt(ctx, targetURL, host, &loginHandled)
		if err != nil && !retry.IsPermanent(err) {
			n.diag.Screenshot(ctx, n.page, "error-screenshot")
		}
		return struct{}{}, err
	})
	return err
}

func (n *Navigator) attempt(ctx context.Context, targetURL, host string, loginHandled *bool) error {
	html, err := n.load(ctx, targetURL)
	if err != nil {
		return err
	}

	if captcha.Detect(html, n.page.URL(ctx)) {
		if html, err = n.waitCaptcha(ctx); err != nil {
			return retry.Permanent(err)
		}
	}

	if IsLoginWall(html) {
		if *loginHandled {
			return retry.Permanent(ErrLoginRequired)
		}
		*loginHandled = true
		if err := n.handleLogin(ctx, host); err != nil {
			return retry.Permanent(err)
		}
		if html, err = n.load(ctx, targetURL); err != nil {
			return err
		}
		if IsLoginWall(html) {
			return retry.Permanent(ErrLoginRequired)
		}
	}

	if !LooksReal(html) {
		return ErrContentCheck
	}

	n.saveCookies(ctx, host)
	return nil
}

func (n *Navigator) load(ctx context.Context, targetURL string) (string, error) {
	if err := n.page.Navigate(ctx, targetURL); err != nil {
		return "", err
	}
	if err := n.Sleep(ctx, n.cfg.Settle); err != nil {
		return "", retry.Permanent(err)
	}
	html, err := n.page.HTML(ctx)
	if err != nil {
		return "", fmt.Errorf("lendo HTML: %w", err)
	}
	return html, nil
}

// handleLogin tenta os cookies salvos; se não bastar, espera login manual.
func (n *Navigator) handleLogin(ctx context.Context, host string) error {
	log.Println("[Nav] login wall detectado")

	if n.applyCookies(ctx, host) {
		if err := n.page.Reload(ctx); err != nil {
			log.Printf("[Nav] reload após cookies falhou: %v", err)
		} else if err := n.Sleep(ctx, n.cfg.Settle); err != nil {
			return err
		} else if n.loggedIn(ctx) {
			log.Println("[Nav] login restaurado via cookies")
			n.saveCookies(ctx, host)
			return nil
		}
	}

	log.Printf("[Nav] ⚠️  faça login manualmente no browser (aguardando até %d x %v)", n.cfg.LoginPolls, n.cfg.LoginPollInterval)
	for i := 1; i <= n.cfg.LoginPolls; i++ {
		if err := n.Sleep(ctx, n.cfg.LoginPollInterval); err != nil {
			return err
		}
		if n.loggedIn(ctx) {
			log.Println("[Nav] login manual detectado")
			n.saveCookies(ctx, host)
			return nil
		}
		log.Printf("[Nav] aguardando login... (%d/%d)", i, n.cfg.LoginPolls)
	}
	return ErrLoginTimeout
}

func (n *Navigator) loggedIn(ctx context.Context) bool {
	html, err := n.page.HTML(ctx)
	return err == nil && IsLoggedIn(html)
}

// waitCaptcha aguarda o captcha ser resolvido manualmente (VNC/monitor).
func (n *Navigator) waitCaptcha(ctx context.Context) (string, error) {
	log.Printf("[Nav] captcha detectado, aguardando resolução manual (até %v)", n.cfg.CaptchaWait)
	for waited := time.Duration(0); waited < n.cfg.CaptchaWait; waited += captchaPoll {
		if err := n.Sleep(ctx, captchaPoll); err != nil {
			return "", err
		}
		html, err := n.page.HTML(ctx)
		if err != nil {
			continue
		}
		if !captcha.Detect(html, n.page.URL(ctx)) {
			log.Println("[Nav] ✅ captcha resolvido")
			return html, nil
		}
	}
	return "", ErrCaptchaTimeout
}

func (n *Navigator) applyCookies(ctx context.Context, host string) bool {
	if n.cookies == nil || host == "" {
		return false
	}
	cookies, err := n.cookies.Load(host)
	if err != nil {
		log.Printf("[Nav] erro carregando cookies de %s: %v", host, err)
		return false
	}
	if len(cookies) == 0 {
		log.Printf("[Nav] nenhum cookie salvo para %s", host)
		return false
	}
	if err := n.page.SetCookies(ctx, cookies); err != nil {
		log.Printf("[Nav] erro aplicando cookies de %s: %v", host, err)
		return false
	}
	log.Printf("[Nav] %d cookies carregados para %s", len(cookies), host)
	return true
}

func (n *Navigator) saveCookies(ctx context.Context, host string) {
	if n.cookies == nil || host == "" {
		return
	}
	cookies, err := n.page.Cookies(ctx)
	if err != nil {
		log.Printf("[Nav] erro lendo cookies: %v", err)
		return
	}
	if err := n.cookies.Save(host, cookies); err != nil {
		log.Printf("[Nav] erro salvando cookies: %v", err)
	}
}
