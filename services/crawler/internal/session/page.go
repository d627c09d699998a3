package session

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Page é a superfície do browser usada pelo Navigator.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Reload(ctx context.Context) error
	HTML(ctx context.Context) (string, error)
	URL(ctx context.Context) string
	Cookies(ctx context.Context) ([]*proto.NetworkCookie, error)
	SetCookies(ctx context.Context, cookies []*proto.NetworkCookie) error
	Screenshot(ctx context.Context) ([]byte, error)
}

// RodPage adapta *rod.Page. Timeout limita navegação e reload.
type RodPage struct {
	Page    *rod.Page
	Timeout time.Duration
}

func NewRodPage(page *rod.Page, timeout time.Duration) *RodPage {
	return &RodPage{Page: page, Timeout: timeout}
}

func (r *RodPage) bounded(ctx context.Context) (*rod.Page, func()) {
	if r.Timeout <= 0 {
		return r.Page.Context(ctx), func() {}
	}
	p := r.Page.Context(ctx).Timeout(r.Timeout)
	return p, func() { p.CancelTimeout() }
}

func (r *RodPage) Navigate(ctx context.Context, url string) error {
	p, cancel := r.bounded(ctx)
	defer cancel()
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("erro navegando para %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("erro aguardando load de %s: %w", url, err)
	}
	return nil
}

func (r *RodPage) Reload(ctx context.Context) error {
	p, cancel := r.bounded(ctx)
	defer cancel()
	if err := p.Reload(); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	return p.WaitLoad()
}

func (r *RodPage) HTML(ctx context.Context) (string, error) {
	return r.Page.Context(ctx).HTML()
}

func (r *RodPage) URL(ctx context.Context) string {
	info, err := r.Page.Context(ctx).Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (r *RodPage) Cookies(ctx context.Context) ([]*proto.NetworkCookie, error) {
	return r.Page.Context(ctx).Cookies(nil)
}

func (r *RodPage) SetCookies(ctx context.Context, cookies []*proto.NetworkCookie) error {
	return r.Page.Context(ctx).SetCookies(proto.CookiesToParams(cookies))
}

func (r *RodPage) Screenshot(ctx context.Context) ([]byte, error) {
	return r.Page.Context(ctx).Screenshot(false, nil)
}
