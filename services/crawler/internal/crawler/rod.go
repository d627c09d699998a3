package crawler

import (
	"context"
	"time"

	"github.com/loviiin/argus-crawler/services/crawler/internal/session"
)

const (
	// texto "more" como fallback quando nenhum seletor do botão casa
	jsClickFirst = `(selectors) => {
		for (const sel of selectors) {
			const el = document.querySelector(sel);
			if (el) { el.click(); return sel; }
		}
		for (const btn of document.querySelectorAll("button")) {
			if ((btn.textContent || "").trim().toLowerCase() === "more") { btn.click(); return "button:text(more)"; }
		}
		return "";
	}`
	jsScrollViewport = `() => window.scrollBy(0, window.innerHeight)`
	jsVideoLinks     = `() => Array.from(document.querySelectorAll('a[href*="/video/"]')).map(a => a.getAttribute("href") || "")`
)

// RodPage implementa Page sobre a aba compartilhada com o Navigator.
type RodPage struct {
	*session.RodPage
}

func NewRodPage(p *session.RodPage) *RodPage {
	return &RodPage{RodPage: p}
}

func (r *RodPage) WaitForAny(ctx context.Context, selectors []string, timeout time.Duration) (string, bool) {
	for _, sel := range selectors {
		if ctx.Err() != nil {
			return "", false
		}
		p := r.Page.Context(ctx).Timeout(timeout)
		_, err := p.Element(sel)
		p.CancelTimeout()
		if err == nil {
			return sel, true
		}
	}
	return "", false
}

func (r *RodPage) ClickFirst(ctx context.Context, selectors []string) (string, error) {
	res, err := r.Page.Context(ctx).Eval(jsClickFirst, selectors)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (r *RodPage) ScrollViewport(ctx context.Context) error {
	_, err := r.Page.Context(ctx).Eval(jsScrollViewport)
	return err
}

func (r *RodPage) VideoLinks(ctx context.Context) ([]string, error) {
	res, err := r.Page.Context(ctx).Eval(jsVideoLinks)
	if err != nil {
		return nil, err
	}
	arr := res.Value.Arr()
	links := make([]string, 0, len(arr))
	for _, v := range arr {
		if s := v.Str(); s != "" {
			links = append(links, s)
		}
	}
	return links, nil
}

var _ Page = (*RodPage)(nil)
