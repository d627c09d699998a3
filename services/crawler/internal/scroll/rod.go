package scroll

import (
	"context"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
)

// Seletores usados na página de vídeo.
var (
	CommentListSelectors = []string{
		".css-7whb78-DivCommentListContainer",
		`div[class*="DivCommentListContainer"]`,
		`div[class*="CommentListContainer"]`,
		`[data-e2e="comment-list"]`,
		`div[class*="comment-list"]`,
		".comment-list",
	}
	CommentItemSelector = `.css-13wx63w-DivCommentObjectWrapper, div[class*="DivCommentObjectWrapper"]`
	LoadMoreSelectors   = []string{
		".css-1i8wr2j-DivLoadMoreContainer",
		`button[data-e2e="view-more-comments"]`,
		`button[class*="ButtonMore"]`,
		`button[class*="load-more"]`,
		`div[class*="LoadMore"]`,
		`span[class*="load-more"]`,
	}
	ViewRepliesSelector  = `.css-9kgp5o-DivReplyContainer, .css-1idgi02-DivViewRepliesContainer, div[class*="ViewReplies"], [data-e2e="view-more-replies"]`
	ViewRepliesTextRegex = `view\s+\d+\s+repl`
)

const (
	jsScrollContainer = `(selectors) => {
		for (const sel of selectors) {
			const el = document.querySelector(sel);
			if (el) { el.scrollTop = el.scrollHeight; return true; }
		}
		window.scrollBy(0, 1000);
		return false;
	}`
	jsScrollLast = `(sel) => {
		const items = document.querySelectorAll(sel);
		if (items.length === 0) return false;
		items[items.length - 1].scrollIntoView();
		return true;
	}`
	jsCount    = `(sel) => document.querySelectorAll(sel).length`
	jsLoadMore = `(selectors) => {
		for (const sel of selectors) {
			const btn = document.querySelector(sel);
			if (btn) { btn.click(); return sel; }
		}
		return "";
	}`
	// um elemento já clicado só é clicado de novo se o texto mudou
	jsFirstViewReplies = `(sel) => {
		for (const el of document.querySelectorAll(sel)) {
			const raw = el.textContent || "";
			const t = raw.toLowerCase();
			if (!(t.includes("view") && t.includes("repl"))) continue;
			if (el.dataset.argusClicked === raw) continue;
			el.dataset.argusClicked = raw;
			el.click();
			return true;
		}
		return false;
	}`
	jsRemainingViewReplies = `(sel) => {
		let n = 0;
		for (const el of document.querySelectorAll(sel)) {
			const t = (el.textContent || "").toLowerCase();
			if (t.includes("view") && t.includes("repl")) {
				try { el.click(); n++; } catch (e) {}
			}
		}
		return n;
	}`
	// só os elementos mais internos que casam, para não clicar em body/html
	jsViewRepliesByText = `(pattern) => {
		const re = new RegExp(pattern, "i");
		let n = 0;
		for (const el of document.querySelectorAll("*")) {
			if (!re.test(el.textContent || "")) continue;
			if (Array.from(el.children).some(c => re.test(c.textContent || ""))) continue;
			try { el.click(); n++; } catch (e) {}
		}
		return n;
	}`
)

// RodActions implementa Actions e ReplyExpander sobre uma página Rod.
type RodActions struct {
	Page               *rod.Page
	ContainerSelectors []string
	ItemSelector       string
	LoadMoreSelectors  []string
}

// NewCommentActions configura os seletores do painel de comentários.
func NewCommentActions(page *rod.Page) *RodActions {
	return &RodActions{
		Page:               page,
		ContainerSelectors: CommentListSelectors,
		ItemSelector:       CommentItemSelector,
		LoadMoreSelectors:  LoadMoreSelectors,
	}
}

func (r *RodActions) ScrollContainer(ctx context.Context) error {
	_, err := r.Page.Context(ctx).Eval(jsScrollContainer, r.ContainerSelectors)
	return err
}

func (r *RodActions) PressEnd(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.Page.Keyboard.Type(input.End)
}

func (r *RodActions) ScrollLastIntoView(ctx context.Context) error {
	_, err := r.Page.Context(ctx).Eval(jsScrollLast, r.ItemSelector)
	return err
}

func (r *RodActions) ClickLoadMore(ctx context.Context) (bool, error) {
	if len(r.LoadMoreSelectors) == 0 {
		return false, nil
	}
	res, err := r.Page.Context(ctx).Eval(jsLoadMore, r.LoadMoreSelectors)
	if err != nil {
		return false, err
	}
	return res.Value.Str() != "", nil
}

// Count conta os itens de ItemSelector. Serve como Counter.
func (r *RodActions) Count(ctx context.Context) (int, error) {
	res, err := r.Page.Context(ctx).Eval(jsCount, r.ItemSelector)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

func (r *RodActions) ClickFirstViewReplies(ctx context.Context) (bool, error) {
	res, err := r.Page.Context(ctx).Eval(jsFirstViewReplies, ViewRepliesSelector)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

func (r *RodActions) ClickRemainingViewReplies(ctx context.Context) (int, error) {
	res, err := r.Page.Context(ctx).Eval(jsRemainingViewReplies, ViewRepliesSelector)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

func (r *RodActions) ClickViewRepliesByText(ctx context.Context) (int, error) {
	res, err := r.Page.Context(ctx).Eval(jsViewRepliesByText, ViewRepliesTextRegex)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}
