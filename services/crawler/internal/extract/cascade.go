// Package extract lê registros de snapshots HTML (goquery) usando cascatas de
// estratégias independentes: a primeira que produz valor vence.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultOrigin é usado quando não há origem configurada ou derivável da URL.
const DefaultOrigin = "https://www.tiktok.com"

// Strategy é uma forma de extrair um campo. Extract devolve ok=false quando
// não encontrou nada utilizável.
type Strategy[T any] struct {
	Name    string
	Extract func(root *goquery.Selection) (T, bool)
}

// Run tenta as estratégias em ordem e para na primeira com ok=true. As
// seguintes não são consultadas. Devolve o valor, o nome da estratégia
// vencedora e se alguma venceu.
func Run[T any](root *goquery.Selection, strategies []Strategy[T]) (T, string, bool) {
	for _, s := range strategies {
		if v, ok := s.Extract(root); ok {
			return v, s.Name, true
		}
	}
	var zero T
	return zero, "", false
}

// Value é Run sem os metadados, com fallback para def.
func Value[T any](root *goquery.Selection, strategies []Strategy[T], def T) T {
	if v, _, ok := Run(root, strategies); ok {
		return v
	}
	return def
}

// Text adapta uma função que devolve texto: o resultado é aparado e só conta
// se não for vazio.
func Text(name string, fn func(root *goquery.Selection) string) Strategy[string] {
	return Strategy[string]{
		Name: name,
		Extract: func(root *goquery.Selection) (string, bool) {
			v := strings.TrimSpace(fn(root))
			return v, v != ""
		},
	}
}

// List adapta uma função que devolve uma lista; só conta se não for vazia.
func List(name string, fn func(root *goquery.Selection) []string) Strategy[[]string] {
	return Strategy[[]string]{
		Name: name,
		Extract: func(root *goquery.Selection) ([]string, bool) {
			v := fn(root)
			return v, len(v) > 0
		},
	}
}

// Flag adapta um predicado; só conta quando verdadeiro.
func Flag(name string, fn func(root *goquery.Selection) bool) Strategy[bool] {
	return Strategy[bool]{
		Name: name,
		Extract: func(root *goquery.Selection) (bool, bool) {
			v := fn(root)
			return v, v
		},
	}
}

// firstText devolve o texto aparado do primeiro elemento que casa com sel.
func firstText(root *goquery.Selection, sel string) string {
	return strings.TrimSpace(root.Find(sel).First().Text())
}

// firstAttr devolve o primeiro valor não vazio de attr entre os elementos de sel.
func firstAttr(root *goquery.Selection, sel, attr string) string {
	var out string
	root.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
			out = strings.TrimSpace(v)
			return false
		}
		return true
	})
	return out
}

func meta(root *goquery.Selection, property string) string {
	return firstAttr(root, `meta[property="`+property+`"]`, "content")
}

// appendUnique adiciona v em list mantendo a ordem da primeira ocorrência.
func appendUnique(list []string, seen map[string]bool, v string) []string {
	if v == "" || seen[v] {
		return list
	}
	seen[v] = true
	return append(list, v)
}
