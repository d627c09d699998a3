package session

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var loginMarkers = []string{"login-modal", "login-title", "login-container"}

const (
	loginModalSelector = `[data-e2e="login-modal"]`
	loggedInSelector   = `[data-e2e="upload-icon"], [data-e2e="user-avatar"]`
	brandMarker        = "TikTok"
	deniedMarker       = "Access Denied"
)

// IsLoginWall procura os marcadores de modal de login no HTML.
func IsLoginWall(html string) bool {
	for _, m := range loginMarkers {
		if strings.Contains(html, m) {
			return true
		}
	}
	return hasElement(html, loginModalSelector)
}

// IsLoggedIn procura elementos que só aparecem com sessão ativa.
func IsLoggedIn(html string) bool {
	return hasElement(html, loggedInSelector)
}

// LooksReal diz se o conteúdo é do site e não uma página de acesso negado.
func LooksReal(html string) bool {
	return strings.Contains(html, brandMarker) && !strings.Contains(html, deniedMarker)
}

func hasElement(html, selector string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	return doc.Find(selector).Length() > 0
}
