package captcha

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var selectors = []string{
	`iframe[src*="captcha"]`,
	".captcha_verify_container",
	".captcha_verify_img_slide",
	"[class*='secsdk-captcha']",
	"[id*='captcha']",
	"div[class*='captcha']",
}

// Regex textual em vez de "verify" solto (dá falso positivo com selo de verificado)
var challengeText = regexp.MustCompile(`(?i)(drag the slider|fit the puzzle|verify to continue|select 2 objects)`)

// Detect verifica se o snapshot de uma página é uma tela de captcha/verificação.
func Detect(html, pageURL string) bool {
	lower := strings.ToLower(pageURL)
	if strings.Contains(lower, "/verify") || strings.Contains(lower, "captcha") {
		return true
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}

	for _, sel := range selectors {
		if doc.Find(sel).Length() > 0 {
			return true
		}
	}

	return challengeText.MatchString(doc.Find("body").Text())
}
