// Package normalize converte os textos crus da extração em valores canônicos.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var multipliers = []struct {
	suffix string
	factor float64
}{
	{"K", 1e3},
	{"M", 1e6},
	{"B", 1e9},
}

// ParseAbbreviatedCount converte contadores como "1.5K", "2M" ou "1,234" em
// inteiros. Tudo que não for dígito, ponto ou K/M/B é descartado; entrada
// vazia ou inválida vira 0. Nunca entra em pânico.
func ParseAbbreviatedCount(text string) int64 {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' || r == 'K' || r == 'M' || r == 'B' {
			b.WriteRune(r)
		}
	}
	v := b.String()
	if v == "" {
		return 0
	}

	factor := 1.0
	for _, m := range multipliers {
		if strings.Contains(v, m.suffix) {
			factor = m.factor
			break
		}
	}
	num := strings.NewReplacer("K", "", "M", "", "B", "").Replace(v)
	if num == "" {
		return 0
	}

	f, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}

	if factor == 1 {
		f = math.Trunc(f)
	} else {
		f = math.Round(f * factor)
	}
	if f < 0 || f >= math.MaxInt64 {
		return 0
	}
	return int64(f)
}

// DateText devolve a data como texto livre; vazio vira "Unknown".
func DateText(raw string) string {
	s := Text(raw)
	if s == "" {
		return "Unknown"
	}
	return s
}

// "2d ago", "5h", "3 days ago", "just now", "yesterday"
var relativeDateRe = regexp.MustCompile(`(?i)^(?:\d+\s*(?:s|m|h|d|w|sec|secs|min|mins|hr|hrs|seconds?|minutes?|hours?|days?|weeks?)(?:\s+ago)?|just now|yesterday)$`)

// IsRelativeDate diz se a data é relativa ao momento da extração. Esse texto
// muda de um crawl para o outro e não serve para identificar um comentário.
func IsRelativeDate(date string) bool {
	return relativeDateRe.MatchString(Text(date))
}

// Text colapsa espaços e quebras de linha.
func Text(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
