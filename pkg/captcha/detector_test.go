package captcha

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		html string
		url  string
		want bool
	}{
		{"clean video page", `<html><body><h1>TikTok</h1><span>verified</span></body></html>`, "https://www.tiktok.com/@a/video/1", false},
		{"verify url", `<html></html>`, "https://www.tiktok.com/verify?x=1", true},
		{"captcha container", `<div class="captcha_verify_container"></div>`, "https://www.tiktok.com/@a", true},
		{"captcha iframe", `<iframe src="https://x/captcha/slide"></iframe>`, "https://www.tiktok.com/", true},
		{"secsdk class", `<div class="abc secsdk-captcha-drag"></div>`, "https://www.tiktok.com/", true},
		{"slider text", `<body><p>Drag the slider to fit the puzzle</p></body>`, "https://www.tiktok.com/", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.html, tt.url); got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}
