package translate

import "time"

const (
	YoudaoURL = "https://m.youdao.com/translate"

	youdaoOrigin   = "https://m.youdao.com"
	youdaoReferer  = "https://m.youdao.com/translate"
	userAgent      = "Mozilla/5.0 (iPhone; CPU iPhone OS 14_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0.3 Mobile/15E148 Safari/604.1"
	acceptLanguage = "zh-CN,en-US;q=0.7,en;q=0.3"

	DefaultTimeout = 10 * time.Second

	// Result pages are a few KB; anything past this is not a result page.
	maxBodyBytes = 2 << 20
)
