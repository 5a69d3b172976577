package translate

import (
	"net/url"
	"strings"
)

// Site is an alternate translation page the panel links to.
type Site struct {
	Brand string `json:"brand"`
	URL   string `json:"url"`
}

// {origin} is replaced by the escaped source text.
var siteTemplates = []Site{
	{"Google", "https://translate.google.com.hk/?sl=auto&tl=zh-CN&text={origin}&op=translate"},
	{"YouDao", "https://fanyi.youdao.com/index.html"},
	{"Bing", "https://cn.bing.com/translator/?to=cn&text={origin}"},
	{"DeepL", "https://www.deepl.com/translator#ja/zh/{origin}"},
	{"NihongoDera", "https://nihongodera.com/tools/romaji-converter"},
}

// Sites returns the alternate sites with origin filled in.
func Sites(origin string) []Site {
	q := url.QueryEscape(origin)
	// DeepL reads the text from the fragment, where + is not a space.
	frag := url.PathEscape(origin)

	out := make([]Site, len(siteTemplates))
	for i, s := range siteTemplates {
		v := q
		if strings.Contains(s.URL, "#") {
			v = frag
		}
		out[i] = Site{Brand: s.Brand, URL: strings.ReplaceAll(s.URL, "{origin}", v)}
	}
	return out
}

// AudioURL returns the Youdao dictionary voice for the Japanese text.
func AudioURL(origin string) string {
	return "https://dict.youdao.com/dictvoice?audio=" + url.QueryEscape(origin) + "&le=ja"
}
