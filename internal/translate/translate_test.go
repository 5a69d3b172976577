package translate

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/light4/christina/internal/resilience"
)

func TestExtractResult(t *testing.T) {
	tests := []struct {
		name   string
		page   string
		want   string
		wantOK bool
	}{
		{
			name:   "two items",
			page:   `<ul id="translateResult"><li>foo</li><li>bar</li></ul>`,
			want:   "foo\nbar",
			wantOK: true,
		},
		{
			name:   "no container",
			page:   `<html><body><p>翻译出错了</p></body></html>`,
			wantOK: false,
		},
		{
			name:   "empty container",
			page:   `<ul id="translateResult"></ul>`,
			want:   "",
			wantOK: true,
		},
		{
			name: "surrounding page and whitespace",
			page: `<html><body><div class="generate">
<ul id="translateResult">
    <li>
        对此，我当然很感兴趣。
    </li>
</ul>
</div><ul id="other"><li>ignored</li></ul></body></html>`,
			want:   "对此，我当然很感兴趣。",
			wantOK: true,
		},
		{
			name:   "padding kept between items",
			page:   `<ul id="translateResult"><li>  a  </li><li>  b  </li></ul>`,
			want:   "a  \n  b",
			wantOK: true,
		},
		{
			name:   "nested tags and entities",
			page:   `<ul id="translateResult"><li><b>A</b> &amp; <i>B</i></li><li>&lt;c&gt;</li></ul>`,
			want:   "A & B\n<c>",
			wantOK: true,
		},
		{
			name:   "container with extra attributes",
			page:   `<ul id="translateResult" class="x"><li>ok</li></ul>`,
			want:   "ok",
			wantOK: true,
		},
		{
			name:   "first container wins",
			page:   `<ul id="translateResult"><li>one</li></ul><ul id="translateResult"><li>two</li></ul>`,
			want:   "one",
			wantOK: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractResult(tt.page)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ExtractResult() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func youdaoServer(t *testing.T, handler http.HandlerFunc) *Youdao {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Youdao{URL: srv.URL, Timeout: time.Second, Client: srv.Client()}
}

func TestYoudaoTranslate(t *testing.T) {
	var got url.Values
	var header http.Header
	y := youdaoServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		got, _ = url.ParseQuery(string(body))
		header = r.Header
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, `<html><ul id="translateResult"><li>对此，我当然很感兴趣。</li></ul></html>`)
	})

	out, ok := y.Translate(context.Background(), "それにも、当然ながら関心があった。")
	if !ok || out != "对此，我当然很感兴趣。" {
		t.Errorf("Translate() = (%q, %v)", out, ok)
	}
	if got.Get("inputtext") != "それにも、当然ながら関心があった。" || got.Get("type") != "AUTO" {
		t.Errorf("form = %v", got)
	}
	if !strings.Contains(header.Get("User-Agent"), "iPhone") {
		t.Errorf("User-Agent = %q", header.Get("User-Agent"))
	}
	if header.Get("Origin") != youdaoOrigin || header.Get("Referer") != youdaoReferer {
		t.Errorf("Origin/Referer = %q/%q", header.Get("Origin"), header.Get("Referer"))
	}
	if header.Get("Accept-Language") != acceptLanguage {
		t.Errorf("Accept-Language = %q", header.Get("Accept-Language"))
	}
}

func TestYoudaoCharset(t *testing.T) {
	// "中文" in GBK.
	gbk := "<ul id=\"translateResult\"><li>\xd6\xd0\xce\xc4</li></ul>"
	y := youdaoServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=gbk")
		io.WriteString(w, gbk)
	})

	if out, ok := y.Translate(context.Background(), "x"); !ok || out != "中文" {
		t.Errorf("Translate() = (%q, %v), want (中文, true)", out, ok)
	}
}

func TestYoudaoFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"page changed", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `<div id="result">新版页面</div>`)
		}},
		{"timeout", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y := youdaoServer(t, tt.handler)
			y.Timeout = 50 * time.Millisecond
			if out, ok := y.Translate(context.Background(), "x"); ok {
				t.Errorf("Translate() = (%q, true), want false", out)
			}
		})
	}
}

func TestYoudaoUnreachable(t *testing.T) {
	y := NewYoudao("http://127.0.0.1:1/translate", 100*time.Millisecond)
	if _, ok := y.Translate(context.Background(), "x"); ok {
		t.Error("unreachable endpoint should yield no translation")
	}
}

func TestNewYoudaoDefaults(t *testing.T) {
	y := NewYoudao("", 0)
	if y.URL != YoudaoURL || y.Timeout != DefaultTimeout {
		t.Errorf("NewYoudao defaults = %q, %v", y.URL, y.Timeout)
	}
}

func TestGuarded(t *testing.T) {
	var calls atomic.Int32
	fail := Func(func(ctx context.Context, text string) (string, bool) {
		calls.Add(1)
		return "", false
	})
	b := resilience.New(resilience.Config{Threshold: 2, ResetTimeout: time.Hour, HalfOpenSuccesses: 1})
	g := NewGuarded(fail, b)

	for i := 0; i < 4; i++ {
		if _, ok := g.Translate(context.Background(), "x"); ok {
			t.Fatal("failing backend should not translate")
		}
	}
	if calls.Load() != 2 {
		t.Errorf("backend calls = %d, want 2 before the breaker opens", calls.Load())
	}
	if b.State() != resilience.Open {
		t.Errorf("breaker state = %v, want open", b.State())
	}
}

func TestGuardedPassesThrough(t *testing.T) {
	echo := Func(func(ctx context.Context, text string) (string, bool) { return "zh:" + text, true })
	g := NewGuarded(echo, resilience.New(resilience.TranslateConfig()))

	if out, ok := g.Translate(context.Background(), "ja"); !ok || out != "zh:ja" {
		t.Errorf("Translate() = (%q, %v)", out, ok)
	}
	// An empty translation is still a translation.
	empty := NewGuarded(Func(func(context.Context, string) (string, bool) { return "", true }), resilience.New(resilience.TranslateConfig()))
	if _, ok := empty.Translate(context.Background(), "ja"); !ok {
		t.Error("empty result should count as success")
	}
}

func TestSites(t *testing.T) {
	sites := Sites("関心 a&b")
	brands := []string{"Google", "YouDao", "Bing", "DeepL", "NihongoDera"}
	if len(sites) != len(brands) {
		t.Fatalf("len(Sites) = %d, want %d", len(sites), len(brands))
	}
	for i, b := range brands {
		if sites[i].Brand != b {
			t.Errorf("sites[%d].Brand = %q, want %q", i, sites[i].Brand, b)
		}
		if strings.Contains(sites[i].URL, "{origin}") {
			t.Errorf("%s URL not filled: %s", b, sites[i].URL)
		}
	}

	u, err := url.Parse(sites[0].URL)
	if err != nil {
		t.Fatal(err)
	}
	if got := u.Query().Get("text"); got != "関心 a&b" {
		t.Errorf("Google text = %q", got)
	}
	if !strings.HasSuffix(sites[3].URL, "#ja/zh/"+url.PathEscape("関心 a&b")) {
		t.Errorf("DeepL URL = %s", sites[3].URL)
	}
	if sites[1].URL != "https://fanyi.youdao.com/index.html" {
		t.Errorf("YouDao URL = %s", sites[1].URL)
	}
}

func TestAudioURL(t *testing.T) {
	got := AudioURL("関心")
	u, err := url.Parse(got)
	if err != nil {
		t.Fatal(err)
	}
	if u.Host != "dict.youdao.com" || u.Query().Get("audio") != "関心" || u.Query().Get("le") != "ja" {
		t.Errorf("AudioURL() = %s", got)
	}
}
