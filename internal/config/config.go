// Package config handles application configuration.
//
// Values are layered: built-in defaults, then the TOML config file, then a
// .env file in the working directory, then the process environment.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	apperr "github.com/light4/christina/internal/errors"
	"github.com/light4/christina/internal/trigger"
)

type Config struct {
	LogLevel    string `toml:"log_level"`
	HTTPAddr    string `toml:"http_addr"`
	ControlAddr string `toml:"control_addr"`

	DisplayIndex int `toml:"display_index"`
	CropX        int `toml:"crop_x"`
	CropY        int `toml:"crop_y"`
	CropWidth    int `toml:"crop_width"`
	CropHeight   int `toml:"crop_height"`

	LumaThreshold   int    `toml:"luma_threshold"`
	PaletteAlpha    int    `toml:"palette_alpha"`
	ProcessedFormat string `toml:"processed_format"`
	WorkDir         string `toml:"work_dir"`
	KeepFiles       bool   `toml:"keep_files"`

	SkipSimilarFrames bool `toml:"skip_similar_frames"`
	MaxHashDistance   int  `toml:"max_hash_distance"`

	OCREngine     string `toml:"ocr_engine"`
	OCRLang       string `toml:"ocr_lang"`
	OCRPSM        int    `toml:"ocr_psm"`
	TesseractPath string `toml:"tesseract_path"`

	TranslateURL         string        `toml:"translate_url"`
	TranslateTimeout     time.Duration `toml:"translate_timeout"`
	TranslateUnavailable string        `toml:"translate_unavailable"`

	Clipboard   bool   `toml:"clipboard"`
	Notify      bool   `toml:"notify"`
	Tray        bool   `toml:"tray"`
	Hotkey      string `toml:"hotkey"`
	HistorySize int    `toml:"history_size"`

	// WatchInterval > 0 captures periodically; 0 disables it.
	WatchInterval time.Duration `toml:"watch_interval"`
	// JournalFile receives every completed result as a JSON line; "" disables it.
	JournalFile string `toml:"journal_file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:             "info",
		HTTPAddr:             "127.0.0.1:8723",
		ControlAddr:          "127.0.0.1:8724",
		CropY:                770,
		CropWidth:            1920,
		CropHeight:           310,
		LumaThreshold:        195,
		PaletteAlpha:         255,
		ProcessedFormat:      "png",
		WorkDir:              defaultWorkDir(),
		OCREngine:            "tesseract",
		OCRLang:              "jpn",
		OCRPSM:               6,
		TesseractPath:        "tesseract",
		TranslateURL:         "https://m.youdao.com/translate",
		TranslateTimeout:     10 * time.Second,
		TranslateUnavailable: "翻译出错了",
		Clipboard:            true,
		Notify:               true,
		Tray:                 true,
		HistorySize:          20,
	}
}

// Load builds the configuration from every layer. A missing config file or
// .env file is not an error.
func Load() (*Config, error) {
	cfg := Default()

	path := getEnv("CONFIG_FILE", DefaultFile())
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.Wrap(err, apperr.ConfigInvalid, "read .env")
	}

	cfg.applyEnv()
	return cfg, nil
}

// DefaultFile returns <user config dir>/christina/config.toml, or "" when the
// platform has no config directory.
func DefaultFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName, "config.toml")
}

func (c *Config) loadFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := toml.DecodeFile(path, c); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return apperr.Wrap(err, apperr.ConfigInvalid, "decode config file").WithMetadata("path", path)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.HTTPAddr = getEnv("HTTP_ADDR", c.HTTPAddr)
	c.ControlAddr = getEnv("CONTROL_ADDR", c.ControlAddr)
	c.DisplayIndex = getEnvInt("DISPLAY_INDEX", c.DisplayIndex)
	c.CropX = getEnvInt("CROP_X", c.CropX)
	c.CropY = getEnvInt("CROP_Y", c.CropY)
	c.CropWidth = getEnvInt("CROP_WIDTH", c.CropWidth)
	c.CropHeight = getEnvInt("CROP_HEIGHT", c.CropHeight)
	c.LumaThreshold = getEnvInt("LUMA_THRESHOLD", c.LumaThreshold)
	c.PaletteAlpha = getEnvInt("PALETTE_ALPHA", c.PaletteAlpha)
	c.ProcessedFormat = strings.ToLower(getEnv("PROCESSED_FORMAT", c.ProcessedFormat))
	c.WorkDir = getEnv("WORK_DIR", c.WorkDir)
	c.KeepFiles = getEnvBool("KEEP_FILES", c.KeepFiles)
	c.SkipSimilarFrames = getEnvBool("SKIP_SIMILAR_FRAMES", c.SkipSimilarFrames)
	c.MaxHashDistance = getEnvInt("MAX_HASH_DISTANCE", c.MaxHashDistance)
	c.OCREngine = strings.ToLower(getEnv("OCR_ENGINE", c.OCREngine))
	c.OCRLang = getEnv("OCR_LANG", c.OCRLang)
	c.OCRPSM = getEnvInt("OCR_PSM", c.OCRPSM)
	c.TesseractPath = getEnv("TESSERACT_PATH", c.TesseractPath)
	c.TranslateURL = getEnv("TRANSLATE_URL", c.TranslateURL)
	c.TranslateTimeout = getEnvDuration("TRANSLATE_TIMEOUT", c.TranslateTimeout)
	c.TranslateUnavailable = getEnv("TRANSLATE_UNAVAILABLE", c.TranslateUnavailable)
	c.Clipboard = getEnvBool("CLIPBOARD", c.Clipboard)
	c.Notify = getEnvBool("NOTIFY", c.Notify)
	c.Tray = getEnvBool("TRAY", c.Tray)
	c.Hotkey = getEnv("HOTKEY", c.Hotkey)
	c.HistorySize = getEnvInt("HISTORY_SIZE", c.HistorySize)
	c.WatchInterval = getEnvDuration("WATCH_INTERVAL", c.WatchInterval)
	c.JournalFile = getEnv("JOURNAL_FILE", c.JournalFile)
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.CropWidth <= 0 || c.CropHeight <= 0:
		return apperr.Newf(apperr.ConfigInvalid, "crop size must be positive, got %dx%d", c.CropWidth, c.CropHeight)
	case c.CropX < 0 || c.CropY < 0:
		return apperr.Newf(apperr.ConfigInvalid, "crop origin must not be negative, got (%d,%d)", c.CropX, c.CropY)
	case c.LumaThreshold < 0 || c.LumaThreshold > 255:
		return apperr.Newf(apperr.ConfigInvalid, "luma threshold %d outside 0..255", c.LumaThreshold)
	case c.PaletteAlpha < 0 || c.PaletteAlpha > 255:
		return apperr.Newf(apperr.ConfigInvalid, "palette alpha %d outside 0..255", c.PaletteAlpha)
	case c.TranslateTimeout <= 0:
		return apperr.Newf(apperr.ConfigInvalid, "translate timeout must be positive, got %s", c.TranslateTimeout)
	case c.MaxHashDistance < 0:
		return apperr.Newf(apperr.ConfigInvalid, "max hash distance must not be negative, got %d", c.MaxHashDistance)
	case c.WatchInterval < 0 || (c.WatchInterval > 0 && c.WatchInterval < minWatchInterval):
		return apperr.Newf(apperr.ConfigInvalid, "watch interval must be 0 or at least %s, got %s", minWatchInterval, c.WatchInterval)
	case c.HistorySize <= 0:
		return apperr.Newf(apperr.ConfigInvalid, "history size must be positive, got %d", c.HistorySize)
	case c.OCRLang == "":
		return apperr.New(apperr.ConfigInvalid, "ocr language is empty")
	case c.WorkDir == "":
		return apperr.New(apperr.ConfigInvalid, "work dir is empty")
	}
	if !knownFormats[c.ProcessedFormat] {
		return apperr.Newf(apperr.ConfigInvalid, "unsupported processed image format %q", c.ProcessedFormat)
	}
	if !knownEngines[c.OCREngine] {
		return apperr.Newf(apperr.ConfigInvalid, "unknown ocr engine %q", c.OCREngine)
	}
	if c.Hotkey != "" {
		if _, err := trigger.ParseCombo(c.Hotkey); err != nil {
			return err
		}
	}
	return nil
}

func defaultWorkDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, appName)
	}
	return filepath.Join(os.TempDir(), appName)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
