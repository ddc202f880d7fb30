// Package website downloads prospect pages and reduces them to visible text.
package website

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/spigell/lead-assistant/internal/utils"
	"go.uber.org/zap"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (compatible; LeadAssistant/1.0)"
	DefaultMaxRunes  = 20000

	acceptEncoding = "gzip"
	maxBodyBytes   = 5 << 20
)

var (
	ErrUnsupportedURL = errors.New("only absolute http and https urls are supported")
	ErrNotHTML        = errors.New("response is not an html document")
	noiseSelector     = "script, style, noscript, template, svg, nav, header, footer, iframe, form"
	contentSelectors  = []string{"main", "article", "[role=main]", "#content", ".content"}
)

type Config struct {
	Timeout   time.Duration `mapstructure:"timeout" validate:"gte=0"`
	UserAgent string        `mapstructure:"user-agent"`
	MaxRunes  int           `mapstructure:"max-runes" validate:"gte=0"`
}

// Fetcher retrieves web pages over HTTP.
type Fetcher struct {
	HTTPClient *http.Client
	UserAgent  string
	MaxRunes   int

	logger *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxRunes <= 0 {
		cfg.MaxRunes = DefaultMaxRunes
	}

	return &Fetcher{
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		UserAgent:  cfg.UserAgent,
		MaxRunes:   cfg.MaxRunes,
		logger:     logger,
	}
}

// Fetch downloads rawURL and returns its readable text.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	target, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || target.Host == "" || (target.Scheme != "http" && target.Scheme != "https") {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedURL, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Encoding", acceptEncoding)

	f.logger.Debug("fetch website", zap.String("url", target.String()))

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", target.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: bad status: %s", target.Host, resp.Status)
	}

	if !isHTML(resp.Header.Get("Content-Type")) {
		return "", fmt.Errorf("%w: %s", ErrNotHTML, resp.Header.Get("Content-Type"))
	}

	var body io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", fmt.Errorf("decompress %s: %w", target.Host, err)
		}
		defer gzipReader.Close()
		body = gzipReader
	}

	text, err := ExtractText(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return "", err
	}

	text = truncateRunes(text, f.MaxRunes)
	f.logger.Debug("website text extracted",
		zap.String("url", target.String()),
		zap.Int("text_length", len(text)),
		zap.String("text_preview", utils.TruncateForLog(text, 120)),
	)

	return text, nil
}

// ExtractText parses an HTML document and returns its main visible text
// with whitespace collapsed.
func ExtractText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find(noiseSelector).Remove()

	content := doc.Find("body")
	for _, selector := range contentSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			content = sel.First()
			break
		}
	}

	var parts []string
	collectText(content, &parts)

	return utils.SingleLine(strings.Join(parts, " ")), nil
}

// collectText walks text nodes in document order so words from adjacent
// block elements stay separated.
func collectText(sel *goquery.Selection, parts *[]string) {
	sel.Contents().Each(func(_ int, node *goquery.Selection) {
		switch goquery.NodeName(node) {
		case "#text":
			if text := strings.TrimSpace(node.Text()); text != "" {
				*parts = append(*parts, text)
			}
		case "#comment":
		default:
			collectText(node, parts)
		}
	})
}

func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit]))
}
