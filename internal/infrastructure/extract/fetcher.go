package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/secondbrain/backend/internal/infrastructure/config"
	"github.com/secondbrain/backend/internal/infrastructure/log"
)

const (
	userAgent = "Mozilla/5.0 (compatible; SecondBrainBot/1.0)"
	// maxPageBytes 单个页面最多读取的字节数
	maxPageBytes = 5 << 20
)

// FetchError 远程抓取失败
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher 网页与 YouTube 抓取器
type Fetcher struct {
	client      *resty.Client
	youtubeBase string
	logger      *slog.Logger
}

// NewFetcher 创建抓取器
func NewFetcher(cfg *config.IngestionConfig) *Fetcher {
	timeout := time.Duration(cfg.FetchTimeout) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept-Language", "en-US,en;q=0.9").
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	return &Fetcher{
		client:      client,
		youtubeBase: "https://www.youtube.com",
		logger:      log.NewModuleLogger("extract", "fetcher"),
	}
}

// FetchPage 抓取网页并提取标题与正文
// 标题为空时回退为链接的主机名
func (f *Fetcher) FetchPage(ctx context.Context, rawURL string) (*Page, error) {
	body, err := f.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	title, text, err := ParseHTML(bytes.NewReader(toUTF8(body)))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	if title == "" {
		title = hostOf(rawURL)
	}

	f.logger.Debug("Page fetched", "url", rawURL, "title", title, "text_len", len(text))
	return &Page{URL: rawURL, Title: title, Text: text}, nil
}

// FetchYouTube 抓取视频标题与字幕
// 标题获取失败时使用 "YouTube Video <id>"
func (f *Fetcher) FetchYouTube(ctx context.Context, videoID string) (*Page, error) {
	title := f.youtubeTitle(ctx, videoID)

	transcript, err := f.youtubeTranscript(ctx, videoID)
	if err != nil {
		return nil, err
	}

	return &Page{URL: videoID, Title: title, Text: transcript}, nil
}

func (f *Fetcher) youtubeTitle(ctx context.Context, videoID string) string {
	fallback := "YouTube Video " + videoID

	var out struct {
		Title string `json:"title"`
	}
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"url":    f.youtubeBase + "/watch?v=" + videoID,
			"format": "json",
		}).
		Get(f.youtubeBase + "/oembed")
	if err != nil || resp.IsError() {
		f.logger.Warn("Failed to fetch youtube title", "video_id", videoID, "error", err)
		return fallback
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil || strings.TrimSpace(out.Title) == "" {
		return fallback
	}
	return strings.TrimSpace(out.Title)
}

// captionTracksPattern 匹配播放器响应中的字幕轨道数组
var captionTracksPattern = regexp.MustCompile(`"captionTracks":(\[.*?\])`)

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

func (f *Fetcher) youtubeTranscript(ctx context.Context, videoID string) (string, error) {
	watchURL := f.youtubeBase + "/watch?v=" + videoID
	page, err := f.get(ctx, watchURL)
	if err != nil {
		return "", err
	}

	m := captionTracksPattern.FindSubmatch(page)
	if m == nil {
		return "", &FetchError{URL: watchURL, Err: errors.New("no captions available for this video")}
	}
	var tracks []captionTrack
	if err := json.Unmarshal(m[1], &tracks); err != nil || len(tracks) == 0 {
		return "", &FetchError{URL: watchURL, Err: errors.New("no captions available for this video")}
	}

	track := pickTrack(tracks)
	xmlBody, err := f.get(ctx, track.BaseURL)
	if err != nil {
		return "", err
	}
	return parseTimedText(xmlBody)
}

// pickTrack 优先人工英文字幕，其次自动英文字幕，最后第一条
func pickTrack(tracks []captionTrack) captionTrack {
	for _, t := range tracks {
		if strings.HasPrefix(t.LanguageCode, "en") && t.Kind != "asr" {
			return t
		}
	}
	for _, t := range tracks {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t
		}
	}
	return tracks[0]
}

// parseTimedText 解析 timedtext XML，每条字幕一行
func parseTimedText(data []byte) (string, error) {
	var doc struct {
		Texts []string `xml:"text"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("failed to parse transcript: %w", err)
	}

	lines := make([]string, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		t = strings.Join(strings.Fields(html.UnescapeString(t)), " ")
		if t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// get 发起 GET 请求，限制响应体大小
func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	raw := resp.RawBody()
	defer raw.Close()

	if resp.StatusCode() >= 400 {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode()}
	}

	body, err := io.ReadAll(io.LimitReader(raw, maxPageBytes))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	return body, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
