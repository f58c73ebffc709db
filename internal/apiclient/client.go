package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"storefront/internal/logging"
)

// Client типизированный клиент удалённого API витрины.
// Сессия хранится в cookie jar и переживает перезапуск через SaveSession/LoadSession.
type Client struct {
	base     *url.URL
	http     *http.Client
	log      *slog.Logger
	validate *validator.Validate
}

type Option func(*Client)

// WithHTTPClient использует копию h; сам h не изменяется
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		cp := *h
		if cp.Jar == nil {
			cp.Jar = c.http.Jar
		}
		c.http = &cp
	}
}

func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.log = l } }

func WithTimeout(d time.Duration) Option { return func(c *Client) { c.http.Timeout = d } }

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q is not absolute", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		base:     u,
		http:     &http.Client{Jar: jar},
		log:      logging.Discard(),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL адрес API; также используется для построения ссылок на изображения
func (c *Client) BaseURL() string { return c.base.String() }

// ImageURL абсолютная ссылка на изображение товара
func (c *Client) ImageURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.base.String() + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + path
}

// do выполняет JSON запрос. body и out могут быть nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	method, path := req.Method, req.URL.Path
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("api request failed", "method", method, "path", path, "err", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.log.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(raw))
}

func (c *Client) check(v any) error {
	if err := c.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

func checkAll[T any](c *Client, list []T) error {
	for i := range list {
		if err := c.check(&list[i]); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SaveSession пишет cookie сессии для базового адреса
func (c *Client) SaveSession(w io.Writer) error {
	var out []storedCookie
	if c.http.Jar != nil {
		for _, ck := range c.http.Jar.Cookies(c.base) {
			out = append(out, storedCookie{Name: ck.Name, Value: ck.Value})
		}
	}
	return json.NewEncoder(w).Encode(out)
}

// LoadSession восстанавливает cookie, сохранённые SaveSession
func (c *Client) LoadSession(r io.Reader) error {
	var in []storedCookie
	if err := json.NewDecoder(r).Decode(&in); err != nil && err != io.EOF {
		return fmt.Errorf("decode session: %w", err)
	}
	if c.http.Jar == nil || len(in) == 0 {
		return nil
	}
	cookies := make([]*http.Cookie, 0, len(in))
	for _, sc := range in {
		cookies = append(cookies, &http.Cookie{Name: sc.Name, Value: sc.Value, Path: "/"})
	}
	c.http.Jar.SetCookies(c.base, cookies)
	return nil
}
