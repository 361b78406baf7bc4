// Package webhook implements the "http" emitter: readings rendered through
// handlebars templates and sent as one HTTP request.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/aymerick/raymond"

	"firestige.xyz/tilted/internal/emitter"
	"firestige.xyz/tilted/internal/tilt"
)

const Kind = "http"

const (
	defaultMethod      = http.MethodPost
	defaultContentType = "application/json"
	defaultMinInterval = 5 * time.Minute
	formContentType    = "application/x-www-form-urlencoded"
)

// Payload encodings.
const (
	FormatJSON  = "json"
	FormatQuery = "query"
	FormatForm  = "form"
)

var ErrStatus = errors.New("webhook: unexpected status")

type options struct {
	Method      string            `mapstructure:"method"`
	URL         string            `mapstructure:"url"`
	ContentType string            `mapstructure:"content-type"`
	Format      string            `mapstructure:"format"`
	MinInterval time.Duration     `mapstructure:"min-interval"`
	Payload     map[string]string `mapstructure:"payload"`
}

type field struct {
	key, value *raymond.Template
	// source of the key template, for error messages
	source string
}

// Webhook sends a reading to one URL, at most once per min-interval.
type Webhook struct {
	client      *http.Client
	method      string
	url         *url.URL
	contentType string
	format      string
	payload     []field
	gate        *emitter.Gate
}

// New validates the options and parses every payload template.
func New(name string, opts map[string]any) (emitter.Emitter, error) {
	o := options{
		Method:      defaultMethod,
		ContentType: defaultContentType,
		Format:      FormatJSON,
		MinInterval: defaultMinInterval,
	}
	if err := emitter.DecodeOptions(opts, &o); err != nil {
		return nil, err
	}

	if o.URL == "" {
		return nil, errors.New("webhook: url is required")
	}
	if o.Payload == nil {
		return nil, errors.New("webhook: payload is required")
	}
	// NewRequest rejects methods that are not valid tokens.
	req, err := http.NewRequest(o.Method, o.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("webhook: %w", err)
	}
	if !req.URL.IsAbs() || req.URL.Host == "" {
		return nil, fmt.Errorf("webhook: url %q must be absolute", o.URL)
	}
	switch o.Format {
	case FormatJSON, FormatQuery, FormatForm:
	default:
		return nil, fmt.Errorf("webhook: invalid format %q (must be json, query or form)", o.Format)
	}
	if o.MinInterval < 0 {
		return nil, fmt.Errorf("webhook: negative min-interval %s", o.MinInterval)
	}

	payload, err := parsePayload(o.Payload)
	if err != nil {
		return nil, err
	}

	return &Webhook{
		client:      &http.Client{},
		method:      o.Method,
		url:         req.URL,
		contentType: o.ContentType,
		format:      o.Format,
		payload:     payload,
		gate:        emitter.NewGate(o.MinInterval),
	}, nil
}

func parsePayload(p map[string]string) ([]field, error) {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]field, 0, len(keys))
	for _, k := range keys {
		kt, err := raymond.Parse(k)
		if err != nil {
			return nil, fmt.Errorf("webhook: payload key %q: %w", k, err)
		}
		vt, err := raymond.Parse(p[k])
		if err != nil {
			return nil, fmt.Errorf("webhook: payload value for %q: %w", k, err)
		}
		fields = append(fields, field{key: kt, value: vt, source: k})
	}
	return fields, nil
}

// WithClient replaces the HTTP client.
func (w *Webhook) WithClient(c *http.Client) *Webhook {
	w.client = c
	return w
}

// WithClock replaces the rate gate's time source.
func (w *Webhook) WithClock(now func() time.Time) *Webhook {
	w.gate.WithClock(now)
	return w
}

func (w *Webhook) Emit(ctx context.Context, r tilt.Reading) error {
	if !w.gate.Allow() {
		return nil
	}
	values, err := w.render(r)
	if err != nil {
		return err
	}
	req, err := w.request(ctx, values)
	if err != nil {
		return err
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w %d from %s", ErrStatus, resp.StatusCode, w.url.Redacted())
	}
	return nil
}

func (w *Webhook) render(r tilt.Reading) (map[string]string, error) {
	ctx := r.Fields()
	out := make(map[string]string, len(w.payload))
	for _, f := range w.payload {
		k, err := f.key.Exec(ctx)
		if err != nil {
			return nil, fmt.Errorf("webhook: render key %q: %w", f.source, err)
		}
		v, err := f.value.Exec(ctx)
		if err != nil {
			return nil, fmt.Errorf("webhook: render value for %q: %w", f.source, err)
		}
		out[k] = v
	}
	return out, nil
}

func (w *Webhook) request(ctx context.Context, values map[string]string) (*http.Request, error) {
	u := *w.url
	var (
		body        io.Reader
		contentType = w.contentType
	)

	switch w.format {
	case FormatJSON:
		b, err := json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("webhook: encode json: %w", err)
		}
		body = bytes.NewReader(b)
	case FormatQuery:
		q := u.Query()
		for k, v := range values {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	case FormatForm:
		form := url.Values{}
		for k, v := range values {
			form.Set(k, v)
		}
		body = strings.NewReader(form.Encode())
		contentType = formContentType
	}

	req, err := http.NewRequestWithContext(ctx, w.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("webhook: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	return req, nil
}
