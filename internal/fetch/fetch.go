package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

type Mode string

const (
	ModeAuto    Mode = "auto"
	ModeStatic  Mode = "static"
	ModeDynamic Mode = "dynamic"
)

const DefaultTimeout = 30 * time.Second

// ParseMode maps a config or flag value to a Mode; empty means static.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeStatic:
		return ModeStatic, nil
	case ModeDynamic:
		return ModeDynamic, nil
	case ModeAuto:
		return ModeAuto, nil
	default:
		return "", errors.Errorf("unknown fetch mode %q", s)
	}
}

type Options struct {
	URL             string
	Mode            Mode
	Timeout         time.Duration
	UserAgent       string
	Headers         map[string]string
	WaitForSelector string
	Headless        bool
}

type Result struct {
	HTML       string
	FinalMode  Mode
	SourceInfo string
}

// StatusError reports a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: http status %d", e.URL, e.Code)
}

var staticFetch = fetchStatic
var dynamicFetch = fetchDynamic

// Fetch makes a single attempt to load opts.URL. There are no retries.
func Fetch(ctx context.Context, opts Options) (Result, error) {
	if opts.URL == "" {
		return Result{}, errors.New("url is required")
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Mode == "" {
		opts.Mode = ModeStatic
	}

	switch opts.Mode {
	case ModeStatic:
		html, err := staticFetch(ctx, opts)
		if err != nil {
			return Result{}, err
		}
		return Result{HTML: html, FinalMode: ModeStatic, SourceInfo: "static"}, nil
	case ModeDynamic:
		html, err := dynamicFetch(ctx, opts)
		if err != nil {
			return Result{}, err
		}
		return Result{HTML: html, FinalMode: ModeDynamic, SourceInfo: "dynamic"}, nil
	case ModeAuto:
		html, err := staticFetch(ctx, opts)
		if err == nil && !looksBlocked(html) {
			return Result{HTML: html, FinalMode: ModeStatic, SourceInfo: "auto:static"}, nil
		}
		html, derr := dynamicFetch(ctx, opts)
		if derr != nil {
			if err != nil {
				return Result{}, errors.Wrapf(derr, "static failed: %v; dynamic failed", err)
			}
			return Result{}, derr
		}
		return Result{HTML: html, FinalMode: ModeDynamic, SourceInfo: "auto:dynamic"}, nil
	default:
		return Result{}, errors.Errorf("unknown mode: %s", opts.Mode)
	}
}

func fetchStatic(ctx context.Context, opts Options) (string, error) {
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeaders(opts.Headers)
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}

	res, err := client.R().
		SetContext(ctx).
		Get(opts.URL)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", errors.Errorf("static fetch of %s timed out after %s", opts.URL, opts.Timeout)
		}
		return "", errors.Wrapf(err, "GET %s", opts.URL)
	}
	if !res.IsSuccess() {
		return "", &StatusError{URL: opts.URL, Code: res.StatusCode()}
	}
	return res.String(), nil
}

// Sleep pauses for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var blockedMarkers = []string{
	"captcha",
	"robot check",
	"enter the characters you see below",
	"automated access to amazon data",
}

// looksBlocked reports whether a static response is a bot wall rather than
// the requested page.
func looksBlocked(html string) bool {
	trimmed := strings.TrimSpace(html)
	if trimmed == "" {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, marker := range blockedMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
