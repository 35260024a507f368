package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrStatus reports a response that arrived but carried a non-2xx code.
var ErrStatus = fmt.Errorf("unexpected response status")

// Result describes one completed request. Body holds the raw response
// bytes exactly as they came off the wire.
type Result struct {
	Url         string
	Body        []byte
	StatusCode  int
	ContentType string
	Sha256      string
	Duration    time.Duration
	FetchedAt   time.Time
}

func (c *Client) Fetch(ctx context.Context, url string) (Result, error) {
	ctx, span := tracer.Start(ctx, "client:Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	res, err := c.Http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		span.SetStatus(codes.Error, "request failed")
		return Result{}, fmt.Errorf("fetch %s: %w", url, err)
	}

	body := res.Body()
	sum := sha256.Sum256(body)
	result := Result{
		Url:         url,
		Body:        body,
		StatusCode:  res.StatusCode(),
		ContentType: res.Header().Get("Content-Type"),
		Sha256:      hex.EncodeToString(sum[:]),
		Duration:    res.Time(),
		FetchedAt:   time.Now(),
	}
	if !res.IsSuccess() {
		span.SetStatus(codes.Error, "bad response status")
		return result, fmt.Errorf("fetch %s: %w: %s", url, ErrStatus, res.Status())
	}
	return result, nil
}

// Download fetches url and writes the response body to dest byte for byte.
// The body lands in a temporary file first and replaces dest in a single
// rename, so a failed or rejected fetch never touches an existing file.
func (c *Client) Download(ctx context.Context, url, dest string) (Result, error) {
	ctx, span := tracer.Start(ctx, "client:Download")
	defer span.End()

	result, err := c.Fetch(ctx, url)
	if err != nil {
		return result, err
	}
	err = WriteFileAtomic(dest, result.Body)
	if err != nil {
		span.SetStatus(codes.Error, "failed to write file")
		return result, fmt.Errorf("write %s: %w", dest, err)
	}

	slog.InfoContext(
		ctx, "downloaded",
		"url", url,
		"dest", dest,
		"bytes", len(result.Body),
	)
	return result, nil
}

func WriteFileAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(dest)+".*.tmp")
	if err != nil {
		return err
	}
	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), dest)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
