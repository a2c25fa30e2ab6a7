package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TempPrefix prefixes every dump file this package creates.
const TempPrefix = "r2get-"

// DownloadOptions configures the download behavior
type DownloadOptions struct {
	TempDir       string        // Directory for temporary files
	Timeout       time.Duration // Per-request timeout (0 = rely on context)
	ProgressFunc  ProgressFunc  // Optional progress callback
	UserAgent     string        // User agent string
	ValidateAudio bool          // Validate content-type is audio
	Logger        *slog.Logger
}

// ProgressFunc is called during download to report progress
type ProgressFunc func(downloaded, total int64)

// DefaultOptions returns default download options
func DefaultOptions() DownloadOptions {
	return DownloadOptions{
		TempDir:       os.TempDir(),
		UserAgent:     "r2get/1.0",
		ValidateAudio: true,
	}
}

// FailureKind classifies a failed transfer for the retry loop.
type FailureKind int

const (
	// FailureFatal covers everything that must not be retried.
	FailureFatal FailureKind = iota
	// FailurePartial means the body was interrupted after the transfer started;
	// the bytes already written are valid and the transfer can resume.
	FailurePartial
)

func (k FailureKind) String() string {
	if k == FailurePartial {
		return "partial"
	}
	return "fatal"
}

// TransferError is returned by Transfer for every failure.
type TransferError struct {
	Kind   FailureKind
	URL    string
	Offset int64 // bytes on disk when the transfer stopped
	Err    error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s transfer of %s stopped at byte %d: %v", e.Kind, e.URL, e.Offset, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// IsPartial reports whether err is a resumable partial transfer.
func IsPartial(err error) bool {
	var te *TransferError
	return errors.As(err, &te) && te.Kind == FailurePartial
}

// TransferResult describes a finished transfer
type TransferResult struct {
	URL         string
	ContentType string
	Written     int64 // bytes written by this call
	Size        int64 // bytes on disk afterwards
	Restarted   bool  // server ignored the range and the file was rewritten from zero
}

// Downloader transfers remote audio into local files
type Downloader struct {
	client  *http.Client
	options DownloadOptions
	logger  *slog.Logger
}

// NewDownloader creates a new downloader with the given options
func NewDownloader(options DownloadOptions) *Downloader {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Downloader{
		client: &http.Client{
			Timeout: options.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				DisableCompression:  true, // Range offsets refer to the raw body
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		options: options,
		logger:  logger,
	}
}

// CreateTempFile creates an empty dump file named r2get-<uuid><ext> in the temp dir
func (d *Downloader) CreateTempFile(ext string) (*os.File, error) {
	name := TempPrefix + uuid.NewString() + ext
	return os.OpenFile(filepath.Join(d.options.TempDir, name), os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
}

// Transfer downloads url into dst starting at offset.
// A positive limit requests only the first limit bytes and is used for probing.
// Every failure is a *TransferError whose Kind tells the caller whether a
// resume from the returned Offset makes sense.
func (d *Downloader) Transfer(ctx context.Context, url string, dst *os.File, offset, limit int64) (*TransferResult, error) {
	fail := func(kind FailureKind, err error) (*TransferResult, error) {
		return nil, &TransferError{Kind: kind, URL: url, Offset: fileSize(dst, offset), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fail(FailureFatal, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", d.options.UserAgent)
	req.Header.Set("Accept", "audio/*,*/*")
	switch {
	case limit > 0:
		req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", limit-1))
	case offset > 0:
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	d.logger.Debug("starting transfer", "url", url, "offset", offset, "limit", limit)

	resp, err := d.client.Do(req)
	if err != nil {
		return fail(FailureFatal, fmt.Errorf("failed to download: %w", err))
	}
	defer resp.Body.Close()

	result := &TransferResult{URL: url, ContentType: resp.Header.Get("Content-Type")}
	start := int64(0)

	switch resp.StatusCode {
	case http.StatusOK:
		if offset > 0 {
			d.logger.Warn("server ignored range request, restarting from zero", "url", url, "offset", offset)
			result.Restarted = true
		}
	case http.StatusPartialContent:
		if limit > 0 {
			break
		}
		rangeStart, _, ok := parseContentRange(resp.Header.Get("Content-Range"))
		if !ok || rangeStart != offset {
			return fail(FailureFatal, fmt.Errorf("unexpected content range %q for offset %d", resp.Header.Get("Content-Range"), offset))
		}
		start = offset
	case http.StatusRequestedRangeNotSatisfiable:
		// The previous attempt may have stopped exactly at the end of the body.
		if _, total, ok := parseContentRange(resp.Header.Get("Content-Range")); ok && offset > 0 && total == offset {
			result.Size = offset
			return result, nil
		}
		return fail(FailureFatal, fmt.Errorf("server rejected resume offset %d", offset))
	default:
		return fail(FailureFatal, fmt.Errorf("server returned status %d", resp.StatusCode))
	}

	if d.options.ValidateAudio && !isAudioContentType(result.ContentType) {
		return fail(FailureFatal, fmt.Errorf("invalid content type: %s", result.ContentType))
	}

	if err := dst.Truncate(start); err != nil {
		return fail(FailureFatal, fmt.Errorf("failed to truncate %s: %w", dst.Name(), err))
	}
	if _, err := dst.Seek(start, io.SeekStart); err != nil {
		return fail(FailureFatal, fmt.Errorf("failed to seek %s: %w", dst.Name(), err))
	}

	expected := resp.ContentLength
	if limit > 0 && (expected < 0 || expected > limit) {
		expected = limit
	}

	written, err := d.copyBody(resp.Body, dst, start, expected, limit)
	result.Written = written
	result.Size = start + written
	if err != nil {
		if ctx.Err() != nil {
			return fail(FailureFatal, ctx.Err())
		}
		var writeErr *writeError
		if errors.As(err, &writeErr) {
			return fail(FailureFatal, writeErr.err)
		}
		return fail(FailurePartial, err)
	}
	if expected >= 0 && written < expected {
		return fail(FailurePartial, fmt.Errorf("short body: got %d of %d bytes: %w", written, expected, io.ErrUnexpectedEOF))
	}

	d.logger.Debug("transfer finished", "url", url, "written", written, "size", result.Size)
	return result, nil
}

// writeError marks failures on the local side of the copy.
type writeError struct{ err error }

func (e *writeError) Error() string { return e.err.Error() }

// copyBody downloads response body to file with optional progress tracking
func (d *Downloader) copyBody(src io.Reader, dst *os.File, start, expected, limit int64) (int64, error) {
	reader := src
	if d.options.ProgressFunc != nil {
		total := int64(-1)
		if expected >= 0 {
			total = start + expected
		}
		reader = &progressReader{
			reader:     src,
			total:      total,
			downloaded: start,
			callback:   d.options.ProgressFunc,
		}
	}
	if limit > 0 {
		reader = io.LimitReader(reader, limit)
	}

	buf := make([]byte, 32*1024)
	var written int64
	for {
		n, rerr := reader.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			written += int64(w)
			if werr != nil {
				return written, &writeError{err: werr}
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}

// SweepStale removes dump files older than maxAge left behind by killed runs
func SweepStale(tempDir string, maxAge time.Duration, logger *slog.Logger) error {
	pattern := filepath.Join(tempDir, TempPrefix+"*")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-maxAge)
	var removed int

	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil || info.IsDir() {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(file); err == nil {
				removed++
			}
		}
	}

	if removed > 0 && logger != nil {
		logger.Debug("removed stale dumps", "count", removed, "dir", tempDir)
	}

	return nil
}

// parseContentRange parses "bytes a-b/N" and "bytes */N"; total is -1 when unknown
func parseContentRange(value string) (start, total int64, ok bool) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "bytes ") {
		return 0, 0, false
	}
	spec, size, found := strings.Cut(strings.TrimPrefix(value, "bytes "), "/")
	if !found {
		return 0, 0, false
	}

	total = -1
	if size != "*" {
		n, err := strconv.ParseInt(size, 10, 64)
		if err != nil {
			return 0, 0, false
		}
		total = n
	}

	if spec == "*" {
		return -1, total, total >= 0
	}
	first, _, found := strings.Cut(spec, "-")
	if !found {
		return 0, 0, false
	}
	start, err := strconv.ParseInt(first, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return start, total, true
}

func fileSize(f *os.File, fallback int64) int64 {
	info, err := f.Stat()
	if err != nil {
		return fallback
	}
	return info.Size()
}

// isAudioContentType checks if content type is audio
func isAudioContentType(contentType string) bool {
	contentType = strings.ToLower(contentType)
	return strings.HasPrefix(contentType, "audio/") ||
		strings.HasPrefix(contentType, "video/mp4") || // some CDNs label m4a this way
		strings.HasPrefix(contentType, "application/octet-stream")
}

// progressReader wraps a reader to report progress
type progressReader struct {
	reader     io.Reader
	total      int64
	downloaded int64
	callback   ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.downloaded += int64(n)
		if pr.callback != nil {
			pr.callback(pr.downloaded, pr.total)
		}
	}
	return n, err
}
