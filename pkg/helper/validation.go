package helper

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

func GetMimeTypeFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp4", ".m4v":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".avi":
		return "video/x-msvideo"
	case ".mkv":
		return "video/x-matroska"
	case ".mxf":
		return "application/mxf"
	case ".ts":
		return "video/mp2t"
	case ".wmv":
		return "video/x-ms-wmv"
	default:
		return "application/octet-stream"
	}
}

// IsPresetFile reports whether the preset argument names a file instead of
// carrying the preset itself.
func IsPresetFile(preset string) bool {
	upper := strings.ToUpper(strings.TrimSpace(preset))
	return strings.HasSuffix(upper, ".JSON") || strings.HasSuffix(upper, ".XML")
}

// ParseSourceURL accepts absolute http, https and s3 URLs.
func ParseSourceURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid source url: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return nil, fmt.Errorf("source url %q has no host", raw)
		}
	case "s3":
		if u.Host == "" || strings.Trim(u.Path, "/") == "" {
			return nil, fmt.Errorf("source url %q must look like s3://bucket/key", raw)
		}
	default:
		return nil, fmt.Errorf("source url scheme %q is not supported", u.Scheme)
	}
	return u, nil
}

// FormatTimeSpan renders d as hh:mm:ss[.fffffff], the way the media service
// reports durations.
func FormatTimeSpan(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	h := int64(d / time.Hour)
	m := int64(d/time.Minute) % 60
	s := int64(d/time.Second) % 60
	ticks := int64(d%time.Second) / 100 // 100ns ticks

	out := fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	if ticks > 0 {
		out += fmt.Sprintf(".%07d", ticks)
	}
	return out
}
