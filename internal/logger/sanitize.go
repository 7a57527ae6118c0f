package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxPathLength caps URL paths in logs.
	MaxPathLength = 500
	// MaxErrorMessageLength caps error messages in logs.
	MaxErrorMessageLength = 1000
	// MaxGeneralStringLength caps general strings in logs.
	MaxGeneralStringLength = 2000
	// MaxDebugContentLength caps prompt/response previews in debug logs.
	MaxDebugContentLength = 10000
)

// SanitizePath prepares a URL path for logging: strips control
// characters, enforces valid UTF-8, and truncates.
func SanitizePath(path string) string {
	return SanitizeString(path, MaxPathLength)
}

// SanitizeString strips control characters, enforces valid UTF-8, and
// truncates to maxLength. Log injection via user-supplied strings is
// the concern here.
func SanitizeString(s string, maxLength int) string {
	if s == "" {
		return ""
	}
	if maxLength <= 0 {
		maxLength = MaxGeneralStringLength
	}
	s = filterRunes(s)
	if len(s) > maxLength {
		s = s[:maxLength] + "..."
	}
	return s
}

func filterRunes(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	var builder strings.Builder
	builder.Grow(len(s))
	for _, r := range s {
		if unicode.IsPrint(r) || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// SanitizeError prepares an error message for logging.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error(), MaxErrorMessageLength)
}

// SanitizeDebugContent prepares prompt and response previews for debug
// logging. Even at debug level the content is user-influenced, so it is
// filtered and size-limited.
func SanitizeDebugContent(content string) string {
	return SanitizeString(content, MaxDebugContentLength)
}
