package policy

import (
	"bytes"
	"strings"
)

const (
	MarkerAllowExternal = "allow-external:"
	MarkerAllowDynamic  = "allow-dynamic-url"
)

// LineAt returns the physical source line enclosing the byte offset, without
// its line terminator.
func LineAt(src []byte, offset int) string {
	if offset < 0 {
		offset = 0
	}
	if offset > len(src) {
		offset = len(src)
	}
	start := bytes.LastIndexByte(src[:offset], '\n') + 1
	end := len(src)
	if i := bytes.IndexByte(src[offset:], '\n'); i >= 0 {
		end = offset + i
	}
	return strings.TrimSuffix(string(src[start:end]), "\r")
}

// HasAllowExternal reports whether line carries an allow-external marker naming exactly host.
func HasAllowExternal(line, host string) bool {
	host = strings.ToLower(host)
	rest := line
	for {
		i := strings.Index(rest, MarkerAllowExternal)
		if i < 0 {
			return false
		}
		rest = rest[i+len(MarkerAllowExternal):]
		if strings.ToLower(markerToken(rest)) == host {
			return true
		}
	}
}

// markerToken reads the hostname that follows a marker.
func markerToken(s string) string {
	end := 0
	for end < len(s) {
		c := s[end]
		if c == '.' || c == '-' || c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
			end++
			continue
		}
		break
	}
	return s[:end]
}

// HasAllowDynamic reports whether the allow-dynamic-url marker is present in text.
func HasAllowDynamic(text []byte) bool {
	return bytes.Contains(text, []byte(MarkerAllowDynamic))
}
