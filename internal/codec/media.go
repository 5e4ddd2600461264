package codec

import (
	"mime"
	"strings"
)

// MediaTypeBase strips parameters and lowercases a media type, so
// "Application/JSON; charset=utf-8" becomes "application/json".
func MediaTypeBase(s string) string {
	if mt, _, err := mime.ParseMediaType(s); err == nil {
		return mt
	}
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// MediaTypeMatches reports whether a response media type satisfies the
// requested one. Structured suffixes count, so "application/problem+json"
// satisfies "application/json".
func MediaTypeMatches(requested, got string) bool {
	want := MediaTypeBase(requested)
	have := MediaTypeBase(got)
	if want == "" || want == "*/*" || want == have {
		return true
	}
	// text/yaml, application/x-yaml and friends all mean YAML.
	if isYAML(want) && isYAML(have) {
		return true
	}
	wantType, wantSub, ok := strings.Cut(want, "/")
	if !ok {
		return false
	}
	haveType, haveSub, ok := strings.Cut(have, "/")
	if !ok || wantType != haveType {
		return false
	}
	if wantSub == "*" {
		return true
	}
	_, suffix, ok := strings.Cut(haveSub, "+")
	return ok && suffix == wantSub
}

func isYAML(mt string) bool {
	switch mt {
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return true
	}
	return false
}

func parseWellKnown(mt string) (ContentType, bool) {
	switch {
	case mt == "application/json" || strings.HasSuffix(mt, "+json"):
		return JSON, true
	case isYAML(mt):
		return YAML, true
	case mt == "application/x-www-form-urlencoded":
		return Form, true
	case strings.HasPrefix(mt, "text/"):
		return PlainText, true
	case mt == "application/octet-stream":
		return OctetStream, true
	}
	return "", false
}
