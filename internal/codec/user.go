package codec

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/petrijr/wftrack/pkg/api"
)

var errEmptyUserKey = errors.New("user data key is empty")

// encodeUser renders <key:value/>. The first colon separates key from value
// and the leading tag stops at whitespace or '/', so keys may contain none of
// them.
func encodeUser(r *api.UserRecord) (string, error) {
	if r.Key == "" {
		return "", fmt.Errorf("encode user data: %w", errEmptyUserKey)
	}
	if i := strings.IndexFunc(r.Key, invalidKeyRune); i >= 0 {
		return "", fmt.Errorf("encode user data: key %q contains %q", r.Key, r.Key[i:i+1])
	}
	return "<" + Escape(foldLines(r.Key)) + ":" + Escape(foldLines(r.Data)) + "/>", nil
}

func decodeUser(line string) (api.Record, error) {
	key, data, ok := splitUser(strings.TrimSpace(line))
	if !ok {
		return nil, fmt.Errorf("decode user data: %w", api.ErrUnknownRecordKind)
	}
	return &api.UserRecord{Key: Unescape(key), Data: Unescape(data)}, nil
}

func splitUser(s string) (key, data string, ok bool) {
	if !strings.HasPrefix(s, "<") || !strings.HasSuffix(s, "/>") || strings.HasPrefix(s, "</") {
		return "", "", false
	}
	inner := s[1 : len(s)-2]
	key, data, ok = strings.Cut(inner, ":")
	if !ok || key == "" || strings.Contains(key, `"`) {
		return "", "", false
	}
	return key, data, true
}

func invalidKeyRune(r rune) bool {
	return r == ':' || r == '/' || unicode.IsSpace(r)
}
