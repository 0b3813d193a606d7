package archivefile

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/ianaindex"
)

// TextErrorPolicy selects how ReadText handles bytes that do not decode
// in the requested encoding.
type TextErrorPolicy int

const (
	// TextStrict fails the read on the first undecodable byte. Default.
	TextStrict TextErrorPolicy = iota

	// TextReplace substitutes U+FFFD for undecodable input.
	TextReplace

	// TextIgnore drops undecodable input.
	TextIgnore
)

// TextOption configures a ReadText call.
type TextOption func(*textConfig)

type textConfig struct {
	encoding string
	policy   TextErrorPolicy
}

// TextEncoding sets the character encoding used to decode the member,
// named per the IANA character set registry ("ISO-8859-1",
// "windows-1252", ...). The default is UTF-8.
func TextEncoding(name string) TextOption {
	return func(c *textConfig) { c.encoding = name }
}

// TextErrors sets the decode-error-handling policy. The default is
// TextStrict.
func TextErrors(policy TextErrorPolicy) TextOption {
	return func(c *textConfig) { c.policy = policy }
}

func decodeText(data []byte, cfg textConfig) (string, error) {
	if isUTF8Name(cfg.encoding) {
		return decodeUTF8(data, cfg.policy)
	}

	enc, err := ianaindex.IANA.Encoding(cfg.encoding)
	if err != nil || enc == nil {
		return "", fmt.Errorf("unknown encoding %q", cfg.encoding)
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", cfg.encoding, err)
	}

	switch cfg.policy {
	case TextStrict:
		// the decoder substitutes U+FFFD for undecodable input
		// instead of reporting it; a re-encode round-trip exposes
		// the substitution
		reencoded, err := enc.NewEncoder().Bytes(decoded)
		if err != nil || !bytes.Equal(reencoded, data) {
			return "", fmt.Errorf("input contains bytes undecodable as %s", cfg.encoding)
		}
		return string(decoded), nil
	case TextIgnore:
		return strings.ReplaceAll(string(decoded), string(utf8.RuneError), ""), nil
	default:
		return string(decoded), nil
	}
}

func decodeUTF8(data []byte, policy TextErrorPolicy) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	switch policy {
	case TextReplace:
		return strings.ToValidUTF8(string(data), string(utf8.RuneError)), nil
	case TextIgnore:
		return strings.ToValidUTF8(string(data), ""), nil
	default:
		return "", fmt.Errorf("input is not valid UTF-8 (offset %d)", invalidUTF8Offset(data))
	}
}

func invalidUTF8Offset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}

func isUTF8Name(name string) bool {
	if name == "" {
		return true
	}
	normalized := strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(name))
	return normalized == "utf8"
}
