// Package sanitizer rewrites untrusted log text according to composable
// filter/transform rules so that messages cannot inject terminal control
// sequences into console sinks or break the framing of JSON lines.
package sanitizer

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Filter flags for character matching
const (
	FilterNonPrintable uint64 = 1 << iota // Runes not printable per strconv.IsPrint
	FilterControl                         // unicode.IsControl
	FilterWhitespace                      // unicode.IsSpace
	FilterJSONSpecial                     // '"' and '\\'
)

// Transform flags for character transformation
const (
	TransformStrip      uint64 = 1 << iota // Remove the rune
	TransformHexEncode                     // Encode the rune's UTF-8 bytes as "<xxyy>"
	TransformJSONEscape                    // Backslash escape, e.g. '\n', '\u0000'
	TransformSpace                         // Replace with a single space
)

// PolicyPreset names a pre-configured rule set
type PolicyPreset string

const (
	PolicyRaw  PolicyPreset = "raw"  // Passthrough
	PolicyTxt  PolicyPreset = "txt"  // Text lines: hex-encode anything non-printable
	PolicyJSON PolicyPreset = "json" // JSON string bodies
	PolicyLine PolicyPreset = "line" // Collapse line breaks and tabs to spaces, then txt rules
)

type rule struct {
	filter    uint64
	transform uint64
}

var policyRules = map[PolicyPreset][]rule{
	PolicyRaw:  {},
	PolicyTxt:  {{filter: FilterNonPrintable, transform: TransformHexEncode}},
	PolicyJSON: {{filter: FilterControl | FilterJSONSpecial, transform: TransformJSONEscape}},
	PolicyLine: {
		{filter: FilterWhitespace, transform: TransformSpace},
		{filter: FilterNonPrintable, transform: TransformHexEncode},
	},
}

type checker struct {
	flag  uint64
	match func(rune) bool
}

// Checked in declaration order
var filterCheckers = []checker{
	{FilterNonPrintable, func(r rune) bool { return !strconv.IsPrint(r) }},
	{FilterControl, unicode.IsControl},
	{FilterWhitespace, func(r rune) bool { return r != ' ' && unicode.IsSpace(r) }},
	{FilterJSONSpecial, func(r rune) bool { return r == '"' || r == '\\' }},
}

// Sanitizer applies an ordered list of rules; the first matching rule wins
type Sanitizer struct {
	rules []rule
}

// New creates a passthrough sanitizer
func New() *Sanitizer {
	return &Sanitizer{}
}

// Rule appends a custom rule
func (s *Sanitizer) Rule(filter uint64, transform uint64) *Sanitizer {
	s.rules = append(s.rules, rule{filter: filter, transform: transform})
	return s
}

// Policy appends the rules of a preset
func (s *Sanitizer) Policy(preset PolicyPreset) *Sanitizer {
	if rules, ok := policyRules[preset]; ok {
		s.rules = append(s.rules, rules...)
	}
	return s
}

// Append writes the sanitized form of src to dst and returns the extended slice
func (s *Sanitizer) Append(dst []byte, src []byte) []byte {
	if len(s.rules) == 0 {
		return append(dst, src...)
	}

	for i := 0; i < len(src); {
		// ASCII printable fast path, none of the rules touch these except JSON specials
		c := src[i]
		if c >= 0x20 && c < 0x7f && c != '"' && c != '\\' {
			dst = append(dst, c)
			i++
			continue
		}

		r, size := utf8.DecodeRune(src[i:])
		raw := src[i : i+size]
		i += size

		matched := false
		for _, rl := range s.rules {
			if matchesFilter(r, rl.filter) {
				dst = applyTransform(dst, r, raw, rl.transform)
				matched = true
				break
			}
		}
		if !matched {
			dst = append(dst, raw...)
		}
	}
	return dst
}

// Sanitize is Append for strings
func (s *Sanitizer) Sanitize(data string) string {
	return string(s.Append(make([]byte, 0, len(data)), []byte(data)))
}

// matchesFilter checks if a rune matches any filter in the mask
func matchesFilter(r rune, filterMask uint64) bool {
	for _, c := range filterCheckers {
		if filterMask&c.flag != 0 && c.match(r) {
			return true
		}
	}
	return false
}

const hexDigits = "0123456789abcdef"

// applyTransform writes r transformed; raw holds its source bytes, which may
// be an invalid UTF-8 sequence
func applyTransform(dst []byte, r rune, raw []byte, transformMask uint64) []byte {
	switch {
	case transformMask&TransformStrip != 0:
		return dst

	case transformMask&TransformSpace != 0:
		return append(dst, ' ')

	case transformMask&TransformHexEncode != 0:
		dst = append(dst, '<')
		for _, b := range raw {
			dst = append(dst, hexDigits[b>>4], hexDigits[b&0x0f])
		}
		return append(dst, '>')

	case transformMask&TransformJSONEscape != 0:
		switch r {
		case '\n':
			return append(dst, '\\', 'n')
		case '\r':
			return append(dst, '\\', 'r')
		case '\t':
			return append(dst, '\\', 't')
		case '\b':
			return append(dst, '\\', 'b')
		case '\f':
			return append(dst, '\\', 'f')
		case '"':
			return append(dst, '\\', '"')
		case '\\':
			return append(dst, '\\', '\\')
		}
		if r < 0x10000 {
			return append(dst, '\\', 'u',
				hexDigits[(r>>12)&0xf], hexDigits[(r>>8)&0xf], hexDigits[(r>>4)&0xf], hexDigits[r&0xf])
		}
		return append(dst, raw...)
	}
	return append(dst, raw...)
}
