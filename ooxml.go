package pdfgen

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
)

// OOXML slide parts carry visible text inside <a:t>...</a:t> run elements.
// Rewriting only the decoded content of those elements is what preserves the
// surrounding formatting: fonts, positions, and styles live in sibling
// elements and attributes that are never touched.

const (
	runOpenPrefix = "<a:t"
	runClose      = "</a:t>"
)

// forEachRun calls fn with the XML-decoded text of every run element in a
// slide part and substitutes the re-encoded return value when changed is
// true. Returns the rewritten part and whether anything changed.
func forEachRun(part []byte, fn func(text string) (string, bool)) ([]byte, bool) {
	var out bytes.Buffer
	rest := part
	dirty := false

	for {
		i := bytes.Index(rest, []byte(runOpenPrefix))
		if i < 0 {
			break
		}
		// The prefix also matches longer element names (<a:tab/>, <a:tc>);
		// require the open tag to be exactly a:t, optionally with attributes.
		tagEnd := bytes.IndexByte(rest[i:], '>')
		if tagEnd < 0 {
			break
		}
		tagEnd += i
		after := rest[i+len(runOpenPrefix)]
		if after != '>' && after != ' ' && after != '/' {
			out.Write(rest[:tagEnd+1])
			rest = rest[tagEnd+1:]
			continue
		}
		if rest[tagEnd-1] == '/' { // self-closing, no text content
			out.Write(rest[:tagEnd+1])
			rest = rest[tagEnd+1:]
			continue
		}

		j := bytes.Index(rest[tagEnd:], []byte(runClose))
		if j < 0 {
			break
		}
		j += tagEnd

		out.Write(rest[:tagEnd+1])
		raw := rest[tagEnd+1 : j]

		text := xmlUnescape(string(raw))
		if replaced, changed := fn(text); changed {
			out.Write(xmlEscape(replaced))
			dirty = true
		} else {
			out.Write(raw)
		}

		out.WriteString(runClose)
		rest = rest[j+len(runClose):]
	}
	out.Write(rest)

	if !dirty {
		return part, false
	}
	return out.Bytes(), true
}

// runTexts returns the decoded text of every run element in a slide part.
func runTexts(part []byte) []string {
	var texts []string
	forEachRun(part, func(text string) (string, bool) {
		texts = append(texts, text)
		return "", false
	})
	return texts
}

// xmlEscape encodes text for embedding into XML character data.
func xmlEscape(text string) []byte {
	var buf bytes.Buffer
	// EscapeText only fails on writer errors; bytes.Buffer never errors.
	_ = xml.EscapeText(&buf, []byte(text))
	return buf.Bytes()
}

// xmlUnescape decodes the predefined XML entities and numeric character
// references. Unknown entities are left verbatim rather than dropped.
func xmlUnescape(raw string) string {
	if !strings.ContainsRune(raw, '&') {
		return raw
	}

	var b strings.Builder
	b.Grow(len(raw))
	for {
		i := strings.IndexByte(raw, '&')
		if i < 0 {
			b.WriteString(raw)
			return b.String()
		}
		b.WriteString(raw[:i])
		raw = raw[i:]

		end := strings.IndexByte(raw, ';')
		if end < 0 {
			b.WriteString(raw)
			return b.String()
		}
		entity := raw[1:end]

		switch {
		case entity == "lt":
			b.WriteByte('<')
		case entity == "gt":
			b.WriteByte('>')
		case entity == "amp":
			b.WriteByte('&')
		case entity == "quot":
			b.WriteByte('"')
		case entity == "apos":
			b.WriteByte('\'')
		case strings.HasPrefix(entity, "#"):
			if r, ok := decodeCharRef(entity[1:]); ok {
				b.WriteRune(r)
			} else {
				b.WriteString(raw[:end+1])
			}
		default:
			b.WriteString(raw[:end+1])
		}
		raw = raw[end+1:]
	}
}

// decodeCharRef parses the digits of a numeric character reference
// ("65" or "x41").
func decodeCharRef(digits string) (rune, bool) {
	base := 10
	if strings.HasPrefix(digits, "x") || strings.HasPrefix(digits, "X") {
		base = 16
		digits = digits[1:]
	}
	n, err := strconv.ParseInt(digits, base, 32)
	if err != nil || n < 0 {
		return 0, false
	}
	return rune(n), true
}
