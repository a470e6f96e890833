package signing

import (
	"bytes"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/magiconair/properties"
)

var (
	errEmptyKey    = errors.New("property has an empty key")
	errInvalidUTF8 = errors.New("invalid UTF-8 text")

	// magiconair reports positions as "properties: Line N: ..."
	errorLineRe = regexp.MustCompile(`Line (\d+)`)

	// line terminators accepted by the properties format
	lineBreakRe = regexp.MustCompile(`\r\n|\r|\n`)

	utf8BOM = []byte("\xef\xbb\xbf")
)

// parseProperties decodes a properties document and keeps the recognized,
// non-empty keys. Placeholders such as ${x} are returned verbatim.
func parseProperties(path string, data []byte) (map[string]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if line, err := scanLines(data); err != nil {
		return nil, &ParseError{Path: path, Line: line, Err: err}
	}

	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadBytes(data)
	if err != nil {
		return nil, &ParseError{Path: path, Line: errorLine(err), Err: err}
	}

	values := make(map[string]string, len(Fields))
	for _, key := range Fields {
		if v, ok := p.Get(key); ok && v != "" {
			values[key] = v
		}
	}
	return values, nil
}

// scanLines rejects input the properties library would silently accept:
// non UTF-8 bytes and logical lines that start with a separator.
func scanLines(data []byte) (int, error) {
	continued := false
	for i, raw := range lineBreakRe.Split(string(data), -1) {
		lineNo := i + 1
		if !utf8.ValidString(raw) {
			return lineNo, errInvalidUTF8
		}
		line := strings.TrimLeft(raw, " \t\f")

		if continued {
			continued = oddTrailingBackslashes(line)
			continue
		}
		if line == "" || line[0] == '#' || line[0] == '!' {
			continue
		}
		if line[0] == '=' || line[0] == ':' {
			return lineNo, errEmptyKey
		}
		continued = oddTrailingBackslashes(line)
	}
	return 0, nil
}

func oddTrailingBackslashes(line string) bool {
	n := 0
	for i := len(line) - 1; i >= 0 && line[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

func errorLine(err error) int {
	m := errorLineRe.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
