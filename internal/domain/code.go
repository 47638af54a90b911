package domain

import (
	"regexp"
	"strings"
)

var (
	codePattern  = regexp.MustCompile(`^AC\d{2}\.\d{2}$`)
	svgIDPattern = regexp.MustCompile(`^(AC\d{2})(\d{2})`)
)

// ValidCode reports whether code has the AC<group>.<index> shape, e.g. AC11.01.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// SVGID converts a node code to the element id used by the tree drawing: AC11.01 -> AC1101.
func SVGID(code string) string {
	return strings.Replace(code, ".", "", 1)
}

// CodeFromSVGID converts an element id back to a node code. Suffixed ids such
// as AC1106__Content resolve to AC11.06.
func CodeFromSVGID(id string) (string, bool) {
	m := svgIDPattern.FindStringSubmatch(strings.TrimSpace(id))
	if m == nil {
		return "", false
	}
	return m[1] + "." + m[2], true
}

// NormalizeCode accepts either a code or an element id and returns the code.
func NormalizeCode(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if ValidCode(raw) {
		return raw, true
	}
	return CodeFromSVGID(raw)
}
