package bindgen

import (
	"go/token"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// words splits a source name into lowercase words. Any character that is
// not a letter or digit separates words, as does a lower-to-upper case
// change.
func words(name string) []string {
	var out []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	var prev rune
	for _, r := range name {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
		prev = r
	}
	flush()
	return out
}

// GoName returns the exported identifier for a source name: "read-dir"
// becomes "ReadDir". A name that would start with a digit gets an X prefix.
func GoName(name string) string {
	title := cases.Title(language.Und)
	var b strings.Builder
	for _, w := range words(name) {
		b.WriteString(title.String(w))
	}
	s := b.String()
	if s == "" {
		return "X"
	}
	if unicode.IsDigit(rune(s[0])) {
		return "X" + s
	}
	return s
}

// GoParam returns the unexported identifier for a parameter name. Go
// keywords and names starting with a digit get an underscore suffix or an
// x prefix respectively.
func GoParam(name string) string {
	ws := words(name)
	if len(ws) == 0 {
		return "arg"
	}
	title := cases.Title(language.Und)
	var b strings.Builder
	b.WriteString(ws[0])
	for _, w := range ws[1:] {
		b.WriteString(title.String(w))
	}
	s := b.String()
	if unicode.IsDigit(rune(s[0])) {
		s = "x" + s
	}
	if token.IsKeyword(s) {
		s += "_"
	}
	return s
}

// GoPackage returns the package name for an interface name. Namespaces,
// path prefixes and versions are dropped, so "wasi:io/streams@0.2.0"
// becomes "streams". Keywords get a pkg suffix.
func GoPackage(name string) string {
	s := strings.Join(words(baseName(name)), "")
	if s == "" {
		return "iface"
	}
	if unicode.IsDigit(rune(s[0])) {
		s = "p" + s
	}
	if token.IsKeyword(s) {
		s += "pkg"
	}
	return s
}

func baseName(name string) string {
	base, _, _ := strings.Cut(name, "@")
	if i := strings.LastIndexAny(base, "/:"); i >= 0 {
		base = base[i+1:]
	}
	return base
}

// ContractName is the name of the Go interface that collects the functions
// of an interface: "wasi:io/streams@0.2.0" becomes "Streams".
func ContractName(ifaceName string) string {
	return GoName(baseName(ifaceName))
}
