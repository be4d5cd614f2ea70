// Package keys derives the canonical identity used to join players across
// the roster, the auction prep-board and live prices.
//
// A key has the form "<type>|<slug>", e.g. "hit|juan-soto".
package keys

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Player types.
const (
	TypeHitter  = "hit"
	TypePitcher = "pit"
)

// Separator joins the type and the slug of a canonical key.
const Separator = "|"

// Identity is anything that exposes a player type and name.
type Identity interface {
	PlayerType() string
	PlayerName() string
}

// NormalizeType maps any input to "pit" when it is exactly "pit" after
// trimming and lower-casing, and to "hit" otherwise.
func NormalizeType(typ string) string {
	if strings.ToLower(strings.TrimSpace(typ)) == TypePitcher {
		return TypePitcher
	}
	return TypeHitter
}

// Make returns the canonical key for a type and a display name.
func Make(typ, name string) string {
	return NormalizeType(typ) + Separator + Slug(name)
}

// FromRecord returns the canonical key for an Identity.
func FromRecord(r Identity) string {
	if r == nil {
		return Make("", "")
	}
	return Make(r.PlayerType(), r.PlayerName())
}

// Slug folds a name to lower-case ASCII words joined by single dashes.
// Diacritics are dropped so "José Ramírez" and "Jose Ramirez" collide.
func Slug(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	pendingDash := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// ParseLegacy splits an id written by any historical format into a type and
// a name. Recognized shapes are a "hit" or "pit" prefix followed by one of
// '|', ':', '_' or '-' and a non-empty remainder:
//
//	hit|Juan Soto   pit:Gerrit Cole   hit_Juan Soto   hit-juan-soto
func ParseLegacy(id string) (typ, name string, ok bool) {
	id = strings.TrimSpace(id)
	if len(id) < 5 {
		return "", "", false
	}
	prefix := strings.ToLower(id[:3])
	if prefix != TypeHitter && prefix != TypePitcher {
		return "", "", false
	}
	if !strings.ContainsRune("|:_-", rune(id[3])) {
		return "", "", false
	}
	rest := strings.TrimSpace(id[4:])
	if rest == "" {
		return "", "", false
	}
	return prefix, rest, true
}

// Canonical re-derives the canonical key for a possibly legacy id. The
// second result is false when the id is not in any recognized format.
func Canonical(id string) (string, bool) {
	typ, name, ok := ParseLegacy(id)
	if !ok {
		return "", false
	}
	return Make(typ, name), true
}
