// Package reference classifies user input into the kind of track reference it
// names. Classification is synchronous and does no I/O; the resolver and the
// catalog do the real validation later.
package reference

import (
	"net/url"
	"strings"
)

type Kind int

const (
	Invalid Kind = iota
	DirectPlayable
	CatalogTrack
	CatalogPlaylist
)

func (k Kind) String() string {
	switch k {
	case DirectPlayable:
		return "direct"
	case CatalogTrack:
		return "catalog-track"
	case CatalogPlaylist:
		return "catalog-playlist"
	default:
		return "invalid"
	}
}

// Reference is a classified input. Value is the page URL for DirectPlayable
// and the bare catalog id for the catalog kinds.
type Reference struct {
	Kind  Kind
	Value string
}

var directHosts = []string{"youtube.com", "youtu.be"}

const catalogHost = "spotify.com"

// Classify never fails: anything unrecognised is Invalid.
func Classify(input string) Reference {
	s := strings.TrimSpace(input)
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return Reference{Kind: Invalid}
	}

	if rest, ok := strings.CutPrefix(s, "spotify:"); ok {
		return classifyCatalogSegments(strings.Split(rest, ":"))
	}

	u, ok := parseLooseURL(s)
	if !ok {
		return Reference{Kind: Invalid}
	}

	host := strings.ToLower(u.Hostname())
	for _, h := range directHosts {
		if hostMatches(host, h) {
			return Reference{Kind: DirectPlayable, Value: u.String()}
		}
	}
	if hostMatches(host, catalogHost) {
		return classifyCatalogSegments(strings.Split(strings.Trim(u.Path, "/"), "/"))
	}

	return Reference{Kind: Invalid}
}

// parseLooseURL accepts "youtu.be/xyz" style input without a scheme.
func parseLooseURL(s string) (*url.URL, bool) {
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	return u, true
}

func hostMatches(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// classifyCatalogSegments looks for the first "track" or "playlist" segment
// and takes the segment after it as the id. Only the first marker counts, so
// a playlist id that happens to contain "track" stays a playlist.
func classifyCatalogSegments(segments []string) Reference {
	for i, seg := range segments {
		var kind Kind
		switch strings.ToLower(seg) {
		case "track":
			kind = CatalogTrack
		case "playlist":
			kind = CatalogPlaylist
		default:
			continue
		}

		if i+1 >= len(segments) {
			return Reference{Kind: Invalid}
		}
		id := stripQuery(segments[i+1])
		if id == "" {
			return Reference{Kind: Invalid}
		}
		return Reference{Kind: kind, Value: id}
	}
	return Reference{Kind: Invalid}
}

func stripQuery(s string) string {
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
