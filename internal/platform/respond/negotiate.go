package respond

import (
	"net/http"
	"strconv"
	"strings"
)

type mediaRange struct {
	typ     string
	subtype string
	q       float64
}

const (
	contentTypeJSON = "application/json"
	contentTypeCBOR = "application/cbor"
)

var (
	jsonTypes = []string{"application/json", "application/problem+json"}
	cborTypes = []string{"application/cbor", "application/problem+cbor"}
)

// parseAccept splits an Accept header into media ranges. Malformed or
// out-of-range q values count as 1.
func parseAccept(header string) []mediaRange {
	var ranges []mediaRange
	for part := range strings.SplitSeq(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		params := strings.Split(part, ";")
		media := strings.ToLower(strings.TrimSpace(params[0]))
		typ, subtype, ok := strings.Cut(media, "/")
		if !ok {
			subtype = "*"
		}
		mr := mediaRange{typ: typ, subtype: subtype, q: 1}
		for _, p := range params[1:] {
			k, v, found := strings.Cut(strings.TrimSpace(p), "=")
			if !found || strings.ToLower(strings.TrimSpace(k)) != "q" {
				continue
			}
			if q, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && q >= 0 && q <= 1 {
				mr.q = q
			}
		}
		ranges = append(ranges, mr)
	}
	return ranges
}

// specificity ranks how closely r matches mediaType; -1 means no match.
func (r mediaRange) specificity(mediaType string) int {
	typ, subtype, _ := strings.Cut(mediaType, "/")
	switch {
	case r.typ == typ && r.subtype == subtype:
		return 3
	case r.typ == typ && strings.HasPrefix(r.subtype, "*+") && strings.HasSuffix(subtype, r.subtype[1:]):
		return 2
	case r.typ == typ && r.subtype == "*":
		return 1
	case r.typ == "*" && r.subtype == "*":
		return 0
	default:
		return -1
	}
}

// quality returns the q value of the most specific range matching any of
// mediaTypes, taking the best across types.
func quality(ranges []mediaRange, mediaTypes []string) float64 {
	var best float64
	for _, mt := range mediaTypes {
		spec, q := -1, 0.0
		for _, r := range ranges {
			if s := r.specificity(mt); s > spec {
				spec, q = s, r.q
			}
		}
		if spec >= 0 && q > best {
			best = q
		}
	}
	return best
}

// PrefersCBOR reports whether CBOR should be used for accept. JSON wins ties,
// so empty headers and bare wildcards get JSON. A q=0 range excludes its type.
func PrefersCBOR(accept string) bool {
	ranges := parseAccept(accept)
	if len(ranges) == 0 {
		return false
	}
	return quality(ranges, cborTypes) > quality(ranges, jsonTypes)
}

// NegotiateAccept rewrites a non-empty Accept header to the single media type
// PrefersCBOR picks, so huma operations and the problem writers agree on the
// format. huma's own negotiation does not treat q=0 as "not acceptable".
func NegotiateAccept() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accept := r.Header.Get("Accept")
			if accept == "" {
				next.ServeHTTP(w, r)
				return
			}
			chosen := contentTypeJSON
			if PrefersCBOR(accept) {
				chosen = contentTypeCBOR
			}
			if accept != chosen {
				r = r.Clone(r.Context())
				r.Header.Set("Accept", chosen)
			}
			next.ServeHTTP(w, r)
		})
	}
}
