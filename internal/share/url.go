package share

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/MKhiriev/go-secret-keeper/internal/crypto"
)

// PathPrefix is the path segment that precedes the record id in share URLs.
const PathPrefix = "/s/"

// ComposeURL builds <base>/s/<id>#<fragment>. The record id goes in the
// path; key material goes only in the fragment, which browsers and HTTP
// clients never send to a server.
func ComposeURL(baseURL, id, fragment string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%w: empty share id", crypto.ErrEncoding)
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("%w: base url: %v", crypto.ErrEncoding, err)
	}

	u.Path = path.Join(u.Path, PathPrefix, id)
	u.RawQuery = ""
	u.Fragment = ""
	return u.String() + "#" + strings.TrimPrefix(fragment, "#"), nil
}

// ParseURL splits a share URL into its record id and fragment. The fragment
// is returned with its leading '#'.
func ParseURL(raw string) (id, fragment string, err error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", crypto.ErrEncoding, err)
	}

	idx := strings.LastIndex(u.Path, PathPrefix)
	if idx < 0 {
		return "", "", fmt.Errorf("%w: not a share url", crypto.ErrEncoding)
	}
	id = u.Path[idx+len(PathPrefix):]
	if id == "" || strings.Contains(id, "/") {
		return "", "", fmt.Errorf("%w: missing share id", crypto.ErrEncoding)
	}
	if u.Fragment == "" {
		return "", "", fmt.Errorf("%w: missing key fragment", crypto.ErrEncoding)
	}

	return id, "#" + u.Fragment, nil
}
