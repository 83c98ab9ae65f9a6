package container

import (
	"errors"
	"net/url"
	"strconv"
)

// Scheme is the URL scheme this package recognizes in ParseURL.
const Scheme = "zibravdb"

// ErrUnsupportedScheme is returned by ParseURL for any scheme other than
// Scheme.
var ErrUnsupportedScheme = errors.New("container: unsupported URL scheme")

// ParseURL parses a "zibravdb://<filepath>?frame=<int>&..." reference. The
// path and frame index are extracted; every other query parameter is
// returned verbatim as extra, since interpreting them is the asset
// resolver's job, not this package's.
func ParseURL(raw string) (path string, frame int, extra url.Values, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", 0, nil, err
	}
	if u.Scheme != Scheme {
		return "", 0, nil, ErrUnsupportedScheme
	}

	path = u.Opaque
	if path == "" {
		path = u.Host + u.Path
	}

	query := u.Query()
	frame = 0
	if v := query.Get("frame"); v != "" {
		frame, err = strconv.Atoi(v)
		if err != nil {
			return "", 0, nil, err
		}
		query.Del("frame")
	}
	return path, frame, query, nil
}
