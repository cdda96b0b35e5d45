package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// ObjectLocation addresses a stored object as bucket plus key.
type ObjectLocation struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

func (l ObjectLocation) IsZero() bool {
	return l.Bucket == "" && l.Key == ""
}

func (l ObjectLocation) URI() string {
	return fmt.Sprintf("s3://%s/%s", l.Bucket, l.Key)
}

// ParseObjectURI parses s3://bucket/key style addressing, plus the
// virtual-hosted https form the catalog stores after direct uploads.
func ParseObjectURI(raw string) (ObjectLocation, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return ObjectLocation{}, WrapError(ErrInvalidURI, "parse object uri", err)
	}

	switch u.Scheme {
	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return ObjectLocation{}, WrapError(ErrInvalidURI, "parse object uri", fmt.Errorf("missing bucket or key in %q", raw))
		}
		return ObjectLocation{Bucket: u.Host, Key: key}, nil
	case "http", "https":
		host := u.Host
		idx := strings.Index(host, ".s3")
		if idx <= 0 {
			return ObjectLocation{}, WrapError(ErrInvalidURI, "parse object uri", fmt.Errorf("%q is not a bucket endpoint", raw))
		}
		key := strings.TrimPrefix(u.Path, "/")
		if key == "" {
			return ObjectLocation{}, WrapError(ErrInvalidURI, "parse object uri", fmt.Errorf("missing key in %q", raw))
		}
		return ObjectLocation{Bucket: host[:idx], Key: key}, nil
	default:
		return ObjectLocation{}, WrapError(ErrInvalidURI, "parse object uri", fmt.Errorf("unrecognized scheme in %q", raw))
	}
}
