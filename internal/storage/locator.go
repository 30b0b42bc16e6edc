package storage

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Locator owns key naming and URL construction for one bucket on a path-style
// endpoint. URLs have the form <endpoint>/<bucket>/<key> and KeyFromURL is the
// exact inverse of URL.
type Locator struct {
	endpoint string
	basePath string
	bucket   string

	now   func() time.Time
	newID func() string
}

// NewLocator returns a Locator for bucket served at endpoint (scheme://host[/path]).
func NewLocator(endpoint, bucket string) (*Locator, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid storage endpoint %q", endpoint)
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket name must not be empty")
	}
	return &Locator{
		endpoint: strings.TrimRight(u.Scheme+"://"+u.Host+u.EscapedPath(), "/"),
		basePath: strings.Trim(u.Path, "/"),
		bucket:   bucket,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}, nil
}

// Bucket returns the bucket name the locator builds URLs for.
func (l *Locator) Bucket() string { return l.bucket }

// NewKey returns "<prefix>/<yyyyMMdd UTC>/<random id>_<filename>".
func (l *Locator) NewKey(prefix, filename string) string {
	prefix = strings.Trim(prefix, "/")
	stamp := l.now().UTC().Format("20060102")
	name := l.newID() + "_" + cleanFilename(filename)
	if prefix == "" {
		return stamp + "/" + name
	}
	return prefix + "/" + stamp + "/" + name
}

// DayPrefix returns the key prefix grouping every object uploaded on day under prefix.
func (l *Locator) DayPrefix(prefix string, day time.Time) string {
	prefix = strings.Trim(prefix, "/")
	stamp := day.UTC().Format("20060102")
	if prefix == "" {
		return stamp + "/"
	}
	return prefix + "/" + stamp + "/"
}

// URL returns the fully qualified URL of key.
func (l *Locator) URL(key string) string {
	return l.endpoint + "/" + url.PathEscape(l.bucket) + "/" + escapeKey(key)
}

// KeyFromURL recovers the object key from a URL previously returned by URL.
// It fails when the URL does not point into this locator's bucket.
//
// The path is cut from the raw string after the host, so '?' and '#' in an
// unescaped legacy filename stay part of the key.
func (l *Locator) KeyFromURL(raw string) (string, error) {
	i := strings.Index(raw, "://")
	if i <= 0 {
		return "", fmt.Errorf("photo url %q has no scheme", raw)
	}
	rest := raw[i+len("://"):]
	slash := strings.IndexByte(rest, '/')
	if slash <= 0 {
		return "", fmt.Errorf("photo url %q has no object path", raw)
	}
	p := rest[slash+1:]
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	if l.basePath != "" {
		if !strings.HasPrefix(p, l.basePath+"/") {
			return "", fmt.Errorf("url %q is outside endpoint path %q", raw, l.basePath)
		}
		p = p[len(l.basePath)+1:]
	}
	bucketPrefix := l.bucket + "/"
	if !strings.HasPrefix(p, bucketPrefix) {
		return "", fmt.Errorf("url %q does not reference bucket %q", raw, l.bucket)
	}
	key := p[len(bucketPrefix):]
	if key == "" {
		return "", fmt.Errorf("url %q has an empty object key", raw)
	}
	return key, nil
}

func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// cleanFilename keeps only the last path element of a client supplied name.
func cleanFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == "/" || name == ".." {
		return "file"
	}
	return name
}
