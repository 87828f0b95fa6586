// Package query builds data source URLs from validated film queries.
package query

import (
	"net/url"
	"strconv"
	"strings"
)

type param struct {
	key   string
	value string
}

// Builder assembles a URL. Parameters keep insertion order and repeated keys
// are kept as separate pairs.
type Builder struct {
	protocol string
	host     string
	segments []string
	params   []param
	fragment string
}

// NewBuilder creates a builder for protocol://host.
func NewBuilder(protocol, host string) *Builder {
	return &Builder{protocol: protocol, host: host}
}

// Path appends a path segment.
func (b *Builder) Path(segment string) *Builder {
	b.segments = append(b.segments, strings.Trim(segment, "/"))
	return b
}

// Add appends a string parameter.
func (b *Builder) Add(key, value string) *Builder {
	b.params = append(b.params, param{key: key, value: value})
	return b
}

// AddInt appends a numeric parameter.
func (b *Builder) AddInt(key string, value int) *Builder {
	return b.Add(key, strconv.Itoa(value))
}

// Fragment sets the fragment.
func (b *Builder) Fragment(fragment string) *Builder {
	b.fragment = fragment
	return b
}

// String returns the absolute URL.
func (b *Builder) String() string {
	u := b.url()
	u.Scheme = b.protocol
	u.Host = b.host
	return u.String()
}

// Relative returns the path, query and fragment only.
func (b *Builder) Relative() string {
	u := b.url()
	return u.String()
}

func (b *Builder) url() *url.URL {
	u := &url.URL{Fragment: b.fragment, RawQuery: b.encodeQuery()}
	if len(b.segments) > 0 {
		u.Path = "/" + strings.Join(b.segments, "/")
	}
	return u
}

func (b *Builder) encodeQuery() string {
	var sb strings.Builder
	for i, p := range b.params {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p.key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.value))
	}
	return sb.String()
}
