// Package loader reads definition documents from files, an fs.FS, or HTTP.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Kind enumerates where a document lives.
type Kind string

const (
	KindFile Kind = "file"
	KindFS   Kind = "fs"
	KindURL  Kind = "url"
)

// Source identifies a document.
type Source struct {
	Kind     Kind
	Location string
}

func (s Source) String() string {
	return string(s.Kind) + ":" + s.Location
}

// FromFile points at a path on disk.
func FromFile(path string) Source { return Source{Kind: KindFile, Location: path} }

// FromFS points at a name inside the loader's fs.FS.
func FromFS(name string) Source { return Source{Kind: KindFS, Location: name} }

// FromURL points at an http(s) URL.
func FromURL(raw string) Source { return Source{Kind: KindURL, Location: raw} }

// Parse turns a CLI argument into a Source: http and https URLs load over
// HTTP, anything else is a file path.
func Parse(raw string) (Source, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Source{}, errors.New("loader: source is required")
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		if _, err := url.ParseRequestURI(raw); err != nil {
			return Source{}, fmt.Errorf("loader: invalid url %q: %w", raw, err)
		}
		return FromURL(raw), nil
	}
	return FromFile(raw), nil
}

// Options configures a Loader.
type Options struct {
	FileSystem fs.FS
	HTTPClient *http.Client
	AllowHTTP  bool
	Timeout    time.Duration
}

// Loader fetches raw documents.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
}

// New constructs a Loader. HTTP is only enabled when a client is supplied or
// AllowHTTP is set.
func New(options Options) *Loader {
	var client *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if options.Timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = options.Timeout
		}
		client = &clone
	case options.AllowHTTP:
		client = &http.Client{Timeout: options.Timeout}
	}
	return &Loader{
		fs:        options.FileSystem,
		http:      client,
		allowHTTP: client != nil,
		timeout:   options.Timeout,
	}
}

// Load returns the bytes of src.
func (l *Loader) Load(ctx context.Context, src Source) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch src.Kind {
	case KindFile:
		data, err = loadFile(ctx, src.Location)
	case KindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location)
	case KindURL:
		if !l.allowHTTP {
			return nil, errors.New("loader: http support disabled")
		}
		data, err = loadHTTP(ctx, l.http, src.Location, l.timeout)
	default:
		err = fmt.Errorf("loader: unsupported source kind %q", src.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", src, err)
	}
	return data, nil
}
