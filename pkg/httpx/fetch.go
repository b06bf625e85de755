// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package httpx

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// DefaultRedirectLimit is the number of hops a fetch may take.
const DefaultRedirectLimit = 10

// FetcherConf configures artifact retrieval.
type FetcherConf struct {
	RedirectLimit int
	UserAgent     string
	Timeout       time.Duration
}

// Fetcher issues GET requests and follows redirects itself so the hop
// bound is exact.
type Fetcher struct {
	client        *resty.Client
	redirectLimit int
}

func NewFetcher(conf FetcherConf) *Fetcher {
	limit := conf.RedirectLimit
	if limit <= 0 {
		limit = DefaultRedirectLimit
	}
	return &Fetcher{
		client: NewClient(
			WithUserAgent(conf.UserAgent),
			WithTimeout(conf.Timeout),
			WithoutRedirects(),
		),
		redirectLimit: limit,
	}
}

// Fetch returns the body of the first successful response reached from rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	return f.fetch(ctx, rawURL, f.redirectLimit)
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string, limit int) ([]byte, error) {
	if limit <= 0 {
		return nil, errors.Wrapf(ErrTooManyRedirects, "fetch %s", rawURL)
	}

	resp, err := f.client.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s", rawURL)
	}

	code := resp.StatusCode()
	switch {
	case resp.IsSuccess():
		return resp.Body(), nil
	case code >= 300 && code < 400:
		location := resp.Header().Get("Location")
		if location == "" {
			return nil, NewHTTPError(resp)
		}
		next, err := resolveLocation(rawURL, location)
		if err != nil {
			return nil, err
		}
		return f.fetch(ctx, next, limit-1)
	default:
		return nil, NewHTTPError(resp)
	}
}

// Download fetches rawURL into localPath, or into the URL's basename when
// localPath is empty. Any existing file at the destination is replaced.
func (f *Fetcher) Download(ctx context.Context, rawURL, localPath string) (string, error) {
	if localPath == "" {
		name, err := Basename(rawURL)
		if err != nil {
			return "", err
		}
		localPath = name
	}

	data, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(localPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", errors.Wrapf(err, "create %s", dir)
		}
	}
	if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
		return "", errors.Wrapf(err, "remove %s", localPath)
	}
	if err := os.WriteFile(localPath, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "write %s", localPath)
	}
	return localPath, nil
}

// Basename returns the last element of the URL path.
func Basename(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrapf(err, "parse url %q", rawURL)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return "", errors.Errorf("url %q has no file name", rawURL)
	}
	return name, nil
}

func resolveLocation(base, location string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", errors.Wrapf(err, "parse url %q", base)
	}
	l, err := url.Parse(location)
	if err != nil {
		return "", errors.Wrapf(err, "parse redirect location %q", location)
	}
	return b.ResolveReference(l).String(), nil
}
