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
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultUserAgent = "Mozilla/5.0 (pluginctl)"

type ClientOption func(*resty.Client)

// WithTimeout bounds each request. Zero keeps resty's default (no timeout).
func WithTimeout(d time.Duration) ClientOption {
	return func(c *resty.Client) {
		if d > 0 {
			c.SetTimeout(d)
		}
	}
}

func WithBaseURL(url string) ClientOption {
	return func(c *resty.Client) {
		if url != "" {
			c.SetBaseURL(url)
		}
	}
}

// WithBasicAuth attaches credentials when a username is given.
func WithBasicAuth(username, token string) ClientOption {
	return func(c *resty.Client) {
		if username != "" {
			c.SetBasicAuth(username, token)
		}
	}
}

func WithUserAgent(ua string) ClientOption {
	return func(c *resty.Client) {
		if ua == "" {
			ua = DefaultUserAgent
		}
		c.SetHeader("User-Agent", ua)
	}
}

// WithoutRedirects hands 3xx responses back to the caller instead of following them.
func WithoutRedirects() ClientOption {
	return func(c *resty.Client) {
		c.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))
	}
}

// NewClient builds a resty client with the given options applied in order.
func NewClient(opts ...ClientOption) *resty.Client {
	c := resty.New()
	c.SetHeader("User-Agent", DefaultUserAgent)
	for _, opt := range opts {
		opt(c)
	}
	return c
}
