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

package jenkins

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/pluginctl/internal/model"
	"github.com/go-arcade/pluginctl/pkg/cache"
	"github.com/go-arcade/pluginctl/pkg/httpx"
	"github.com/go-arcade/pluginctl/pkg/log"
	"github.com/go-arcade/pluginctl/pkg/retry"
	"github.com/go-resty/resty/v2"
	"github.com/google/wire"
	"github.com/pkg/errors"
)

// ProviderSet is the Wire provider set for the server client.
var ProviderSet = wire.NewSet(NewClient)

const DefaultUpdateCenterURL = "https://updates.jenkins.io/current/update-center.actual.json"

// Conf describes how to reach the build server.
type Conf struct {
	URL             string        `mapstructure:"url"`
	Username        string        `mapstructure:"username"`
	Token           string        `mapstructure:"token"`
	Timeout         time.Duration `mapstructure:"timeout"`
	UpdateCenterURL string        `mapstructure:"updateCenterURL"`

	// UpdateCenterCacheDir keeps the downloaded feed between runs; empty disables it.
	UpdateCenterCacheDir string        `mapstructure:"updateCenterCacheDir"`
	UpdateCenterCacheTTL time.Duration `mapstructure:"updateCenterCacheTTL"`
}

// Client talks to the server's plugin manager and to the update-center feed.
type Client struct {
	api             *resty.Client
	updateCenter    *resty.Client
	updateCenterURL string
	feedCache       *cache.FastCache
	logger          log.ILogger
}

func NewClient(conf *Conf, logger log.ILogger) (*Client, error) {
	if conf.URL == "" {
		return nil, errors.New("server url is required")
	}
	if _, err := url.Parse(conf.URL); err != nil {
		return nil, errors.Wrapf(err, "parse server url %q", conf.URL)
	}

	ucURL := conf.UpdateCenterURL
	if ucURL == "" {
		ucURL = DefaultUpdateCenterURL
	}

	var feedCache *cache.FastCache
	if conf.UpdateCenterCacheDir != "" {
		feedCache = cache.NewFastCache(cache.FastCacheConfig{
			Dir: conf.UpdateCenterCacheDir,
			TTL: conf.UpdateCenterCacheTTL,
		})
	}

	return &Client{
		api: httpx.NewClient(
			httpx.WithBaseURL(conf.URL),
			httpx.WithBasicAuth(conf.Username, conf.Token),
			httpx.WithTimeout(conf.Timeout),
		),
		// credentials stay with the server; the feed is public
		updateCenter:    httpx.NewClient(httpx.WithTimeout(conf.Timeout)),
		updateCenterURL: ucURL,
		feedCache:       feedCache,
		logger:          logger,
	}, nil
}

type installedResponse struct {
	Plugins []struct {
		ShortName string `json:"shortName"`
		Version   string `json:"version"`
	} `json:"plugins"`
}

// InstalledPlugins maps each installed plugin to its version.
func (c *Client) InstalledPlugins(ctx context.Context) (map[string]string, error) {
	var out installedResponse
	err := c.getJSON(ctx, "/pluginManager/api/json", map[string]string{
		"depth": "1",
		"tree":  "plugins[shortName,version]",
	}, &out)
	if err != nil {
		return nil, errors.Wrap(err, "list installed plugins")
	}

	installed := make(map[string]string, len(out.Plugins))
	for _, p := range out.Plugins {
		installed[p.ShortName] = p.Version
	}
	return installed, nil
}

type updatesResponse struct {
	Sites []struct {
		Updates []struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"updates"`
	} `json:"sites"`
}

// AvailableUpdates maps each plugin with a pending update to the new version,
// merged across all update sites.
func (c *Client) AvailableUpdates(ctx context.Context) (map[string]string, error) {
	var out updatesResponse
	err := c.getJSON(ctx, "/updateCenter/api/json", map[string]string{
		"tree": "sites[updates[name,version]]",
	}, &out)
	if err != nil {
		return nil, errors.Wrap(err, "list available updates")
	}

	updates := map[string]string{}
	for _, site := range out.Sites {
		for _, u := range site.Updates {
			updates[u.Name] = u.Version
		}
	}
	return updates, nil
}

// DisablePlugins disables each named plugin in turn, stopping at the first failure.
func (c *Client) DisablePlugins(ctx context.Context, names []string) error {
	for _, name := range names {
		path := fmt.Sprintf("/pluginManager/plugin/%s/makeDisabled", url.PathEscape(name))
		if err := c.post(c.api.R().SetContext(ctx), path); err != nil {
			return errors.Wrapf(err, "disable plugin %s", name)
		}
		c.logger.Infow("plugin disabled", "plugin", name)
	}
	return nil
}

// InstallPlugin asks the server to install the latest release of name itself.
func (c *Client) InstallPlugin(ctx context.Context, name string) error {
	body := fmt.Sprintf(`<jenkins><install plugin="%s@latest" /></jenkins>`, name)
	req := c.api.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/xml").
		SetBody(body)
	if err := c.post(req, "/pluginManager/installNecessaryPlugins"); err != nil {
		return errors.Wrapf(err, "install plugin %s", name)
	}
	c.logger.Infow("plugin install requested", "plugin", name)
	return nil
}

// PostMultipart sends an already framed multipart body to path.
func (c *Client) PostMultipart(ctx context.Context, path string, body []byte, contentType string) error {
	req := c.api.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(body)
	return c.post(req, path)
}

// Restart schedules a safe restart once running builds finish.
func (c *Client) Restart(ctx context.Context) error {
	if err := c.post(c.api.R().SetContext(ctx), "/safeRestart"); err != nil {
		return errors.Wrap(err, "restart server")
	}
	c.logger.Infow("server restart requested")
	return nil
}

// PluginsMetadata downloads the update-center feed and returns its plugins
// mapping. The feed may be wrapped in a JSONP callback. With a feed cache
// configured, a fresh cached copy is used instead of downloading.
func (c *Client) PluginsMetadata(ctx context.Context) (map[string]model.PluginMetadata, error) {
	body, err := c.updateCenterFeed(ctx)
	if err != nil {
		return nil, err
	}

	var uc model.UpdateCenter
	if err := sonic.Unmarshal(body, &uc); err != nil {
		return nil, errors.Wrap(err, "decode update center")
	}
	c.logger.Debugw("update center loaded", "url", c.updateCenterURL, "plugins", len(uc.Plugins))
	return uc.Plugins, nil
}

// InvalidatePluginsMetadata drops the cached feed so the next load downloads it.
func (c *Client) InvalidatePluginsMetadata() {
	if c.feedCache != nil {
		c.feedCache.Del(c.updateCenterURL)
	}
}

func (c *Client) updateCenterFeed(ctx context.Context) ([]byte, error) {
	if c.feedCache != nil {
		if body, ok := c.feedCache.Get(c.updateCenterURL); ok {
			c.logger.Debugw("update center served from cache", "url", c.updateCenterURL)
			return body, nil
		}
	}

	resp, err := c.updateCenter.R().SetContext(ctx).Get(c.updateCenterURL)
	if err != nil {
		return nil, errors.Wrap(err, "fetch update center")
	}
	if !resp.IsSuccess() {
		return nil, errors.Wrap(httpx.NewHTTPError(resp), "fetch update center")
	}
	body := stripJSONP(resp.Body())

	if c.feedCache != nil {
		c.feedCache.Set(c.updateCenterURL, body)
		if err := c.feedCache.Save(); err != nil {
			c.logger.Warnw("failed to persist update center cache", "error", err)
		}
	}
	return body, nil
}

const jsonpPrefix = "updateCenter.post("

func stripJSONP(body []byte) []byte {
	b := bytes.TrimSpace(body)
	if !bytes.HasPrefix(b, []byte(jsonpPrefix)) {
		return b
	}
	b = bytes.TrimPrefix(b, []byte(jsonpPrefix))
	b = bytes.TrimSuffix(bytes.TrimSpace(b), []byte(";"))
	return bytes.TrimSuffix(bytes.TrimSpace(b), []byte(")"))
}

// WaitReady polls the server until it answers or attempts run out. A
// restarting server answers 503; connection errors are retried as well.
func (c *Client) WaitReady(ctx context.Context, attempts int, interval time.Duration) error {
	err := retry.Do(ctx, c.Ping,
		retry.WithMaxAttempts(attempts),
		retry.WithBackoff(retry.Exponential(interval, 30*time.Second)),
		retry.WithRetryIf(func(err error) bool {
			var httpErr *httpx.HTTPError
			if errors.As(err, &httpErr) {
				return httpx.IsStatus(err, http.StatusServiceUnavailable)
			}
			return retry.IsRetryableError(err)
		}),
		retry.WithOnRetry(func(attempt int, err error, wait time.Duration) {
			c.logger.Infow("waiting for server", "attempt", attempt, "wait", wait, "error", err)
		}),
	)
	return errors.Wrap(err, "wait for server")
}

// Ping succeeds when the server answers its API root with a 2xx.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.api.R().SetContext(ctx).Get("/api/json")
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return httpx.NewHTTPError(resp)
	}
	return nil
}

// post treats redirects as success: the plugin manager answers form posts
// with a 302 back to its own page. The api client follows them, so a 3xx
// only surfaces when the redirect chain ends there.
func (c *Client) post(req *resty.Request, path string) error {
	resp, err := req.Post(path)
	if err != nil {
		return err
	}
	if resp.StatusCode() >= 400 {
		return httpx.NewHTTPError(resp)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, query map[string]string, v any) error {
	resp, err := c.api.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(path)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return httpx.NewHTTPError(resp)
	}
	return errors.Wrapf(sonic.Unmarshal(resp.Body(), v), "decode %s", path)
}
