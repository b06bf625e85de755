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

package offline

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/go-arcade/pluginctl/internal/model"
	"github.com/go-arcade/pluginctl/pkg/httpx"
	"github.com/go-arcade/pluginctl/pkg/id"
	"github.com/go-arcade/pluginctl/pkg/log"
	"github.com/pkg/errors"
)

// Server is the remote side of an offline transfer.
type Server interface {
	MetadataSource
	InstalledPlugins(ctx context.Context) (map[string]string, error)
	AvailableUpdates(ctx context.Context) (map[string]string, error)
	PostMultipart(ctx context.Context, path string, body []byte, contentType string) error
}

// Downloader retrieves an artifact to localPath and returns the path written.
type Downloader interface {
	Download(ctx context.Context, url, localPath string) (string, error)
}

// ArtifactStore is an optional mirror consulted before downloading and
// filled after.
type ArtifactStore interface {
	Get(ctx context.Context, name string) ([]byte, bool, error)
	Put(ctx context.Context, name string, data []byte) error
}

// Conf configures offline transfers.
type Conf struct {
	TempDir        string `mapstructure:"tempDir"`
	RedirectLimit  int    `mapstructure:"redirectLimit"`
	UserAgent      string `mapstructure:"userAgent"`
	Recursive      bool   `mapstructure:"recursive"`
	Isolate        bool   `mapstructure:"isolate"`
	VerifyChecksum bool   `mapstructure:"verifyChecksum"`
}

// Installer downloads plugin artifacts locally and uploads them to the server.
// It is not safe for concurrent use unless Isolate is set: artifacts of the
// same name share one path in TempDir.
type Installer struct {
	server     Server
	downloader Downloader
	store      ArtifactStore
	index      *Index
	resolver   *Resolver
	boundary   Boundary
	conf       Conf
	logger     log.ILogger
}

// NewInstaller wires an installer. store may be nil. The upload boundary is
// chosen here and kept for the installer's lifetime.
func NewInstaller(server Server, downloader Downloader, store ArtifactStore, conf *Conf, logger log.ILogger) *Installer {
	c := *conf
	if c.TempDir == "" {
		c.TempDir = os.TempDir()
	}
	index := NewIndex(server)
	return &Installer{
		server:     server,
		downloader: downloader,
		store:      store,
		index:      index,
		resolver:   NewResolver(index, c.Recursive, logger),
		boundary:   NewBoundary(),
		conf:       c,
		logger:     logger,
	}
}

// Boundary returns the multipart boundary used for every upload.
func (in *Installer) Boundary() Boundary {
	return in.boundary
}

// RefreshMetadata forces the next lookups to use a fresh update-center snapshot.
func (in *Installer) RefreshMetadata(ctx context.Context) error {
	return in.index.Refresh(ctx)
}

// Install uploads plugin and its dependencies, skipping anything already
// installed. Installing an installed plugin is a logged no-op.
func (in *Installer) Install(ctx context.Context, plugin string) (*Report, error) {
	report := newReport(OperationInstall, plugin)

	installed, err := in.server.InstalledPlugins(ctx)
	if err != nil {
		return report, errors.Wrap(err, "list installed plugins")
	}
	if _, ok := installed[plugin]; ok {
		in.logger.Warnw("plugin is already installed", "plugin", plugin)
		report.Outcome = OutcomeAlreadyInstalled
		return report, nil
	}

	items, err := in.resolver.BuildInstallationSet(ctx, plugin)
	if err != nil {
		return report, err
	}
	report.plan(items)

	if err := in.run(ctx, report, installed); err != nil {
		return report, err
	}
	report.Outcome = OutcomeCompleted
	return report, nil
}

// Upgrade re-uploads plugin and every dependency, installed or not.
// Upgrading a plugin that is not installed is a logged no-op.
func (in *Installer) Upgrade(ctx context.Context, plugin string) (*Report, error) {
	report := newReport(OperationUpgrade, plugin)

	installed, err := in.server.InstalledPlugins(ctx)
	if err != nil {
		return report, errors.Wrap(err, "list installed plugins")
	}
	if _, ok := installed[plugin]; !ok {
		in.logger.Errorw("plugin is not installed", "plugin", plugin)
		report.Outcome = OutcomeNotInstalled
		return report, nil
	}

	items, err := in.resolver.BuildInstallationSet(ctx, plugin)
	if err != nil {
		return report, err
	}
	report.plan(items)

	if err := in.run(ctx, report, nil); err != nil {
		return report, err
	}
	report.Outcome = OutcomeCompleted
	return report, nil
}

// UpgradeAll upgrades every plugin with an available update, in name order.
func (in *Installer) UpgradeAll(ctx context.Context) ([]*Report, error) {
	updates, err := in.server.AvailableUpdates(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list available updates")
	}

	names := make([]string, 0, len(updates))
	for name := range updates {
		names = append(names, name)
	}
	sort.Strings(names)

	reports := make([]*Report, 0, len(names))
	for _, name := range names {
		report, err := in.Upgrade(ctx, name)
		reports = append(reports, report)
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}

// run processes the planned items in order. A nil installed map means no
// item is skipped for being present. Missing metadata skips one item;
// transfer failures abort the batch.
func (in *Installer) run(ctx context.Context, report *Report, installed map[string]string) error {
	dir, err := in.workDir()
	if err != nil {
		return err
	}

	for i := range report.Items {
		item := &report.Items[i]

		if installed != nil {
			if _, ok := installed[item.Name]; ok {
				item.State = StateSkippedAlreadyInstalled
				in.logger.Debugw("dependency already installed", "plugin", item.Name)
				continue
			}
		}

		in.logger.Infow("transferring plugin", "operation", report.Operation, "plugin", item.Name)

		meta, ok, err := in.index.Metadata(ctx, item.Name, false)
		if err != nil {
			return err
		}
		if !ok {
			item.State = StateSkippedMetadataMissing
			in.logger.Warnw("failed to find metadata", "plugin", item.Name)
			continue
		}

		path, err := in.transfer(ctx, dir, meta)
		if err != nil {
			return errors.Wrapf(err, "plugin %s", item.Name)
		}
		item.State = StateUploaded
		item.Path = path
	}
	return nil
}

// workDir is TempDir itself, or a fresh per-operation directory under it
// when Isolate is set.
func (in *Installer) workDir() (string, error) {
	dir := in.conf.TempDir
	if in.conf.Isolate {
		dir = filepath.Join(dir, "pluginctl-"+id.GetUUIDWithoutDashes())
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create work dir %s", dir)
	}
	return dir, nil
}

func (in *Installer) transfer(ctx context.Context, dir string, meta model.PluginMetadata) (string, error) {
	name, err := httpx.Basename(meta.URL)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(dir, name)

	if err := in.obtain(ctx, meta, dest); err != nil {
		return "", err
	}
	if in.conf.VerifyChecksum {
		if err := verifyChecksum(dest, meta.SHA256); err != nil {
			return "", err
		}
	}

	body, contentType, err := BuildUploadBody(dest, in.boundary)
	if err != nil {
		return "", err
	}
	if err := in.server.PostMultipart(ctx, UploadPath, body, contentType); err != nil {
		return "", errors.Wrap(err, "upload")
	}
	in.logger.Infow("plugin uploaded", "plugin", meta.Name, "path", dest, "bytes", len(body))
	return dest, nil
}

// mirrorKey names the mirror object for one plugin release. Records without
// a version have no stable identity and bypass the mirror.
func mirrorKey(meta model.PluginMetadata, basename string) (string, bool) {
	if meta.Version == "" {
		return "", false
	}
	return path.Join(meta.Name, meta.Version, basename), true
}

// obtain places the artifact at dest, from the mirror when it has this release.
func (in *Installer) obtain(ctx context.Context, meta model.PluginMetadata, dest string) error {
	key, mirrored := mirrorKey(meta, filepath.Base(dest))
	if in.store != nil && !mirrored {
		in.logger.Debugw("artifact mirror bypassed, no version in metadata", "plugin", meta.Name)
	}
	mirrored = mirrored && in.store != nil

	if mirrored {
		data, ok, err := in.store.Get(ctx, key)
		switch {
		case err != nil:
			in.logger.Warnw("artifact mirror lookup failed", "plugin", meta.Name, "error", err)
		case ok:
			in.logger.Debugw("artifact served from mirror", "plugin", meta.Name, "key", key)
			return writeArtifact(dest, data)
		}
	}

	in.logger.Debugw("downloading artifact", "plugin", meta.Name, "url", meta.URL)
	if _, err := in.downloader.Download(ctx, meta.URL, dest); err != nil {
		return errors.Wrap(err, "download")
	}

	if mirrored {
		data, err := os.ReadFile(dest)
		if err == nil {
			err = in.store.Put(ctx, key, data)
		}
		if err != nil {
			in.logger.Warnw("artifact mirror store failed", "plugin", meta.Name, "error", err)
		}
	}
	return nil
}

func writeArtifact(dest string, data []byte) error {
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove %s", dest)
	}
	return errors.Wrapf(os.WriteFile(dest, data, 0o644), "write %s", dest)
}

// verifyChecksum compares the file's SHA-256 with the base64 digest
// published by the update center. An empty digest is not checked.
func verifyChecksum(path, expected string) error {
	if expected == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	sum := sha256.Sum256(data)
	if got := base64.StdEncoding.EncodeToString(sum[:]); got != expected {
		return errors.Wrapf(ErrChecksumMismatch, "%s: got %s, want %s", filepath.Base(path), got, expected)
	}
	return nil
}
