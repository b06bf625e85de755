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
	"sort"
	"sync"

	"github.com/go-arcade/pluginctl/internal/model"
	"github.com/pkg/errors"
)

// MetadataSource supplies the full update-center mapping.
type MetadataSource interface {
	PluginsMetadata(ctx context.Context) (map[string]model.PluginMetadata, error)
}

// invalidator is implemented by sources that keep their own copy of the
// mapping. A forced reload asks them to drop it first.
type invalidator interface {
	InvalidatePluginsMetadata()
}

// Index caches one snapshot of the update-center mapping. The snapshot is
// loaded on first use and replaced wholesale by Refresh.
type Index struct {
	mu       sync.Mutex
	source   MetadataSource
	snapshot map[string]model.PluginMetadata
}

func NewIndex(source MetadataSource) *Index {
	return &Index{source: source}
}

// Refresh discards the cached snapshot and reloads it unconditionally.
func (i *Index) Refresh(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.reload(ctx, true)
}

func (i *Index) reload(ctx context.Context, force bool) error {
	if inv, ok := i.source.(invalidator); ok && force {
		inv.InvalidatePluginsMetadata()
	}
	data, err := i.source.PluginsMetadata(ctx)
	if err != nil {
		return errors.Wrap(err, "load plugin metadata")
	}
	if data == nil {
		data = map[string]model.PluginMetadata{}
	}
	i.snapshot = data
	return nil
}

// Metadata returns the record whose Name equals name. Keys of the mapping
// are not assumed to be plugin names. force reloads the snapshot first.
func (i *Index) Metadata(ctx context.Context, name string, force bool) (model.PluginMetadata, bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if force || i.snapshot == nil {
		if err := i.reload(ctx, force); err != nil {
			return model.PluginMetadata{}, false, err
		}
	}

	if meta, ok := i.snapshot[name]; ok && meta.Name == name {
		return meta, true, nil
	}

	// sorted so duplicate names resolve the same way on every run
	keys := make([]string, 0, len(i.snapshot))
	for k := range i.snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if meta := i.snapshot[k]; meta.Name == name {
			return meta, true, nil
		}
	}
	return model.PluginMetadata{}, false, nil
}

// Dependencies returns the names of name's declared dependencies.
func (i *Index) Dependencies(ctx context.Context, name string) ([]string, error) {
	meta, ok, err := i.Metadata(ctx, name, false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrapf(ErrMetadataNotFound, "plugin %s", name)
	}
	return meta.DependencyNames(), nil
}
