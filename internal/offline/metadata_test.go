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
	"testing"

	"github.com/go-arcade/pluginctl/internal/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_LoadsLazilyOnce(t *testing.T) {
	src := &fakeServer{metadata: catalog(meta("git", "credentials"), meta("credentials"))}
	idx := NewIndex(src)
	assert.Equal(t, 0, src.metaLoads)

	m, ok, err := idx.Metadata(context.Background(), "git", false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "git", m.Name)

	_, _, err = idx.Metadata(context.Background(), "credentials", false)
	require.NoError(t, err)
	assert.Equal(t, 1, src.metaLoads)
}

func TestIndex_ForceRefreshReplacesSnapshot(t *testing.T) {
	src := &fakeServer{metadata: catalog(meta("git"))}
	idx := NewIndex(src)

	_, ok, err := idx.Metadata(context.Background(), "workflow-api", false)
	require.NoError(t, err)
	assert.False(t, ok)

	src.metadata = catalog(meta("workflow-api"))

	// cached snapshot still answers without the new record
	_, ok, _ = idx.Metadata(context.Background(), "workflow-api", false)
	assert.False(t, ok)

	_, ok, err = idx.Metadata(context.Background(), "workflow-api", true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, src.metaLoads)

	_, ok, _ = idx.Metadata(context.Background(), "git", false)
	assert.False(t, ok, "refresh replaces the snapshot wholesale")
}

func TestIndex_Refresh(t *testing.T) {
	src := &fakeServer{metadata: catalog(meta("git"))}
	idx := NewIndex(src)

	require.NoError(t, idx.Refresh(context.Background()))
	require.NoError(t, idx.Refresh(context.Background()))
	assert.Equal(t, 2, src.metaLoads)
}

func TestIndex_MatchesOnRecordName(t *testing.T) {
	src := &fakeServer{metadata: map[string]model.PluginMetadata{
		"scm-api-legacy": meta("scm-api"),
		"git":            meta("git-client"),
	}}
	idx := NewIndex(src)

	m, ok, err := idx.Metadata(context.Background(), "scm-api", false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "scm-api", m.Name)

	// key "git" holds a different plugin's record
	_, ok, err = idx.Metadata(context.Background(), "git", false)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIndex_Dependencies(t *testing.T) {
	src := &fakeServer{metadata: catalog(meta("git", "credentials", "scm-api"))}
	idx := NewIndex(src)

	deps, err := idx.Dependencies(context.Background(), "git")
	require.NoError(t, err)
	assert.Equal(t, []string{"credentials", "scm-api"}, deps)

	_, err = idx.Dependencies(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMetadataNotFound))
	assert.Contains(t, err.Error(), "plugin nope")
}

type cachingSource struct {
	fakeServer
	invalidations int
}

func (c *cachingSource) InvalidatePluginsMetadata() {
	c.invalidations++
}

func TestIndex_ForceInvalidatesSourceCache(t *testing.T) {
	src := &cachingSource{fakeServer: fakeServer{metadata: catalog(meta("git"))}}
	idx := NewIndex(src)

	_, _, err := idx.Metadata(context.Background(), "git", false)
	require.NoError(t, err)
	assert.Equal(t, 0, src.invalidations, "first lazy load keeps the source cache")

	_, _, err = idx.Metadata(context.Background(), "git", true)
	require.NoError(t, err)
	require.NoError(t, idx.Refresh(context.Background()))
	assert.Equal(t, 2, src.invalidations)
}
