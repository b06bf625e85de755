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
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-arcade/pluginctl/internal/model"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core).Sugar(), logs
}

func meta(name string, deps ...string) model.PluginMetadata {
	m := model.PluginMetadata{
		Name:    name,
		Version: "1.0",
		URL:     "http://mirror.example/plugins/" + name + "/1.0/" + name + ".hpi",
	}
	for _, d := range deps {
		m.Dependencies = append(m.Dependencies, model.Dependency{Name: d})
	}
	return m
}

func catalog(records ...model.PluginMetadata) map[string]model.PluginMetadata {
	out := make(map[string]model.PluginMetadata, len(records))
	for _, r := range records {
		out[r.Name] = r
	}
	return out
}

type upload struct {
	Path        string
	ContentType string
	Body        []byte
}

type fakeServer struct {
	mu          sync.Mutex
	metadata    map[string]model.PluginMetadata
	installed   map[string]string
	updates     map[string]string
	uploads     []upload
	metaLoads   int
	uploadErrOn string // upload of an artifact whose body contains this fails
}

func (s *fakeServer) PluginsMetadata(context.Context) (map[string]model.PluginMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metaLoads++
	out := make(map[string]model.PluginMetadata, len(s.metadata))
	for k, v := range s.metadata {
		out[k] = v
	}
	return out, nil
}

func (s *fakeServer) InstalledPlugins(context.Context) (map[string]string, error) {
	return s.installed, nil
}

func (s *fakeServer) AvailableUpdates(context.Context) (map[string]string, error) {
	return s.updates, nil
}

func (s *fakeServer) PostMultipart(_ context.Context, path string, body []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErrOn != "" && strings.Contains(string(body), s.uploadErrOn) {
		return errUploadRejected
	}
	s.uploads = append(s.uploads, upload{Path: path, ContentType: contentType, Body: body})
	return nil
}

// uploadedFiles returns the filename of every uploaded part, in order.
func (s *fakeServer) uploadedFiles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.uploads))
	for _, u := range s.uploads {
		body := string(u.Body)
		i := strings.Index(body, `filename="`)
		if i < 0 {
			continue
		}
		rest := body[i+len(`filename="`):]
		names = append(names, rest[:strings.Index(rest, `"`)])
	}
	return names
}

type errString string

func (e errString) Error() string { return string(e) }

const (
	errUploadRejected errString = "upload rejected"
	errUnreachable    errString = "mirror unreachable"
)

// fakeDownloader writes "artifact:<url>" to the destination.
type fakeDownloader struct {
	urls []string
}

func (d *fakeDownloader) Download(_ context.Context, url, localPath string) (string, error) {
	d.urls = append(d.urls, url)
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return "", err
	}
	return localPath, os.WriteFile(localPath, []byte("artifact:"+url), 0o644)
}

type fakeStore struct {
	objects map[string][]byte
	getErr  error
	putErr  error
	puts    []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (s *fakeStore) Get(_ context.Context, name string) ([]byte, bool, error) {
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	data, ok := s.objects[name]
	return data, ok, nil
}

func (s *fakeStore) Put(_ context.Context, name string, data []byte) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.puts = append(s.puts, name)
	s.objects[name] = data
	return nil
}
