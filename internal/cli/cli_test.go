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

package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"

	"github.com/go-arcade/pluginctl/internal/app"
	"github.com/go-arcade/pluginctl/internal/conf"
	"github.com/go-arcade/pluginctl/internal/jenkins"
	"github.com/go-arcade/pluginctl/internal/offline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var filenameRe = regexp.MustCompile(`filename="([^"]+)"`)

type jenkinsStub struct {
	*httptest.Server

	mu        sync.Mutex
	installed string
	uploads   []string
	restarts  int
	disabled  []string
}

func newJenkinsStub(t *testing.T, installed string) *jenkinsStub {
	t.Helper()
	s := &jenkinsStub{installed: installed}
	mux := http.NewServeMux()

	mux.HandleFunc("/pluginManager/api/json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, s.installed)
	})
	mux.HandleFunc("/updateCenter/api/json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"sites":[{"updates":[{"name":"git","version":"5.3.0"}]}]}`)
	})
	mux.HandleFunc("/pluginManager/uploadPlugin", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		m := filenameRe.FindSubmatch(body)
		s.mu.Lock()
		if m != nil {
			s.uploads = append(s.uploads, string(m[1]))
		}
		s.mu.Unlock()
		http.Redirect(w, r, "/updateCenter/", http.StatusFound)
	})
	mux.HandleFunc("/pluginManager/plugin/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.disabled = append(s.disabled, r.URL.Path)
		s.mu.Unlock()
	})
	mux.HandleFunc("/updateCenter/", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/safeRestart", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.restarts++
		s.mu.Unlock()
	})
	mux.HandleFunc("/api/json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "{}")
	})
	mux.HandleFunc("/update-center.json", func(w http.ResponseWriter, r *http.Request) {
		base := "http://" + r.Host
		_, _ = io.WriteString(w, "updateCenter.post({\"plugins\":{"+
			`"git":{"name":"git","url":"`+base+`/download/git.hpi","dependencies":[{"name":"credentials"},{"name":"scm-api"}]},`+
			`"credentials":{"name":"credentials","url":"`+base+`/files/credentials.hpi"},`+
			`"scm-api":{"name":"scm-api","url":"`+base+`/files/scm-api.hpi"}`+
			"}});")
	})
	mux.HandleFunc("/download/git.hpi", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/files/git.hpi", http.StatusFound)
	})
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "PK-"+r.URL.Path)
	})

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func testInitApp(logger *zap.SugaredLogger) InitAppFunc {
	return func(c *conf.AppConfig) (*app.App, func(), error) {
		client, err := jenkins.NewClient(&c.Server, logger)
		if err != nil {
			return nil, nil, err
		}
		fetcher := app.ProvideFetcher(&c.Offline, &c.Server)
		installer := offline.NewInstaller(client, fetcher, nil, &c.Offline, logger)
		return app.NewApp(c, logger, client, installer), func() {}, nil
	}
}

func execute(t *testing.T, stub *jenkinsStub, args ...string) (*observer.ObservedLogs, error) {
	t.Helper()
	logs, _, err := executeWithOutput(t, stub, args...)
	return logs, err
}

func executeWithOutput(t *testing.T, stub *jenkinsStub, args ...string) (*observer.ObservedLogs, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("PLUGINCTL_SERVER_UPDATECENTERURL", stub.URL+"/update-center.json")
	t.Setenv("PLUGINCTL_OFFLINE_TEMPDIR", t.TempDir())

	core, logs := observer.New(zapcore.DebugLevel)
	root := NewRootCmd(testInitApp(zap.New(core).Sugar()))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append(args, "--server", stub.URL))
	err := root.ExecuteContext(context.Background())
	return logs, out.String(), err
}

const installedGitAndCredentials = `{"plugins":[{"shortName":"git","version":"5.2.0"},{"shortName":"credentials","version":"2.6"}]}`

func TestList(t *testing.T) {
	stub := newJenkinsStub(t, installedGitAndCredentials)

	logs, err := execute(t, stub, "list")
	require.NoError(t, err)

	var lines []string
	for _, e := range logs.All() {
		lines = append(lines, e.Message)
	}
	assert.Equal(t, []string{" - credentials = 2.6", " - git = 5.2.0"}, lines)
}

func TestList_StructuredOutput(t *testing.T) {
	stub := newJenkinsStub(t, installedGitAndCredentials)

	logs, out, err := executeWithOutput(t, stub, "list", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"credentials","version":"2.6"},{"name":"git","version":"5.2.0"}]`, out)
	assert.Zero(t, logs.Len())

	_, out, err = executeWithOutput(t, stub, "list", "-o", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "- name: credentials\n  version: \"2.6\"\n- name: git\n  version: 5.2.0\n", out)

	_, out, err = executeWithOutput(t, stub, "list", "-o", "table")
	require.NoError(t, err)
	assert.Equal(t, "NAME         VERSION\ncredentials  2.6\ngit          5.2.0\n", out)

	_, _, err = executeWithOutput(t, stub, "list", "-o", "xml")
	assert.Error(t, err)
}

func TestUpdates(t *testing.T) {
	stub := newJenkinsStub(t, installedGitAndCredentials)

	logs, err := execute(t, stub, "updates")
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage(" - git has new available version 5.3.0").Len())
}

func TestDisable(t *testing.T) {
	stub := newJenkinsStub(t, installedGitAndCredentials)

	_, err := execute(t, stub, "disable", "--plugins", "git,credentials")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/pluginManager/plugin/git/makeDisabled",
		"/pluginManager/plugin/credentials/makeDisabled",
	}, stub.disabled)
}

func TestDisable_RequiresPlugins(t *testing.T) {
	stub := newJenkinsStub(t, installedGitAndCredentials)

	_, err := execute(t, stub, "disable")
	assert.Error(t, err)
}

func TestInstallOffline(t *testing.T) {
	stub := newJenkinsStub(t, `{"plugins":[{"shortName":"credentials","version":"2.6"}]}`)

	logs, err := execute(t, stub, "install", "-P", "git", "--offline", "-r", "--wait")
	require.NoError(t, err)
	assert.Equal(t, []string{"scm-api.hpi", "git.hpi"}, stub.uploads)
	assert.Equal(t, 1, stub.restarts)
	assert.Equal(t, 1, logs.FilterMessage("server is ready").Len())

	finished := logs.FilterMessage("operation finished").All()
	require.Len(t, finished, 1)
	fields := finished[0].ContextMap()
	assert.EqualValues(t, offline.OutcomeCompleted, fields["outcome"])
	assert.EqualValues(t, 2, fields["uploaded"])
	assert.EqualValues(t, 1, fields["alreadyInstalled"])
}

func TestInstallOffline_AlreadyInstalled(t *testing.T) {
	stub := newJenkinsStub(t, installedGitAndCredentials)

	logs, err := execute(t, stub, "install", "-P", "git", "--offline", "-r")
	require.NoError(t, err)
	assert.Empty(t, stub.uploads)
	assert.Zero(t, stub.restarts)
	assert.Equal(t, 1, logs.FilterMessage("plugin is already installed").Len())
}

func TestUpgrade(t *testing.T) {
	stub := newJenkinsStub(t, installedGitAndCredentials)

	_, err := execute(t, stub, "upgrade", "-P", "git", "-r")
	require.NoError(t, err)
	assert.Equal(t, []string{"scm-api.hpi", "credentials.hpi", "git.hpi"}, stub.uploads)
	assert.Equal(t, 1, stub.restarts)
}

func TestUpgradeAll(t *testing.T) {
	stub := newJenkinsStub(t, installedGitAndCredentials)

	_, err := execute(t, stub, "upgrade")
	require.NoError(t, err)
	assert.Equal(t, []string{"scm-api.hpi", "credentials.hpi", "git.hpi"}, stub.uploads)
	assert.Zero(t, stub.restarts)
}

func TestUpgrade_NotInstalled(t *testing.T) {
	stub := newJenkinsStub(t, `{"plugins":[]}`)

	logs, err := execute(t, stub, "upgrade", "-P", "git")
	require.NoError(t, err)
	assert.Empty(t, stub.uploads)
	assert.Equal(t, 1, logs.FilterMessage("plugin is not installed").Len())
}
