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
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/pluginctl/internal/app"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"
)

const (
	outputLog   = "log"
	outputJSON  = "json"
	outputYAML  = "yaml"
	outputTable = "table"
)

type pluginVersion struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// printVersions writes name/version pairs sorted by name. The log format
// goes through the logger using logFormat; the others go to out.
func printVersions(out io.Writer, a *app.App, format, logFormat string, versions map[string]string) error {
	names := sortedKeys(versions)
	rows := make([]pluginVersion, 0, len(names))
	for _, name := range names {
		rows = append(rows, pluginVersion{Name: name, Version: versions[name]})
	}

	switch format {
	case "", outputLog:
		for _, r := range rows {
			a.Logger.Infof(logFormat, r.Name, r.Version)
		}
		return nil
	case outputJSON:
		data, err := sonic.ConfigStd.MarshalIndent(rows, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case outputYAML:
		data, err := yaml.Marshal(rows)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	case outputTable:
		w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tVERSION")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\n", r.Name, r.Version)
		}
		return w.Flush()
	default:
		return errors.Errorf("unsupported output format: %s (use %s)", format,
			strings.Join([]string{outputLog, outputJSON, outputYAML, outputTable}, ", "))
	}
}
