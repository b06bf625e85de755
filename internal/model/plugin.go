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

package model

// PluginMetadata is one update-center record.
type PluginMetadata struct {
	Name         string       `json:"name"`
	URL          string       `json:"url"`
	Version      string       `json:"version,omitempty"`
	SHA256       string       `json:"sha256,omitempty"` // base64, as published by the update center
	Dependencies []Dependency `json:"dependencies,omitempty"`
}

// Dependency references another plugin by name. Version and Optional are
// carried for display only; resolution uses Name alone.
type Dependency struct {
	Name     string `json:"name"`
	Version  string `json:"version,omitempty"`
	Optional bool   `json:"optional,omitempty"`
}

// DependencyNames returns the names of the declared dependencies in order.
func (m PluginMetadata) DependencyNames() []string {
	names := make([]string, 0, len(m.Dependencies))
	for _, dep := range m.Dependencies {
		names = append(names, dep.Name)
	}
	return names
}

// UpdateCenter is the subset of the update-center feed the client reads.
type UpdateCenter struct {
	Plugins map[string]PluginMetadata `json:"plugins"`
}
