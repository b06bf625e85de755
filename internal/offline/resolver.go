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
	"strings"

	"github.com/go-arcade/pluginctl/pkg/log"
	"github.com/pkg/errors"
)

// Resolver expands a plugin into its installation set.
//
// By default only the root's immediate dependencies are enumerated; their own
// dependencies are not. Recursive resolution walks the whole closure instead.
type Resolver struct {
	index     *Index
	recursive bool
	logger    log.ILogger
}

func NewResolver(index *Index, recursive bool, logger log.ILogger) *Resolver {
	return &Resolver{index: index, recursive: recursive, logger: logger}
}

// BuildInstallationSet returns root and its dependencies, each once,
// dependencies first and root last.
func (r *Resolver) BuildInstallationSet(ctx context.Context, root string) ([]string, error) {
	if r.recursive {
		return r.closure(ctx, root)
	}

	deps, err := r.index.Dependencies(ctx, root)
	if err != nil {
		return nil, err
	}
	set := append([]string{root}, deps...)
	return reverse(dedupe(set)), nil
}

// closure does a depth-first post-order walk. Siblings are visited in
// reverse listing order so a graph of leaf dependencies orders the same way
// as the one-level expansion.
func (r *Resolver) closure(ctx context.Context, root string) ([]string, error) {
	if _, err := r.index.Dependencies(ctx, root); err != nil {
		return nil, err
	}

	const (
		visiting = 1
		done     = 2
	)
	state := map[string]int{}
	order := make([]string, 0)

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			r.logger.Debugw("dependency cycle broken", "cycle", strings.Join(append(path, name), " -> "))
			return nil
		}
		state[name] = visiting

		meta, ok, err := r.index.Metadata(ctx, name, false)
		if err != nil {
			return errors.Wrapf(err, "resolve %s", name)
		}
		if ok {
			next := append(path[:len(path):len(path)], name)
			deps := meta.DependencyNames()
			for j := len(deps) - 1; j >= 0; j-- {
				if err := visit(deps[j], next); err != nil {
					return err
				}
			}
		}

		state[name] = done
		order = append(order, name)
		return nil
	}

	if err := visit(root, nil); err != nil {
		return nil, err
	}
	return order, nil
}

// dedupe keeps the first occurrence of each name.
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func reverse(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[len(names)-1-i] = n
	}
	return out
}
