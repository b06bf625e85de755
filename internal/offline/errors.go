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

import "github.com/pkg/errors"

var (
	// ErrMetadataNotFound is returned when a plugin required for resolution
	// has no update-center record.
	ErrMetadataNotFound = errors.New("plugin metadata not found")

	// ErrChecksumMismatch is returned when a downloaded artifact does not
	// match the published SHA-256.
	ErrChecksumMismatch = errors.New("artifact checksum mismatch")
)
