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

// ItemState is the position of one plugin within a batch.
type ItemState string

const (
	StatePending                 ItemState = "pending"
	StateSkippedAlreadyInstalled ItemState = "skipped_already_installed"
	StateSkippedMetadataMissing  ItemState = "skipped_metadata_missing"
	StateUploaded                ItemState = "uploaded"
)

// Outcome summarises a whole install or upgrade call.
type Outcome string

const (
	OutcomeCompleted        Outcome = "completed"
	OutcomeAlreadyInstalled Outcome = "already_installed"
	OutcomeNotInstalled     Outcome = "not_installed"
)

const (
	OperationInstall = "install"
	OperationUpgrade = "upgrade"
)

type ItemResult struct {
	Name  string
	State ItemState
	Path  string // local artifact, set once uploaded
}

// Report records what one operation did. Items left Pending were not
// reached because the operation aborted.
type Report struct {
	Plugin    string
	Operation string
	Outcome   Outcome
	Items     []ItemResult
}

func newReport(operation, plugin string) *Report {
	return &Report{Plugin: plugin, Operation: operation}
}

func (r *Report) plan(names []string) {
	r.Items = make([]ItemResult, len(names))
	for i, n := range names {
		r.Items[i] = ItemResult{Name: n, State: StatePending}
	}
}

// Names returns the planned items in processing order.
func (r *Report) Names() []string {
	names := make([]string, len(r.Items))
	for i, item := range r.Items {
		names[i] = item.Name
	}
	return names
}

// Count returns how many items ended in state.
func (r *Report) Count(state ItemState) int {
	n := 0
	for _, item := range r.Items {
		if item.State == state {
			n++
		}
	}
	return n
}
