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

package log

// ILogger is the structured logging surface components depend on.
// *zap.SugaredLogger satisfies it.
type ILogger interface {
	Infof(template string, args ...any)
	Infow(msg string, keysAndValues ...any)

	Debugw(msg string, keysAndValues ...any)

	Warnw(msg string, keysAndValues ...any)

	Errorw(msg string, keysAndValues ...any)
}
