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

package httpx

import (
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// ErrTooManyRedirects is returned when a redirect chain exhausts its limit.
var ErrTooManyRedirects = errors.New("http redirect too deep")

// HTTPError is a response that was neither a success nor a followable redirect.
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned %s", e.URL, e.Status)
	}
	return fmt.Sprintf("%s returned %s: %s", e.URL, e.Status, e.Body)
}

const maxErrorBody = 512

// NewHTTPError captures status and a truncated body from resp.
func NewHTTPError(resp *resty.Response) *HTTPError {
	body := string(resp.Body())
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	url := ""
	if resp.Request != nil {
		url = resp.Request.URL
	}
	status := resp.Status()
	if status == "" {
		status = fmt.Sprintf("%d", resp.StatusCode())
	}
	return &HTTPError{
		StatusCode: resp.StatusCode(),
		Status:     status,
		URL:        url,
		Body:       body,
	}
}

// IsStatus reports whether err is an *HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == code
}
