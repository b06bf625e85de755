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
	"bytes"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	// UploadPath is the server endpoint accepting plugin archives.
	UploadPath = "/pluginManager/uploadPlugin"

	// The server matches on this exact field name and part content type.
	uploadFieldName    = "user[][image]"
	archiveContentType = "application/java-archive"

	boundarySuffix = "ZZZZZ"
)

// Boundary separates the parts of an upload body.
type Boundary string

// NewBoundary returns a random integer in [0, 999999] followed by a fixed suffix.
func NewBoundary() Boundary {
	return Boundary(fmt.Sprintf("%d%s", rand.IntN(1000000), boundarySuffix))
}

// ContentType is the request header value for bodies framed with b.
func (b Boundary) ContentType() string {
	return "multipart/form-data; boundary=" + string(b)
}

// BuildUploadBody frames the file at filePath as a single-part
// multipart/form-data body. The layout, including the two spaces after the
// part content type, is what the upload endpoint expects byte for byte.
func BuildUploadBody(filePath string, boundary Boundary) ([]byte, string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, "", errors.Wrapf(err, "read artifact %s", filePath)
	}

	var buf bytes.Buffer
	buf.Grow(len(data) + 256)
	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Disposition: form-data; name=\"%s\"; filename=\"%s\"\r\n", uploadFieldName, filepath.Base(filePath))
	fmt.Fprintf(&buf, "Content-Type: %s  \r\n\r\n", archiveContentType)
	buf.Write(data)
	fmt.Fprintf(&buf, "\r\n\r\n--%s--\r\n", boundary)

	return buf.Bytes(), boundary.ContentType(), nil
}
