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

package storage

import (
	"bytes"
	"context"
	"io"

	gcs "cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// GCSStorage keeps plugin artifacts in a Google Cloud Storage bucket.
type GCSStorage struct {
	Client *gcs.Client
	Bucket *gcs.BucketHandle
	conf   *Conf
}

// NewGCSStorage treats AccessKey as the path of a service account JSON file.
// Without one, application default credentials apply, or no credentials at
// all when Endpoint points at an emulator.
func NewGCSStorage(c *Conf) (*GCSStorage, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var opts []option.ClientOption
	if c.AccessKey != "" {
		opts = append(opts, option.WithCredentialsFile(c.AccessKey))
	}
	if c.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpointURL(c.Endpoint, c.UseTLS)))
		if c.AccessKey == "" {
			opts = append(opts, option.WithoutAuthentication())
		}
	}

	client, err := gcs.NewClient(context.Background(), opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create gcs client")
	}

	return &GCSStorage{
		Client: client,
		Bucket: client.Bucket(c.Bucket),
		conf:   c,
	}, nil
}

// Get reads objectName under BasePath. A missing object reports ok=false
// without an error.
func (g *GCSStorage) Get(ctx context.Context, objectName string) ([]byte, bool, error) {
	fullPath := getFullPath(g.conf.BasePath, objectName)
	reader, err := g.Bucket.Object(fullPath).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "get object %s", fullPath)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, false, errors.Wrapf(err, "read object %s", fullPath)
	}
	return data, true, nil
}

// Put stores data as objectName under BasePath.
func (g *GCSStorage) Put(ctx context.Context, objectName string, data []byte) error {
	fullPath := getFullPath(g.conf.BasePath, objectName)
	writer := g.Bucket.Object(fullPath).NewWriter(ctx)
	writer.ContentType = artifactContentType

	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		_ = writer.Close()
		return errors.Wrapf(err, "put object %s", fullPath)
	}
	return errors.Wrapf(writer.Close(), "put object %s", fullPath)
}
