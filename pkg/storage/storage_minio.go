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
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

const artifactContentType = "application/java-archive"

// MinioStorage keeps plugin artifacts in an S3-compatible bucket.
type MinioStorage struct {
	Client *minio.Client
	conf   *Conf
}

func NewMinioStorage(conf *Conf) (*MinioStorage, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	client, err := minio.New(conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKey, conf.SecretKey, ""),
		Secure: conf.UseTLS,
		Region: conf.Region,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create minio client for %s", conf.Endpoint)
	}

	return &MinioStorage{
		Client: client,
		conf:   conf,
	}, nil
}

// Get reads objectName under BasePath. A missing object reports ok=false
// without an error.
func (m *MinioStorage) Get(ctx context.Context, objectName string) ([]byte, bool, error) {
	fullPath := getFullPath(m.conf.BasePath, objectName)
	obj, err := m.Client.GetObject(ctx, m.conf.Bucket, fullPath, minio.GetObjectOptions{})
	if err != nil {
		return nil, false, errors.Wrapf(err, "get object %s", fullPath)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "read object %s", fullPath)
	}
	return data, true, nil
}

// Put stores data as objectName under BasePath.
func (m *MinioStorage) Put(ctx context.Context, objectName string, data []byte) error {
	fullPath := getFullPath(m.conf.BasePath, objectName)
	_, err := m.Client.PutObject(ctx, m.conf.Bucket, fullPath, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: artifactContentType,
	})
	return errors.Wrapf(err, "put object %s", fullPath)
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
