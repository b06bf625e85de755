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

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"
)

// OSSStorage keeps plugin artifacts in an Aliyun OSS bucket.
type OSSStorage struct {
	Client *oss.Client
	Bucket *oss.Bucket
	conf   *Conf
}

func NewOSSStorage(c *Conf) (*OSSStorage, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	client, err := oss.New(endpointURL(c.Endpoint, c.UseTLS), c.AccessKey, c.SecretKey)
	if err != nil {
		return nil, errors.Wrapf(err, "create oss client for %s", c.Endpoint)
	}

	bucket, err := client.Bucket(c.Bucket)
	if err != nil {
		return nil, errors.Wrapf(err, "open oss bucket %s", c.Bucket)
	}

	return &OSSStorage{
		Client: client,
		Bucket: bucket,
		conf:   c,
	}, nil
}

// Get reads objectName under BasePath. A missing object reports ok=false
// without an error.
func (o *OSSStorage) Get(ctx context.Context, objectName string) ([]byte, bool, error) {
	fullPath := getFullPath(o.conf.BasePath, objectName)
	body, err := o.Bucket.GetObject(fullPath, oss.WithContext(ctx))
	if err != nil {
		if isOSSNotFound(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "get object %s", fullPath)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, false, errors.Wrapf(err, "read object %s", fullPath)
	}
	return data, true, nil
}

// Put stores data as objectName under BasePath.
func (o *OSSStorage) Put(ctx context.Context, objectName string, data []byte) error {
	fullPath := getFullPath(o.conf.BasePath, objectName)
	err := o.Bucket.PutObject(fullPath, bytes.NewReader(data),
		oss.ContentType(artifactContentType), oss.WithContext(ctx))
	return errors.Wrapf(err, "put object %s", fullPath)
}

func isOSSNotFound(err error) bool {
	var svcErr oss.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Code == "NoSuchKey" || svcErr.StatusCode == http.StatusNotFound
	}
	return false
}
