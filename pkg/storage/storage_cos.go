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
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/tencentyun/cos-go-sdk-v5"
)

// COSStorage keeps plugin artifacts in a Tencent Cloud COS bucket.
type COSStorage struct {
	Client *cos.Client
	conf   *Conf
}

func NewCOSStorage(c *Conf) (*COSStorage, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	u, err := cosBucketURL(c.Endpoint, c.Bucket, c.UseTLS)
	if err != nil {
		return nil, err
	}

	client := cos.NewClient(&cos.BaseURL{BucketURL: u}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  c.AccessKey,
			SecretKey: c.SecretKey,
		},
	})

	return &COSStorage{
		Client: client,
		conf:   c,
	}, nil
}

// cosBucketURL prefixes the region host with the bucket name unless the
// endpoint already addresses the bucket.
func cosBucketURL(endpoint, bucket string, useTLS bool) (*url.URL, error) {
	u, err := url.Parse(endpointURL(endpoint, useTLS))
	if err != nil {
		return nil, errors.Wrapf(err, "parse cos endpoint %s", endpoint)
	}
	if u.Host == "" {
		return nil, errors.Errorf("cos endpoint %s has no host", endpoint)
	}
	if !strings.HasPrefix(u.Host, bucket+".") {
		u.Host = bucket + "." + u.Host
	}
	u.Path = ""
	return u, nil
}

// Get reads objectName under BasePath. A missing object reports ok=false
// without an error.
func (c *COSStorage) Get(ctx context.Context, objectName string) ([]byte, bool, error) {
	fullPath := getFullPath(c.conf.BasePath, objectName)
	resp, err := c.Client.Object.Get(ctx, fullPath, nil)
	if err != nil {
		if cos.IsNotFoundError(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "get object %s", fullPath)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, errors.Wrapf(err, "read object %s", fullPath)
	}
	return data, true, nil
}

// Put stores data as objectName under BasePath.
func (c *COSStorage) Put(ctx context.Context, objectName string, data []byte) error {
	fullPath := getFullPath(c.conf.BasePath, objectName)
	opt := &cos.ObjectPutOptions{
		ObjectPutHeaderOptions: &cos.ObjectPutHeaderOptions{
			ContentType: artifactContentType,
		},
	}
	_, err := c.Client.Object.Put(ctx, fullPath, bytes.NewReader(data), opt)
	return errors.Wrapf(err, "put object %s", fullPath)
}
