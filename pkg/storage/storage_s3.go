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
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/pkg/errors"
)

const defaultRegion = "us-east-1"

// S3Storage keeps plugin artifacts in Amazon S3 or any endpoint speaking its API.
type S3Storage struct {
	Client *s3.Client
	conf   *Conf
}

func NewS3Storage(c *Conf) (*S3Storage, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	region := c.Region
	if region == "" {
		region = defaultRegion
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if c.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, ""),
		))
	}
	if c.Endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(endpointURL(c.Endpoint, c.UseTLS)))
	}

	cfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		// custom endpoints rarely resolve virtual-hosted bucket names
		o.UsePathStyle = c.Endpoint != ""
	})
	return &S3Storage{Client: client, conf: c}, nil
}

// Get reads objectName under BasePath. A missing object reports ok=false
// without an error.
func (s *S3Storage) Get(ctx context.Context, objectName string) ([]byte, bool, error) {
	fullPath := getFullPath(s.conf.BasePath, objectName)
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.conf.Bucket),
		Key:    aws.String(fullPath),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "get object %s", fullPath)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, errors.Wrapf(err, "read object %s", fullPath)
	}
	return data, true, nil
}

// Put stores data as objectName under BasePath.
func (s *S3Storage) Put(ctx context.Context, objectName string, data []byte) error {
	fullPath := getFullPath(s.conf.BasePath, objectName)
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.conf.Bucket),
		Key:           aws.String(fullPath),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(artifactContentType),
	})
	return errors.Wrapf(err, "put object %s", fullPath)
}

func isS3NotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound"
}

func endpointURL(endpoint string, useTLS bool) string {
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	if useTLS {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}
