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
	"context"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// 存储类型常量
const (
	StorageMinio = "minio"
	StorageS3    = "s3"
	StorageOSS   = "oss"
	StorageCOS   = "cos"
	StorageGCS   = "gcs"
)

// Store keeps plugin artifacts by file name.
type Store interface {
	Get(ctx context.Context, objectName string) ([]byte, bool, error)
	Put(ctx context.Context, objectName string, data []byte) error
}

// Conf 对象存储镜像配置
type Conf struct {
	Enabled   bool   `mapstructure:"enabled"`
	Provider  string `mapstructure:"provider"` // minio (default), s3, oss, cos, gcs
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"accessKey"`
	SecretKey string `mapstructure:"secretKey"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	BasePath  string `mapstructure:"basePath"`
	UseTLS    bool   `mapstructure:"useTLS"`
}

// Validate checks the fields an enabled mirror needs.
func (c *Conf) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Provider {
	case "", StorageMinio, StorageOSS, StorageCOS:
		if c.Endpoint == "" {
			return errors.New("mirror endpoint is required")
		}
	case StorageS3, StorageGCS:
	default:
		return errors.Errorf("unsupported storage provider: %s", c.Provider)
	}
	if c.Bucket == "" {
		return errors.New("mirror bucket is required")
	}
	return nil
}

// NewStorage 根据配置创建存储实例
func NewStorage(c *Conf) (Store, error) {
	switch c.Provider {
	case "", StorageMinio:
		return NewMinioStorage(c)
	case StorageS3:
		return NewS3Storage(c)
	case StorageOSS:
		return NewOSSStorage(c)
	case StorageCOS:
		return NewCOSStorage(c)
	case StorageGCS:
		return NewGCSStorage(c)
	default:
		return nil, errors.Errorf("unsupported storage provider: %s", c.Provider)
	}
}

// getFullPath 组合 BasePath 和 objectName，返回完整的对象路径
func getFullPath(basePath, objectName string) string {
	objectName = strings.TrimPrefix(objectName, "/")
	basePath = strings.Trim(basePath, "/")
	if basePath == "" {
		return objectName
	}
	// object keys always use forward slashes
	return path.Join(basePath, objectName)
}
