package config

import (
	"os"
	"sync"
)

// StorageConfig selects where uploaded resumes are archived. Driver "s3" works with
// AWS S3 and S3-compatible stores such as Cloudflare R2 via Endpoint.
type StorageConfig struct {
	Driver    string
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

var (
	storageConfig *StorageConfig
	storageOnce   sync.Once
)

func LoadStorageConfig() *StorageConfig {
	storageOnce.Do(func() {
		storageConfig = &StorageConfig{
			Driver:    getEnv("STORAGE_DRIVER", "local"),
			Bucket:    os.Getenv("S3_BUCKET"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			Region:    getEnv("S3_REGION", "auto"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
		}
	})
	return storageConfig
}
