package config

import (
	"sync"
)

type ScreeningConfig struct {
	// Concurrency bounds the number of resume pipelines in flight per batch.
	Concurrency    int
	MaxUploadBytes int64
	UploadDir      string
	OCRFallback    bool
}

var (
	screeningConfig *ScreeningConfig
	screeningOnce   sync.Once
)

func LoadScreeningConfig() *ScreeningConfig {
	screeningOnce.Do(func() {
		concurrency := getEnvInt("SCREENING_CONCURRENCY", 4)
		if concurrency < 1 {
			concurrency = 1
		}
		screeningConfig = &ScreeningConfig{
			Concurrency:    concurrency,
			MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_MB", 5)) * 1024 * 1024,
			UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
			OCRFallback:    getEnvBool("OCR_FALLBACK", false),
		}
	})
	return screeningConfig
}
