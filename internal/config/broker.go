package config

import (
	"os"
	"sync"
)

type BrokerConfig struct {
	URL      string
	Exchange string
}

var (
	brokerConfig *BrokerConfig
	brokerOnce   sync.Once
)

func LoadBrokerConfig() *BrokerConfig {
	brokerOnce.Do(func() {
		brokerConfig = &BrokerConfig{
			URL:      os.Getenv("AMQP_URL"),
			Exchange: getEnv("AMQP_EXCHANGE", "screening_events"),
		}
	})
	return brokerConfig
}
