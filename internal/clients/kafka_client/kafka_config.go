package kafka_client

import (
	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/spacesedan/ideaflow/config"
)

type KafkaConfig struct {
	Broker       string
	GroupID      string
	RequestTopic string
	ResultTopic  string
}

func NewKafkaConfig(cfg *config.Config) KafkaConfig {
	return KafkaConfig{
		Broker:       cfg.KafkaBroker,
		GroupID:      cfg.KafkaGroupID,
		RequestTopic: cfg.KafkaRequestTopic,
		ResultTopic:  cfg.KafkaResultTopic,
	}
}

// ConsumerConfigMap commits manually so a message is only acknowledged once
// its result is published.
func (c KafkaConfig) ConsumerConfigMap() *kafka.ConfigMap {
	return &kafka.ConfigMap{
		"bootstrap.servers":  c.Broker,
		"group.id":           c.GroupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false,
		"isolation.level":    "read_committed",
	}
}

func (c KafkaConfig) ProducerConfigMap() *kafka.ConfigMap {
	return &kafka.ConfigMap{
		"bootstrap.servers":                     c.Broker,
		"security.protocol":                     "PLAINTEXT",
		"api.version.request":                   "true",
		"enable.idempotence":                    true,
		"acks":                                  "all",
		"max.in.flight.requests.per.connection": 1,
	}
}
