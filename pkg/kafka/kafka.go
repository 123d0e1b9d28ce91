package kafka

import (
	"encoding/json"

	"github.com/IBM/sarama"
)

const BookEventsTopic = "catalog.book-events"

type Config struct {
	Addrs   []string `yaml:"addrs" envconfig:"KAFKA_ADDRS"`
	Enabled bool     `yaml:"enabled" envconfig:"KAFKA_ENABLED" default:"false"`
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}

type Publisher struct {
	producer sarama.SyncProducer
}

func NewPublisher(producer sarama.SyncProducer) *Publisher {
	return &Publisher{producer: producer}
}

// Publish marshals v to JSON and sends it synchronously.
func (p *Publisher) Publish(topic string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{Topic: topic, Value: sarama.StringEncoder(data)}
	if _, _, err = p.producer.SendMessage(msg); err != nil {
		return err
	}
	return nil
}
