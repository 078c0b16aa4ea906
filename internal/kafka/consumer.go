package kafka

import (
	"context"
	"log"

	"github.com/IBM/sarama"
)

// StatusEventHandler logs order status events from the audit topic.
type StatusEventHandler struct{}

func (StatusEventHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (StatusEventHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h StatusEventHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		log.Printf("status event: topic=%s partition=%d offset=%d value=%s", msg.Topic, msg.Partition, msg.Offset, string(msg.Value))
		session.MarkMessage(msg, "")
	}
	return nil
}

// StartStatusConsumer consumes the audit topic until ctx is cancelled.
func StartStatusConsumer(ctx context.Context, brokers []string, groupID string, topics []string) {
	config := sarama.NewConfig()
	consumerGroup, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		log.Printf("Error creating consumer group: %v", err)
		return
	}
	defer func() {
		if err := consumerGroup.Close(); err != nil {
			log.Printf("Error closing consumer group: %v", err)
		}
	}()

	handler := StatusEventHandler{}

	for {
		select {
		case <-ctx.Done():
			return
		default:
			if err := consumerGroup.Consume(ctx, topics, handler); err != nil {
				log.Printf("Error from consumer: %v", err)
			}
		}
	}
}
