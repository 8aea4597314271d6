package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"club-assistant-be/internal/dto"
	"club-assistant-be/pkg/embedding"
	"club-assistant-be/pkg/index"
	"club-assistant-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	embeddingProvider embedding.EmbeddingProvider
	documentIndex     index.DocumentIndex
	chunkSize         int
	chunkOverlap      int
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	embeddingProvider embedding.EmbeddingProvider,
	documentIndex index.DocumentIndex,
	chunkSize, chunkOverlap int,
) IConsumerService {
	if chunkSize <= 0 {
		chunkSize = utils.DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = utils.DefaultChunkOverlap
	}
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		embeddingProvider: embeddingProvider,
		documentIndex:     documentIndex,
		chunkSize:         chunkSize,
		chunkOverlap:      chunkOverlap,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IngestDocumentMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal ingest message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Ingesting document source=%s (content length: %d)", payload.Source, len(payload.Text))

	chunks := utils.SplitText(payload.Text, cs.chunkSize, cs.chunkOverlap)
	log.Printf("[INFO] Content split into %d chunks", len(chunks))

	docs := make([]index.Document, 0, len(chunks))
	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(ctx, chunk, embedding.TaskRetrievalDocument)
		if err != nil {
			log.Printf("[ERROR] Failed to generate embedding for chunk %d of %s: %v", i, payload.Source, err)
			msg.Nack() // Nack for retriable errors
			return
		}

		docs = append(docs, index.Document{
			ID:        fmt.Sprintf("%s-%d", payload.Source, i),
			Source:    payload.Source,
			ChunkIdx:  i,
			Content:   chunk,
			Embedding: res.Embedding.Values,
		})
	}

	if err := cs.documentIndex.Upsert(ctx, docs); err != nil {
		log.Printf("[ERROR] Failed to upsert %d chunks for %s: %v", len(docs), payload.Source, err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Document ingested: %d chunks for source=%s", len(docs), payload.Source)
	msg.Ack()
}
