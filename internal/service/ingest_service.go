package service

import (
	"context"
	"encoding/json"

	"club-assistant-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IIngestService accepts raw documents and hands them to the ingestion
// consumer via the event bus, keeping chunking and embedding off the
// request path.
type IIngestService interface {
	Ingest(ctx context.Context, request *dto.IngestDocumentRequest) error
}

type ingestService struct {
	pubSub    *gochannel.GoChannel
	topicName string
}

func NewIngestService(pubSub *gochannel.GoChannel, topicName string) IIngestService {
	return &ingestService{
		pubSub:    pubSub,
		topicName: topicName,
	}
}

func (s *ingestService) Ingest(_ context.Context, request *dto.IngestDocumentRequest) error {
	payload, err := json.Marshal(dto.IngestDocumentMessage{
		Source: request.Source,
		Text:   request.Text,
	})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	return s.pubSub.Publish(s.topicName, msg)
}
