package index

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClubDocument is the gorm model backing the pgvector index variant.
// text-embedding-004 produces 768-dimension vectors.
type ClubDocument struct {
	Id         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ExternalId string          `gorm:"uniqueIndex;not null"` // stable chunk id (source + chunk index)
	Source     string          `gorm:"index;not null"`
	Page       int             `gorm:"default:0"`
	ChunkIndex int             `gorm:"default:0"`
	Content    string          `gorm:"type:text"`
	Embedding  pgvector.Vector `gorm:"type:vector(768)"`
}

func (ClubDocument) TableName() string {
	return "club_documents"
}

// PgVectorIndex implements DocumentIndex on a Postgres table with the
// pgvector extension. Useful for self-hosted deployments without a
// Pinecone account.
type PgVectorIndex struct {
	db *gorm.DB
}

var _ DocumentIndex = &PgVectorIndex{}

func NewPgVectorIndex(db *gorm.DB) (*PgVectorIndex, error) {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("enable pgvector extension: %w", err)
	}
	if err := db.AutoMigrate(&ClubDocument{}); err != nil {
		return nil, fmt.Errorf("migrate club_documents: %w", err)
	}
	return &PgVectorIndex{db: db}, nil
}

func (p *PgVectorIndex) Upsert(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	models := make([]ClubDocument, 0, len(docs))
	for i, doc := range docs {
		if doc.ID == "" {
			return fmt.Errorf("document[%d] has empty id", i)
		}
		if len(doc.Embedding) == 0 {
			return fmt.Errorf("document[%d] has no embedding", i)
		}
		models = append(models, ClubDocument{
			Id:         uuid.New(),
			ExternalId: doc.ID,
			Source:     doc.Source,
			Page:       doc.Page,
			ChunkIndex: doc.ChunkIdx,
			Content:    doc.Content,
			Embedding:  pgvector.NewVector(doc.Embedding),
		})
	}

	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"source", "page", "chunk_index", "content", "embedding"}),
		}).
		Create(&models).Error
}

func (p *PgVectorIndex) Search(ctx context.Context, embedding []float32, topK int) ([]Match, error) {
	if topK <= 0 {
		topK = 5
	}

	// Cosine distance in pgvector is: 1 - cosine_similarity
	type result struct {
		ClubDocument
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := p.db.WithContext(ctx).
		Table("club_documents").
		Select("club_documents.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Order("similarity DESC").
		Limit(topK).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	matches := make([]Match, len(results))
	for i, res := range results {
		matches[i] = Match{
			Document: Document{
				ID:        res.ExternalId,
				Source:    res.Source,
				Page:      res.Page,
				ChunkIdx:  res.ChunkIndex,
				Content:   res.Content,
				Embedding: res.Embedding.Slice(),
			},
			Similarity: res.Similarity,
		}
	}
	return matches, nil
}
