// Package gallery persists generated images so sessions can browse, replay,
// and search past work. Each record carries an optional prompt embedding for
// similarity search.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/voicecanvas/voicecanvas/internal/embedding"
	"github.com/voicecanvas/voicecanvas/internal/models"
)

// ErrNotFound reports a generation ID with no gallery record.
var ErrNotFound = errors.New("generation not found")

// ErrUnavailable reports that the service is running without a database.
var ErrUnavailable = errors.New("gallery database is not configured")

type Service struct {
	db       *pgxpool.Pool
	embedder *embedding.Service
}

// NewService builds a gallery over the given pool. embedder may be nil, which
// disables similarity search and leaves new records without embeddings.
func NewService(db *pgxpool.Pool, embedder *embedding.Service) *Service {
	return &Service{db: db, embedder: embedder}
}

type CreateRequest struct {
	SessionID *uuid.UUID
	Prompt    string
	Source    string
	Provider  string
}

// Create inserts a pending generation record. Embedding the prompt is best
// effort: a failure is logged and the record is stored without a vector.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Generation, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}

	var vec *pgvector.Vector
	if s.embedder != nil {
		if emb, err := s.embedder.Embed(ctx, req.Prompt); err != nil {
			slog.Warn("prompt embedding failed", "error", err)
		} else {
			v := pgvector.NewVector(emb)
			vec = &v
		}
	}

	var gen models.Generation
	err := s.db.QueryRow(ctx,
		`INSERT INTO generations (id, session_id, prompt, prompt_embedding, source, provider, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, session_id, prompt, source, provider, status, url, error, created_at, completed_at`,
		uuid.New(), req.SessionID, req.Prompt, vec, req.Source, req.Provider, models.GenStatusPending,
	).Scan(&gen.ID, &gen.SessionID, &gen.Prompt, &gen.Source, &gen.Provider, &gen.Status, &gen.URL, &gen.Error, &gen.CreatedAt, &gen.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("insert generation: %w", err)
	}
	return &gen, nil
}

func (s *Service) MarkReady(ctx context.Context, id uuid.UUID, url string) error {
	if s.db == nil {
		return ErrUnavailable
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE generations SET status = $2, url = $3, completed_at = $4 WHERE id = $1`,
		id, models.GenStatusReady, url, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("mark generation ready: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	if s.db == nil {
		return ErrUnavailable
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE generations SET status = $2, error = $3, completed_at = $4 WHERE id = $1`,
		id, models.GenStatusFailed, reason, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("mark generation failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Generation, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}

	var gen models.Generation
	err := s.db.QueryRow(ctx,
		`SELECT id, session_id, prompt, source, provider, status, url, error, created_at, completed_at
		 FROM generations WHERE id = $1`,
		id,
	).Scan(&gen.ID, &gen.SessionID, &gen.Prompt, &gen.Source, &gen.Provider, &gen.Status, &gen.URL, &gen.Error, &gen.CreatedAt, &gen.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get generation: %w", err)
	}
	return &gen, nil
}

func (s *Service) ListBySession(ctx context.Context, sessionID uuid.UUID, limit, offset int) ([]models.Generation, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, session_id, prompt, source, provider, status, url, error, created_at, completed_at
		 FROM generations WHERE session_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		sessionID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close()

	var gens []models.Generation
	for rows.Next() {
		var g models.Generation
		if err := rows.Scan(&g.ID, &g.SessionID, &g.Prompt, &g.Source, &g.Provider, &g.Status, &g.URL, &g.Error, &g.CreatedAt, &g.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		gens = append(gens, g)
	}
	return gens, rows.Err()
}

// SearchResult pairs a gallery record with its cosine similarity to the query.
type SearchResult struct {
	models.Generation
	Score float64 `json:"score"`
}

// SearchSimilar finds ready generations whose prompts are closest to the
// query text. Requires an embedder; records stored without embeddings are
// skipped by the index.
func (s *Service) SearchSimilar(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("similarity search requires an embedding provider (set OPENAI_API_KEY)")
	}
	if topK <= 0 || topK > 50 {
		topK = 10
	}

	emb, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	vec := pgvector.NewVector(emb)

	rows, err := s.db.Query(ctx,
		`SELECT id, session_id, prompt, source, provider, status, url, error, created_at, completed_at,
		        1 - (prompt_embedding <=> $1) AS score
		 FROM generations
		 WHERE prompt_embedding IS NOT NULL AND status = $2
		 ORDER BY prompt_embedding <=> $1
		 LIMIT $3`,
		vec, models.GenStatusReady, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Prompt, &r.Source, &r.Provider, &r.Status, &r.URL, &r.Error, &r.CreatedAt, &r.CompletedAt, &r.Score); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
