package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/straye-as/salesflow-api/internal/domain"
	"github.com/straye-as/salesflow-api/internal/incentive"
	"github.com/straye-as/salesflow-api/internal/mapper"
	"github.com/straye-as/salesflow-api/internal/storage"
	"go.uber.org/zap"
)

// maxTierDocumentSize bounds how much of the stored document is read
const maxTierDocumentSize = 1 << 20

// DefaultTierRevisions is how many superseded tier documents are kept
const DefaultTierRevisions = 20

const revisionTimeLayout = "20060102T150405.000000000Z"

// TierDocumentStore keeps the tier table as a JSON document in storage
type TierDocumentStore struct {
	storage   storage.Storage
	path      string
	keep      int
	logger    *zap.Logger
	timestamp func() time.Time
}

// NewTierDocumentStore creates a store reading and writing the document at path
func NewTierDocumentStore(store storage.Storage, path string, logger *zap.Logger) *TierDocumentStore {
	return &TierDocumentStore{
		storage:   store,
		path:      path,
		keep:      DefaultTierRevisions,
		logger:    logger,
		timestamp: time.Now,
	}
}

// KeepRevisions sets how many superseded documents are retained
func (s *TierDocumentStore) KeepRevisions(n int) *TierDocumentStore {
	if n >= 0 {
		s.keep = n
	}
	return s
}

// revisionDir sits next to the document: tiers/tier-table.json keeps its
// history under tiers/revisions/
func (s *TierDocumentStore) revisionDir() string {
	return path.Join(path.Dir(s.path), "revisions")
}

var _ incentive.TierSource = (*TierDocumentStore)(nil)

// Load implements incentive.TierSource
func (s *TierDocumentStore) Load(ctx context.Context) (map[domain.IncentiveModality][]incentive.TierEntry, error) {
	doc, err := s.LoadDocument(ctx)
	if err != nil {
		return nil, err
	}
	return mapper.FromTierTableDTO(doc), nil
}

// LoadDocument reads and decodes the stored document
func (s *TierDocumentStore) LoadDocument(ctx context.Context) (*domain.TierTableDTO, error) {
	rc, err := s.storage.Get(ctx, s.path)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTierDocumentNotFound, s.path)
		}
		return nil, fmt.Errorf("failed to read tier document: %w", err)
	}
	defer rc.Close()

	var doc domain.TierTableDTO
	dec := json.NewDecoder(io.LimitReader(rc, maxTierDocumentSize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: tier document %s is not valid JSON: %v", incentive.ErrTierTableMisconfigured, s.path, err)
	}
	if doc.Modalities == nil {
		doc.Modalities = map[domain.IncentiveModality][]domain.TierEntryDTO{}
	}
	return &doc, nil
}

// Save writes the document, archiving the one it replaces and pruning the
// oldest revisions beyond the retention limit. Archive failures are logged;
// they never block the update.
func (s *TierDocumentStore) Save(ctx context.Context, doc *domain.TierTableDTO) error {
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tier document: %w", err)
	}

	if err := s.archiveCurrent(ctx); err != nil {
		s.logger.Warn("failed to archive previous tier document", zap.String("path", s.path), zap.Error(err))
	}

	size, err := s.storage.Put(ctx, s.path, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to store tier document: %w", err)
	}

	s.logger.Info("tier document stored",
		zap.String("path", s.path),
		zap.Int64("size", size))

	if err := s.prune(ctx); err != nil {
		s.logger.Warn("failed to prune tier revisions", zap.Error(err))
	}
	return nil
}

// Revisions lists archived documents, newest first
func (s *TierDocumentStore) Revisions(ctx context.Context) ([]domain.TierRevisionDTO, error) {
	objects, err := s.storage.List(ctx, s.revisionDir())
	if err != nil {
		return nil, fmt.Errorf("failed to list tier revisions: %w", err)
	}

	out := make([]domain.TierRevisionDTO, 0, len(objects))
	for i := len(objects) - 1; i >= 0; i-- {
		o := objects[i]
		id := strings.TrimSuffix(path.Base(o.Path), ".json")
		rev := domain.TierRevisionDTO{ID: id, Path: o.Path, Size: o.Size}
		if at, err := time.Parse(revisionTimeLayout, id); err == nil {
			rev.ArchivedAt = at.Format(time.RFC3339)
		}
		out = append(out, rev)
	}
	return out, nil
}

func (s *TierDocumentStore) archiveCurrent(ctx context.Context) error {
	rc, err := s.storage.Get(ctx, s.path)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	defer rc.Close()

	name := s.timestamp().UTC().Format(revisionTimeLayout) + ".json"
	_, err = s.storage.Put(ctx, path.Join(s.revisionDir(), name), "application/json", io.LimitReader(rc, maxTierDocumentSize))
	return err
}

func (s *TierDocumentStore) prune(ctx context.Context) error {
	objects, err := s.storage.List(ctx, s.revisionDir())
	if err != nil {
		return err
	}
	// names sort chronologically
	for len(objects) > s.keep {
		if err := s.storage.Delete(ctx, objects[0].Path); err != nil {
			return err
		}
		objects = objects[1:]
	}
	return nil
}
