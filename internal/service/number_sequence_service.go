package service

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/straye-as/salesflow-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxCodePrefixLen caps the advisor part of a sale code
const maxCodePrefixLen = 20

// NumberSequenceService generates advisor-scoped sale codes.
//
// Format: {ADVISOR}-{SEQUENCE}
// Example: ADV42-000017
type NumberSequenceService struct {
	repo   *repository.NumberSequenceRepository
	logger *zap.Logger
}

// NewNumberSequenceService creates a new NumberSequenceService
func NewNumberSequenceService(
	repo *repository.NumberSequenceRepository,
	logger *zap.Logger,
) *NumberSequenceService {
	return &NumberSequenceService{
		repo:   repo,
		logger: logger,
	}
}

// GenerateSaleCodeTx issues the next code inside a caller-owned transaction,
// so a rolled-back sale does not consume a number.
func (s *NumberSequenceService) GenerateSaleCodeTx(tx *gorm.DB, advisorID string) (string, error) {
	prefix, err := SaleCodePrefix(advisorID)
	if err != nil {
		return "", err
	}

	nextSeq, err := s.repo.GetNextNumberTx(tx, advisorID)
	if err != nil {
		s.logger.Error("failed to get next sequence number",
			zap.String("advisor_id", advisorID),
			zap.Error(err))
		return "", fmt.Errorf("failed to generate sale code: %w", err)
	}

	code := FormatSaleCode(prefix, nextSeq)
	s.logger.Debug("generated sale code",
		zap.String("advisor_id", advisorID),
		zap.String("code", code))

	return code, nil
}

// SaleCodePrefix normalises an advisor id into the code prefix: upper-case
// letters and digits only.
func SaleCodePrefix(advisorID string) (string, error) {
	var b strings.Builder
	for _, r := range strings.ToUpper(advisorID) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
		if b.Len() == maxCodePrefixLen {
			break
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: advisor id %q yields an empty code prefix", ErrInvalidSale, advisorID)
	}
	return b.String(), nil
}

// FormatSaleCode renders PREFIX-NNNNNN
func FormatSaleCode(prefix string, seq int) string {
	return fmt.Sprintf("%s-%06d", prefix, seq)
}
