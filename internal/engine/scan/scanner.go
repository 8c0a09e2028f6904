// Package scan classifies manifest entries by reading ELF metadata from their
// sources.
package scan

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"go.trai.ch/fin/internal/core/domain"
	"go.trai.ch/fin/internal/core/ports"
)

const defaultLimit = 8

// Scanner reads ELF metadata for every manifest entry whose source is an ELF
// file.
type Scanner struct {
	reader ports.ElfReader
	limit  int
}

// NewScanner creates a new Scanner reading at most limit files concurrently.
// A limit of zero or less falls back to the default.
func NewScanner(reader ports.ElfReader, limit int) *Scanner {
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Scanner{reader: reader, limit: limit}
}

// Scan reads every entry's source concurrently and returns the ELF ones with
// their metadata, sorted by destination. Non-ELF sources are silently skipped.
func (s *Scanner) Scan(ctx context.Context, entries []domain.Entry) ([]domain.BinaryEntry, error) {
	var (
		mu       sync.Mutex
		binaries []domain.BinaryEntry
	)

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(s.limit)
	for _, entry := range entries {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			info, err := s.reader.ReadInfo(entry.Source)
			if errors.Is(err, domain.ErrNotELF) {
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			binaries = append(binaries, domain.BinaryEntry{Entry: entry, Info: info})
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(binaries, func(a, b domain.BinaryEntry) int {
		return strings.Compare(a.Entry.Destination, b.Entry.Destination)
	})
	return binaries, nil
}
