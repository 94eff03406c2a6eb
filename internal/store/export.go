package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pavelanni/papergen/internal/model"
)

// ExportAudit builds the audit export for the calls matching f.
func (s *Store) ExportAudit(ctx context.Context, f CallFilter) (model.AuditExport, error) {
	calls, err := s.ListCalls(ctx, f)
	if err != nil {
		return model.AuditExport{}, fmt.Errorf("list calls: %w", err)
	}
	meta, err := s.AllMetadata(ctx)
	if err != nil {
		return model.AuditExport{}, fmt.Errorf("read metadata: %w", err)
	}
	if calls == nil {
		calls = []model.GenerationCall{}
	}
	return model.AuditExport{
		ExportedAt: time.Now().UTC(),
		Server:     meta,
		Count:      len(calls),
		Calls:      calls,
	}, nil
}
