package file

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driven"
)

// Ensure AuditLog implements the interface.
var _ driven.AuditLog = (*AuditLog)(nil)

// AuditLog appends audit entries to one text file per collection.
type AuditLog struct {
	mu  sync.Mutex
	dir string
}

// NewAuditLog creates an audit log writing into dir.
func NewAuditLog(dir string) *AuditLog {
	return &AuditLog{dir: dir}
}

// AuditPath returns the audit file for a collection.
func (a *AuditLog) AuditPath(collection string) string {
	return filepath.Join(a.dir, fmt.Sprintf("formatted_%s_messages.txt", safeName(collection)))
}

// Append writes entries as "<document>\nURI: <link>\n\n". Existing content
// is never rewritten.
func (a *AuditLog) Append(ctx context.Context, collection string, entries []domain.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.MkdirAll(a.dir, 0700); err != nil {
		return fmt.Errorf("creating audit directory: %w", err)
	}
	f, err := os.OpenFile(a.AuditPath(collection), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\nURI: %s\n\n", entry.Document, entry.Link())
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing audit log: %w", err)
	}
	return f.Close()
}
