package service

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/rl1809/aspas/internal/core/domain"
	"github.com/rl1809/aspas/internal/logger"
	"github.com/rl1809/aspas/internal/port"
)

const auditTimeLayout = "2006-01-02 15:04:05"

var auditExportHeader = []string{"Log ID", "Action Type", "Details", "Timestamp", "Username", "User Role"}

// AuditService appends and reads the audit trail.
type AuditService struct {
	store    port.LedgerStore
	settings Settings
}

func NewAuditService(store port.LedgerStore, settings Settings) *AuditService {
	return &AuditService{store: store, settings: settings.withDefaults()}
}

// Append writes an entry inside the caller's transaction, so it exists only
// if that transaction commits.
func (s *AuditService) Append(
	ctx context.Context,
	tx port.LedgerTx,
	sess domain.Session,
	action domain.ActionType,
	details string,
) (domain.AuditEntry, error) {
	if err := sess.Validate(); err != nil {
		return domain.AuditEntry{}, err
	}
	if !action.Valid() {
		return domain.AuditEntry{}, &domain.ValidationError{Field: "action_type", Reason: "unknown action " + string(action)}
	}

	entry := domain.AuditEntry{
		ID:       s.settings.IDs.Audit(),
		Action:   action,
		Details:  details,
		LoggedAt: s.settings.now(),
		Username: sess.Username,
		Role:     sess.Role,
	}
	if err := tx.AppendAudit(ctx, entry); err != nil {
		return domain.AuditEntry{}, err
	}
	return entry, nil
}

// Record appends a standalone entry for actions that change no other table.
func (s *AuditService) Record(ctx context.Context, sess domain.Session, action domain.ActionType, details string) error {
	const op = "service.AuditService.Record"

	if action.Mutating() {
		return fmt.Errorf("%s: %w", op, &domain.ValidationError{
			Field:  "action_type",
			Reason: string(action) + " is written only with its change",
		})
	}

	var entry domain.AuditEntry
	err := s.store.InTx(ctx, func(tx port.LedgerTx) error {
		var err error
		entry, err = s.Append(ctx, tx, sess, action, details)
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Debug(ctx, "audit recorded",
		logger.String("id", entry.ID),
		logger.String("action", string(action)),
		logger.String("user", sess.Username),
	)
	return nil
}

func (s *AuditService) Query(ctx context.Context, sess domain.Session, q domain.AuditQuery) ([]domain.AuditEntry, error) {
	const op = "service.AuditService.Query"

	if err := requireAdmin(sess); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	filter, err := q.Filter(s.settings.Location)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	entries, err := s.store.QueryAudit(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}

// ViewLog is Query for the audit screen; the viewing itself is audited.
func (s *AuditService) ViewLog(ctx context.Context, sess domain.Session, q domain.AuditQuery) ([]domain.AuditEntry, error) {
	entries, err := s.Query(ctx, sess, q)
	if err != nil {
		return nil, err
	}
	if err := s.Record(ctx, sess, domain.ActionViewAuditLog, "Viewed system audit logs"); err != nil {
		return nil, err
	}
	return entries, nil
}

// ExportRows returns the matching entries as a header row followed by one
// row per entry, and audits the export under target.
func (s *AuditService) ExportRows(
	ctx context.Context,
	sess domain.Session,
	q domain.AuditQuery,
	target string,
) ([][]string, error) {
	entries, err := s.Query(ctx, sess, q)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(entries)+1)
	rows = append(rows, append([]string(nil), auditExportHeader...))
	rows = append(rows, lo.Map(entries, func(e domain.AuditEntry, _ int) []string {
		return []string{
			e.ID,
			string(e.Action),
			e.Details,
			e.LoggedAt.In(s.settings.Location).Format(auditTimeLayout),
			e.Username,
			string(e.Role),
		}
	})...)

	if err := s.Record(ctx, sess, domain.ActionExportAuditLog, "Exported audit logs to CSV: "+target); err != nil {
		return nil, err
	}
	return rows, nil
}
