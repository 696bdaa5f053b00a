package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"caixa/internal/core"
	applog "caixa/internal/log"
)

// ActivityService owns the append-only audit trail. Entries are only
// written for successful mutations; denied or failed operations leave
// no trace here.
type ActivityService struct {
	repo   ActivityLogRepository
	logger *applog.Logger
	now    func() time.Time
}

func NewActivityService(repo ActivityLogRepository, logger *applog.Logger) *ActivityService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &ActivityService{
		repo:   repo,
		logger: logger.WithComponent(applog.ComponentActivity),
		now:    time.Now,
	}
}

// Record appends an audit entry for the acting session. The entry's
// company is the actor's company, falling back to the master sentinel.
func (s *ActivityService) Record(ctx context.Context, sess core.Session, action core.Action, entity, details string) error {
	entry := core.ActivityLog{
		ID:        uuid.NewString(),
		UserID:    sess.UserID,
		UserName:  sess.UserName,
		Action:    action,
		Entity:    entity,
		Details:   details,
		Timestamp: s.now(),
		CompanyID: sess.LogCompanyID(),
	}
	if err := s.repo.AppendActivity(ctx, entry); err != nil {
		return fmt.Errorf("append activity: %w", err)
	}

	s.logger.InfoContext(ctx, "Activity recorded",
		applog.FieldUserID, entry.UserID,
		applog.FieldOperation, string(action),
		applog.FieldEntity, entity,
		applog.FieldCompanyID, entry.CompanyID)
	return nil
}

// ActivityFilter narrows List results. Zero values match everything.
type ActivityFilter struct {
	Action core.Action
	Entity string
	Search string // matches details or user name, case-insensitive
}

func (f ActivityFilter) matches(entry core.ActivityLog) bool {
	if f.Action != "" && entry.Action != f.Action {
		return false
	}
	if f.Entity != "" && entry.Entity != f.Entity {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(entry.Details), needle) &&
			!strings.Contains(strings.ToLower(entry.UserName), needle) {
			return false
		}
	}
	return true
}

// List returns the audit trail visible to the session: master sees
// every entry, everyone else only their own company's.
func (s *ActivityService) List(ctx context.Context, sess core.Session, filter ActivityFilter) ([]core.ActivityLog, error) {
	if err := sess.Check(core.PermView); err != nil {
		return nil, err
	}

	var (
		entries []core.ActivityLog
		err     error
	)
	if sess.IsMaster() {
		entries, err = s.repo.ListActivities(ctx)
	} else {
		entries, err = s.repo.ListActivitiesByCompany(ctx, sess.LogCompanyID())
	}
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	filtered := entries[:0:0]
	for _, entry := range entries {
		if filter.matches(entry) {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}

// ExportCSV renders the session-visible audit trail as CSV. Every
// field is double-quoted, which is why this does not go through
// encoding/csv (that package only quotes when forced to).
func (s *ActivityService) ExportCSV(ctx context.Context, sess core.Session) (filename string, data []byte, err error) {
	entries, err := s.List(ctx, sess, ActivityFilter{})
	if err != nil {
		return "", nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("Timestamp,User,Action,Entity,Details,CompanyID\n")
	for _, entry := range entries {
		fields := []string{
			entry.Timestamp.Format(time.RFC3339),
			entry.UserName,
			string(entry.Action),
			entry.Entity,
			entry.Details,
			entry.CompanyID,
		}
		for i, f := range fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
			buf.WriteByte('"')
		}
		buf.WriteByte('\n')
	}

	if err := s.Record(ctx, sess, core.ActionExport, core.EntityActivityLog,
		fmt.Sprintf("Exported %d activity log entries", len(entries))); err != nil {
		return "", nil, err
	}

	filename = fmt.Sprintf("activity_logs_%s.csv", s.now().Format(time.RFC3339))
	return filename, buf.Bytes(), nil
}
