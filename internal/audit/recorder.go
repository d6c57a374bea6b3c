package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendaro/payout-core/pkg/db/models"
	"github.com/vendaro/payout-core/pkg/logger"
	"github.com/vendaro/payout-core/pkg/types"
)

// Entry is one state change worth remembering: who did what to which record.
type Entry struct {
	StoreID      uuid.UUID
	ActorID      uuid.UUID
	ActorRole    string
	Action       string
	SubjectType  string
	SubjectID    uuid.UUID
	BeforeStatus *string
	AfterStatus  *string
	Context      types.JSONMap
}

// Recorder appends audit records. A failed write is logged and swallowed:
// losing an audit row must never roll back the business transaction it
// describes.
type Recorder struct {
	db   *gorm.DB
	logg *logger.Logger
}

// NewRecorder wires an audit recorder with the required dependencies.
func NewRecorder(db *gorm.DB, logg *logger.Logger) (*Recorder, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Recorder{db: db, logg: logg}, nil
}

// Record appends the entry. When tx is non-nil the row joins the caller's
// transaction; either way errors are reported through the logger only.
func (r *Recorder) Record(ctx context.Context, tx *gorm.DB, entry Entry) {
	conn := r.db
	if tx != nil {
		conn = tx
	}

	record := models.AuditRecord{
		ID:           uuid.New(),
		StoreID:      entry.StoreID,
		ActorID:      entry.ActorID,
		ActorRole:    entry.ActorRole,
		Action:       entry.Action,
		SubjectType:  entry.SubjectType,
		SubjectID:    entry.SubjectID,
		BeforeStatus: entry.BeforeStatus,
		AfterStatus:  entry.AfterStatus,
		Context:      entry.Context,
	}
	if err := conn.WithContext(ctx).Create(&record).Error; err != nil {
		logCtx := r.logg.WithFields(ctx, map[string]any{
			"action":       entry.Action,
			"subject_type": entry.SubjectType,
			"subject_id":   entry.SubjectID.String(),
		})
		r.logg.Error(logCtx, "audit record write failed", err)
	}
}

// ListForSubject returns the trail for one record, oldest first.
func (r *Recorder) ListForSubject(ctx context.Context, storeID uuid.UUID, subjectType string, subjectID uuid.UUID) ([]models.AuditRecord, error) {
	var records []models.AuditRecord
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND subject_type = ? AND subject_id = ?", storeID, subjectType, subjectID).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
