package schema

import (
	"time"

	"gorm.io/datatypes"
)

// SagaStatus represents the status of a sync saga
type SagaStatus string

const (
	// SagaStatusRunning indicates the saga steps are being executed
	SagaStatusRunning SagaStatus = "running"
	// SagaStatusCompleted indicates every step succeeded
	SagaStatusCompleted SagaStatus = "completed"
	// SagaStatusFailed indicates a step failed, the saga resumes at NextStep
	SagaStatusFailed SagaStatus = "failed"
	// SagaStatusAbandoned indicates the saga exceeded its attempts
	SagaStatusAbandoned SagaStatus = "abandoned"
)

// SyncSaga represents the sync_sagas table
// It journals the data API mutations applied for one chain event
type SyncSaga struct {
	// ID is a ULID
	ID string `gorm:"column:id;primaryKey;type:text"`

	// Fingerprint is the sha256 of the canonical JSON of the event
	Fingerprint string `gorm:"column:fingerprint;not null;uniqueIndex;type:text"`

	// Plan is the name of the mutation plan
	Plan string `gorm:"column:plan;not null;type:text"`

	// Event is the chain event being applied, including the resolved seller
	Event datatypes.JSON `gorm:"column:event;not null;type:jsonb"`

	// NFTID is the data API record id, set once known
	NFTID *string `gorm:"column:nft_id;type:text"`

	// NextStep is the index of the first step not yet applied
	NextStep int `gorm:"column:next_step;not null;default:0"`

	Status SagaStatus `gorm:"column:status;not null;type:text;index"`

	// Attempts counts resumptions
	Attempts int `gorm:"column:attempts;not null;default:0"`

	LastError *string `gorm:"column:last_error;type:text"`

	// RollbackHints holds the record state observed before the first mutation
	RollbackHints datatypes.JSON `gorm:"column:rollback_hints;type:jsonb"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the SyncSaga model
func (SyncSaga) TableName() string {
	return "sync_sagas"
}
