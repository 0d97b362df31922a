// Package audit records state-mutating actions for later inspection.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/fentz26/tickit/internal/models"
	"github.com/google/uuid"
)

// Outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeNoop    = "noop"
	OutcomeWarning = "warning"
)

// Sink persists audit entries.
type Sink interface {
	WriteAudit(e models.AuditEntry) error
}

// Recorder writes audit entries for a sink.
type Recorder struct {
	sink Sink
	now  func() time.Time
}

// NewRecorder creates a recorder writing to sink.
func NewRecorder(sink Sink) *Recorder {
	return &Recorder{sink: sink, now: time.Now}
}

// Record writes an entry for action. Inputs are hashed, never stored.
func (r *Recorder) Record(action string, inputs interface{}, outcome, taskID string) (models.AuditEntry, error) {
	e := models.AuditEntry{
		ID:         uuid.New().String(),
		Action:     action,
		InputsHash: HashInputs(inputs),
		Outcome:    outcome,
		TaskID:     taskID,
		Timestamp:  r.now().UTC(),
	}
	return e, r.sink.WriteAudit(e)
}

// HashInputs creates a SHA256 hash of the JSON form of inputs.
func HashInputs(inputs interface{}) string {
	data, err := json.Marshal(inputs)
	if err != nil {
		return "hash_error"
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
