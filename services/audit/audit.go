// Package audit records who changed what, for every state-changing call.
package audit

import (
	"context"
	"encoding/json"

	"coursehub/models"
	"coursehub/services/actor"
	"coursehub/services/apperr"
	"coursehub/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const OutcomeOK = "OK"

// Entry is one audited action. Details is marshalled to JSON.
type Entry struct {
	RequestID  string
	Actor      actor.Actor
	Action     string
	EntityType string
	EntityID   uint
	Details    interface{}
}

type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Record logs the entry with its outcome and stores it. err is the result of
// the audited call; a nil err records OK. Storage failures are logged, never
// returned.
func (r *Recorder) Record(ctx context.Context, e Entry, err error) {
	outcome, message := OutcomeOK, ""
	if err != nil {
		outcome, message = string(apperr.KindOf(err)), err.Error()
	}

	log := utils.Logger.With(
		"request_id", e.RequestID,
		"actor_id", e.Actor.UserID,
		"actor_roles", e.Actor.String(),
		"action", e.Action,
		"entity_type", e.EntityType,
		"entity_id", e.EntityID,
		"outcome", outcome,
	)
	if err != nil {
		log.Warn("audit", "error", message)
	} else {
		log.Info("audit")
	}

	row := models.AuditLog{
		RequestID:  e.RequestID,
		ActorID:    e.Actor.UserID,
		ActorRoles: e.Actor.String(),
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Outcome:    outcome,
		Message:    message,
	}
	if e.Details != nil {
		if raw, mErr := json.Marshal(e.Details); mErr == nil {
			row.Details = datatypes.JSON(raw)
		}
	}
	if dbErr := r.db.WithContext(ctx).Create(&row).Error; dbErr != nil {
		utils.Logger.Error("Failed to store audit log", "action", e.Action, "error", dbErr)
	}
}
