package audit

import (
	"context"
	"encoding/json"
	"testing"

	"coursehub/database/dbtest"
	"coursehub/models"
	"coursehub/services/actor"
	"coursehub/services/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordStoresOutcome(t *testing.T) {
	db := dbtest.New(t)
	r := NewRecorder(db)
	a := actor.Actor{UserID: 4, Roles: []string{actor.RoleAdmin}}
	ctx := context.Background()

	r.Record(ctx, Entry{RequestID: "r1", Actor: a, Action: "progress.reset", EntityType: "enrollment", EntityID: 12,
		Details: map[string]interface{}{"scope": "COURSE"}}, nil)
	r.Record(ctx, Entry{RequestID: "r2", Actor: a, Action: "quiz.submit", EntityType: "quiz", EntityID: 3},
		apperr.BadRequest("Maximum attempts reached!"))

	var rows []models.AuditLog
	require.NoError(t, db.Order("id asc").Find(&rows).Error)
	require.Len(t, rows, 2)

	assert.Equal(t, OutcomeOK, rows[0].Outcome)
	assert.Equal(t, "ADMIN", rows[0].ActorRoles)
	var details map[string]string
	require.NoError(t, json.Unmarshal(rows[0].Details, &details))
	assert.Equal(t, "COURSE", details["scope"])

	assert.Equal(t, "BAD_REQUEST", rows[1].Outcome)
	assert.Contains(t, rows[1].Message, "Maximum attempts reached!")
}
