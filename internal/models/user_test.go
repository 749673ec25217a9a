package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInitialsCountsRunes(t *testing.T) {
	require.Equal(t, "AL", Initials(User{ID: "u1", Name: "Ada Lovelace"}))
	require.Equal(t, "ÉZ", Initials(User{ID: "u2", Name: "Émile Zola"}))
	require.Equal(t, "Ö", Initials(User{ID: "u3", Username: "önder"}))
}

func TestUserRoundTripKeepsUndeclaredFields(t *testing.T) {
	var user User
	require.NoError(t, json.Unmarshal([]byte(`{"id":"u1","role":"student","initials":"AJ","avatar":{"color":"red"}}`), &user))
	require.Equal(t, RoleStudent, user.Role)
	require.Len(t, user.Extra, 2)

	encoded, err := json.Marshal(user)
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"u1","role":"student","initials":"AJ","avatar":{"color":"red"}}`, string(encoded))
}

func TestSubmittedPercentCountsAcknowledged(t *testing.T) {
	stamp := time.Date(2025, time.October, 1, 8, 0, 0, 0, time.UTC)
	assignment := Assignment{
		ID:         "a1",
		AssignedTo: []string{"s1", "s2", "s3"},
		Submissions: map[string]Submission{
			"s1": {Acknowledged: true, Timestamp: &stamp},
			"s2": NewSubmittedRecord("s2", stamp),
			"s3": NewPendingSubmission(),
		},
	}

	require.Equal(t, 67, assignment.SubmittedPercent())
	require.NoError(t, assignment.CheckInvariants())
}
