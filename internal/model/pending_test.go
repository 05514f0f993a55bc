package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExerciseKindIcon(t *testing.T) {
	assert.Equal(t, "fitness_center", KindStrength.Icon())
	assert.Equal(t, "directions_run", KindCardio.Icon())
	// Unknown kinds fall back to the strength icon
	assert.Equal(t, "fitness_center", ExerciseKind("yoga").Icon())
}

func TestExerciseKindValid(t *testing.T) {
	assert.True(t, KindStrength.Valid())
	assert.True(t, KindCardio.Valid())
	assert.False(t, ExerciseKind("").Valid())
	assert.False(t, ExerciseKind("stretching").Valid())
}

func TestPendingExerciseValidate(t *testing.T) {
	ex := PendingExercise{Name: "Bench Press", Kind: KindStrength}
	assert.NoError(t, ex.Validate())

	ex.Name = ""
	assert.ErrorIs(t, ex.Validate(), ErrEmptyName)

	ex.Name = "Bench Press"
	ex.Kind = "bogus"
	assert.ErrorIs(t, ex.Validate(), ErrInvalidKind)
}

func TestPendingDeletionValidate(t *testing.T) {
	d := PendingDeletion{TargetID: "remote-1"}
	assert.NoError(t, d.Validate())

	d.TargetID = ""
	assert.ErrorIs(t, d.Validate(), ErrMissingTarget)
}

func TestPendingSessionValidate(t *testing.T) {
	s := PendingSession{OwnerID: "user-1"}
	assert.NoError(t, s.Validate())

	s.OwnerID = ""
	assert.ErrorIs(t, s.Validate(), ErrMissingOwner)
}

func TestPendingSetValidate(t *testing.T) {
	set := PendingSet{SetNumber: 1, Reps: 8, WeightKg: 60}
	assert.NoError(t, set.Validate())

	set.SetNumber = 0
	assert.ErrorIs(t, set.Validate(), ErrInvalidSetNum)

	set.SetNumber = 1
	set.WeightKg = -1
	assert.ErrorIs(t, set.Validate(), ErrNegativeWeight)
}
