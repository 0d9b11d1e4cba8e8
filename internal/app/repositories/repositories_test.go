package repositories

import (
	"testing"

	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%asha%", likePattern("asha"))
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
}

func TestDirectKey(t *testing.T) {
	assert.Equal(t, "3:9", DirectKey(9, 3))
	assert.Equal(t, DirectKey(9, 3), DirectKey(3, 9))
}

func TestCheckCapacity(t *testing.T) {
	two := 2

	tests := []struct {
		name     string
		status   models.RSVPStatus
		capacity *int
		others   int
		full     bool
	}{
		{"seat left", models.RSVPGoing, &two, 1, false},
		{"last seat taken", models.RSVPGoing, &two, 2, true},
		{"interested ignores capacity", models.RSVPInterested, &two, 5, false},
		{"not going ignores capacity", models.RSVPNotGoing, &two, 2, false},
		{"no capacity", models.RSVPGoing, nil, 500, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkCapacity(tt.status, tt.capacity, tt.others)
			if !tt.full {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrEventFull)
			assert.ErrorIs(t, err, apperrors.ErrConflict)
		})
	}
}
