package controller

import (
	"testing"
	"time"

	"commit/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAgreementViews(t *testing.T) {
	alice := testMember("Alice")
	bob := testMember("Bob")
	members := []models.TeamMember{alice, bob}

	signed := models.Agreement{ID: uuid.New(), Title: "Code review SLA", CreatedBy: &alice.ID}
	unsigned := models.Agreement{ID: uuid.New(), Title: "Async standups"}

	signatures := []models.AgreementSignature{
		{ID: uuid.New(), AgreementID: signed.ID, MemberID: alice.ID},
		{ID: uuid.New(), AgreementID: signed.ID, MemberID: bob.ID},
	}

	views := buildAgreementViews([]models.Agreement{signed, unsigned}, signatures, members)
	require.Len(t, views, 2)

	assert.Equal(t, 2, views[0].SignedBy)
	assert.Equal(t, 2, views[0].TotalMembers)
	assert.Equal(t, "Alice", views[0].CreatorName)

	assert.Zero(t, views[1].SignedBy)
	assert.Equal(t, 2, views[1].TotalMembers)
	assert.Equal(t, "Unknown", views[1].CreatorName)
}

func TestBuildAgreementViewsUnresolvedCreator(t *testing.T) {
	departed := uuid.New()
	agreement := models.Agreement{ID: uuid.New(), CreatedBy: &departed}

	views := buildAgreementViews([]models.Agreement{agreement}, nil, []models.TeamMember{testMember("Alice")})
	require.Len(t, views, 1)
	assert.Equal(t, "Unknown", views[0].CreatorName)
	assert.Equal(t, 1, views[0].TotalMembers)
}

func TestBuildSignatureRoster(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	alice := testMember("Alice")
	bob := testMember("Bob")

	sig := models.AgreementSignature{
		ID:       uuid.New(),
		MemberID: alice.ID,
		SignedAt: now.Add(-2 * time.Hour),
	}

	roster := buildSignatureRoster([]models.TeamMember{alice, bob}, []models.AgreementSignature{sig}, now)
	require.Len(t, roster, 2)

	// Signed member: signature id wins, timestamp is populated
	assert.Equal(t, sig.ID, roster[0].ID)
	assert.Equal(t, alice.ID, roster[0].MemberID)
	assert.True(t, roster[0].Signed)
	require.NotNil(t, roster[0].Timestamp)
	assert.Equal(t, "2 hours ago", *roster[0].Timestamp)

	// Unsigned member still appears, keyed by their own id
	assert.Equal(t, bob.ID, roster[1].ID)
	assert.False(t, roster[1].Signed)
	assert.Nil(t, roster[1].Timestamp)
}

func TestBuildSignatureRosterEmptyTeam(t *testing.T) {
	roster := buildSignatureRoster(nil, nil, time.Now())
	assert.Empty(t, roster)
}

func TestAgreementActivated(t *testing.T) {
	tests := []struct {
		name         string
		signedCount  int64
		totalMembers int64
		want         bool
	}{
		{"below threshold", 2, 3, false},
		{"at threshold", 3, 3, true},
		{"above threshold after roster shrinks", 4, 3, true},
		{"single member team", 1, 1, true},
		{"empty roster never activates", 0, 0, false},
		{"stray signatures with empty roster", 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, agreementActivated(tt.signedCount, tt.totalMembers))
		})
	}
}
