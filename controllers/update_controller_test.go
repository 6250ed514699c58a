package controller

import (
	"testing"
	"time"

	"commit/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateViews(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	alice := testMember("Alice")
	bob := testMember("Bob")
	deliverable := models.Deliverable{ID: uuid.New(), Title: "API design"}

	linked := models.Update{
		ID:            uuid.New(),
		Content:       "Shipped the first draft",
		AuthorID:      &alice.ID,
		DeliverableID: &deliverable.ID,
		CreatedAt:     now.Add(-30 * time.Minute),
	}
	orphan := models.Update{
		ID:        uuid.New(),
		Content:   "General note",
		CreatedAt: now.Add(-3 * 24 * time.Hour),
	}

	reactions := []models.UpdateReaction{
		{UpdateID: linked.ID, MemberID: alice.ID, ReactionType: "thumbs_up"},
		{UpdateID: linked.ID, MemberID: bob.ID, ReactionType: "thumbs_up"},
		{UpdateID: linked.ID, MemberID: bob.ID, ReactionType: "celebrate"},
	}

	views := buildUpdateViews(
		[]models.Update{linked, orphan},
		[]models.TeamMember{alice, bob},
		[]models.Deliverable{deliverable},
		reactions,
		now,
	)
	require.Len(t, views, 2)

	assert.Equal(t, "Alice", views[0].AuthorName)
	assert.Equal(t, "API design", views[0].DeliverableTitle)
	assert.Equal(t, "30 minutes ago", views[0].TimeAgo)
	assert.Equal(t, map[string]int{"thumbs_up": 2, "celebrate": 1}, views[0].Reactions)

	// Authorless update falls back to a placeholder and an empty tally
	assert.Equal(t, "Unknown", views[1].AuthorName)
	assert.Empty(t, views[1].DeliverableTitle)
	assert.Equal(t, "3 days ago", views[1].TimeAgo)
	assert.NotNil(t, views[1].Reactions)
	assert.Empty(t, views[1].Reactions)
}
