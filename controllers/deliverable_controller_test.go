package controller

import (
	"errors"
	"testing"

	"commit/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func edge(from, to uuid.UUID) models.DeliverableDependency {
	return models.DeliverableDependency{ID: uuid.New(), DeliverableID: from, DependsOnID: to}
}

func TestBuildDeliverableViews(t *testing.T) {
	alice := testMember("Alice")
	a := models.Deliverable{ID: uuid.New(), Title: "API design", OwnerID: &alice.ID}
	b := models.Deliverable{ID: uuid.New(), Title: "Implementation"}

	views := buildDeliverableViews(
		[]models.Deliverable{a, b},
		[]models.DeliverableDependency{edge(b.ID, a.ID)},
		[]models.TeamMember{alice},
	)
	require.Len(t, views, 2)

	assert.Equal(t, "Alice", views[0].OwnerName)
	assert.Empty(t, views[0].DependencyIDs)
	assert.NotNil(t, views[0].DependencyIDs) // empty slice, not null in JSON

	assert.Equal(t, "Unassigned", views[1].OwnerName)
	assert.Equal(t, []uuid.UUID{a.ID}, views[1].DependencyIDs)
}

func TestOwnerDisplayName(t *testing.T) {
	alice := testMember("Alice")
	names := map[uuid.UUID]string{alice.ID: alice.Name}

	assert.Equal(t, "Unassigned", ownerDisplayName(nil, names))
	assert.Equal(t, "Alice", ownerDisplayName(&alice.ID, names))

	departed := uuid.New()
	assert.Equal(t, "Unknown", ownerDisplayName(&departed, names))
}

func TestAttachDependencies(t *testing.T) {
	edgeFailure := errors.New("edge insert failed")
	rollbackFailure := errors.New("compensating delete failed")

	t.Run("edges succeed", func(t *testing.T) {
		removed := 0
		err, rollbackErr := attachDependencies(
			func() error { return nil },
			func() error { removed++; return nil },
		)
		assert.NoError(t, err)
		assert.NoError(t, rollbackErr)
		assert.Zero(t, removed, "no compensation on success")
	})

	t.Run("edges fail and rollback succeeds", func(t *testing.T) {
		removed := 0
		err, rollbackErr := attachDependencies(
			func() error { return edgeFailure },
			func() error { removed++; return nil },
		)
		assert.ErrorIs(t, err, edgeFailure)
		assert.NoError(t, rollbackErr)
		assert.Equal(t, 1, removed)
	})

	t.Run("edges fail and rollback fails", func(t *testing.T) {
		// The operation must still report the edge failure
		err, rollbackErr := attachDependencies(
			func() error { return edgeFailure },
			func() error { return rollbackFailure },
		)
		assert.ErrorIs(t, err, edgeFailure)
		assert.ErrorIs(t, rollbackErr, rollbackFailure)
	})
}

func TestParseUUIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	ids, err := parseUUIDs([]string{a.String(), b.String()})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)

	ids, err = parseUUIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = parseUUIDs([]string{a.String(), "not-a-uuid"})
	assert.Error(t, err)
}

func TestWouldCreateCycle(t *testing.T) {
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	t.Run("direct cycle", func(t *testing.T) {
		edges := []models.DeliverableDependency{edge(a, b)}
		assert.True(t, wouldCreateCycle(edges, b, a))
	})

	t.Run("transitive cycle", func(t *testing.T) {
		edges := []models.DeliverableDependency{edge(a, b), edge(b, c)}
		assert.True(t, wouldCreateCycle(edges, c, a))
	})

	t.Run("diamond is not a cycle", func(t *testing.T) {
		// a→b, a→c, b→d, c→d: adding a→d keeps the graph acyclic
		edges := []models.DeliverableDependency{edge(a, b), edge(a, c), edge(b, d), edge(c, d)}
		assert.False(t, wouldCreateCycle(edges, a, d))
	})

	t.Run("unrelated edge", func(t *testing.T) {
		edges := []models.DeliverableDependency{edge(a, b)}
		assert.False(t, wouldCreateCycle(edges, c, d))
	})

	t.Run("self edge", func(t *testing.T) {
		assert.True(t, wouldCreateCycle(nil, a, a))
	})

	t.Run("empty graph", func(t *testing.T) {
		assert.False(t, wouldCreateCycle(nil, a, b))
	})
}
