package controller

import (
	"testing"
	"time"

	"commit/models"
	"commit/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMember(name string) models.TeamMember {
	return models.TeamMember{ID: uuid.New(), Name: name, Role: "member"}
}

func TestComputeMetricsAdoption(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	alice := testMember("Alice")
	bob := testMember("Bob")

	fullySigned := models.Agreement{ID: uuid.New(), Status: models.AgreementStatusActive}
	halfSigned := models.Agreement{ID: uuid.New(), Status: models.AgreementStatusActive}
	pending := models.Agreement{ID: uuid.New(), Status: models.AgreementStatusPending}

	raw := RawAnalyticsData{
		TeamMembers: []models.TeamMember{alice, bob},
		Agreements:  []models.Agreement{fullySigned, halfSigned, pending},
		Signatures: []models.AgreementSignature{
			{AgreementID: fullySigned.ID, MemberID: alice.ID, SignedAt: now},
			{AgreementID: fullySigned.ID, MemberID: bob.ID, SignedAt: now},
			{AgreementID: halfSigned.ID, MemberID: alice.ID, SignedAt: now},
			// the pending agreement's signatures never count toward adoption
			{AgreementID: pending.ID, MemberID: alice.ID, SignedAt: now},
			{AgreementID: pending.ID, MemberID: bob.ID, SignedAt: now},
		},
	}

	metrics := ComputeMetrics(raw, now)
	assert.Equal(t, 2, metrics.TotalAgreements)
	assert.Equal(t, 1, metrics.FullySignedAgreements)
	assert.Equal(t, 50, metrics.AgreementAdoptionPercent)
}

func TestComputeMetricsAdoptionNoActiveAgreements(t *testing.T) {
	now := time.Now()
	raw := RawAnalyticsData{
		TeamMembers: []models.TeamMember{testMember("Alice")},
		Agreements:  []models.Agreement{{ID: uuid.New(), Status: models.AgreementStatusPending}},
	}

	metrics := ComputeMetrics(raw, now)
	assert.Zero(t, metrics.AgreementAdoptionPercent)
	assert.Zero(t, metrics.TotalAgreements)
}

func TestComputeMetricsDailyActivityWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 23, 30, 0, 0, time.UTC)

	createdThen := now.AddDate(0, 0, -10)
	deliverable := models.Deliverable{
		ID:        uuid.New(),
		Status:    models.DeliverableStatusInProgress,
		CreatedAt: createdThen,
		UpdatedAt: now.AddDate(0, 0, -2), // touched later: counts twice
	}
	untouched := models.Deliverable{
		ID:        uuid.New(),
		Status:    models.DeliverableStatusUpcoming,
		CreatedAt: createdThen,
		UpdatedAt: createdThen, // never touched: counts once
	}

	raw := RawAnalyticsData{
		Deliverables: []models.Deliverable{deliverable, untouched},
		Updates: []models.Update{
			{ID: uuid.New(), CreatedAt: now.AddDate(0, 0, -2)},
		},
		Signatures: []models.AgreementSignature{
			{SignedAt: now.AddDate(0, 0, -100)}, // outside the window, dropped
		},
	}

	metrics := ComputeMetrics(raw, now)
	require.Len(t, metrics.DailyActivity, activityWindowDays)

	// Buckets are consecutive calendar days ending today
	assert.Equal(t, now.UTC().Format("2006-01-02"), metrics.DailyActivity[activityWindowDays-1].Date)
	for i := 1; i < len(metrics.DailyActivity); i++ {
		prev, err := utils.ParseDateOnly(metrics.DailyActivity[i-1].Date)
		require.NoError(t, err)
		cur, err := utils.ParseDateOnly(metrics.DailyActivity[i].Date)
		require.NoError(t, err)
		assert.Equal(t, 24*time.Hour, cur.Sub(prev))
	}

	byDate := make(map[string]int)
	for _, day := range metrics.DailyActivity {
		byDate[day.Date] = day.Count
	}
	assert.Equal(t, 2, byDate[now.AddDate(0, 0, -10).Format("2006-01-02")]) // two creations
	assert.Equal(t, 2, byDate[now.AddDate(0, 0, -2).Format("2006-01-02")])  // update post + deliverable touch
}

func TestComputeMetricsDeterministic(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	alice := testMember("Alice")
	raw := RawAnalyticsData{
		TeamMembers: []models.TeamMember{alice},
		Deliverables: []models.Deliverable{
			{ID: uuid.New(), OwnerID: &alice.ID, Status: models.DeliverableStatusAtRisk, CreatedAt: now},
		},
		Updates: []models.Update{
			{ID: uuid.New(), IsHelpRequest: true, CreatedAt: now.AddDate(0, 0, -1)},
		},
	}

	first := ComputeMetrics(raw, now)
	second := ComputeMetrics(raw, now)
	assert.Equal(t, first, second)
}

func TestComputeMetricsUpdateCounters(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	raw := RawAnalyticsData{
		Updates: []models.Update{
			{ID: uuid.New(), CreatedAt: now.AddDate(0, 0, -1)},
			{ID: uuid.New(), CreatedAt: now.AddDate(0, 0, -3), IsHelpRequest: true},
			{ID: uuid.New(), CreatedAt: now.AddDate(0, 0, -20)},
		},
	}

	metrics := ComputeMetrics(raw, now)
	assert.Equal(t, 3, metrics.TotalUpdates)
	assert.Equal(t, 2, metrics.UpdatesThisWeek)
	assert.Equal(t, 1, metrics.OpenHelpRequests)
}

func TestComputeMetricsWorkloadsSortedByCount(t *testing.T) {
	now := time.Now()
	light := testMember("Light")
	heavy := testMember("Heavy")

	deliverableFor := func(owner uuid.UUID, status string) models.Deliverable {
		return models.Deliverable{ID: uuid.New(), OwnerID: &owner, Status: status, CreatedAt: now, UpdatedAt: now}
	}
	raw := RawAnalyticsData{
		TeamMembers: []models.TeamMember{light, heavy},
		Deliverables: []models.Deliverable{
			deliverableFor(light.ID, models.DeliverableStatusCompleted),
			deliverableFor(heavy.ID, models.DeliverableStatusAtRisk),
			deliverableFor(heavy.ID, models.DeliverableStatusInProgress),
			deliverableFor(heavy.ID, models.DeliverableStatusCompleted),
			{ID: uuid.New(), Status: models.DeliverableStatusUpcoming, CreatedAt: now, UpdatedAt: now}, // unowned
		},
	}

	metrics := ComputeMetrics(raw, now)
	require.Len(t, metrics.MemberWorkloads, 2)
	assert.Equal(t, "Heavy", metrics.MemberWorkloads[0].MemberName)
	assert.Equal(t, 3, metrics.MemberWorkloads[0].DeliverableCount)
	assert.Equal(t, 1, metrics.MemberWorkloads[0].AtRiskCount)
	assert.Equal(t, 1, metrics.MemberWorkloads[0].CompletedCount)
	assert.Equal(t, 1, metrics.MemberWorkloads[1].DeliverableCount)
}

func TestComputeMetricsStatusDistribution(t *testing.T) {
	now := time.Now()
	raw := RawAnalyticsData{
		Deliverables: []models.Deliverable{
			{ID: uuid.New(), Status: models.DeliverableStatusCompleted, CreatedAt: now, UpdatedAt: now},
			{ID: uuid.New(), Status: models.DeliverableStatusCompleted, CreatedAt: now, UpdatedAt: now},
			{ID: uuid.New(), Status: models.DeliverableStatusAtRisk, CreatedAt: now, UpdatedAt: now},
		},
	}

	metrics := ComputeMetrics(raw, now)
	assert.Equal(t, 3, metrics.TotalDeliverables)
	require.Len(t, metrics.DeliverableStatusDistribution, 4)

	counts := make(map[string]int)
	for _, slice := range metrics.DeliverableStatusDistribution {
		counts[slice.Status] = slice.Count
		assert.NotEmpty(t, slice.Color)
	}
	assert.Equal(t, 2, counts["Completed"])
	assert.Equal(t, 1, counts["At Risk"])
	assert.Zero(t, counts["In Progress"])
	assert.Zero(t, counts["Upcoming"])
}
