package controller

import (
	"log"
	"sort"
	"time"

	"commit/models"
	"commit/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type AnalyticsController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewAnalyticsController(db *gorm.DB, logger *log.Logger) *AnalyticsController {
	return &AnalyticsController{
		DB:     db,
		Logger: logger,
	}
}

// activityWindowDays is the contribution-graph window: 12 weeks.
const activityWindowDays = 84

// Status colors matching the frontend design system; pass-through styling
// concern, not semantics.
var statusColors = map[string]string{
	models.DeliverableStatusCompleted:  "var(--color-success)",
	models.DeliverableStatusInProgress: "var(--color-primary)",
	models.DeliverableStatusAtRisk:     "var(--color-error)",
	models.DeliverableStatusUpcoming:   "var(--color-muted)",
}

// DailyActivity is one day-bucket of the contribution graph.
type DailyActivity struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// StatusDistribution is one slice of the deliverable-status ring chart.
type StatusDistribution struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
	Color  string `json:"color"`
}

// MemberWorkload summarizes one member's owned deliverables.
type MemberWorkload struct {
	MemberID         uuid.UUID `json:"member_id"`
	MemberName       string    `json:"member_name"`
	Role             string    `json:"role"`
	DeliverableCount int       `json:"deliverable_count"`
	AtRiskCount      int       `json:"at_risk_count"`
	CompletedCount   int       `json:"completed_count"`
}

// AnalyticsMetrics is the full computed metric set. It is recomputed from
// scratch on every load; there is no incremental path.
type AnalyticsMetrics struct {
	AgreementAdoptionPercent int `json:"agreement_adoption_percent"`
	TotalAgreements          int `json:"total_agreements"`
	FullySignedAgreements    int `json:"fully_signed_agreements"`

	TotalDeliverables             int                  `json:"total_deliverables"`
	AtRiskCount                   int                  `json:"at_risk_count"`
	CompletedCount                int                  `json:"completed_count"`
	InProgressCount               int                  `json:"in_progress_count"`
	UpcomingCount                 int                  `json:"upcoming_count"`
	DeliverableStatusDistribution []StatusDistribution `json:"deliverable_status_distribution"`

	TotalUpdates     int             `json:"total_updates"`
	UpdatesThisWeek  int             `json:"updates_this_week"`
	OpenHelpRequests int             `json:"open_help_requests"`
	DailyActivity    []DailyActivity `json:"daily_activity"`

	MemberWorkloads []MemberWorkload `json:"member_workloads"`
}

// RawAnalyticsData is the unprocessed input to ComputeMetrics.
type RawAnalyticsData struct {
	Agreements   []models.Agreement
	Signatures   []models.AgreementSignature
	Deliverables []models.Deliverable
	Updates      []models.Update
	TeamMembers  []models.TeamMember
}

// fetchRawData loads all five collections concurrently. The fan-out is
// purely to cut latency; computation happens afterwards on resolved data.
func (anc *AnalyticsController) fetchRawData(c *fiber.Ctx) (RawAnalyticsData, error) {
	var raw RawAnalyticsData

	g, ctx := errgroup.WithContext(c.Context())
	db := anc.DB.WithContext(ctx)

	g.Go(func() error { return db.Find(&raw.Agreements).Error })
	g.Go(func() error { return db.Find(&raw.Signatures).Error })
	g.Go(func() error { return db.Find(&raw.Deliverables).Error })
	g.Go(func() error { return db.Find(&raw.Updates).Error })
	g.Go(func() error { return db.Find(&raw.TeamMembers).Error })

	if err := g.Wait(); err != nil {
		return RawAnalyticsData{}, err
	}
	return raw, nil
}

// ComputeMetrics derives the full metric set from raw collection data. Pure
// and deterministic given identical input and the same now; the 84-day
// window is relative to now, so the same rows produce different histograms
// on different days — expected, not a bug.
func ComputeMetrics(raw RawAnalyticsData, now time.Time) AnalyticsMetrics {
	// Agreement adoption: among active agreements, the share whose
	// signature count covers the current roster
	sigsByAgreement := make(map[uuid.UUID]int)
	for _, sig := range raw.Signatures {
		sigsByAgreement[sig.AgreementID]++
	}

	totalMembers := len(raw.TeamMembers)
	activeAgreements := 0
	fullySigned := 0
	for _, a := range raw.Agreements {
		if a.Status != models.AgreementStatusActive {
			continue
		}
		activeAgreements++
		if sigsByAgreement[a.ID] >= totalMembers {
			fullySigned++
		}
	}
	adoptionPercent := 0
	if activeAgreements > 0 {
		adoptionPercent = int(float64(fullySigned)/float64(activeAgreements)*100 + 0.5)
	}

	// Deliverable health
	statusCounts := make(map[string]int)
	for _, d := range raw.Deliverables {
		statusCounts[d.Status]++
	}
	distribution := []StatusDistribution{
		{Status: "Completed", Count: statusCounts[models.DeliverableStatusCompleted], Color: statusColors[models.DeliverableStatusCompleted]},
		{Status: "In Progress", Count: statusCounts[models.DeliverableStatusInProgress], Color: statusColors[models.DeliverableStatusInProgress]},
		{Status: "At Risk", Count: statusCounts[models.DeliverableStatusAtRisk], Color: statusColors[models.DeliverableStatusAtRisk]},
		{Status: "Upcoming", Count: statusCounts[models.DeliverableStatusUpcoming], Color: statusColors[models.DeliverableStatusUpcoming]},
	}

	// Update activity and help requests
	oneWeekAgo := now.AddDate(0, 0, -7)
	updatesThisWeek := 0
	openHelpRequests := 0
	for _, u := range raw.Updates {
		if u.CreatedAt.After(oneWeekAgo) {
			updatesThisWeek++
		}
		if u.IsHelpRequest {
			openHelpRequests++
		}
	}

	// Daily activity over the contribution-graph window. An event is an
	// update, a signature, a deliverable creation, or a deliverable update
	// whose updated_at differs from created_at (so a fresh row is not
	// double-counted).
	activityByDate := make(map[string]int)
	addActivity := func(t time.Time) {
		activityByDate[t.UTC().Format("2006-01-02")]++
	}
	for _, u := range raw.Updates {
		addActivity(u.CreatedAt)
	}
	for _, s := range raw.Signatures {
		addActivity(s.SignedAt)
	}
	for _, d := range raw.Deliverables {
		addActivity(d.CreatedAt)
		if !d.UpdatedAt.Equal(d.CreatedAt) {
			addActivity(d.UpdatedAt)
		}
	}

	dailyActivity := make([]DailyActivity, 0, activityWindowDays)
	for i := activityWindowDays - 1; i >= 0; i-- {
		date := now.UTC().AddDate(0, 0, -i).Format("2006-01-02")
		dailyActivity = append(dailyActivity, DailyActivity{
			Date:  date,
			Count: activityByDate[date],
		})
	}

	// Member workloads, heaviest first
	workloads := make([]MemberWorkload, 0, len(raw.TeamMembers))
	for _, member := range raw.TeamMembers {
		w := MemberWorkload{
			MemberID:   member.ID,
			MemberName: member.Name,
			Role:       member.Role,
		}
		for _, d := range raw.Deliverables {
			if d.OwnerID == nil || *d.OwnerID != member.ID {
				continue
			}
			w.DeliverableCount++
			switch d.Status {
			case models.DeliverableStatusAtRisk:
				w.AtRiskCount++
			case models.DeliverableStatusCompleted:
				w.CompletedCount++
			}
		}
		workloads = append(workloads, w)
	}
	sort.SliceStable(workloads, func(i, j int) bool {
		return workloads[i].DeliverableCount > workloads[j].DeliverableCount
	})

	return AnalyticsMetrics{
		AgreementAdoptionPercent:      adoptionPercent,
		TotalAgreements:               activeAgreements,
		FullySignedAgreements:         fullySigned,
		TotalDeliverables:             len(raw.Deliverables),
		AtRiskCount:                   statusCounts[models.DeliverableStatusAtRisk],
		CompletedCount:                statusCounts[models.DeliverableStatusCompleted],
		InProgressCount:               statusCounts[models.DeliverableStatusInProgress],
		UpcomingCount:                 statusCounts[models.DeliverableStatusUpcoming],
		DeliverableStatusDistribution: distribution,
		TotalUpdates:                  len(raw.Updates),
		UpdatesThisWeek:               updatesThisWeek,
		OpenHelpRequests:              openHelpRequests,
		DailyActivity:                 dailyActivity,
		MemberWorkloads:               workloads,
	}
}

// GetAnalytics returns the full computed metric set.
func (anc *AnalyticsController) GetAnalytics(c *fiber.Ctx) error {
	raw, err := anc.fetchRawData(c)
	if err != nil {
		anc.Logger.Printf("Failed to fetch analytics data: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load analytics", err)
	}

	return c.JSON(utils.SuccessResponse(ComputeMetrics(raw, time.Now())))
}
