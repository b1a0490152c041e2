package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"kaizen-server/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(&entities.Kaizen{}, &entities.ActionPlan{}); err != nil {
		return err
	}
	log.Info().Msg("applied kaizen schema migrations")
	return nil
}

// SeedSampleData inserts deterministic demo records when the store is empty.
// Intended for development environments only; callers gate it behind config.
func SeedSampleData(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&entities.Kaizen{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	kaizens := []entities.Kaizen{
		{
			KaizenNumber:               "KZ-000001",
			TypeName:                   "Quick",
			DepartmentName:             "Manufacturing",
			ApplicationArea:            "Assembly Line A",
			Leader:                     "John Smith",
			Team:                       ptr("Team Alpha"),
			SQDCEPCategory:             "C",
			Problem:                    "High setup time on machine X causing production delays",
			ProblemSketch:              ptr("Current setup takes 30 minutes with manual tool changes. Operators struggle with heavy tooling and complex alignment procedures."),
			ImprovementFutureSituation: ptr("Implement quick-change tooling system with pre-aligned fixtures. Target setup time: 5 minutes."),
			CheckResults:               ptr("Setup time reduced from 30min to 5min. Increased line efficiency by 15%. Zero alignment issues."),
			CostSummary:                ptr("Investment: $500 for quick-change fixtures and training"),
			BenefitSummary:             ptr("Savings: $2000/month in reduced downtime and increased throughput"),
			CBRatioSummary:             ptr("ROI: 4x return in first month. Payback period: 2 weeks"),
			Standardization:            ptr("Quick-change procedure documented in SOP-123. All operators trained and certified."),
			Status:                     "Completed",
			SubmittedDate:              ptr("2024-01-15T00:00:00"),
			CompletedDate:              ptr("2024-02-20T00:00:00"),
			CreatedBy:                  "john.smith@volvo.com",
		},
		{
			KaizenNumber:            "KZ-000002",
			TypeName:                "Standard",
			DepartmentName:          "Quality",
			ApplicationArea:         "Inspection Station",
			Leader:                  "Sarah Wilson",
			Team:                    ptr("Team Beta"),
			SQDCEPCategory:          "Q",
			Problem:                 "High defect rate (8%) in final inspection causing customer complaints",
			RootCauseAnalysis:       ptr("5-Why Analysis: 1) High defects 2) Manual inspection errors 3) Operator fatigue 4) Poor lighting 5) No standardized checklist. Root cause: Inconsistent manual inspection process."),
			CurrentStateAnalysis:    ptr("Current: Manual visual inspection, 2 operators, 45sec/part, 8% defect escape rate, customer complaints increasing"),
			FutureStateAnalysis:     ptr("Future: Automated vision system + operator verification, 15sec/part, <1% defect rate, real-time feedback"),
			PictureOfSolution:       ptr("https://example.com/vision-system-layout.jpg"),
			Monitoring:              ptr("Daily defect rate tracking, weekly calibration checks, monthly system performance review"),
			BenefitDetailed:         ptr("Reduced customer complaints by 90%, improved quality rating from 92% to 99.2%, prevented $200k in warranty costs"),
			CostDetailed:            ptr("Vision system: $12k, Installation: $2k, Training: $1k, Total: $15k"),
			BCDetailed:              ptr("Cost avoidance: $200k/year, Efficiency gains: $35k/year, ROI: 15.7x annually"),
			StandardizationDetailed: ptr("Vision system parameters documented in QC-456. Operator training program established. Monthly calibration schedule implemented."),
			Status:                  "In Progress",
			SubmittedDate:           ptr("2024-02-01T00:00:00"),
			CreatedBy:               "sarah.wilson@volvo.com",
		},
		{
			KaizenNumber:               "KZ-000003",
			TypeName:                   "Quick",
			DepartmentName:             "Logistics",
			ApplicationArea:            "Warehouse Zone B",
			Leader:                     "Mike Johnson",
			Team:                       ptr("Team Gamma"),
			SQDCEPCategory:             "D",
			Problem:                    "Slow material picking process affecting delivery times",
			ProblemSketch:              ptr("Pickers walk long distances. High-frequency items stored far from shipping dock. No clear picking route."),
			ImprovementFutureSituation: ptr("Reorganize layout by frequency. Move fast-moving items closer to dock. Create optimized picking routes."),
			CheckResults:               ptr("Picking time reduced by 40%. Daily shipments increased from 85 to 120. Zero late deliveries."),
			CostSummary:                ptr("Layout change: $150 materials, Signage: $50"),
			BenefitSummary:             ptr("Labor savings: $5000/month, Improved on-time delivery"),
			CBRatioSummary:             ptr("ROI: 25x return monthly. Payback: 1.2 weeks"),
			Standardization:            ptr("New warehouse layout map created and posted. Picking routes optimized and documented."),
			Status:                     "Completed",
			SubmittedDate:              ptr("2024-01-20T00:00:00"),
			CompletedDate:              ptr("2024-02-10T00:00:00"),
			CreatedBy:                  "mike.johnson@volvo.com",
		},
	}

	actions := []entities.ActionPlan{
		{
			KaizenID:                1,
			ActionDescription:       "Purchase quick-change tooling kit",
			ResponsiblePerson:       "Mike Johnson",
			StartDate:               ptr("2024-01-15"),
			DueDate:                 "2024-01-30",
			CompletedDate:           ptr("2024-01-28"),
			Status:                  "Completed",
			Notes:                   ptr("Ordered from supplier X, delivered on time"),
			DeliverableEvidenceLink: ptr("https://example.com/purchase-order-123.pdf"),
			CompletionDate:          ptr("2024-01-28"),
			CreatedBy:               "john.smith@volvo.com",
		},
		{
			KaizenID:                1,
			ActionDescription:       "Train operators on new system",
			ResponsiblePerson:       "Sarah Wilson",
			StartDate:               ptr("2024-02-01"),
			DueDate:                 "2024-02-15",
			CompletedDate:           ptr("2024-02-14"),
			Status:                  "Completed",
			Notes:                   ptr("All 8 operators trained and certified"),
			DeliverableEvidenceLink: ptr("https://example.com/training-certificates.pdf"),
			CompletionDate:          ptr("2024-02-14"),
			CreatedBy:               "john.smith@volvo.com",
		},
		{
			KaizenID:                2,
			ActionDescription:       "Install vision system hardware",
			ResponsiblePerson:       "Tech Team",
			StartDate:               ptr("2024-02-05"),
			DueDate:                 "2024-02-20",
			Status:                  "In Progress",
			Notes:                   ptr("Hardware 80% installed, calibration pending"),
			DeliverableEvidenceLink: ptr("https://example.com/installation-progress.jpg"),
			CreatedBy:               "sarah.wilson@volvo.com",
		},
		{
			KaizenID:          2,
			ActionDescription: "Develop inspection algorithms",
			ResponsiblePerson: "AI Team",
			StartDate:         ptr("2024-02-10"),
			DueDate:           "2024-02-25",
			Status:            "Pending",
			Notes:             ptr("Waiting for hardware completion"),
			CreatedBy:         "sarah.wilson@volvo.com",
		},
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&kaizens).Error; err != nil {
			return err
		}
		if err := tx.Create(&actions).Error; err != nil {
			return err
		}
		log.Info().Int("kaizens", len(kaizens)).Int("action_plans", len(actions)).Msg("inserted sample data")
		return nil
	})
}

func ptr(s string) *string {
	return &s
}
