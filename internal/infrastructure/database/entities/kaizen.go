package entities

import "time"

// Kaizen is the persisted continuous-improvement record. The type-specific
// narrative columns (Quick vs Standard) coexist with the flattened legacy
// columns the first frontend generation still reads.
type Kaizen struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	KaizenNumber    string `gorm:"type:varchar(16);uniqueIndex;not null"`
	TypeName        string `gorm:"type:varchar(16);not null"`
	DepartmentName  string `gorm:"type:varchar(128);not null;index"`
	ApplicationArea string `gorm:"type:varchar(128);not null"`
	Leader          string `gorm:"type:varchar(128);not null"`
	Team            *string
	SQDCEPCategory  string `gorm:"column:sqdcep_category;type:varchar(1);not null"`

	Problem string `gorm:"not null"`

	// Quick kaizen narrative
	ProblemSketch              *string
	ImprovementFutureSituation *string
	CheckResults               *string
	CostSummary                *string
	BenefitSummary             *string
	CBRatioSummary             *string `gorm:"column:cb_ratio_summary"`
	Standardization            *string

	// Standard kaizen narrative
	RootCauseAnalysis       *string
	CurrentStateAnalysis    *string
	FutureStateAnalysis     *string
	PictureOfSolution       *string
	Monitoring              *string
	BenefitDetailed         *string
	CostDetailed            *string
	BCDetailed              *string `gorm:"column:bc_detailed"`
	StandardizationDetailed *string

	// Legacy columns kept for compatibility with the flattened schema
	ProblemDescription     *string
	ImprovementDescription *string
	Results                *string
	Cost                   float64 `gorm:"default:0"`
	Benefit                float64 `gorm:"default:0"`
	IsStandardized         bool    `gorm:"default:false"`
	StandardizationNotes   *string

	Status        string `gorm:"type:varchar(32);default:'Draft';index"`
	SubmittedDate *string
	CompletedDate *string

	// JSON-encoded attachment metadata, rewritten wholesale on add/remove.
	Attachments string `gorm:"type:text"`

	CreatedBy string    `gorm:"type:varchar(128);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedBy *string
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	ActionPlans []ActionPlan `gorm:"foreignKey:KaizenID;constraint:OnDelete:CASCADE"`
}

func (Kaizen) TableName() string {
	return "kaizens"
}
