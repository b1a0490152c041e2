package kaizen

import "time"

// Kaizen types drive which narrative fields are mandatory at creation.
const (
	TypeQuick    = "Quick"
	TypeStandard = "Standard"
)

// KaizenRecord is the full continuous-improvement record served by
// get-by-id and export.
type KaizenRecord struct {
	ID              int64   `json:"id"`
	KaizenNumber    string  `json:"kaizen_number"`
	TypeName        string  `json:"type_name"`
	DepartmentName  string  `json:"department_name"`
	ApplicationArea string  `json:"application_area"`
	Leader          string  `json:"leader"`
	Team            *string `json:"team"`
	SQDCEPCategory  string  `json:"sqdcep_category"`

	Problem string `json:"problem"`

	ProblemSketch              *string `json:"problem_sketch"`
	ImprovementFutureSituation *string `json:"improvement_future_situation"`
	CheckResults               *string `json:"check_results"`
	CostSummary                *string `json:"cost_summary"`
	BenefitSummary             *string `json:"benefit_summary"`
	CBRatioSummary             *string `json:"cb_ratio_summary"`
	Standardization            *string `json:"standardization"`

	RootCauseAnalysis       *string `json:"root_cause_analysis"`
	CurrentStateAnalysis    *string `json:"current_state_analysis"`
	FutureStateAnalysis     *string `json:"future_state_analysis"`
	PictureOfSolution       *string `json:"picture_of_solution"`
	Monitoring              *string `json:"monitoring"`
	BenefitDetailed         *string `json:"benefit_detailed"`
	CostDetailed            *string `json:"cost_detailed"`
	BCDetailed              *string `json:"bc_detailed"`
	StandardizationDetailed *string `json:"standardization_detailed"`

	ProblemDescription     *string `json:"problem_description"`
	ImprovementDescription *string `json:"improvement_description"`
	Results                *string `json:"results"`
	Cost                   float64 `json:"cost"`
	Benefit                float64 `json:"benefit"`
	// Derived at query time; nil whenever cost is zero.
	CostBenefitRatio     *float64 `json:"cost_benefit_ratio"`
	IsStandardized       bool     `json:"is_standardized"`
	StandardizationNotes *string  `json:"standardization_notes"`

	Status        string  `json:"status"`
	SubmittedDate *string `json:"submitted_date"`
	CompletedDate *string `json:"completed_date"`

	Attachments []Attachment `json:"attachments"`

	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedBy *string   `json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KaizenSummary is the flattened listing shape the frontend consumes.
// Field names follow the legacy PascalCase contract.
type KaizenSummary struct {
	ID                     int64    `json:"ID"`
	KaizenNumber           string   `json:"KaizenNumber"`
	TypeName               string   `json:"TypeName"`
	DepartmentName         string   `json:"DepartmentName"`
	ApplicationArea        string   `json:"ApplicationArea"`
	Leader                 string   `json:"Leader"`
	Team                   *string  `json:"Team"`
	SQDCEPCategory         string   `json:"SQDCEPCategory"`
	ProblemDescription     *string  `json:"ProblemDescription"`
	ImprovementDescription *string  `json:"ImprovementDescription"`
	Results                *string  `json:"Results"`
	Cost                   float64  `json:"Cost"`
	Benefit                float64  `json:"Benefit"`
	CostBenefitRatio       *float64 `json:"CostBenefitRatio"`
	IsStandardized         bool     `json:"IsStandardized"`
	Status                 string   `json:"Status"`
	SubmittedDate          *string  `json:"SubmittedDate"`
	CompletedDate          *string  `json:"CompletedDate"`
	CreatedBy              string   `json:"CreatedBy"`
	CreatedAt              time.Time `json:"CreatedAt"`
	ActionCount            int64    `json:"ActionCount"`
}

// ActionPlan is a remediation task tied to one kaizen record.
type ActionPlan struct {
	ID                      int64     `json:"id"`
	KaizenID                int64     `json:"kaizen_id"`
	ActionDescription       string    `json:"action_description"`
	ResponsiblePerson       string    `json:"responsible_person"`
	StartDate               *string   `json:"start_date"`
	DueDate                 string    `json:"due_date"`
	CompletedDate           *string   `json:"completed_date"`
	Status                  string    `json:"status"`
	Notes                   *string   `json:"notes"`
	DeliverableEvidenceLink *string   `json:"deliverable_evidence_link"`
	CompletionDate          *string   `json:"completion_date"`
	CreatedBy               string    `json:"created_by"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedBy               *string   `json:"updated_by"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// Attachment is the metadata kept inside the owning record's JSON list.
type Attachment struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	DownloadURL string `json:"downloadUrl"`
	UploadedBy  string `json:"uploadedBy"`
	UploadedAt  string `json:"uploadedAt"`
}

// CreateKaizenParams carries the whitelisted creation fields.
type CreateKaizenParams struct {
	TypeName        string
	DepartmentName  string
	ApplicationArea string
	Leader          string
	Team            *string
	SQDCEPCategory  string

	Problem string

	ProblemSketch              *string
	ImprovementFutureSituation *string
	CheckResults               *string
	CostSummary                *string
	BenefitSummary             *string
	CBRatioSummary             *string
	Standardization            *string

	RootCauseAnalysis       *string
	CurrentStateAnalysis    *string
	FutureStateAnalysis     *string
	PictureOfSolution       *string
	Monitoring              *string
	BenefitDetailed         *string
	CostDetailed            *string
	BCDetailed              *string
	StandardizationDetailed *string

	ProblemDescription     *string
	ImprovementDescription *string
	Results                *string
	Cost                   float64
	Benefit                float64

	SubmittedDate *string

	CreatedBy string
}

// ListFilter selects and pages the listing.
type ListFilter struct {
	Page       int
	Limit      int
	Status     string
	Department string
}

// Pagination is the listing envelope metadata; Pages is ceil(Total/Limit).
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// Page is one page of listed kaizens.
type Page struct {
	Kaizens    []KaizenSummary `json:"kaizens"`
	Pagination Pagination      `json:"pagination"`
}

// Detail pairs a record with its action plans.
type Detail struct {
	Kaizen  KaizenRecord `json:"kaizen"`
	Actions []ActionPlan `json:"actions"`
}

// CreatedKaizen reports the outcome of a creation.
type CreatedKaizen struct {
	ID           int64  `json:"id"`
	KaizenNumber string `json:"kaizen_number"`
}

// StoredFile is what a storage backend reports after an upload.
type StoredFile struct {
	ID          string
	Name        string
	WebURL      string
	DownloadURL string
}
