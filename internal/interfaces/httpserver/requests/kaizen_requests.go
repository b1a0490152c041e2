package requests

import (
	domain "kaizen-server/internal/domain/kaizen"
)

// CreateKaizenRequest is the JSON payload for creating a kaizen record.
// Only whitelisted fields are bound; anything else in the body is ignored.
type CreateKaizenRequest struct {
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

	SubmittedDate *string `json:"submitted_date"`
}

// ToParams maps the request onto domain creation parameters. The creator
// identity comes from the authenticated principal, never the body.
func (r *CreateKaizenRequest) ToParams(createdBy string) domain.CreateKaizenParams {
	return domain.CreateKaizenParams{
		TypeName:        r.TypeName,
		DepartmentName:  r.DepartmentName,
		ApplicationArea: r.ApplicationArea,
		Leader:          r.Leader,
		Team:            r.Team,
		SQDCEPCategory:  r.SQDCEPCategory,

		Problem: r.Problem,

		ProblemSketch:              r.ProblemSketch,
		ImprovementFutureSituation: r.ImprovementFutureSituation,
		CheckResults:               r.CheckResults,
		CostSummary:                r.CostSummary,
		BenefitSummary:             r.BenefitSummary,
		CBRatioSummary:             r.CBRatioSummary,
		Standardization:            r.Standardization,

		RootCauseAnalysis:       r.RootCauseAnalysis,
		CurrentStateAnalysis:    r.CurrentStateAnalysis,
		FutureStateAnalysis:     r.FutureStateAnalysis,
		PictureOfSolution:       r.PictureOfSolution,
		Monitoring:              r.Monitoring,
		BenefitDetailed:         r.BenefitDetailed,
		CostDetailed:            r.CostDetailed,
		BCDetailed:              r.BCDetailed,
		StandardizationDetailed: r.StandardizationDetailed,

		ProblemDescription:     r.ProblemDescription,
		ImprovementDescription: r.ImprovementDescription,
		Results:                r.Results,
		Cost:                   r.Cost,
		Benefit:                r.Benefit,

		SubmittedDate: r.SubmittedDate,

		CreatedBy: createdBy,
	}
}
