package recurrence

// Outcome: 单个模板在一次批处理中的处理结局
type Outcome string

const (
	OutcomeCreated            Outcome = "created"
	OutcomeSkippedEligibility Outcome = "skipped_eligibility"
	OutcomeSkippedDuplicate   Outcome = "skipped_duplicate"
	OutcomeFailed             Outcome = "failed"
)

type TemplateResult struct {
	Outcome      Outcome
	OriginalTask string
	NewTask      string
	AssignedTo   []string
	Err          error
}

// Report: 一次批处理的汇总，Skipped 中包含了未到期、已生成和生成失败三种情况
type Report struct {
	Created int
	Skipped int
	Results []TemplateResult
}

func (r *Report) CreatedResults() []TemplateResult {
	created := make([]TemplateResult, 0, r.Created)
	for _, result := range r.Results {
		if result.Outcome == OutcomeCreated {
			created = append(created, result)
		}
	}
	return created
}
