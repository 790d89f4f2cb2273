package models

type RoleResponse struct {
	Roles []JobDescription `json:"roles"`
}

type ScreeningResponse struct {
	ID        string        `json:"id"`
	Role      string        `json:"role"`
	ExportURL string        `json:"export_url"`
	Items     []ItemOutcome `json:"items"`
	Report    Report        `json:"report"`
}

type HistoryResponse struct {
	Runs []ScreeningRun `json:"runs"`
}

type CandidateMatch struct {
	BatchID    string  `json:"batch_id"`
	Role       string  `json:"role"`
	Name       string  `json:"name"`
	Score      int     `json:"score"`
	Similarity float32 `json:"similarity"`
	Excerpt    string  `json:"excerpt"`
}

type CandidateSearchResponse struct {
	Query   string           `json:"query"`
	Matches []CandidateMatch `json:"matches"`
}
