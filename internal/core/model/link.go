package model

// Link is a directed, evidence-justified causal relationship between
// two factors. The three estimates are the analyst-elicited per-link
// parameters:
//
//	Credibility      (m1) — how credible the evidence source is
//	EvidenceStrength (m2) — the causal weight the evidence indicates
//	Confidence       (m3) — the analyst's confidence in the subject
//
// EdgeKey disambiguates parallel links between the same ordered factor
// pair, so two independently justified pieces of evidence for the same
// cause-effect claim each keep their own link.
type Link struct {
	ID               string   `json:"id" yaml:"id"`
	ParentID         string   `json:"parent_id" yaml:"parent_id"`
	ChildID          string   `json:"child_id" yaml:"child_id"`
	Credibility      Estimate `json:"credibility" yaml:"credibility"`
	EvidenceStrength Estimate `json:"evidence_strength" yaml:"evidence_strength"`
	Confidence       Estimate `json:"confidence" yaml:"confidence"`
	CredibilityMemo  string   `json:"credibility_memo,omitempty" yaml:"credibility_memo,omitempty"`
	StrengthMemo     string   `json:"strength_memo,omitempty" yaml:"strength_memo,omitempty"`
	ConfidenceMemo   string   `json:"confidence_memo,omitempty" yaml:"confidence_memo,omitempty"`
	RefID            string   `json:"ref_id,omitempty" yaml:"ref_id,omitempty"`
	EdgeKey          int      `json:"edge_key" yaml:"edge_key"`
}
