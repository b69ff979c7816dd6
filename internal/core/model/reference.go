package model

// Reference is the bibliographic record backing one or more causal
// links. Type holds the RIS "TY" tag value of the publication.
type Reference struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Year      string `json:"year,omitempty" yaml:"year,omitempty"`
	Authors   string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Type      string `json:"type,omitempty" yaml:"type,omitempty"`
	Publisher string `json:"publisher,omitempty" yaml:"publisher,omitempty"`
}
