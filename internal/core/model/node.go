package model

// Node is a factor in the causal model: a variable that can cause or be
// caused by other factors.
type Node struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Keywords string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}
