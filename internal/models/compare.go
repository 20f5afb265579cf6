package models

// CompareRequest is the body of a one-off pair comparison
type CompareRequest struct {
	SourceA  string `json:"sourceA"`
	SourceB  string `json:"sourceB"`
	Language string `json:"language"`
}
