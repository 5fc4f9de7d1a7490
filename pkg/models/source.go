package models

// SourceFieldDescriptor is one addressable leaf of a sample partner document.
// It is derived per sample and never persisted.
type SourceFieldDescriptor struct {
	Path   string `json:"path"`
	Type   string `json:"type"`
	Sample any    `json:"sample"`
}
