package models

// ============================================================
// Conversion history
// ============================================================

type Conversion struct {
	ID         string         `json:"id"`
	SourceName string         `json:"source_name"`
	Mode       string         `json:"mode"`
	Filtered   bool           `json:"filtered"`
	Parsed     map[string]int `json:"parsed"`
	Exported   map[string]int `json:"exported"`
	Nodes      int            `json:"nodes"`
	Layers     int            `json:"layers"`
	DOFPoints  int            `json:"dof_points"`
	CreatedAt  string         `json:"created_at"`
}

// ============================================================
// Parse summary
// ============================================================

type LayerInfo struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	UniqueName string `json:"unique_name"`
	Valid      bool   `json:"valid"`
	Entities   int    `json:"entities"`
}

type ParseSummary struct {
	SourceName string         `json:"source_name"`
	Counts     map[string]int `json:"counts"`
	Layers     []LayerInfo    `json:"layers"`
}
