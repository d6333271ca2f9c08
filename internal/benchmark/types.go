package benchmark

import "time"

// Case is a single labelled operation to time.
type Case struct {
	Name  string
	Group string
	Fn    func() error
}

// Result represents a single timing measurement.
type Result struct {
	Name         string  `json:"name"`
	Group        string  `json:"group,omitempty"`
	Iterations   int     `json:"iterations"`
	Seconds      float64 `json:"seconds"`       // Per iteration
	TotalSeconds float64 `json:"total_seconds"` // Across all iterations
}

// Params records the inputs a run was produced with.
type Params struct {
	VectorLen  int    `json:"vector_len"`
	MatrixSize int    `json:"matrix_size"`
	Repeat     int    `json:"repeat"`
	Seed       uint64 `json:"seed"`
}

// Run represents a collection of results from a single invocation.
type Run struct {
	Timestamp time.Time `json:"timestamp"`
	Commit    string    `json:"commit,omitempty"` // Git commit hash
	Params    Params    `json:"params"`
	Results   []Result  `json:"results"`
}
