package models

// Health is the body of GET /health.
type Health struct {
	Status string `json:"status" yaml:"status"`
}

// OK reports whether the backend declared itself healthy.
func (h Health) OK() bool { return h.Status == "ok" }
