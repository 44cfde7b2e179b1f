package domain

import "time"

// OperationType distinguishes how an image came to exist.
type OperationType string

const (
	OperationGenerated OperationType = "generated"
	OperationModified  OperationType = "modified"
)

// Valid reports whether the value is one of the known operation types.
func (t OperationType) Valid() bool {
	return t == OperationGenerated || t == OperationModified
}

// Image is the persisted record of one generate/modify operation. MediaURL
// points at the object store's public serving domain; PublicID is the durable
// object identifier captured at upload time so deletion never has to be
// re-derived from the URL. Records are immutable once written.
type Image struct {
	ID        string
	Type      OperationType
	Prompt    string
	MediaURL  string
	PublicID  string
	CreatedAt time.Time
}

// ListFilter narrows and pages a listing. An empty Type selects all records.
type ListFilter struct {
	Type  OperationType
	Page  int
	Limit int
}

// Pagination is the navigation block returned alongside listings so callers
// can render paging controls without a second round trip.
type Pagination struct {
	CurrentPage  int
	TotalPages   int
	TotalItems   int
	ItemsPerPage int
}
