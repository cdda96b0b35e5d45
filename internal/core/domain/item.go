package domain

type ItemStatus string

const (
	ItemApproved  ItemStatus = "approved"
	ItemRejected  ItemStatus = "rejected"
	ItemInReview  ItemStatus = "in review"
	ItemEscalated ItemStatus = "escalated"
)

// Item is owned by the external catalog service. The pipeline reads it and
// only ever advances its status through a terminal disposition.
type Item struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	FilePath    string     `json:"file_path"`
	Status      ItemStatus `json:"status"`
	Published   bool       `json:"published"`
}
