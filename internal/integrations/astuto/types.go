package astuto

// Post is a feedback post as returned by the board API.
type Post struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	BoardID     int    `json:"board_id"`
	Status      string `json:"status,omitempty"`
}

// NewPost is the payload for creating a feedback post.
type NewPost struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	BoardID     int    `json:"board_id"`
	Status      string `json:"status,omitempty"`
}
