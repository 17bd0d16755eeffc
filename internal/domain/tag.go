package domain

// Tag is a user-owned label attached to recipes.
type Tag struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Name      string `json:"name"`
	Timestamps
}

// OwnerID returns the ID of the user who owns the tag.
func (t *Tag) OwnerID() int64 { return t.UserID }

func (t *Tag) String() string { return t.Name }
