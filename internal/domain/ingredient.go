package domain

// Ingredient is a user-owned ingredient that recipes reference.
// It has the same shape and ownership rules as Tag.
type Ingredient struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Name      string `json:"name"`
	Timestamps
}

// OwnerID returns the ID of the user who owns the ingredient.
func (i *Ingredient) OwnerID() int64 { return i.UserID }

func (i *Ingredient) String() string { return i.Name }
