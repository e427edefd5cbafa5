package domain

// DefaultCategoryColor is the color preselected for new categories.
const DefaultCategoryColor = "#3B82F6"

// MaxCategoryNameLength bounds category names at the input boundary.
const MaxCategoryNameLength = 20

// Category is a user-defined label notes can point at.
// Names are not unique; ids are.
type Category struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Color     string `json:"color" yaml:"color"` // hex, ex: "#3B82F6"
	CreatedAt int64  `json:"createdAt" yaml:"createdAt"`
}

// CategoryInput carries the caller-provided fields of a new category.
type CategoryInput struct {
	Name  string
	Color string
}

// CategoryPatch is a partial category update; nil fields are left untouched.
type CategoryPatch struct {
	Name  *string
	Color *string
}

// Apply merges the patch into the category.
func (p CategoryPatch) Apply(c *Category) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
}
