package models

// Category is the fixed product category set. The string value is the stable
// key stored in the database; presentation uses the display text.
type Category string

const (
	CategoryElectronics Category = "ELECTRONICS"
	CategoryClothing    Category = "CLOTHING"
	CategoryFood        Category = "FOOD"
	CategoryBooks       Category = "BOOKS"
	CategoryOther       Category = "OTHER"
)

var categoryDisplay = map[Category]string{
	CategoryElectronics: "Электроника",
	CategoryClothing:    "Одежда",
	CategoryFood:        "Продукты",
	CategoryBooks:       "Книги",
	CategoryOther:       "Другое",
}

var displayCategory = func() map[string]Category {
	m := make(map[string]Category, len(categoryDisplay))
	for key, display := range categoryDisplay {
		m[display] = key
	}
	return m
}()

// Categories returns all categories in a fixed order.
func Categories() []Category {
	return []Category{
		CategoryElectronics,
		CategoryClothing,
		CategoryFood,
		CategoryBooks,
		CategoryOther,
	}
}

// Display returns the localized display text for the category.
func (c Category) Display() string {
	return categoryDisplay[c]
}

// Valid reports whether the category is a member of the fixed set.
func (c Category) Valid() bool {
	_, ok := categoryDisplay[c]
	return ok
}

// ParseCategory resolves user input into a category. Input may be either the
// stable key (ELECTRONICS) or the display text (Электроника); anything else
// is a validation error.
func ParseCategory(input string) (Category, error) {
	if c := Category(input); c.Valid() {
		return c, nil
	}
	if c, ok := displayCategory[input]; ok {
		return c, nil
	}
	return "", &ValidationError{Field: "category", Reason: "unknown category: " + input}
}
