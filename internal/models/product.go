package models

// Product represents a product in the catalogue.
//
// The validate tags are evaluated by the validation package before any
// create or update reaches the repository; message carries the text
// returned to the client when the rule fails.
type Product struct {
	ID          uint    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string  `json:"name" gorm:"type:text;not null" validate:"notblank" message:"Product name is required"`
	Description string  `json:"description" gorm:"type:text;not null" validate:"notblank" message:"Description is required"`
	Price       float64 `json:"price" gorm:"not null" validate:"gt=0" message:"Price must be positive"`
}

// TableName returns the table name for Product.
func (Product) TableName() string {
	return "products"
}
