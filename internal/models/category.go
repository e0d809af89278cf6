// internal/models/category.go
package models

type Category struct {
	BaseModel
	Name        string `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Description string `json:"description" gorm:"type:text"`

	Products []Product `json:"products,omitempty" gorm:"foreignKey:CategoryID"`
}
