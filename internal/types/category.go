package types

type Category struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	Name          string        `gorm:"uniqueIndex;not null;column:name" json:"name"`
	SubCategories []SubCategory `gorm:"foreignKey:CategoryID" json:"subCategories,omitempty"`
}

func (Category) TableName() string {
	return "category"
}
