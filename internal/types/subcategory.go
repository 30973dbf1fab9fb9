package types

// SubCategory names are unique per category, not globally.
type SubCategory struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"not null;uniqueIndex:idx_sub_category_name_category;column:name" json:"name"`
	CategoryID uint   `gorm:"not null;uniqueIndex:idx_sub_category_name_category;column:category_id" json:"categoryId"`
}

func (SubCategory) TableName() string {
	return "sub_category"
}
