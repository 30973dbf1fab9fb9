package types

import (
	"time"
)

// Content format tags. The representation is decided once at creation and
// stored alongside the content; readers never sniff the payload shape.
const (
	LessonFormatMarkdown = "markdown"
	LessonFormatJSON     = "json"
)

type Lesson struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	Title         string       `gorm:"not null;column:title" json:"title"`
	Content       string       `gorm:"type:text;not null;column:content" json:"content"`
	Format        string       `gorm:"not null;default:markdown;column:format" json:"format"`
	CategoryID    uint         `gorm:"not null;column:category_id" json:"categoryId"`
	SubCategoryID uint         `gorm:"not null;column:sub_category_id" json:"subCategoryId"`
	UserID        *uint        `gorm:"column:user_id" json:"userId,omitempty"`
	Category      *Category    `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	SubCategory   *SubCategory `gorm:"foreignKey:SubCategoryID" json:"subCategory,omitempty"`
	User          *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt     time.Time    `gorm:"not null" json:"createdAt"`
}

func (Lesson) TableName() string {
	return "lesson"
}
