package models

type Category struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100;uniqueIndex;not null"`

	Notes []Note `gorm:"foreignKey:CategoryID"`
}
