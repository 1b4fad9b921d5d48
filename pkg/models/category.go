package models

type Category struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type CategoryCreate struct {
	Name string `json:"name"`
}

type Tag struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type TagCreate struct {
	Name string `json:"name"`
}
