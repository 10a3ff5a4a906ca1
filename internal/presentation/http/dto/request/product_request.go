package request

import "mime/multipart"

// SaveCategoryRequest is the multipart form of POST /category/. ID is set
// when updating.
type SaveCategoryRequest struct {
	ID        string                `form:"id"`
	Name      string                `form:"name"`
	CounterNo string                `form:"counterNo"`
	Image     *multipart.FileHeader `form:"image"`
}

// SaveProductRequest is the multipart form of POST /product/. Variations is a
// JSON array of {name, price}.
type SaveProductRequest struct {
	ID         string                `form:"id"`
	Name       string                `form:"name"`
	CategoryID string                `form:"categoryId"`
	Price      string                `form:"price"`
	Variations string                `form:"variations"`
	Image      *multipart.FileHeader `form:"image"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search     string `form:"search"`
	CategoryID string `form:"categoryId"`
}
