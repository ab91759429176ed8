package domain

type Product struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	ProductCode     string  `gorm:"column:product_code;size:64;not null;uniqueIndex:idx_products_product_code" json:"product_code"`
	Name            string  `gorm:"size:255;not null" json:"name"`
	Price           float64 `gorm:"not null" json:"price"`
	ProductQuantity int     `gorm:"column:product_quantity;not null" json:"product_quantity"`
}
