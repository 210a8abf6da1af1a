package entity

// Product represents catalog_product table (the slice of the catalog this
// engine needs: identity, name, unit of measure)
type Product struct {
	ProductID     uint   `gorm:"column:product_id;primaryKey;autoIncrement" json:"product_id"`
	SKU           string `gorm:"column:sku;type:varchar(64);not null;uniqueIndex" json:"sku"`
	Name          string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	UnitOfMeasure string `gorm:"column:unit_of_measure;type:varchar(16);not null;default:pcs" json:"unit_of_measure"`
	IsActive      bool   `gorm:"column:is_active;not null;default:true" json:"is_active"`
}

func (Product) TableName() string {
	return "catalog_product"
}
