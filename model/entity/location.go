package entity

// Location represents inventory_location table (shops and warehouses)
type Location struct {
	LocationID uint   `gorm:"column:location_id;primaryKey;autoIncrement" json:"location_id"`
	Code       string `gorm:"column:code;type:varchar(32);not null;uniqueIndex" json:"code"`
	Name       string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Kind       string `gorm:"column:kind;type:varchar(16);not null;default:shop" json:"kind"`
	IsActive   bool   `gorm:"column:is_active;not null;default:true" json:"is_active"`
}

func (Location) TableName() string {
	return "inventory_location"
}
