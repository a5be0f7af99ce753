package model

import "time"

// Resource 资源台账表，对应 resources
type Resource struct {
	ResourceID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"resource_id"`
	Type          string    `gorm:"type:varchar(20);not null"                      json:"type"` // material | machine | manpower
	Name          string    `gorm:"type:varchar(100);not null"                     json:"name"`
	Category      string    `gorm:"type:varchar(100);not null;default:''"          json:"category,omitempty"`
	Quantity      float64   `gorm:"not null;default:0"                             json:"quantity"`
	TotalQuantity float64   `gorm:"not null;default:0"                             json:"total_quantity"`
	Unit          string    `gorm:"type:varchar(20);not null;default:'units'"      json:"unit"`
	Status        string    `gorm:"type:varchar(20);not null;default:'available'"  json:"status"` // available | in-use | maintenance | unavailable
	LastUpdated   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"last_updated"`
	UpdatedBy     *string   `gorm:"type:uuid"                                      json:"updated_by,omitempty"`
	Notes         string    `gorm:"type:text;not null;default:''"                  json:"notes,omitempty"`
	Timestamps
}

func (Resource) TableName() string { return "resources" }

// QuantityValid 可用数量必须介于 0 与总量之间
func (r *Resource) QuantityValid() bool {
	return r.Quantity >= 0 && r.Quantity <= r.TotalQuantity
}
