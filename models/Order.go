package models

import "time"

type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Order groups beer lines that are brewed together.
type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Status      OrderStatus `gorm:"type:varchar(32);not null;default:created" json:"status"`
	QuantitySum int64       `gorm:"not null;default:0" json:"quantity_sum"`
	Lines       []OrderLine `gorm:"foreignKey:OrderID" json:"lines,omitempty"`
	Invoice     *Invoice    `gorm:"foreignKey:OrderID" json:"invoice,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// OrderLine is the hectoliters of one beer in an order. BeerID refers to the
// brewery service and is not a database foreign key.
type OrderLine struct {
	OrderID       uint  `gorm:"primaryKey;autoIncrement:false" json:"order_id"`
	BeerID        uint  `gorm:"primaryKey;autoIncrement:false" json:"beer_id"`
	QuantityHecto int64 `gorm:"not null" json:"quantity_hecto"`
}

type Invoice struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	OrderDate  time.Time     `gorm:"type:date;not null" json:"order_date"`
	ShipDate   *time.Time    `gorm:"type:date" json:"ship_date,omitempty"`
	Status     InvoiceStatus `gorm:"type:varchar(32);not null;default:pending" json:"status"`
	CustomerID uint          `gorm:"not null;index" json:"customer_id"`
	Customer   *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	OrderID    uint          `gorm:"not null;uniqueIndex" json:"order_id"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}
