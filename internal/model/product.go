package model

// Product is a catalogue entry referenced by orders and line items.
type Product struct {
	ID          int    `json:"idProduct" db:"id_product"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	Price       Money  `json:"price" db:"price"`
}

// Warehouse is a stock location that receives products.
type Warehouse struct {
	ID      int    `json:"idWarehouse" db:"id_warehouse"`
	Name    string `json:"name" db:"name"`
	Address string `json:"address" db:"address"`
}
