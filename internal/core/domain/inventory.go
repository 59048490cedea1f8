package domain

// InventoryEntry tracks available stock for one product. Entries are
// provisioned externally (seed data); the service only moves Available up and
// down. Available never goes below zero.
type InventoryEntry struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Available int    `json:"available"`
}

func (e InventoryEntry) Key() string { return e.ProductID }
