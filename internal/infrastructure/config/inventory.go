package config

// InventoryConfig holds engine behaviour settings
type InventoryConfig struct {
	// Location used when a request names none
	DefaultLocation string `mapstructure:"default_location" validate:"required"`

	// Movements attached to a material's dependency listing
	RecentMovements int `mapstructure:"recent_movements" validate:"min=1,max=500"`
}
