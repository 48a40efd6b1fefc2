package service

import "frameguru/internal/models"

// Initial catalog. Prices and size tables mirror the studio's standing
// price list.
var seedProducts = []models.Product{
	{
		Name:        "Classic Wood Frame",
		SKU:         "FRM-CLS-001",
		Category:    "frame",
		Description: "Traditional wood frame with a timeless profile",
		BasePrice:   45.99,
		FrameType:   "standard",
		ModelFile:   "models/classic_frame.glb",
		IsActive:    true,
		Sizes: []models.ProductSize{
			{Size: "8x10", Price: 45.99, InventoryCount: 50},
			{Size: "11x14", Price: 59.99, InventoryCount: 40},
			{Size: "16x20", Price: 79.99, InventoryCount: 30},
			{Size: "18x24", Price: 99.99, InventoryCount: 20},
			{Size: "20x30", Price: 129.99, InventoryCount: 15},
			{Size: "24x36", Price: 159.99, InventoryCount: 10},
		},
	},
	{
		Name:        "Modern Metal Frame",
		SKU:         "FRM-MOD-001",
		Category:    "frame",
		Description: "Sleek aluminum frame with clean lines",
		BasePrice:   49.99,
		FrameType:   "standard",
		ModelFile:   "models/modern_frame.glb",
		IsActive:    true,
		Sizes: []models.ProductSize{
			{Size: "8x10", Price: 49.99, InventoryCount: 40},
			{Size: "11x14", Price: 69.99, InventoryCount: 35},
			{Size: "16x20", Price: 89.99, InventoryCount: 25},
			{Size: "18x24", Price: 109.99, InventoryCount: 20},
			{Size: "20x30", Price: 139.99, InventoryCount: 15},
			{Size: "24x36", Price: 179.99, InventoryCount: 10},
		},
	},
	{
		Name:        "Floating Frame",
		SKU:         "FRM-FLT-001",
		Category:    "frame",
		Description: "Contemporary floating frame for canvas and board art",
		BasePrice:   79.99,
		FrameType:   "standard",
		ModelFile:   "models/floating_frame.glb",
		IsActive:    true,
		Sizes: []models.ProductSize{
			{Size: "8x10", Price: 79.99, InventoryCount: 30},
			{Size: "11x14", Price: 99.99, InventoryCount: 25},
			{Size: "16x20", Price: 129.99, InventoryCount: 20},
			{Size: "18x24", Price: 149.99, InventoryCount: 15},
			{Size: "20x30", Price: 179.99, InventoryCount: 10},
			{Size: "24x36", Price: 209.99, InventoryCount: 5},
		},
	},
	{
		Name:        "Single Mat Frame",
		SKU:         "FRM-MAT-001",
		Category:    "frame",
		Description: "Classic frame with single acid-free mat",
		BasePrice:   69.99,
		FrameType:   "mat",
		ModelFile:   "models/mat_frame.glb",
		IsActive:    true,
		Sizes: []models.ProductSize{
			{Size: "8x10", Price: 69.99, InventoryCount: 40},
			{Size: "11x14", Price: 89.99, InventoryCount: 35},
			{Size: "16x20", Price: 119.99, InventoryCount: 25},
			{Size: "18x24", Price: 149.99, InventoryCount: 20},
			{Size: "20x30", Price: 179.99, InventoryCount: 15},
			{Size: "24x36", Price: 209.99, InventoryCount: 10},
		},
	},
	{
		Name:        "Standard Shadowbox",
		SKU:         "FRM-SHD-001",
		Category:    "frame",
		Description: "Float mount shadowbox for dimensional display",
		BasePrice:   99.99,
		FrameType:   "shadowbox",
		ModelFile:   "models/shadowbox_frame.glb",
		IsActive:    true,
		Sizes: []models.ProductSize{
			{Size: "8x10", Price: 99.99, InventoryCount: 30},
			{Size: "11x14", Price: 129.99, InventoryCount: 25},
			{Size: "16x20", Price: 159.99, InventoryCount: 20},
			{Size: "18x24", Price: 189.99, InventoryCount: 15},
			{Size: "20x30", Price: 229.99, InventoryCount: 10},
			{Size: "24x36", Price: 279.99, InventoryCount: 5},
		},
	},
}

var seedTiers = []models.FramingTier{
	{
		Tier:        1,
		Name:        "Basic Custom",
		Description: "Custom sizing with standard materials and techniques",
		BasePrice:   79.99,
		Features: []string{
			"Custom sizing",
			"Standard frame profiles",
			"Basic acid-free matting",
			"Regular glass",
		},
		TurnaroundDays: 7,
		IsActive:       true,
	},
	{
		Tier:        2,
		Name:        "Premium Custom",
		Description: "Premium materials with advanced framing techniques",
		BasePrice:   149.99,
		Features: []string{
			"Custom sizing",
			"Premium frame profiles",
			"Double mat option",
			"UV-protective glass",
			"Specialized mounting",
		},
		TurnaroundDays: 10,
		IsActive:       true,
	},
	{
		Tier:        3,
		Name:        "Museum/Conservation",
		Description: "Museum-quality framing with archival materials",
		BasePrice:   249.99,
		Features: []string{
			"Custom sizing",
			"Archival matting",
			"Museum glass",
			"Object mounting",
			"Conservation techniques",
			"Specialized design consultation",
		},
		TurnaroundDays: 14,
		IsActive:       true,
	},
}
