package main

import (
	"github.com/habscollection/storefront/internal/entity"
)

// seedData is the initial catalog, inserted on first boot only.
var seedData = []entity.Product{
	{
		ID:          "prod-001",
		Slug:        "classic-black-abaya",
		Name:        "Classic Black Abaya",
		Description: "Timeless black abaya in premium crepe with subtle satin trim.",
		Price:       159.99,
		Reference:   "HC-AB-001",
		Images:      entity.ProductImages{Main: "/images/products/classic-black-abaya.jpg", Hover: "/images/products/classic-black-abaya-hover.jpg"},
		Sizes:       []string{"S", "M", "L", "XL"},
		Stock:       map[string]int{"S": 12, "M": 20, "L": 15, "XL": 8},
	},
	{
		ID:          "prod-002",
		Slug:        "embroidered-dress",
		Name:        "Embroidered Dress",
		Description: "Maxi dress with hand-finished embroidery along the sleeves and hem.",
		Price:       189.99,
		Reference:   "HC-DR-002",
		Images:      entity.ProductImages{Main: "/images/products/embroidered-dress.jpg", Hover: "/images/products/embroidered-dress-hover.jpg"},
		Sizes:       []string{"S", "M", "L"},
		Stock:       map[string]int{"S": 10, "M": 14, "L": 9},
	},
	{
		ID:          "prod-003",
		Slug:        "open-front-kimono",
		Name:        "Open Front Kimono",
		Description: "Lightweight open kimono, ideal for layering over any abaya.",
		Price:       89.99,
		Reference:   "HC-KM-003",
		Images:      entity.ProductImages{Main: "/images/products/open-front-kimono.jpg"},
		Sizes:       []string{"S", "M", "L", "XL"},
		Stock:       map[string]int{"S": 18, "M": 25, "L": 20, "XL": 10},
		OnSale:      true,
	},
	{
		ID:          "prod-004",
		Slug:        "satin-hijab-set",
		Name:        "Satin Hijab Set",
		Description: "Set of three satin hijabs in complementary tones.",
		Price:       34.99,
		Reference:   "HC-HJ-004",
		Images:      entity.ProductImages{Main: "/images/products/satin-hijab-set.jpg"},
		Sizes:       []string{"One Size"},
		Stock:       map[string]int{"One Size": 60},
	},
	{
		ID:          "prod-005",
		Slug:        "pleated-maxi-skirt",
		Name:        "Pleated Maxi Skirt",
		Description: "Full-length pleated skirt with elasticated waistband.",
		Price:       74.99,
		Reference:   "HC-SK-005",
		Images:      entity.ProductImages{Main: "/images/products/pleated-maxi-skirt.jpg"},
		Sizes:       []string{"S", "M", "L"},
		Stock:       map[string]int{"S": 0, "M": 11, "L": 7},
	},
}
