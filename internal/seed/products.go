package seed

import (
	"fmt"

	"catalog/internal/models"
	"catalog/internal/repositories"
)

// Products returns the sample catalog loaded at startup.
func Products() []models.Product {
	return []models.Product{
		{ID: "1", Name: "/ Tuxedo jacket with lapels", Price: 23900, Details: "Product details: Emphasizes the waistline", Featured: true, ProductImage: "uploads/product-image-1.png"},
		{ID: "2", Name: "/ Blouse with peplum", Price: 21800, Details: "Product details: Emphasizes the waistline", Featured: true, ProductImage: "uploads/product-image-15.png"},
		{ID: "3", Name: "/ White tuxedo jacket", Price: 26900, Details: "Product details: Emphasizes the waistline", Featured: true, ProductImage: "uploads/product-image-3.png"},
		{ID: "4", Name: "/ Straight tuxedo jacket", Price: 27500, Details: "Product details: Emphasizes the waistline", Featured: true, ProductImage: "uploads/product-image-5.png"},
		{ID: "5", Name: "/ Velvet tuxedo jacket", Price: 29500, Details: "Product details: Emphasizes the waistline", Featured: true, ProductImage: "uploads/product-image-19.png"},
		{ID: "6", Name: "/ Tuxedo jacket", Price: 21800, Details: "Product details: Emphasizes the waistline", Featured: true, ProductImage: "uploads/product-image-18.png"},
		{ID: "7", Name: "/ Tuxedo jacket", Price: 21900, Details: "Product details: Emphasizes the waistline", Featured: true, ProductImage: "uploads/product-image-11.png"},
		{ID: "8", Name: "/ Flared trousers", Price: 26900, Details: "Product details: Emphasizes the waistline", Featured: false, ProductImage: "uploads/product-image-10.png"},
		{ID: "9", Name: "/ Classic set with tuxedo and vest", Price: 65300, Details: "Product details: world classic", Featured: true, ProductImage: "uploads/product-image-2.png"},
		{ID: "10", Name: "/ Tuxedo dress long", Price: 25800, Details: "Product details: Emphasizes the waistline", Featured: false, ProductImage: "uploads/product-image-9.png"},
		{ID: "11", Name: "/ White tuxedo and trousers with stripes", Price: 24600, Details: "Product details: Emphasizes the waistline", Featured: true, ProductImage: "uploads/product-image-10.png"},
		{ID: "12", Name: "/ Classic set with butterfly", Price: 24600, Details: "Product details: Emphasizes the waistline", Featured: true, ProductImage: "uploads/product-image-11.png"},
		{ID: "13", Name: "/ White tuxedo with flared trousers", Price: 40400, Details: "Product details: Emphasizes the waistline", Featured: true, ProductImage: "uploads/product-image-6.png"},
		{ID: "14", Name: "/ Jacket - tuxedo fitted blue", Price: 26900, Details: "Product details: Emphasizes the waistline", Featured: false, ProductImage: "uploads/product-image-7.png"},
		{ID: "15", Name: "/ Jacket - tuxedo fitted blue", Price: 26900, Details: "Product details: Emphasizes the waistline", Featured: true, ProductImage: "uploads/product-image-9.png"},
		{ID: "16", Name: "/ Jacket - tuxedo fitted blue", Price: 26900, Details: "Product details: Emphasizes the waistline", Featured: false, ProductImage: "uploads/product-image-3.png"},
	}
}

// Load inserts the sample catalog into repo.
func Load(repo repositories.ProductRepository) error {
	products := Products()
	for i := range products {
		if err := repo.Create(&products[i]); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", products[i].ID, err)
		}
	}
	return nil
}
