// Package catalog holds the fixed product menu. The menu ships with the
// binary; editing it is an application release, not a runtime operation.
package catalog

import "github.com/shopspring/decimal"

// Category groups products for the menu screens.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Product is one sellable item. Prices are in soles, tax-inclusive.
type Product struct {
	ID         string          `json:"id"`
	CategoryID string          `json:"category_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Variants   []string        `json:"variants,omitempty"`
}

func soles(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("catalog: bad price " + s)
	}
	return d
}

var categories = []Category{
	{ID: "calientes", Name: "Bebidas calientes", Icon: "☕"},
	{ID: "heladas", Name: "Bebidas heladas", Icon: "🧊"},
	{ID: "andinos", Name: "Clásicos andinos", Icon: "🏔️"},
	{ID: "jugos", Name: "Jugos y batidos", Icon: "🥤"},
	{ID: "sandwiches", Name: "Sánguches", Icon: "🥪"},
	{ID: "postres", Name: "Postres", Icon: "🍰"},
	{ID: "salados", Name: "Piqueos salados", Icon: "🥟"},
	{ID: "desayunos", Name: "Desayunos", Icon: "🍳"},
}

var sizeVariants = []string{"Mediano", "Grande"}

var products = []Product{
	// Bebidas calientes
	{ID: "espresso", CategoryID: "calientes", Name: "Espresso", Price: soles("6.00")},
	{ID: "cafe-americano", CategoryID: "calientes", Name: "Café americano", Price: soles("8.00"), Variants: sizeVariants},
	{ID: "cafe-cortado", CategoryID: "calientes", Name: "Cortado", Price: soles("8.50")},
	{ID: "cappuccino", CategoryID: "calientes", Name: "Cappuccino", Price: soles("11.00"), Variants: sizeVariants},
	{ID: "latte", CategoryID: "calientes", Name: "Latte", Price: soles("12.00"), Variants: sizeVariants},
	{ID: "latte-vainilla", CategoryID: "calientes", Name: "Latte vainilla", Price: soles("13.50"), Variants: sizeVariants},
	{ID: "mocha", CategoryID: "calientes", Name: "Mocha", Price: soles("13.00"), Variants: sizeVariants},
	{ID: "chocolate-caliente", CategoryID: "calientes", Name: "Chocolate caliente", Price: soles("12.00")},
	{ID: "te-infusion", CategoryID: "calientes", Name: "Té e infusiones", Price: soles("6.50")},

	// Bebidas heladas
	{ID: "cafe-helado", CategoryID: "heladas", Name: "Café helado", Price: soles("12.00"), Variants: sizeVariants},
	{ID: "latte-helado", CategoryID: "heladas", Name: "Latte helado", Price: soles("13.00"), Variants: sizeVariants},
	{ID: "frappe-mocha", CategoryID: "heladas", Name: "Frappé de mocha", Price: soles("15.00")},
	{ID: "frappe-oreo", CategoryID: "heladas", Name: "Frappé de Oreo", Price: soles("16.00")},
	{ID: "limonada-helada", CategoryID: "heladas", Name: "Limonada helada", Price: soles("9.00"), Variants: sizeVariants},
	{ID: "chicha-morada", CategoryID: "heladas", Name: "Chicha morada", Price: soles("8.00"), Variants: sizeVariants},

	// Clásicos andinos
	{ID: "emoliente", CategoryID: "andinos", Name: "Emoliente", Price: soles("6.00")},
	{ID: "mate-coca", CategoryID: "andinos", Name: "Mate de coca", Price: soles("6.50")},
	{ID: "quinua-con-manzana", CategoryID: "andinos", Name: "Quinua con manzana", Price: soles("7.50")},
	{ID: "ponche-habas", CategoryID: "andinos", Name: "Ponche de habas", Price: soles("8.00")},

	// Jugos y batidos
	{ID: "jugo-papaya", CategoryID: "jugos", Name: "Jugo de papaya", Price: soles("10.00")},
	{ID: "jugo-pina", CategoryID: "jugos", Name: "Jugo de piña", Price: soles("10.00")},
	{ID: "jugo-surtido", CategoryID: "jugos", Name: "Jugo surtido", Price: soles("12.00")},
	{ID: "batido-lucuma", CategoryID: "jugos", Name: "Batido de lúcuma", Price: soles("14.00")},
	{ID: "batido-fresa", CategoryID: "jugos", Name: "Batido de fresa", Price: soles("13.00")},

	// Sánguches
	{ID: "sanguche-pollo", CategoryID: "sandwiches", Name: "Sánguche de pollo", Price: soles("14.00")},
	{ID: "sanguche-chicharron", CategoryID: "sandwiches", Name: "Sánguche de chicharrón", Price: soles("16.00")},
	{ID: "sanguche-lomito", CategoryID: "sandwiches", Name: "Sánguche de lomito ahumado", Price: soles("15.00")},
	{ID: "triple-clasico", CategoryID: "sandwiches", Name: "Triple clásico", Price: soles("12.00")},
	{ID: "butifarra", CategoryID: "sandwiches", Name: "Butifarra", Price: soles("13.00")},

	// Postres
	{ID: "croissant", CategoryID: "postres", Name: "Croissant", Price: soles("10.00")},
	{ID: "torta-chocolate", CategoryID: "postres", Name: "Torta de chocolate", Price: soles("12.00")},
	{ID: "cheesecake-maracuya", CategoryID: "postres", Name: "Cheesecake de maracuyá", Price: soles("13.00")},
	{ID: "tres-leches", CategoryID: "postres", Name: "Tres leches", Price: soles("11.00")},
	{ID: "alfajor", CategoryID: "postres", Name: "Alfajor", Price: soles("5.00")},
	{ID: "brownie", CategoryID: "postres", Name: "Brownie", Price: soles("10.00")},
	{ID: "picarones", CategoryID: "postres", Name: "Picarones", Price: soles("12.00")},

	// Piqueos salados
	{ID: "empanada-carne", CategoryID: "salados", Name: "Empanada de carne", Price: soles("8.00")},
	{ID: "empanada-pollo", CategoryID: "salados", Name: "Empanada de pollo", Price: soles("8.00")},
	{ID: "tequenos", CategoryID: "salados", Name: "Tequeños con guacamole", Price: soles("14.00")},
	{ID: "papa-rellena", CategoryID: "salados", Name: "Papa rellena", Price: soles("9.00")},

	// Desayunos
	{ID: "desayuno-clasico", CategoryID: "desayunos", Name: "Desayuno clásico", Price: soles("16.00")},
	{ID: "pan-con-palta", CategoryID: "desayunos", Name: "Pan con palta", Price: soles("9.00")},
	{ID: "tostadas-francesas", CategoryID: "desayunos", Name: "Tostadas francesas", Price: soles("15.00")},
	{ID: "huevos-revueltos", CategoryID: "desayunos", Name: "Huevos revueltos", Price: soles("12.00")},
}

// Categories returns all menu categories in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Products returns the full menu in display order.
func Products() []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

// ProductsByCategory returns the products of one category, keeping display
// order. Unknown categories yield an empty slice.
func ProductsByCategory(categoryID string) []Product {
	var out []Product
	for _, p := range products {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out
}

// FindProduct looks a product up by id.
func FindProduct(id string) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
