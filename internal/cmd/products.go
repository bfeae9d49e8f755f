package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matthieukhl/storefront/internal/models"
	"github.com/spf13/cobra"
)

var productsCategory string

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the product catalog",
	RunE:  runProducts,
}

var productCmd = &cobra.Command{
	Use:   "product <id>",
	Short: "Show product details",
	Args:  cobra.ExactArgs(1),
	RunE:  runProduct,
}

func init() {
	rootCmd.AddCommand(productsCmd, productCmd)

	productsCmd.Flags().StringVar(&productsCategory, "category", "", "Only list products in this category")
}

func runProducts(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Println("📦 Fetching products...")
	if err := a.store.FetchProducts(ctx); err != nil {
		return fmt.Errorf("failed to fetch products: %w", err)
	}

	listed := 0
	for _, p := range a.store.Snapshot().Products {
		if productsCategory != "" && !strings.EqualFold(p.Category, productsCategory) {
			continue
		}
		fmt.Printf("  #%-4d %-50s $%8s  ⭐ %.1f (%d)\n", p.ID, truncate(p.Title, 50), p.Price.StringFixed(2), p.Rating.Rate, p.Rating.Count)
		listed++
	}

	if listed == 0 {
		fmt.Println("⚠️  No products found")
		return nil
	}
	fmt.Printf("✅ %d product(s)\n", listed)
	return nil
}

func runProduct(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := parseProductID(args[0])
	if err != nil {
		return err
	}

	a, err := openApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.close()

	product, err := lookupProduct(a, id)
	if err != nil {
		return err
	}
	a.store.SetSelectedProduct(&product)

	st := a.store.Snapshot()
	p := st.SelectedProduct
	fmt.Printf("🏷️  %s\n", p.Title)
	fmt.Printf("   Price:    $%s\n", p.Price.StringFixed(2))
	fmt.Printf("   Category: %s\n", p.Category)
	fmt.Printf("   Rating:   %.1f/5 from %d reviews\n", p.Rating.Rate, p.Rating.Count)
	fmt.Printf("   Image:    %s\n", p.Image)
	fmt.Printf("\n%s\n", p.Description)

	if item, ok := st.CartItem(p.ID); ok {
		fmt.Printf("\n🛒 %d in your cart\n", item.Quantity)
	}
	return nil
}

// lookupProduct fetches the catalog and finds id in it.
func lookupProduct(a *app, id int64) (models.Product, error) {
	if err := a.store.FetchProducts(a.ctx); err != nil {
		return models.Product{}, fmt.Errorf("failed to fetch products: %w", err)
	}
	product, ok := models.FindProduct(a.store.Snapshot().Products, id)
	if !ok {
		return models.Product{}, fmt.Errorf("product %d does not exist", id)
	}
	return product, nil
}

func parseProductID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id %q", s)
	}
	return id, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
