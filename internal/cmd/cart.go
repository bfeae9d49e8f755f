package cmd

import (
	"fmt"
	"strconv"

	"github.com/matthieukhl/storefront/internal/store"
	"github.com/spf13/cobra"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show or change the shopping cart",
	Long: `Show or change the shopping cart of the signed-in user.

Without a subcommand the cart is printed. Every change is written to durable
storage before the command returns.`,
	RunE: runCartShow,
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print cart contents and total",
	RunE:  runCartShow,
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add one unit of a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartAdd,
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a product line",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartRemove,
}

var cartSetCmd = &cobra.Command{
	Use:   "set <product-id> <quantity>",
	Short: "Set the quantity of a product line (0 removes it)",
	Args:  cobra.ExactArgs(2),
	RunE:  runCartSet,
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	RunE:  runCartClear,
}

func init() {
	rootCmd.AddCommand(cartCmd)
	cartCmd.AddCommand(cartShowCmd, cartAddCmd, cartRemoveCmd, cartSetCmd, cartClearCmd)
}

// withCart opens the app for a signed-in user and runs fn.
func withCart(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := openApp(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.requireLogin(); err != nil {
		return err
	}
	return fn(a)
}

func runCartShow(cmd *cobra.Command, args []string) error {
	return withCart(cmd, func(a *app) error {
		printCart(a.store.Snapshot())
		return nil
	})
}

func runCartAdd(cmd *cobra.Command, args []string) error {
	id, err := parseProductID(args[0])
	if err != nil {
		return err
	}
	return withCart(cmd, func(a *app) error {
		product, err := lookupProduct(a, id)
		if err != nil {
			return err
		}
		if err := a.store.AddToCart(product).Wait(a.ctx); err != nil {
			return fmt.Errorf("cart not saved: %w", err)
		}
		fmt.Printf("✅ Added %s\n", product.Title)
		printCart(a.store.Snapshot())
		return nil
	})
}

func runCartRemove(cmd *cobra.Command, args []string) error {
	id, err := parseProductID(args[0])
	if err != nil {
		return err
	}
	return withCart(cmd, func(a *app) error {
		if _, ok := a.store.Snapshot().CartItem(id); !ok {
			fmt.Printf("⚠️  Product %d is not in the cart\n", id)
			return nil
		}
		if err := a.store.RemoveFromCart(id).Wait(a.ctx); err != nil {
			return fmt.Errorf("cart not saved: %w", err)
		}
		fmt.Printf("🗑️  Removed product %d\n", id)
		printCart(a.store.Snapshot())
		return nil
	})
}

func runCartSet(cmd *cobra.Command, args []string) error {
	id, err := parseProductID(args[0])
	if err != nil {
		return err
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid quantity %q", args[1])
	}
	return withCart(cmd, func(a *app) error {
		if _, ok := a.store.Snapshot().CartItem(id); !ok {
			fmt.Printf("⚠️  Product %d is not in the cart, use 'cart add' first\n", id)
			return nil
		}
		if err := a.store.UpdateCartItemQuantity(id, qty).Wait(a.ctx); err != nil {
			return fmt.Errorf("cart not saved: %w", err)
		}
		printCart(a.store.Snapshot())
		return nil
	})
}

func runCartClear(cmd *cobra.Command, args []string) error {
	return withCart(cmd, func(a *app) error {
		if err := a.store.ClearCart().Wait(a.ctx); err != nil {
			return fmt.Errorf("cart not saved: %w", err)
		}
		fmt.Println("🧹 Cart cleared")
		return nil
	})
}

func printCart(st store.State) {
	if len(st.CartItems) == 0 {
		fmt.Println("🛒 Your cart is empty")
		return
	}

	fmt.Println("🛒 Cart:")
	for _, item := range st.CartItems {
		fmt.Printf("  #%-4d %-40s %3d x $%8s = $%9s\n",
			item.Product.ID,
			truncate(item.Product.Title, 40),
			item.Quantity,
			item.Product.Price.StringFixed(2),
			item.Subtotal().StringFixed(2),
		)
	}
	fmt.Printf("  %d item(s), total $%s\n", st.CartCount(), st.CartTotal.StringFixed(2))
}
