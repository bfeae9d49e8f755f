package cmd

import (
	"errors"
	"fmt"

	"github.com/matthieukhl/storefront/internal/auth"
	"github.com/matthieukhl/storefront/internal/store"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with demo credentials",
	Long: `Sign in the demo user. Credentials are checked locally: any address of
the form local@domain.tld works, and the password needs at least 8
characters with an uppercase letter, a lowercase letter, a digit and one
of ` + auth.PasswordSymbols,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the cart",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)

	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Email address")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("password")
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Printf("🔐 Signing in as %s...\n", loginEmail)
	ok, err := a.store.Login(ctx, loginEmail, loginPassword)
	if !ok {
		if store.KindOf(err) == store.KindValidation {
			fmt.Println("❌ Invalid credentials")
			if !auth.ValidateEmail(loginEmail) {
				fmt.Println("   • email must look like name@domain.tld")
			}
			for _, p := range auth.PasswordProblems(loginPassword) {
				fmt.Printf("   • password %s\n", p)
			}
			return errors.New("login failed")
		}
		return fmt.Errorf("login failed: %w", err)
	}

	user := a.store.Snapshot().User
	fmt.Printf("✅ Welcome, %s (%s)\n", user.Username, user.FullName())
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.store.Logout().Wait(ctx); err != nil {
		return fmt.Errorf("failed to clear stored session: %w", err)
	}
	fmt.Println("👋 Signed out, cart cleared")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer a.close()

	printSession(a.store.Snapshot())
	return nil
}

func printSession(st store.State) {
	if !st.IsAuthenticated {
		fmt.Println("🔒 Not signed in")
		return
	}
	u := st.User
	fmt.Printf("👤 %s <%s>\n", u.FullName(), u.Email)
	fmt.Printf("   Username: %s | Phone: %s\n", u.Username, u.Phone)
	fmt.Printf("   Address:  %s %d, %s %s\n", u.Address.Street, u.Address.Number, u.Address.Zipcode, u.Address.City)
	fmt.Printf("   🛒 %d item(s) in cart, total $%s\n", st.CartCount(), st.CartTotal.StringFixed(2))
}
