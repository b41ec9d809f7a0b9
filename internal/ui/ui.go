// Package ui is the line-oriented front end of the shop client: a login
// prompt until a name is accepted, then the product listing and a small
// command loop. All state lives in the controller; the UI only renders
// snapshots and forwards input.
package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/inventory-demo/customer-shop/internal/shop"
)

// UI drives an interactive session on the given reader/writer pair.
type UI struct {
	ctrl *shop.Controller
	in   *bufio.Scanner
	out  io.Writer
	log  *slog.Logger
}

// New creates a UI bound to a controller and an input/output pair.
func New(ctrl *shop.Controller, in io.Reader, out io.Writer, log *slog.Logger) *UI {
	return &UI{
		ctrl: ctrl,
		in:   bufio.NewScanner(in),
		out:  out,
		log:  log,
	}
}

// Run loops login screen then shop screen until the input ends, the user
// quits, or the context is cancelled. A successful order resets the
// controller, so control falls back to the login screen.
func (u *UI) Run(ctx context.Context) error {
	for {
		ok, err := u.loginScreen(ctx)
		if err != nil || !ok {
			return err
		}

		ok, err = u.shopScreen(ctx)
		if err != nil || !ok {
			return err
		}
	}
}

// loginScreen prompts until login succeeds. Returns ok=false when input
// is exhausted or the user quits.
func (u *UI) loginScreen(ctx context.Context) (bool, error) {
	fmt.Fprintln(u.out, "Customer Login")

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		fmt.Fprint(u.out, "Enter your name: ")
		name, ok := u.readLine()
		if !ok {
			return false, nil
		}
		if strings.EqualFold(strings.TrimSpace(name), "quit") {
			return false, nil
		}

		err := u.ctrl.Login(ctx, name)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, shop.ErrEmptyName):
			fmt.Fprintln(u.out, "Please enter your name")
		case errors.Is(err, shop.ErrCatalogLoad):
			// Logged in, but with an empty catalog and no retry.
			fmt.Fprintln(u.out, "Failed to load products")
			return true, nil
		default:
			fmt.Fprintln(u.out, "Login failed:", err)
		}
	}
}

// shopScreen renders the catalog and handles commands until the session
// resets (successful order) or the user quits.
func (u *UI) shopScreen(ctx context.Context) (bool, error) {
	state := u.ctrl.State()
	fmt.Fprintf(u.out, "\nWelcome, %s\n", state.CustomerName)
	u.renderProducts()

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		fmt.Fprint(u.out, "> ")
		line, ok := u.readLine()
		if !ok {
			return false, nil
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "list":
			u.renderProducts()
		case "qty":
			u.handleQty(fields[1:])
		case "buy":
			if u.handleBuy(ctx, fields[1:]) {
				// Session was reset; back to the login screen.
				return true, nil
			}
		case "help":
			u.printHelp()
		case "quit", "exit":
			return false, nil
		default:
			fmt.Fprintf(u.out, "Unknown command %q (try \"help\")\n", fields[0])
		}
	}
}

func (u *UI) handleQty(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(u.out, "Usage: qty <product-id> <quantity>")
		return
	}

	productID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(u.out, "Invalid product id %q\n", args[0])
		return
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintf(u.out, "Invalid quantity %q\n", args[1])
		return
	}

	if err := u.ctrl.SetQuantity(productID, qty); err != nil {
		if errors.Is(err, shop.ErrInvalidQuantity) {
			fmt.Fprintln(u.out, "Quantity must be at least 1")
			return
		}
		fmt.Fprintln(u.out, "Could not set quantity:", err)
		return
	}

	fmt.Fprintf(u.out, "Quantity for product %d set to %d\n", productID, qty)
}

// handleBuy returns true when the order succeeded and the session reset.
func (u *UI) handleBuy(ctx context.Context, args []string) bool {
	if len(args) != 1 {
		fmt.Fprintln(u.out, "Usage: buy <product-id>")
		return false
	}

	productID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(u.out, "Invalid product id %q\n", args[0])
		return false
	}

	err = u.ctrl.Buy(ctx, productID)
	switch {
	case err == nil:
		fmt.Fprintln(u.out, "Order placed successfully")
		return true
	case errors.Is(err, shop.ErrOrderPending):
		fmt.Fprintln(u.out, "That order is still being processed")
	case errors.Is(err, shop.ErrOrderSubmit):
		fmt.Fprintln(u.out, "Order failed")
	default:
		fmt.Fprintln(u.out, "Order failed:", err)
	}
	return false
}

func (u *UI) renderProducts() {
	state := u.ctrl.State()
	if len(state.Products) == 0 {
		fmt.Fprintln(u.out, "No products available")
		return
	}

	for _, p := range state.Products {
		fmt.Fprintf(u.out, "[%d] %s  Price: ₹%g  Available: %d  Qty: %d\n",
			p.ID, p.ProductName, p.Price, p.Quantity, state.QuantityFor(p.ID))
	}
}

func (u *UI) printHelp() {
	fmt.Fprintln(u.out, "Commands:")
	fmt.Fprintln(u.out, "  list                 show the catalog")
	fmt.Fprintln(u.out, "  qty <id> <n>         set purchase quantity for a product")
	fmt.Fprintln(u.out, "  buy <id>             place an order")
	fmt.Fprintln(u.out, "  quit                 leave the shop")
}

func (u *UI) readLine() (string, bool) {
	if !u.in.Scan() {
		if err := u.in.Err(); err != nil {
			u.log.Error("reading input failed", "error", err)
		}
		return "", false
	}
	return u.in.Text(), true
}
