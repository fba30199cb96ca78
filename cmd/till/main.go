// cmd/till/main.go — terminal till client.
//
// Connects to the backend, mirrors server state locally and applies
// mutations optimistically so the counter never waits on the network.
//
// Usage:
//
//	API_URL=http://localhost:8000 TILL_PHONE=+91... TILL_PIN=483920 go run ./cmd/till
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mrinmay27/the149-store/internal/client"
	"github.com/mrinmay27/the149-store/internal/dto"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(zerolog.WarnLevel)

	baseURL := envOr("API_URL", "http://localhost:8000")
	cacheDir := envOr("TILL_CACHE_DIR", defaultCacheDir())

	api := client.NewAPI(baseURL)
	store := client.NewStore()
	syncer := client.NewSyncer(api, store, client.NewCache(cacheDir))
	dispatcher := client.NewDispatcher(api, store, syncer)

	ctx := context.Background()
	if _, err := api.Login(ctx, os.Getenv("TILL_PHONE"), os.Getenv("TILL_PIN")); err != nil {
		fmt.Fprintln(os.Stderr, "login failed:", err)
		os.Exit(1)
	}

	syncer.Start(ctx)
	defer syncer.Close()

	fmt.Println("the149 till — type 'help' for commands")
	repl(ctx, store, dispatcher)
}

func repl(ctx context.Context, store *client.Store, d *client.Dispatcher) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "help":
			fmt.Println(`  bal                       show balances
  cats                      list price tiers
  sale <price>x<qty>... cash=N online=N
  exp <cash> <online> <purpose...>
  dep <amount> <receiver-id>
  stock <category-id> <delta>
  quit`)
		case "bal":
			st := store.Snapshot()
			fmt.Printf("  shop: %d\n", st.Balances.ShopBalance)
			if st.Balances.BankBalance != nil {
				fmt.Printf("  bank: %d\n", *st.Balances.BankBalance)
			}
		case "cats":
			st := store.Snapshot()
			for _, c := range st.Categories {
				fmt.Printf("  %-36s  price %6d  stock %4d\n", c.ID, c.Price, c.Stock)
			}
		case "sale":
			doSale(ctx, store, d, fields[1:])
		case "exp":
			doExpense(ctx, d, fields[1:])
		case "dep":
			doDeposit(ctx, d, fields[1:])
		case "stock":
			doStock(ctx, d, fields[1:])
		case "quit", "exit":
			return
		default:
			fmt.Println("  unknown command; try 'help'")
		}
	}
}

// doSale parses "<price>x<qty>... cash=N online=N", resolving prices to
// tiers through the local mirror.
func doSale(ctx context.Context, store *client.Store, d *client.Dispatcher, args []string) {
	st := store.Snapshot()
	var req dto.RecordSaleRequest

	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "cash="):
			req.CashAmount, _ = strconv.ParseInt(arg[5:], 10, 64)
		case strings.HasPrefix(arg, "online="):
			req.OnlineAmount, _ = strconv.ParseInt(arg[7:], 10, 64)
		default:
			price, qty, ok := parseItem(arg)
			if !ok {
				fmt.Println("  bad item:", arg)
				return
			}
			var categoryID string
			for _, c := range st.Categories {
				if c.Price == price {
					categoryID = c.ID
					break
				}
			}
			if categoryID == "" {
				fmt.Println("  no tier priced at", price)
				return
			}
			req.Items = append(req.Items, dto.SaleItemRequest{CategoryID: categoryID, Quantity: qty})
		}
	}
	if len(req.Items) == 0 {
		fmt.Println("  usage: sale <price>x<qty>... cash=N online=N")
		return
	}

	resp, err := d.Sale(ctx, req)
	if err != nil {
		fmt.Println("  rejected:", err)
		return
	}
	fmt.Printf("  sale %s recorded, total %d\n", resp.ID, resp.Total)
}

func doExpense(ctx context.Context, d *client.Dispatcher, args []string) {
	if len(args) < 3 {
		fmt.Println("  usage: exp <cash> <online> <purpose...>")
		return
	}
	cash, _ := strconv.ParseInt(args[0], 10, 64)
	online, _ := strconv.ParseInt(args[1], 10, 64)
	resp, err := d.Expense(ctx, dto.RecordExpenseRequest{
		Purpose:      strings.Join(args[2:], " "),
		CashAmount:   cash,
		OnlineAmount: online,
	})
	if err != nil {
		fmt.Println("  rejected:", err)
		return
	}
	fmt.Printf("  expense %s recorded, amount %d\n", resp.ID, resp.Amount)
}

func doDeposit(ctx context.Context, d *client.Dispatcher, args []string) {
	if len(args) < 2 {
		fmt.Println("  usage: dep <amount> <receiver-id>")
		return
	}
	amount, _ := strconv.ParseInt(args[0], 10, 64)
	resp, err := d.Deposit(ctx, dto.RecordDepositRequest{Amount: amount, ReceivedBy: args[1]})
	if err != nil {
		fmt.Println("  rejected:", err)
		return
	}
	fmt.Printf("  deposit %s recorded\n", resp.ID)
}

func doStock(ctx context.Context, d *client.Dispatcher, args []string) {
	if len(args) < 2 {
		fmt.Println("  usage: stock <category-id> <delta>")
		return
	}
	delta, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Println("  bad delta:", args[1])
		return
	}
	if err := d.AdjustStock(ctx, args[0], delta); err != nil {
		fmt.Println("  rejected:", err)
		return
	}
	// The send is coalesced; rapid taps merge into one request. The mirror
	// already shows the adjusted figure.
	fmt.Println("  stock adjustment applied")
}

// parseItem parses "149x2" into (149, 2).
func parseItem(s string) (price int64, qty int, ok bool) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	p, err1 := strconv.ParseInt(parts[0], 10, 64)
	q, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || q <= 0 {
		return 0, 0, false
	}
	return p, q, true
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".till-cache"
	}
	return filepath.Join(home, ".the149-till")
}
