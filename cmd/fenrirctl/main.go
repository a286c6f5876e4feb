// Command fenrirctl is a TCP client for placing and cancelling orders
// against a running fenrir server, and tailing its execution reports.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	fenrirbook "fenrir/internal/book"
	fenrirnet "fenrir/internal/net"
	"fenrir/internal/registry"
)

func main() {
	serverAddr := flag.String("server", "127.0.0.1:9000", "address of the fenrir server")
	pairFlag := flag.String("pair", "BTC_USD", "trading pair, formatted BASE_QUOTE")
	action := flag.String("action", "place", "action to perform: place | cancel")
	sideStr := flag.String("side", "buy", "order side: buy | sell")
	typeStr := flag.String("type", "limit", "order type: market | limit | ioc | fok | system")
	price := flag.String("price", "100", "limit price (ignored for market orders)")
	qty := flag.String("qty", "10", "order quantity")
	owner := flag.String("owner", "", "owner username")
	cancelUUID := flag.String("uuid", "", "order id to cancel")
	partialQty := flag.String("partial-qty", "", "if set with -action cancel, cancels only this much quantity")
	flag.Parse()

	if *owner == "" {
		fmt.Println("error: -owner is required")
		flag.Usage()
		os.Exit(1)
	}

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", *serverAddr, err)
	}
	defer conn.Close()
	fmt.Printf("connected to %s as %q\n", *serverAddr, *owner)

	go tailReports(conn)

	pairParts := strings.SplitN(*pairFlag, "_", 2)
	if len(pairParts) != 2 {
		log.Fatalf("pair must be formatted BASE_QUOTE, got %q", *pairFlag)
	}
	pair := registry.NewTradingPair(pairParts[0], pairParts[1])

	switch strings.ToLower(*action) {
	case "place":
		if err := sendPlaceOrder(conn, pair, *sideStr, *typeStr, *price, *qty, *owner); err != nil {
			log.Fatalf("failed to place order: %v", err)
		}
		fmt.Printf("-> sent %s %s order: %s %s @ %s\n", strings.ToUpper(*sideStr), strings.ToUpper(*typeStr), *qty, pair, *price)

	case "cancel":
		if *cancelUUID == "" {
			log.Fatal("-uuid is required for -action cancel")
		}
		if err := sendCancelOrder(conn, pair, *cancelUUID, *partialQty); err != nil {
			log.Fatalf("failed to send cancel: %v", err)
		}
		fmt.Printf("-> sent cancel for %s\n", *cancelUUID)

	default:
		log.Fatalf("unknown action %q", *action)
	}

	fmt.Println("listening for reports, press Ctrl+C to exit...")
	select {}
}

func parseSide(s string) fenrirbook.Side {
	if strings.ToLower(s) == "sell" {
		return fenrirbook.Ask
	}
	return fenrirbook.Bid
}

func parseOrderType(kind, priceStr string) (fenrirbook.OrderType, error) {
	if strings.ToLower(kind) == "market" {
		return fenrirbook.NewMarket(), nil
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return fenrirbook.OrderType{}, fmt.Errorf("invalid price %q: %w", priceStr, err)
	}
	switch strings.ToLower(kind) {
	case "limit":
		return fenrirbook.NewLimit(price), nil
	case "ioc":
		return fenrirbook.NewIOC(price), nil
	case "fok":
		return fenrirbook.NewFOK(price), nil
	case "system":
		return fenrirbook.NewSystemLevel(price), nil
	default:
		return fenrirbook.OrderType{}, fmt.Errorf("unknown order type %q", kind)
	}
}

func sendPlaceOrder(conn net.Conn, pair registry.TradingPair, sideStr, typeStr, priceStr, qtyStr, owner string) error {
	orderType, err := parseOrderType(typeStr, priceStr)
	if err != nil {
		return err
	}
	qty, err := decimal.NewFromString(qtyStr)
	if err != nil {
		return fmt.Errorf("invalid quantity %q: %w", qtyStr, err)
	}

	msg := fenrirnet.NewOrderMessage{
		Pair:      pair,
		Side:      parseSide(sideStr),
		OrderType: orderType,
		Qty:       qty,
		Username:  owner,
	}
	_, err = conn.Write(msg.Serialize())
	return err
}

func sendCancelOrder(conn net.Conn, pair registry.TradingPair, id, partialQtyStr string) error {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid uuid %q: %w", id, err)
	}

	msg := fenrirnet.CancelOrderMessage{Pair: pair, OrderUUID: orderID}
	if partialQtyStr != "" {
		qty, err := decimal.NewFromString(partialQtyStr)
		if err != nil {
			return fmt.Errorf("invalid partial-qty %q: %w", partialQtyStr, err)
		}
		msg.Partial = true
		msg.PartialQty = qty
	}

	_, err = conn.Write(msg.Serialize())
	return err
}

// tailReports reads framed Report messages off conn and prints them
// until the connection closes. It trusts the server to frame one
// Report per Write the way the server does; a real deployment would
// length-prefix each report instead of relying on one-message-per-read.
func tailReports(conn net.Conn) {
	buf := make([]byte, 4*1024)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			fmt.Printf("\nconnection closed: %v\n", err)
			os.Exit(0)
		}
		printReport(buf[:n])
	}
}

func printReport(raw []byte) {
	r, err := fenrirnet.ParseReport(raw)
	if err != nil {
		log.Printf("failed to parse report: %v", err)
		return
	}
	ts := time.Unix(r.Timestamp, 0)

	if r.MessageType == fenrirnet.ErrorReport {
		fmt.Printf("\n[ERROR @ %s] %s: %s\n", ts.Format(time.RFC3339), r.Pair, r.Err)
		return
	}
	side := "BUY"
	if r.Side == fenrirbook.Ask {
		side = "SELL"
	}
	fmt.Printf("\n[EXECUTION @ %s] %s %s | qty=%s price=%s | counterparty=%s\n",
		ts.Format(time.RFC3339), side, r.Pair, r.Qty, r.Price, r.Counterparty)
}
