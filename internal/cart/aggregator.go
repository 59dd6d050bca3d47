// Package cart groups cart items by recipient account and renders the
// settlement message sent to the shop.
package cart

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/imrishuroy/topup-storefront/internal/orders"
)

// noServer is what the shop front sends for games without a server.
const noServer = "N/A"

// Group is the cart items delivered to one account.
type Group struct {
	Key      string
	GameID   string
	GameName string
	Server   string
	PlayerID string
	IGN      string
	Items    []orders.OrderItem
	Total    float64
}

// Summary is a cart partitioned into groups in first-seen order.
type Summary struct {
	Groups     []Group
	GrandTotal float64
}

// GroupKey identifies the recipient of an item.
func GroupKey(it orders.OrderItem) string {
	return it.GameName + "|" + it.Server + "|" + it.PlayerID + "|" + it.IGN
}

// Aggregate partitions items. Groups keep the order in which their key first
// appears, and items keep input order within a group.
func Aggregate(items []orders.OrderItem) Summary {
	var s Summary
	index := map[string]int{}
	for _, it := range items {
		k := GroupKey(it)
		i, ok := index[k]
		if !ok {
			i = len(s.Groups)
			index[k] = i
			s.Groups = append(s.Groups, Group{
				Key:      k,
				GameID:   it.GameID,
				GameName: it.GameName,
				Server:   it.Server,
				PlayerID: it.PlayerID,
				IGN:      it.IGN,
			})
		}
		g := &s.Groups[i]
		g.Items = append(g.Items, it)
		g.Total += it.Subtotal()
		s.GrandTotal += it.Subtotal()
	}
	return s
}

// Render builds the message. serverLabels maps a game id to the label shown
// in place of the server in a group header.
func (s Summary) Render(receiptURL string, serverLabels map[string]string) string {
	var b strings.Builder
	for _, g := range s.Groups {
		b.WriteString(header(g, serverLabels[g.GameID]))
		b.WriteByte('\n')
		b.WriteString(identity(g))
		b.WriteByte('\n')
		for _, it := range g.Items {
			if it.Quantity > 1 {
				b.WriteString(strconv.Itoa(it.Quantity))
				b.WriteString("x ")
			}
			b.WriteString(it.ProductName)
			b.WriteString(" - ₱")
			b.WriteString(wholePesos(it.Subtotal()))
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	for _, g := range s.Groups {
		b.WriteString("TOTAL: ₱")
		b.WriteString(groupedAmount(g.Total))
		b.WriteByte('\n')
	}
	b.WriteString("PAYMENT RECEIPT: ")
	b.WriteString(receiptURL)
	return b.String()
}

func header(g Group, label string) string {
	server := label
	if server == "" && g.Server != noServer {
		server = g.Server
	}
	h := strings.ToUpper(g.GameName) + " " + server + " ORDER"
	return strings.Join(strings.Fields(h), " ")
}

func identity(g Group) string {
	line := "ID: " + g.PlayerID
	if g.Server != "" && g.Server != noServer {
		line += " (" + g.Server + ")"
	}
	if g.IGN != "" {
		line += " " + g.IGN
	}
	return line
}

// wholePesos rounds half away from zero.
func wholePesos(v float64) string {
	return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
}

// groupedAmount keeps up to three decimals and groups thousands: 1250.5 -> "1,250.5".
func groupedAmount(v float64) string {
	return humanize.Commaf(math.Round(v*1000) / 1000)
}
