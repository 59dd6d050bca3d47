package validation

import (
	"strings"

	"github.com/imrishuroy/topup-storefront/internal/orders"
)

// GameRules is the account data one game needs to deliver a top-up.
type GameRules interface {
	RequiredFields() []string
	Validate(item orders.OrderItem) bool
}

// redeemCode games deliver a code, so no account is needed.
type redeemCode struct{}

func (redeemCode) RequiredFields() []string { return []string{"productId"} }

func (redeemCode) Validate(it orders.OrderItem) bool {
	return present(it.ProductID)
}

// playerOnly games address the account by player id alone.
type playerOnly struct{}

func (playerOnly) RequiredFields() []string { return []string{"productId", "playerId"} }

func (playerOnly) Validate(it orders.OrderItem) bool {
	return present(it.ProductID) && present(it.PlayerID)
}

// playerAndServer games need the region server as well.
type playerAndServer struct{}

func (playerAndServer) RequiredFields() []string { return []string{"productId", "playerId", "server"} }

func (playerAndServer) Validate(it orders.OrderItem) bool {
	return present(it.ProductID) && present(it.PlayerID) && present(it.Server)
}

func present(s string) bool { return strings.TrimSpace(s) != "" }

// Registry selects rules by game id, falling back to a default.
type Registry struct {
	byGame   map[string]GameRules
	fallback GameRules
}

// DefaultRegistry knows the games sold by the shop.
func DefaultRegistry() *Registry {
	r := &Registry{byGame: map[string]GameRules{}, fallback: playerAndServer{}}
	r.Register(redeemCode{}, "codm", "crossfire")
	r.Register(playerOnly{}, "ml-ph", "ml-global", "ml-indo", "hok", "bloodstrike", "pubgm", "marvelrivals", "valorant")
	return r
}

// Register binds rules to game ids.
func (r *Registry) Register(rules GameRules, gameIDs ...string) {
	for _, id := range gameIDs {
		r.byGame[id] = rules
	}
}

// For returns the rules for gameID.
func (r *Registry) For(gameID string) GameRules {
	if rules, ok := r.byGame[gameID]; ok {
		return rules
	}
	return r.fallback
}
