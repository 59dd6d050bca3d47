package catalog

import "github.com/imrishuroy/topup-storefront/internal/orders"

// Product is one purchasable top-up package.
type Product struct {
	ID           string  `json:"id" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	Price        float64 `json:"price" validate:"gte=0"`
	Bonus        string  `json:"bonus,omitempty"`
	Image        string  `json:"image,omitempty"`
	Special      bool    `json:"special,omitempty"`
	Subscription bool    `json:"subscription,omitempty"`
	DoubleReward bool    `json:"doubleReward,omitempty"`
	Note         string  `json:"note,omitempty"`
	BattlePass   bool    `json:"battlePass,omitempty"`
	Pass         bool    `json:"pass,omitempty"`
	WelkinMoon   bool    `json:"welkinMoon,omitempty"`
	Genesis      bool    `json:"genesis,omitempty"`
	Chronal      bool    `json:"chronal,omitempty"`
}

// Game is a catalog entry with its products.
type Game struct {
	ID          string    `json:"id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Image       string    `json:"image,omitempty"`
	Discount    float64   `json:"discount,omitempty" validate:"gte=0,lte=100"`
	Category    string    `json:"category,omitempty"`
	ServerLabel string    `json:"serverLabel,omitempty"`
	Note        string    `json:"note,omitempty"`
	Disclaimer  string    `json:"disclaimer,omitempty"`
	GridSpan    int       `json:"gridSpan,omitempty" validate:"gte=0"`
	Products    []Product `json:"products" validate:"dive"`
}

// Payment is a method customers pay through.
type Payment struct {
	ID            string `json:"id" validate:"required"`
	Name          string `json:"name" validate:"required"`
	Logo          string `json:"logo,omitempty"`
	QRCode        string `json:"qrCode,omitempty"`
	AccountName   string `json:"accountName,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	Type          string `json:"type,omitempty"`
}

// Settings are site-wide options.
type Settings struct {
	OrderMethod orders.Method `json:"orderMethod" validate:"oneof=messenger place_order"`
	Banners     []string      `json:"banners"`
}

// DefaultSettings applies until settings are first saved.
func DefaultSettings() Settings {
	return Settings{OrderMethod: orders.MethodMessenger, Banners: []string{}}
}

// ServerLabels maps game ids to their server label, skipping games without one.
func ServerLabels(games []Game) map[string]string {
	out := make(map[string]string, len(games))
	for _, g := range games {
		if g.ServerLabel != "" {
			out[g.ID] = g.ServerLabel
		}
	}
	return out
}
