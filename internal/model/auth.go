package model

import "time"

// User is the minimal account record attached to a session.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// AuthSession holds a bearer token and its expiry bookkeeping.
// A session is only usable while now < ExpiresAt; any read after that
// must treat it as absent.
type AuthSession struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Valid reports whether the session is usable at the given instant.
func (s *AuthSession) Valid(now time.Time) bool {
	return s.Token != "" && now.Before(s.ExpiresAt)
}

// CartItem is a client-owned cart line. Name, Price and Image are
// denormalized from the product for display; the line is never persisted
// server-side until checkout.
type CartItem struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
	Price     int    `json:"price"`
	Image     string `json:"image"`
}

// StockIssue describes a cart line that cannot be fulfilled at current
// stock levels.
type StockIssue struct {
	ProductID         string `json:"productId"`
	Name              string `json:"name"`
	RequestedQuantity int    `json:"requestedQuantity"`
	AvailableStock    int    `json:"availableStock"`
}
