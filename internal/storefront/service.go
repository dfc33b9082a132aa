// Package storefront exposes the typed read and auth operations the
// storefront UI consumes: catalogue, delivery zones, page content, and the
// login/logout lifecycle over the token store.
package storefront

import (
	"context"
	"fmt"

	"grandson-client/internal/apiclient"
	"grandson-client/internal/authstore"
	"grandson-client/internal/model"
	"grandson-client/internal/transform"

	"github.com/rs/zerolog"
)

// msgSessionSave tells the user login worked but the session could not be
// kept, which is not a credentials problem.
const msgSessionSave = "Connexion réussie mais la session n'a pas pu être enregistrée"

// API is the slice of the fetch client the service consumes.
type API interface {
	Get(ctx context.Context, path string, authenticated bool) (*apiclient.Envelope, error)
	Post(ctx context.Context, path string, body any, authenticated bool, opts ...apiclient.RequestOption) (*apiclient.Envelope, error)
}

// Service wraps the backend's storefront endpoints.
type Service struct {
	api    API
	auth   *authstore.AuthStore
	logger zerolog.Logger
}

// New creates a storefront service.
func New(api API, auth *authstore.AuthStore, logger zerolog.Logger) *Service {
	return &Service{
		api:    api,
		auth:   auth,
		logger: logger.With().Str("component", "storefront").Logger(),
	}
}

// Products lists the purchasable catalogue. Inactive products are hidden
// regardless of stock.
func (s *Service) Products(ctx context.Context) ([]model.Product, error) {
	records, err := s.fetchRecords(ctx, "/api/products")
	if err != nil {
		return nil, err
	}

	products := make([]model.Product, 0, len(records))
	for _, p := range transform.Products(records) {
		if p.IsActive {
			products = append(products, p)
		}
	}
	return products, nil
}

// Product fetches one product by ID.
func (s *Service) Product(ctx context.Context, id string) (*model.Product, error) {
	env, err := s.api.Get(ctx, "/api/products/"+id, false)
	if err != nil {
		return nil, err
	}
	records, err := env.Records()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, model.NewAPIError(model.ErrCodeNotFound, "Produit introuvable")
	}

	product := transform.Product(records[0])
	return &product, nil
}

// DeliveryZones lists the zones selectable at checkout; inactive zones are
// filtered out.
func (s *Service) DeliveryZones(ctx context.Context) ([]model.DeliveryZone, error) {
	records, err := s.fetchRecords(ctx, "/api/delivery-zones")
	if err != nil {
		return nil, err
	}

	zones := make([]model.DeliveryZone, 0, len(records))
	for _, z := range transform.DeliveryZones(records) {
		if z.IsActive {
			zones = append(zones, z)
		}
	}
	return zones, nil
}

// PageContent fetches the content blocks of a page.
func (s *Service) PageContent(ctx context.Context, page string) ([]model.PageContent, error) {
	records, err := s.fetchRecords(ctx, "/api/page-content/"+page)
	if err != nil {
		return nil, err
	}
	return transform.PageContents(records), nil
}

// Orders lists the orders of the back office. Requires a session.
func (s *Service) Orders(ctx context.Context) ([]model.Order, error) {
	env, err := s.api.Get(ctx, "/api/orders", true)
	if err != nil {
		return nil, err
	}
	records, err := env.Records()
	if err != nil {
		return nil, err
	}
	return transform.Orders(records), nil
}

// loginResponse mirrors the auth endpoint's data payload.
type loginResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Login authenticates against the backend and persists the session. A
// persistence failure surfaces as a session-save error distinct from bad
// credentials.
func (s *Service) Login(ctx context.Context, username, password string) (*model.User, error) {
	env, err := s.api.Post(ctx, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, false)
	if err != nil {
		return nil, err
	}

	var resp loginResponse
	if err := env.Decode(&resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, model.NewAPIError(model.ErrCodeUnauthorised, "Identifiants invalides")
	}

	result := s.auth.Save(resp.Token, resp.User)
	if !result.Success {
		s.logger.Error().
			Err(result.Err).
			Int("retries", result.Retries).
			Msg("session persistence failed after login")
		return nil, model.NewAPIError(model.ErrCodeSessionSave,
			fmt.Sprintf("%s (%d tentatives)", msgSessionSave, result.Retries+1))
	}

	s.logger.Info().Str("username", resp.User.Username).Msg("logged in")

	return &resp.User, nil
}

// Logout clears the stored session. Purely local; the bearer token is
// stateless server-side.
func (s *Service) Logout() error {
	return s.auth.Clear()
}

// CurrentUser returns the user of the active session, or nil.
func (s *Service) CurrentUser() *model.User {
	session := s.auth.Session()
	if session == nil {
		return nil
	}
	user := session.User
	return &user
}

func (s *Service) fetchRecords(ctx context.Context, path string) ([]map[string]any, error) {
	env, err := s.api.Get(ctx, path, false)
	if err != nil {
		return nil, err
	}
	return env.Records()
}
