package service

import (
	"context"

	"github.com/bookloop/booking-platform/internal/errors"
	"github.com/bookloop/booking-platform/internal/models"
	repository "github.com/bookloop/booking-platform/internal/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, req *models.AddCartItemRequest) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (*models.Cart, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, userRepo repository.UserRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
	}
}

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		return nil, errors.NotFoundError("Cart not found").WithError(err)
	}

	return cart, nil
}

// AddItem adds a product to the user's cart, creating the cart lazily on
// first use. For a line that already exists the mode decides the
// semantics: "set" replaces the quantity, the default increments it.
// The line subtotal is quantity times the product's current unit price,
// and the summary is recomputed from scratch on every mutation.
func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddCartItemRequest) (*models.Cart, error) {

	product, err := s.productRepo.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, errors.NotFoundError("Product not found").WithError(err)
	}

	if _, err := s.userRepo.GetUserByID(ctx, userID); err != nil {
		return nil, errors.NotFoundError("User not found").WithError(err)
	}

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		cart = &models.Cart{
			ID:      uuid.New(),
			UserID:  userID,
			Items:   []models.CartItem{},
			Summary: models.ZeroCartSummary(),
		}
	}

	if item := cart.Item(req.ProductID); item != nil {

		if req.Mode == models.CartModeSet {
			item.Quantity = req.Quantity
		} else {
			item.Quantity += req.Quantity
		}

		item.Subtotal = product.Price.Mul(decimal.NewFromInt(item.Quantity))

	} else {

		cart.Items = append(cart.Items, models.CartItem{
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			Subtotal:  product.Price.Mul(decimal.NewFromInt(req.Quantity)),
		})
	}

	cart.RecomputeSummary()

	if err := s.cartRepo.UpsertCart(ctx, cart); err != nil {
		return nil, errors.DatabaseError("Failed to update cart").WithError(err)
	}

	return cart, nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (*models.Cart, error) {

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		return nil, errors.NotFoundError("Cart not found").WithError(err)
	}

	if cart.Item(productID) == nil {
		return nil, errors.NotFoundError("Product not found in cart")
	}

	items := cart.Items[:0]

	for _, item := range cart.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}

	cart.Items = items
	cart.RecomputeSummary()

	if err := s.cartRepo.UpsertCart(ctx, cart); err != nil {
		return nil, errors.DatabaseError("Failed to update cart").WithError(err)
	}

	return cart, nil
}
