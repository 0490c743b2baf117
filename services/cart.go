package services

import (
	"context"
	"errors"
	"fmt"

	"foodhub-api/apperror"
	"foodhub-api/models"
	"foodhub-api/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CartService struct {
	store *repository.Store
}

func NewCartService(store *repository.Store) *CartService {
	return &CartService{store: store}
}

type AddToCartIn struct {
	MealID   uint `json:"meal_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,min=1,max=999"`
}

type UpdateQuantityIn struct {
	Quantity int `json:"quantity" binding:"required,min=1,max=999"`
}

// AddItem puts a meal in the customer's cart, creating the cart on first use.
// A meal already in the cart is consolidated into its existing line: the quantity
// grows and the line is re-priced at the meal's current price.
func (s *CartService) AddItem(ctx context.Context, customerID, mealID uint, quantity int) (*models.CartItem, error) {
	if err := checkQuantity(quantity); err != nil {
		return nil, err
	}

	var itemID uint
	err := s.store.WithinTx(ctx, func(tx *repository.Store) error {
		meal, err := tx.FindMealByID(ctx, mealID)
		if err != nil {
			return apperror.FromDB(err, "Meal not found")
		}
		if !meal.IsAvailable {
			return apperror.InvalidState("Meal is currently unavailable")
		}

		cart, err := getOrCreateCart(ctx, tx, customerID)
		if err != nil {
			return err
		}

		line, err := tx.FindCartLine(ctx, cart.ID, mealID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err != nil {
			item := &models.CartItem{
				CartID:    cart.ID,
				MealID:    mealID,
				Quantity:  quantity,
				UnitPrice: meal.Price,
				Subtotal:  models.LineTotal(quantity, meal.Price),
			}
			createErr := tx.WithinTx(ctx, func(sp *repository.Store) error {
				return sp.CreateCartItem(ctx, item)
			})
			if createErr == nil {
				itemID = item.ID
				return nil
			}
			if !errors.Is(createErr, gorm.ErrDuplicatedKey) {
				return createErr
			}
			// a concurrent add created the line first; fold into it
			if line, err = tx.FindCartLine(ctx, cart.ID, mealID); err != nil {
				return err
			}
		}

		if line.Quantity+quantity > models.MaxLineQuantity {
			return lineLimitError()
		}
		updated, err := tx.IncrementCartItem(ctx, line.ID, quantity, models.MaxLineQuantity, meal.Price)
		if errors.Is(err, repository.ErrQuantityLimit) {
			return lineLimitError()
		}
		if err != nil {
			return err
		}
		itemID = updated.ID
		return nil
	})
	if err != nil {
		return nil, apperror.FromDB(err, "")
	}

	item, err := s.store.FindCartItemWithMeal(ctx, itemID)
	if err != nil {
		return nil, apperror.FromDB(err, "Cart item not found")
	}
	return item, nil
}

func checkQuantity(quantity int) error {
	if quantity <= 0 {
		return apperror.InvalidArgument("Quantity must be greater than 0")
	}
	if quantity > models.MaxLineQuantity {
		return apperror.InvalidArgument(fmt.Sprintf("quantity must be at most %d", models.MaxLineQuantity))
	}
	return nil
}

func lineLimitError() error {
	return apperror.InvalidArgument(fmt.Sprintf("A cart line cannot hold more than %d of the same meal", models.MaxLineQuantity))
}

// getOrCreateCart tolerates a concurrent first addition: losing the insert race re-reads the winner's cart
func getOrCreateCart(ctx context.Context, tx *repository.Store, customerID uint) (*models.Cart, error) {
	cart, err := tx.FindCartByCustomer(ctx, customerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = &models.Cart{CustomerID: customerID}
	// nested WithinTx is a savepoint, so a failed insert leaves the outer transaction usable
	createErr := tx.WithinTx(ctx, func(sp *repository.Store) error {
		return sp.CreateCart(ctx, cart)
	})
	if createErr != nil {
		if existing, retryErr := tx.FindCartByCustomer(ctx, customerID); retryErr == nil {
			return existing, nil
		}
		return nil, createErr
	}
	return cart, nil
}

func (s *CartService) GetCart(ctx context.Context, customerID uint) (*models.CartView, error) {
	cart, err := s.store.FindCartWithItems(ctx, customerID)
	if err != nil {
		return nil, apperror.FromDB(err, "Cart not found")
	}
	return &models.CartView{Cart: *cart, TotalPrice: cartTotal(cart.Items)}, nil
}

// UpdateQuantity sets an absolute quantity, keeping the price stored on the line
func (s *CartService) UpdateQuantity(ctx context.Context, customerID, cartItemID uint, quantity int) (*models.CartItem, error) {
	if err := checkQuantity(quantity); err != nil {
		return nil, err
	}

	err := s.store.WithinTx(ctx, func(tx *repository.Store) error {
		cart, err := tx.FindCartByCustomer(ctx, customerID)
		if err != nil {
			return apperror.FromDB(err, "Cart not found")
		}
		item, err := tx.FindCartItem(ctx, cart.ID, cartItemID)
		if err != nil {
			return apperror.FromDB(err, "Cart item not found")
		}
		return tx.SetCartItemQuantity(ctx, item.ID, quantity, models.LineTotal(quantity, item.UnitPrice))
	})
	if err != nil {
		return nil, apperror.FromDB(err, "")
	}

	item, err := s.store.FindCartItemWithMeal(ctx, cartItemID)
	if err != nil {
		return nil, apperror.FromDB(err, "Cart item not found")
	}
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, customerID, cartItemID uint) error {
	err := s.store.WithinTx(ctx, func(tx *repository.Store) error {
		cart, err := tx.FindCartByCustomer(ctx, customerID)
		if err != nil {
			return apperror.FromDB(err, "Cart not found")
		}
		n, err := tx.DeleteCartItem(ctx, cart.ID, cartItemID)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperror.NotFound("Cart item not found")
		}
		return nil
	})
	return apperror.FromDB(err, "")
}

func (s *CartService) Clear(ctx context.Context, customerID uint) error {
	err := s.store.WithinTx(ctx, func(tx *repository.Store) error {
		cart, err := tx.FindCartByCustomer(ctx, customerID)
		if err != nil {
			return apperror.FromDB(err, "Cart not found")
		}
		return tx.ClearCart(ctx, cart.ID)
	})
	return apperror.FromDB(err, "")
}

func cartTotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal)
	}
	return total
}
