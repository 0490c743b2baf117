package services

import (
	"context"
	"strings"

	"foodhub-api/apperror"
	"foodhub-api/config"
	"foodhub-api/models"
	"foodhub-api/repository"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ProviderService struct {
	store        *repository.Store
	deletePolicy string
}

func NewProviderService(store *repository.Store, deletePolicy string) *ProviderService {
	if deletePolicy == "" {
		deletePolicy = config.ProviderDeleteRestrict
	}
	return &ProviderService{store: store, deletePolicy: deletePolicy}
}

type ProviderIn struct {
	RestaurantName string          `json:"restaurant_name" binding:"required,max=120"`
	Email          string          `json:"email" binding:"required,email"`
	Description    string          `json:"description" binding:"max=2000"`
	CuisineType    string          `json:"cuisine_type" binding:"max=60"`
	Contact        string          `json:"contact" binding:"max=40"`
	Address        string          `json:"address" binding:"required"`
	DeliveryFee    decimal.Decimal `json:"delivery_fee"`
	MinOrderAmount decimal.Decimal `json:"min_order_amount"`
	OpeningHours   datatypes.JSON  `json:"opening_hours"`
	LogoURL        *string         `json:"logo_url" binding:"omitempty,url"`
	BannerURL      *string         `json:"banner_url" binding:"omitempty,url"`
	IsOpen         *bool           `json:"is_open"`
}

// ProviderPatch is a partial update; nil fields stay as they are
type ProviderPatch struct {
	RestaurantName *string          `json:"restaurant_name" binding:"omitempty,min=1,max=120"`
	Email          *string          `json:"email" binding:"omitempty,email"`
	Description    *string          `json:"description" binding:"omitempty,max=2000"`
	CuisineType    *string          `json:"cuisine_type" binding:"omitempty,max=60"`
	Contact        *string          `json:"contact" binding:"omitempty,max=40"`
	Address        *string          `json:"address" binding:"omitempty,min=1"`
	DeliveryFee    *decimal.Decimal `json:"delivery_fee"`
	MinOrderAmount *decimal.Decimal `json:"min_order_amount"`
	OpeningHours   datatypes.JSON   `json:"opening_hours"`
	LogoURL        *string          `json:"logo_url" binding:"omitempty,url"`
	BannerURL      *string          `json:"banner_url" binding:"omitempty,url"`
	IsOpen         *bool            `json:"is_open"`
}

// Register creates the provider profile owned by userID.
// Email, owner and restaurant name must all be unused; one collision is enough to refuse.
func (s *ProviderService) Register(ctx context.Context, userID uint, in ProviderIn) (*models.Provider, error) {
	if userID == 0 {
		return nil, apperror.InvalidArgument("User ID is required to create a provider")
	}
	in.RestaurantName = strings.TrimSpace(in.RestaurantName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := requireNonNegative("delivery_fee", in.DeliveryFee); err != nil {
		return nil, err
	}
	if err := requireNonNegative("min_order_amount", in.MinOrderAmount); err != nil {
		return nil, err
	}

	p := &models.Provider{
		ID:             userID,
		RestaurantName: in.RestaurantName,
		Email:          in.Email,
		Description:    in.Description,
		CuisineType:    in.CuisineType,
		Contact:        in.Contact,
		Address:        in.Address,
		DeliveryFee:    in.DeliveryFee,
		MinOrderAmount: in.MinOrderAmount,
		OpeningHours:   in.OpeningHours,
		LogoURL:        in.LogoURL,
		BannerURL:      in.BannerURL,
		IsOpen:         in.IsOpen == nil || *in.IsOpen,
	}

	err := s.store.WithinTx(ctx, func(tx *repository.Store) error {
		if _, err := tx.FindUserByID(ctx, userID); err != nil {
			return apperror.FromDB(err, "User not found")
		}
		exists, err := tx.ProviderExists(ctx, userID, p.Email, p.RestaurantName, 0)
		if err != nil {
			return err
		}
		if exists {
			return apperror.Conflict("Provider with given details already exists")
		}
		return tx.CreateProvider(ctx, p)
	})
	if err != nil {
		return nil, apperror.FromDB(err, "")
	}
	return p, nil
}

func (s *ProviderService) GetByID(ctx context.Context, id uint) (*models.Provider, error) {
	p, err := s.store.FindProviderByID(ctx, id)
	if err != nil {
		return nil, apperror.FromDB(err, "Provider not found")
	}
	return p, nil
}

func (s *ProviderService) List(ctx context.Context) ([]models.Provider, error) {
	providers, err := s.store.ListProviders(ctx)
	return providers, apperror.FromDB(err, "")
}

// Update patches the caller's own profile
func (s *ProviderService) Update(ctx context.Context, userID uint, patch ProviderPatch) (*models.Provider, error) {
	if patch.RestaurantName != nil {
		v := strings.TrimSpace(*patch.RestaurantName)
		patch.RestaurantName = &v
	}
	if patch.Email != nil {
		v := strings.ToLower(strings.TrimSpace(*patch.Email))
		patch.Email = &v
	}
	if err := validateInput(patch); err != nil {
		return nil, err
	}
	if patch.DeliveryFee != nil {
		if err := requireNonNegative("delivery_fee", *patch.DeliveryFee); err != nil {
			return nil, err
		}
	}
	if patch.MinOrderAmount != nil {
		if err := requireNonNegative("min_order_amount", *patch.MinOrderAmount); err != nil {
			return nil, err
		}
	}

	err := s.store.WithinTx(ctx, func(tx *repository.Store) error {
		current, err := tx.LockProvider(ctx, userID)
		if err != nil {
			return apperror.FromDB(err, "Provider not found")
		}

		fields := map[string]interface{}{}
		email, name := current.Email, current.RestaurantName
		if patch.Email != nil && *patch.Email != current.Email {
			email = *patch.Email
			fields["email"] = email
		}
		if patch.RestaurantName != nil && *patch.RestaurantName != current.RestaurantName {
			name = *patch.RestaurantName
			fields["restaurant_name"] = name
		}
		if len(fields) > 0 {
			// owner id is excluded, so only email and name can collide
			exists, err := tx.ProviderExists(ctx, 0, email, name, userID)
			if err != nil {
				return err
			}
			if exists {
				return apperror.Conflict("Another provider already uses this email or restaurant name")
			}
		}

		setIf(fields, "description", patch.Description)
		setIf(fields, "cuisine_type", patch.CuisineType)
		setIf(fields, "contact", patch.Contact)
		setIf(fields, "address", patch.Address)
		setIf(fields, "logo_url", patch.LogoURL)
		setIf(fields, "banner_url", patch.BannerURL)
		setIf(fields, "is_open", patch.IsOpen)
		setIf(fields, "delivery_fee", patch.DeliveryFee)
		setIf(fields, "min_order_amount", patch.MinOrderAmount)
		if patch.OpeningHours != nil {
			fields["opening_hours"] = patch.OpeningHours
		}
		if len(fields) == 0 {
			return nil
		}
		return tx.UpdateProvider(ctx, userID, fields)
	})
	if err != nil {
		return nil, apperror.FromDB(err, "")
	}
	return s.GetByID(ctx, userID)
}

// Delete removes a provider profile. Only its owner or an admin may do so.
// Under the restrict policy a provider that still has meals or pending orders is kept.
func (s *ProviderService) Delete(ctx context.Context, providerID uint, actorID uint, actorRole models.UserRole) error {
	if actorRole != models.RoleAdmin && actorID != providerID {
		return apperror.Forbidden("You can only delete your own provider profile")
	}

	err := s.store.WithinTx(ctx, func(tx *repository.Store) error {
		if _, err := tx.LockProvider(ctx, providerID); err != nil {
			return apperror.FromDB(err, "Provider not found")
		}
		if s.deletePolicy == config.ProviderDeleteRestrict {
			meals, err := tx.CountMealsByProvider(ctx, providerID)
			if err != nil {
				return err
			}
			pending, err := tx.CountOrdersByPaymentStatus(ctx, providerID, models.PaymentPending)
			if err != nil {
				return err
			}
			if meals > 0 || pending > 0 {
				return apperror.Conflict("Provider still has meals or pending orders")
			}
		}
		_, err := tx.DeleteProvider(ctx, providerID)
		return err
	})
	return apperror.FromDB(err, "")
}

func setIf[T any](fields map[string]interface{}, column string, v *T) {
	if v != nil {
		fields[column] = *v
	}
}
