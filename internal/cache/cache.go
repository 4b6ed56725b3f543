package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/Cheertaboi/pharmacy-pricing-service/internal/models"
)

// ShippingCache holds shipping method rows by delivery mode. Only rows are
// cached; computed shipping costs never are.
type ShippingCache interface {
	Get(ctx context.Context, mode models.DeliveryMode) (*models.ShippingMethod, error)
	Set(ctx context.Context, method *models.ShippingMethod) error
	Delete(ctx context.Context, mode models.DeliveryMode) error
}

var ErrCacheMiss = errors.New("cache miss")

func cacheKey(mode models.DeliveryMode) string {
	return fmt.Sprintf("shipping:method:%s", mode)
}
