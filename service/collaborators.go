package service

import (
	"context"
	"io"
	"time"

	"food-ordering-api/models"
	"food-ordering-api/payment"
)

//go:generate mockgen -destination=../mocks/collaborators.go -package=mocks food-ordering-api/service Mailer,OTPProvider,ImageUploader,PaymentGateway,Cache,OrderPublisher

// Mailer sends transactional email
type Mailer interface {
	SendWelcome(ctx context.Context, to, name string) error
	SendPasswordReset(ctx context.Context, to, resetURL string) error
	SendResetSuccess(ctx context.Context, to string) error
}

// OTPProvider delivers and checks one-time codes on a phone number
type OTPProvider interface {
	SendCode(ctx context.Context, phone string) error
	CheckCode(ctx context.Context, phone, code string) (bool, error)
}

// ImageUploader stores an image and returns its public URL
type ImageUploader interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

// PaymentGateway hosts the payment page and verifies its callbacks
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (*payment.Session, error)
	ParseWebhook(payload []byte, signature string) (*payment.Event, error)
}

// Cache stores JSON-serialisable values; a miss is (false, nil)
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// OrderPublisher pushes order events to a restaurant's live dashboard
type OrderPublisher interface {
	Publish(restaurantID string, ev models.OrderEvent)
}
