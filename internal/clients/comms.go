package clients

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fitnease/fitnease-auth/internal/models"
)

// CommsClient talks to the comms service, which owns the actual email
// delivery.
type CommsClient struct {
	*Client
	AppURL string
}

func NewCommsClient(baseURL, appURL string, jwtSecret []byte) *CommsClient {
	return &CommsClient{Client: newClient(baseURL, jwtSecret), AppURL: appURL}
}

func (c *CommsClient) SendVerification(ctx context.Context, user *models.User) {
	payload := map[string]interface{}{
		"user_id":           user.ID,
		"to_email":          user.Email,
		"to_name":           user.FirstName + " " + user.LastName,
		"email_type":        "email_verification",
		"token":             user.EmailVerificationToken,
		"verification_code": user.EmailVerificationCode,
		"verification_url":  c.AppURL + "/verify-email?token=" + user.EmailVerificationToken,
		"timestamp":         time.Now().UTC(),
	}
	c.dispatch(ctx, "send_verification", func(ctx context.Context) error {
		return c.postJSON(ctx, "/api/comms/send-verification", payload)
	})
}

func (c *CommsClient) SendWelcome(ctx context.Context, user *models.User) {
	payload := map[string]interface{}{
		"user_id":   user.ID,
		"to_email":  user.Email,
		"to_name":   user.FirstName,
		"timestamp": time.Now().UTC(),
	}
	c.dispatch(ctx, "send_welcome", func(ctx context.Context) error {
		return c.postJSON(ctx, "/api/comms/send-welcome-email", payload)
	})
}

// CancelVerification removes any pending verification notification once the
// account is verified.
func (c *CommsClient) CancelVerification(ctx context.Context, userID uint) {
	path := fmt.Sprintf("/api/comms/notifications/email-verification/%d", userID)
	c.dispatch(ctx, "cancel_verification", func(ctx context.Context) error {
		return c.do(ctx, http.MethodDelete, path, nil)
	})
}
