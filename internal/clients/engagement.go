package clients

import (
	"context"
	"time"

	"github.com/fitnease/fitnease-auth/internal/models"
)

// EngagementClient reports account events to the engagement service.
type EngagementClient struct {
	*Client
}

func NewEngagementClient(baseURL string, jwtSecret []byte) *EngagementClient {
	return &EngagementClient{Client: newClient(baseURL, jwtSecret)}
}

func (c *EngagementClient) UserRegistered(ctx context.Context, user *models.User) {
	payload := map[string]interface{}{
		"user_id":    user.ID,
		"event_type": "user_registration",
		"user_data": map[string]interface{}{
			"username":   user.Username,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
		},
		"registration_date": time.Now().UTC(),
		"timestamp":         time.Now().UTC(),
	}
	c.dispatch(ctx, "user_registration", func(ctx context.Context) error {
		return c.postJSON(ctx, "/api/engagement/user-registration", payload)
	})
}

func (c *EngagementClient) EmailVerified(ctx context.Context, userID uint) {
	payload := map[string]interface{}{
		"user_id":     userID,
		"event_type":  "email_verified",
		"verified_at": time.Now().UTC(),
		"timestamp":   time.Now().UTC(),
	}
	c.dispatch(ctx, "email_verification", func(ctx context.Context) error {
		return c.postJSON(ctx, "/api/engagement/email-verification", payload)
	})
}

func (c *EngagementClient) UserLoggedIn(ctx context.Context, userID uint) {
	payload := map[string]interface{}{
		"user_id":    userID,
		"event_type": "user_login",
		"login_time": time.Now().UTC(),
		"timestamp":  time.Now().UTC(),
	}
	c.dispatch(ctx, "user_login", func(ctx context.Context) error {
		return c.postJSON(ctx, "/api/engagement/user-login", payload)
	})
}
