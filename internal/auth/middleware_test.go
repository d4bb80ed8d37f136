package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestMiddlewareUserIDOutlivesRequest(t *testing.T) {
	var seen []string
	app := fiber.New()
	app.Get("/me", Middleware(nil, true), func(c *fiber.Ctx) error {
		seen = append(seen, UserID(c))
		return c.SendStatus(fiber.StatusNoContent)
	})

	for _, id := range []string{"user-aaa", "user-bbb"} {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set(UserIDHeader, id)
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		if resp.StatusCode != fiber.StatusNoContent {
			t.Fatalf("status = %d", resp.StatusCode)
		}
	}

	if len(seen) != 2 || seen[0] != "user-aaa" || seen[1] != "user-bbb" {
		t.Fatalf("user ids = %q", seen)
	}
}

func TestMiddlewareRejectsMissingIdentity(t *testing.T) {
	app := fiber.New()
	app.Get("/me", Middleware(nil, false), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set(UserIDHeader, "user-aaa")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("header identity must be refused when disabled, status = %d", resp.StatusCode)
	}
}
