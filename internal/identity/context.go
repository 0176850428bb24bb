// Package identity reads the authenticated caller from the fiber context.
package identity

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrNoIdentity = errors.New("no authenticated user in context")

// LocalsKey is where the JWT middleware stores the parsed token.
const LocalsKey = "user"

// Caller is the subset of access-token claims handlers need.
type Caller struct {
	ID    uuid.UUID
	Email string
	Role  string
}

func claims(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, ok := c.Locals(LocalsKey).(*jwt.Token)
	if !ok || token == nil {
		return nil, ErrNoIdentity
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return mc, nil
}

// GetUserID extracts the user UUID from JWT claims in context.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	mc, err := claims(c)
	if err != nil {
		return uuid.Nil, err
	}
	sub, ok := mc["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}
	return uuid.Parse(sub)
}

func GetCaller(c *fiber.Ctx) (Caller, error) {
	mc, err := claims(c)
	if err != nil {
		return Caller{}, err
	}
	id, err := GetUserID(c)
	if err != nil {
		return Caller{}, err
	}
	email, _ := mc["email"].(string)
	role, _ := mc["role"].(string)
	return Caller{ID: id, Email: email, Role: role}, nil
}
