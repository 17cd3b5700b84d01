package admin

import (
	"strings"

	"github.com/IGLOU-EU/go-wildcard/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// OriginPolicy decides which browser origins may read the admin endpoints.
type OriginPolicy struct {
	origins []string
}

func NewOriginPolicy(origins []string) OriginPolicy {
	return OriginPolicy{origins: origins}
}

func (p OriginPolicy) Allows(origin string) bool {
	if origin == "" {
		return false
	}

	// Early return for exact matches
	for _, allowed := range p.origins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	for _, allowed := range p.origins {
		if strings.Contains(allowed, "*") && wildcard.Match(allowed, origin) {
			return true
		}
	}

	return false
}

func (p OriginPolicy) middleware() fiber.Handler {
	return cors.New(cors.Config{
		AllowOriginsFunc: p.Allows,
		AllowMethods:     "GET,OPTIONS",
		MaxAge:           86400, // 24 hours
	})
}
