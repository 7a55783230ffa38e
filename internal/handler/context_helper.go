package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/inventario-ufc/patrimonio-api/internal/middleware"
	"github.com/inventario-ufc/patrimonio-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// userFromClaims builds the submitter identity services expect from the
// token claims attached by the JWT middleware.
func userFromClaims(claims *models.JWTClaims) *models.User {
	if claims == nil {
		return nil
	}
	return &models.User{
		ID:         claims.UserID,
		Email:      claims.Email,
		FullName:   claims.FullName,
		Role:       claims.Role,
		HomeCampus: claims.HomeCampus,
	}
}
