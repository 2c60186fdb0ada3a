package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	pokemondomain "github.com/smallbiznis/pokedex/internal/pokemon/domain"
)

const (
	minLevel = 1
	maxLevel = 100
)

type createPokemonRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Level    *int   `json:"level"`
	HP       *int   `json:"hp"`
	Attack   *int   `json:"attack"`
	Defense  *int   `json:"defense"`
}

type updatePokemonRequest struct {
	Name     *string `json:"name,omitempty"`
	Category *string `json:"category,omitempty"`
	Level    *int    `json:"level,omitempty"`
	HP       *int    `json:"hp,omitempty"`
	Attack   *int    `json:"attack,omitempty"`
	Defense  *int    `json:"defense,omitempty"`
}

func (s *Server) CreatePokemon(c *gin.Context) {
	var req createPokemonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		AbortWithError(c, newValidationError("name", "invalid_name", "name is required"))
		return
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		AbortWithError(c, newValidationError("category", "invalid_category", "category is required"))
		return
	}

	if req.Level == nil {
		AbortWithError(c, newValidationError("level", "invalid_level", "level is required"))
		return
	}
	if err := validateLevel(*req.Level); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := validateRequiredScore("hp", req.HP); err != nil {
		AbortWithError(c, err)
		return
	}
	if err := validateRequiredScore("attack", req.Attack); err != nil {
		AbortWithError(c, err)
		return
	}
	if err := validateRequiredScore("defense", req.Defense); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.pokemonSvc.Create(c.Request.Context(), pokemondomain.CreateRequest{
		Name:     name,
		Category: category,
		Level:    *req.Level,
		HP:       *req.HP,
		Attack:   *req.Attack,
		Defense:  *req.Defense,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListPokemon(c *gin.Context) {
	resp, err := s.pokemonSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPokemonByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.pokemonSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// UpdatePokemon patches only the fields present in the body.
func (s *Server) UpdatePokemon(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req updatePokemonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	name := trimStringPtr(req.Name)
	if name != nil && *name == "" {
		AbortWithError(c, newValidationError("name", "invalid_name", "name must not be empty"))
		return
	}

	category := trimStringPtr(req.Category)
	if category != nil && *category == "" {
		AbortWithError(c, newValidationError("category", "invalid_category", "category must not be empty"))
		return
	}

	if req.Level != nil {
		if err := validateLevel(*req.Level); err != nil {
			AbortWithError(c, err)
			return
		}
	}
	if req.HP != nil {
		if err := validateBaseScore("hp", *req.HP); err != nil {
			AbortWithError(c, err)
			return
		}
	}
	if req.Attack != nil {
		if err := validateBaseScore("attack", *req.Attack); err != nil {
			AbortWithError(c, err)
			return
		}
	}
	if req.Defense != nil {
		if err := validateBaseScore("defense", *req.Defense); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	resp, err := s.pokemonSvc.Update(c.Request.Context(), pokemondomain.UpdateRequest{
		ID:       id,
		Name:     name,
		Category: category,
		Level:    req.Level,
		HP:       req.HP,
		Attack:   req.Attack,
		Defense:  req.Defense,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeletePokemon(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	if _, err := s.pokemonSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func isPokemonValidationError(err error) bool {
	switch err {
	case pokemondomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func validateLevel(level int) error {
	if level < minLevel || level > maxLevel {
		return newValidationError("level", "invalid_level", "level must be between 1 and 100")
	}
	return nil
}

func validateBaseScore(field string, value int) error {
	if value < 1 {
		return newValidationError(field, "invalid_"+field, field+" must be at least 1")
	}
	return nil
}

func validateRequiredScore(field string, value *int) error {
	if value == nil {
		return newValidationError(field, "invalid_"+field, field+" is required")
	}
	return validateBaseScore(field, *value)
}

func trimStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}
