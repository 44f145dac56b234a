package httpapi

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	lookup := weatherHandler(service)

	// The frontend calls /api/weather/?city=...; non-strict routing covers the slash.
	app.Get("/api/weather", lookup)

	v1 := app.Group("/api/v1")
	v1.Get("/weather", lookup)

	v1.Get("/favorites", func(c *fiber.Ctx) error {
		favs, err := service.Favorites(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(favs)
	})

	v1.Post("/favorites", func(c *fiber.Ctx) error {
		var req favoriteRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		req.Name = strings.TrimSpace(req.Name)
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		fav, err := service.AddFavorite(c.UserContext(), req.Name)
		if err != nil {
			if errors.Is(err, weather.ErrCityNotFound) {
				return fiber.NewError(fiber.StatusBadRequest, "Could not find coordinates for city: "+req.Name)
			}
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fav)
	})

	v1.Delete("/favorites/:id", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid favorite id")
		}

		if err := service.RemoveFavorite(c.UserContext(), int64(id)); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "favorite city not found")
			}
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func weatherHandler(service *weather.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		city := c.Query("city")

		q := cityQuery{City: strings.TrimSpace(city)}
		if err := validate.Struct(q); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "City parameter is required"})
		}

		res := service.Lookup(c.UserContext(), city)
		if !res.OK() {
			return c.Status(fiber.StatusBadRequest).JSON(res)
		}
		return c.JSON(res)
	}
}

// cityQuery holds query parameters for the weather endpoint.
type cityQuery struct {
	City string `validate:"required"`
}

// favoriteRequest is the body of POST /favorites.
type favoriteRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}
