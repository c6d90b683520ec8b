package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/salonora_backend/internal/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// bindBody decodes the JSON body into out and runs its validate tags.
func bindBody(c fiber.Ctx, out any) error {
	if err := c.Bind().JSON(out); err != nil {
		return errors.New("invalid request body")
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid fields: %s", strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}

func uuidParam(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// optionalDate parses an optional YYYY-MM-DD query value.
func optionalDate(raw, name string) (*model.Date, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %v", name, err)
	}
	return &d, nil
}
