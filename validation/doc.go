// Package validation checks configuration structs and user input.
//
// Struct tag validation uses go-playground/validator and reports field names
// by their mapstructure (or json) tag, so messages match the keys a user
// writes in a config file:
//
//	type Config struct {
//	    BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
//	}
//	err := validation.Validate(cfg)
//
// Programmatic checks collect errors through a Validator:
//
//	err := validation.New().Required("url", u).OneOf("method", m, methods).Err()
package validation
