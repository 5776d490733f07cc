package handler

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/schema"
)

var schemaDecoder = schema.NewDecoder()

func init() {
	schemaDecoder.IgnoreUnknownKeys(true)
}

// CastsQuery is the query string of the cast routes
type CastsQuery struct {
	Fields string `schema:"fields"` // comma separated
	All    bool   `schema:"all"`
}

// LogsQuery is the query string of the log routes
type LogsQuery struct {
	Limit     int    `schema:"limit"`
	Operation string `schema:"operation"`
}

// decodeQuery fills dst, a pointer to a struct, from the request query string.
func decodeQuery(c *fiber.Ctx, dst any) error {
	values, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return err
	}
	return schemaDecoder.Decode(dst, values)
}
