// Package swagger embeds the OpenAPI document served next to Swagger UI.
package swagger

import _ "embed"

//go:embed user.swagger.json
var UserSpec []byte
