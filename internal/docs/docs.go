// Package docs embeds the OpenAPI description of the product API.
package docs

import _ "embed"

//go:embed openapi.yaml
var OpenAPI []byte
