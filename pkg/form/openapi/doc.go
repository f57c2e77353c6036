// Package openapi builds forms from OpenAPI 3 operation request bodies.
package openapi
