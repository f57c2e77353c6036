// Package definition builds forms from JSON or YAML definition files.
package definition
