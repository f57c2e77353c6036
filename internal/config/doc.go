// Package config reads the sitegear-forms process configuration from the
// environment and builds the logger, privilege controller and theme selector
// it describes.
package config
