// Package render resolves renderers for form elements and fields by their
// runtime kind. A Factory holds one registry per category; Tree walks a form
// and dispatches every active node through it, skipping or aborting on kinds
// nobody registered according to the configured Policy.
package render
