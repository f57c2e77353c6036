// Package prompt fills a form interactively on a terminal.
//
// Fields are asked in document order through a Driver (survey by default).
// Each answer is fed back into condition evaluation before the next element
// is considered, so a form behaves the same way it does in the browser.
package prompt
