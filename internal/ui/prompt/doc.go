// Package prompt holds the interactive prompts of cleanart.
//
// Prompts render to stderr so a report on stdout stays machine readable.
//   - [PickCommand]: build command picker with a custom entry
//   - [ConfirmWithDetail]: yes/no confirmation of a removal
package prompt
