// Package wizard implements the interactive prompts used while collecting
// deployment parameters.
//
// Prompter satisfies config.Prompter with charmbracelet/huh forms. It only
// renders questions; validation and re-prompting stay in the collector so
// the same rules apply to flags, settings and answers.
package wizard
