// Package commands describes slash commands shared by the router and the registry.
package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command binds a slash command to its handler. Aliases route to the same
// handler but never appear in the command menu.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}

// Visible reports whether the command belongs in the public command menu.
func (c Command) Visible() bool {
	return !c.Hidden && !c.AdminOnly
}
