// Package templates embeds the server-rendered customer pages.
package templates

import "embed"

//go:embed pages/*.html
var Pages embed.FS
