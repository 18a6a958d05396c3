package web

import "embed"

// TemplatesFS embeds the chat page template.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the chat client script and stylesheet.
//
//go:embed static/*
var StaticFS embed.FS
