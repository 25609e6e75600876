// Package web carries the embedded frontend: HTML templates for the
// server-rendered pages and partials, plus the static assets they load.
package web

import "embed"

// TemplatesFS holds the page and partial templates.
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet and client-side scripts.
//go:embed static/*
var StaticFS embed.FS
