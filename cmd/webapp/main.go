//go:build js && wasm
// +build js,wasm

package main

import (
	"github.com/folium-app/folium/webapp"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// WASM entrypoint. Routes must match the ones the server-side handler
// registers, which is why both call webapp.RegisterRoutes.
func main() {
	webapp.RegisterRoutes()
	app.RunWhenOnBrowser()
}
