// Package cmd implements the portrait-quiz command line: serve runs the HTTP
// service, resolve looks up a portrait for one title, and history lists
// archived entries.
package cmd
