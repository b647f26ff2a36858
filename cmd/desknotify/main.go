// Package main provides the CLI entrypoint for desknotify.
package main

func main() {
	Execute()
}
