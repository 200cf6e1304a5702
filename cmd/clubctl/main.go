// Command clubctl is the operator CLI for clubhouse: schema migrations,
// baseline seeding and user administration.
package main

import "clubhouse/cmd/clubctl/commands"

func main() {
	commands.Execute()
}
