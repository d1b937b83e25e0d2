// main.go
package main

import (
	"log"

	"valetdesk/cmd"
)

func main() {
	if err := cmd.Start(); err != nil {
		log.Fatal(err)
	}
}
