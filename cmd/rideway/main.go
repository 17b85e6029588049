package main

import "github.com/rideway/rideway/app"

func main() {
	app.New(nil).Run()
}
