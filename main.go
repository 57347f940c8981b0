package main

import "casedesk/internal/app"

func main() {
	app.Main()
}
