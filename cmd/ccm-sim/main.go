package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/ccmlink-io/ccmlink/cmd/ccm-sim/app"
)

func main() {
	app.NewApp().Run()
}
